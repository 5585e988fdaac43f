package assert

import "github.com/oomph-ac/ofly/oerror"

// IsTrue panics with the formatted message if ok is false.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
