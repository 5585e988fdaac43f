package internal

import (
	"bytes"
	"sync"
)

// BufferPool holds buffers used to encode output lines.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}
