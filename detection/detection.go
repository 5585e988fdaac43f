package detection

// Detection describes a check that reports violations to a Manager.
type Detection interface {
	// Type returns the primary type of the detection, such as "Fly".
	Type() string
	// SubType returns the sub-type of the detection. This is a letter representing a detection for the same
	// cheat defined in Type(), but with a different method.
	SubType() string
	// Description returns the description of what the detection does.
	Description() string
	// Punishable returns true if the detection should trigger a punishment.
	Punishable() bool
}

// Fly is the Detection reported by the flight evaluator. Every variant of the evaluator flags under its own
// sub-type.
type Fly struct {
	subType    string
	punishable bool
}

// NewFly returns the Fly detection for the given sub-type.
func NewFly(subType string, punishable bool) Fly {
	return Fly{subType: subType, punishable: punishable}
}

func (Fly) Type() string {
	return "Fly"
}

func (d Fly) SubType() string {
	return d.subType
}

func (d Fly) Description() string {
	switch d.subType {
	case "B":
		return "Checks for impossible vertical movement, including ascent height and gravity deviation."
	default:
		return "Checks for impossible vertical movement such as hovering, fast ascent and ladder speed."
	}
}

func (d Fly) Punishable() bool {
	return d.punishable
}
