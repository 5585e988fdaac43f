package flight

import "github.com/oomph-ac/ofly/oerror"

// Variant names a parameterization of the flight rules tuned for a client motion model.
type Variant uint8

const (
	// VariantBaseline is the primary rule set. Failed rules roll the entity back right away.
	VariantBaseline Variant = iota
	// VariantCompat is tuned for clients with a refined gravity model. It leaves corrections to the caller.
	VariantCompat
)

func (v Variant) String() string {
	if v == VariantCompat {
		return "compat"
	}
	return "baseline"
}

// ParseVariant parses a variant from its name.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "", "baseline":
		return VariantBaseline, nil
	case "compat", "compatibility":
		return VariantCompat, nil
	}
	return 0, oerror.New("unknown flight variant %q", name)
}

// RollbackTarget is the position a failed rule asks the entity to be moved back to.
type RollbackTarget uint8

const (
	RollbackNone RollbackTarget = iota
	RollbackGround
	RollbackPrevious
)

// VariantParams holds everything that differs between two variants of the rule set.
type VariantParams struct {
	// SubType is the detection sub-type violations of this variant are reported under.
	SubType string
	// Rollback is the rollback target of every rule.
	Rollback [ruleCount]RollbackTarget

	// AscentHeightLimit is the maximum height above the last ground position an ascent may reach. A value
	// of zero or less disables the limit.
	AscentHeightLimit float64

	// GravityModel enables the expected fall speed check once the entity is at least GravityMinDistance
	// above the ground. Deviations of up to GravityTolerance are accepted.
	GravityModel       bool
	GravityMinDistance float64
	GravityTolerance   float64

	// InlineRollback makes the Detector request rollbacks from the ViolationSink itself.
	InlineRollback bool
}

// Params returns the parameters of the variant.
func (v Variant) Params() VariantParams {
	if v == VariantCompat {
		p := VariantParams{
			SubType:            "B",
			AscentHeightLimit:  1.4,
			GravityModel:       true,
			GravityMinDistance: 1.6,
			GravityTolerance:   0.01,
		}
		p.Rollback[RuleLadderAscend] = RollbackPrevious
		p.Rollback[RuleLadderInstant] = RollbackPrevious
		p.Rollback[RuleLadderDescend] = RollbackPrevious
		p.Rollback[RuleAscendSpeed] = RollbackPrevious
		return p
	}

	p := VariantParams{SubType: "A", InlineRollback: true}
	for r := range p.Rollback {
		p.Rollback[r] = RollbackGround
	}
	p.Rollback[RuleVerticalClip] = RollbackPrevious
	return p
}
