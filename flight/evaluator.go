package flight

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Evaluator runs the flight rule set of a variant against movement ledgers. It holds no per-entity state
// and may be shared by any amount of entities.
type Evaluator struct {
	variant    Variant
	params     VariantParams
	thresholds Thresholds
}

// NewEvaluator returns an Evaluator for the variant using the given thresholds.
func NewEvaluator(v Variant, t Thresholds) (*Evaluator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{variant: v, params: v.Params(), thresholds: t}, nil
}

// NewEvaluatorFromProvider reads the thresholds from p and returns an Evaluator for the variant.
func NewEvaluatorFromProvider(v Variant, p ThresholdProvider) (*Evaluator, error) {
	t, err := NewThresholds(p)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(v, t)
}

// Variant returns the variant the Evaluator runs.
func (e *Evaluator) Variant() Variant {
	return e.variant
}

// Params returns the parameters of the Evaluator's variant.
func (e *Evaluator) Params() VariantParams {
	return e.params
}

// Thresholds returns the thresholds the Evaluator was created with.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate runs every rule against an updated ledger and the sample it was updated with. Evaluate does not
// modify anything, so evaluating the same ledger and sample twice yields the same Result.
func (e *Evaluator) Evaluate(data MovingData, s Sample, env Environment) Result {
	c := newRuleContext(e, data, s, env)
	var res Result
	for _, r := range rules {
		r(c, &res)
	}
	return res
}

// ruleContext holds the values shared between the rules of a single evaluation.
type ruleContext struct {
	e    *Evaluator
	data MovingData
	s    Sample
	env  Environment

	// airborne is true once the entity has been off the ground long enough for the ladder rules to apply.
	airborne bool
	// actual is true if nothing other than the entity itself is affecting its vertical movement.
	actual bool
}

func newRuleContext(e *Evaluator, data MovingData, s Sample, env Environment) *ruleContext {
	c := &ruleContext{e: e, data: data, s: s, env: env}

	runMoves := data.AscendingMoves
	if data.Descending {
		runMoves = data.DescendingMoves
	}
	c.airborne = data.AirTicks >= 20 && runMoves > 4 && s.FallDistance == 0

	to := data.CurrentLocation
	velocityModifier := env.OnSlab(to) || env.OnStair(to)
	c.actual = !data.Climbing && !env.InLiquid(to) && !s.Vehicle && !velocityModifier && !data.Velocity.Active
	return c
}

// rollback returns the position the rule should roll back to for the evaluator's variant.
func (c *ruleContext) rollback(r Rule) *mgl64.Vec3 {
	var pos mgl64.Vec3
	switch c.e.params.Rollback[r] {
	case RollbackGround:
		pos = c.data.GroundLocation
	case RollbackPrevious:
		pos = c.data.PreviousLocation
	default:
		return nil
	}
	return &pos
}
