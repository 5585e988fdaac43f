package flight

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/utils"
)

// Rule identifies a single rule of the flight rule set.
type Rule uint8

const (
	RuleHover Rule = iota
	RuleLadderAscend
	RuleLadderInstant
	RuleLadderDescend
	RuleImpulseContinuation
	RuleAscendTime
	RuleAscendSpeed
	RuleAscendHeight
	RuleDescendDelta
	RuleDescendExpected
	RuleVerticalClip

	ruleCount
)

var ruleNames = [ruleCount]string{
	RuleHover:               "hover",
	RuleLadderAscend:        "ladder_ascend",
	RuleLadderInstant:       "ladder_instant",
	RuleLadderDescend:       "ladder_descend",
	RuleImpulseContinuation: "impulse_continuation",
	RuleAscendTime:          "ascend_time",
	RuleAscendSpeed:         "ascend_speed",
	RuleAscendHeight:        "ascend_height",
	RuleDescendDelta:        "descend_delta",
	RuleDescendExpected:     "descend_expected",
	RuleVerticalClip:        "vclip",
}

func (r Rule) String() string {
	if r >= ruleCount {
		return "unknown"
	}
	return ruleNames[r]
}

// Violation is a single failed rule.
type Violation struct {
	Rule Rule
	// Data holds the values that made the rule fail, in the order they were recorded.
	Data *orderedmap.OrderedMap[string, any]
	// Rollback is the position the rule asks the entity to be moved back to, if any.
	Rollback *mgl64.Vec3
}

// Message returns a human-readable description of the violation.
func (v Violation) Message() string {
	if v.Data == nil || v.Data.Len() == 0 {
		return v.Rule.String()
	}
	return v.Rule.String() + " " + utils.OrderedMapToString(*v.Data)
}

// Result is the outcome of evaluating one movement sample.
type Result struct {
	// Failed is true if any rule failed.
	Failed bool
	// Reason is the message of the last rule that failed. Both variants overwrite it, so use Violations to see
	// every rule that failed.
	Reason string
	// Rollback is the last rollback position requested by a failed rule, if any. Like Reason, a later rule
	// overwrites it in both variants.
	Rollback *mgl64.Vec3
	// Violations holds every rule that failed, in evaluation order.
	Violations []Violation

	// Cancel is set by the Detector if the ViolationSink decided the movement should be cancelled.
	Cancel bool
}

// Has returns true if the given rule failed.
func (r Result) Has(rule Rule) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func (r *Result) fail(rule Rule, rollback *mgl64.Vec3, kv ...any) {
	v := Violation{Rule: rule, Data: utils.KeyValsToOrderedMap(kv...), Rollback: rollback}
	r.Failed = true
	r.Reason = v.Message()
	if rollback != nil {
		r.Rollback = rollback
	}
	r.Violations = append(r.Violations, v)
}
