package flight

import (
	"github.com/sirupsen/logrus"
)

// Detector runs the full per-tick pipeline for movement samples: it updates the ledger and the impulse
// tracker, evaluates the rule set and reports every violation to a ViolationSink.
type Detector struct {
	eval *Evaluator
	sink ViolationSink
	log  *logrus.Logger
}

// NewDetector returns a Detector evaluating samples with eval and reporting violations to sink. A nil logger
// discards all debug output.
func NewDetector(eval *Evaluator, sink ViolationSink, log *logrus.Logger) *Detector {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Detector{eval: eval, sink: sink, log: log}
}

// Evaluator returns the Evaluator used by the Detector.
func (d *Detector) Evaluator() *Evaluator {
	return d.eval
}

// Process applies the sample to the entity's ledger and evaluates it. The returned Result has Cancel set if
// the sink decided any of the violations should cancel the movement. Variants with inline rollback also
// request the rollback of every cancelled violation from the sink.
func (d *Detector) Process(entity string, data *MovingData, s Sample, env Environment) Result {
	data.Update(s, env)
	if data.OnGround {
		data.Velocity.OnGroundContact(env.Surface(data.CurrentLocation))
	} else {
		data.Velocity.OnTick(data.VerticalSpeed)
	}

	res := d.eval.Evaluate(*data, s, env)
	if !res.Failed {
		return res
	}

	inline := d.eval.params.InlineRollback
	for _, v := range res.Violations {
		msg := v.Message()
		d.log.Debugf("%s failed flight (%s): %s", entity, d.eval.params.SubType, msg)
		if !d.sink.RecordViolation(entity, msg) {
			continue
		}
		res.Cancel = true
		if inline && v.Rollback != nil {
			d.sink.RequestRollback(entity, *v.Rollback)
		}
	}
	return res
}

// Check processes the sample and only returns whether any rule failed, leaving corrections to the sink.
func (d *Detector) Check(entity string, data *MovingData, s Sample, env Environment) bool {
	return d.Process(entity, data, s, env).Failed
}
