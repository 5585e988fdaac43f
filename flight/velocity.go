package flight

// ImpulseEpsilon is the amount an impulse's magnitude must grow by between two ticks before it is considered
// to still be increasing. It absorbs floating point noise around the apex of a bounce.
const ImpulseEpsilon = 1e-5

// ImpulseCause is the source of a vertical impulse applied to an entity.
type ImpulseCause uint8

const (
	CauseNone ImpulseCause = iota
	CauseBouncePad
	CauseKnockback
)

func (c ImpulseCause) String() string {
	switch c {
	case CauseBouncePad:
		return "bounce_pad"
	case CauseKnockback:
		return "knockback"
	default:
		return "none"
	}
}

// VelocityImpulse tracks a transient vertical velocity applied to an entity from outside its own movement,
// which is expected to decay naturally after it was applied.
type VelocityImpulse struct {
	Active bool
	Cause  ImpulseCause

	CurrentMagnitude float64
	LastMagnitude    float64

	// Ticks is the amount of ticks that passed since the impulse was applied.
	Ticks uint32
}

// Apply starts tracking a new impulse with the given cause and initial magnitude.
func (v *VelocityImpulse) Apply(cause ImpulseCause, magnitude float64) {
	if cause == CauseNone {
		v.Reset()
		return
	}
	v.Active = true
	v.Cause = cause
	v.LastMagnitude = 0
	v.CurrentMagnitude = magnitude
	v.Ticks = 0
}

// Reset stops tracking the impulse.
func (v *VelocityImpulse) Reset() {
	*v = VelocityImpulse{}
}

// OnGroundContact updates the impulse when the entity touches the ground on the given surface. Bounce
// surfaces start a new impulse. A knockback applied since the last tick survives a single ground contact so
// that the entity can still leave the ground with it; anything else is cleared.
func (v *VelocityImpulse) OnGroundContact(surface Surface) {
	if surface.Bounces() {
		v.Apply(CauseBouncePad, 0)
		return
	}
	if v.Active && v.Cause == CauseKnockback && v.Ticks == 0 {
		v.Ticks++
		return
	}
	v.Reset()
}

// OnTick updates the impulse with the vertical speed of an airborne tick. The impulse is consumed as soon as
// the entity starts descending.
func (v *VelocityImpulse) OnTick(verticalSpeed float64) {
	if !v.Active {
		return
	}
	v.Ticks++
	v.LastMagnitude = v.CurrentMagnitude
	v.CurrentMagnitude = verticalSpeed
	if verticalSpeed < 0 {
		v.Reset()
	}
}

// IsSuspiciousContinuation returns true if an impulse keeps growing after the entity has been ascending for
// longer than maxAscendTicks. A genuine impulse only decays once applied.
func IsSuspiciousContinuation(currentMagnitude, lastMagnitude float64, ascendingMoves, maxAscendTicks uint32) bool {
	return currentMagnitude > lastMagnitude+ImpulseEpsilon && ascendingMoves > maxAscendTicks
}
