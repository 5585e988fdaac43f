package flight

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/assert"
)

// MovingData is the movement ledger of a single entity. It is created on the first sample of an entity and
// lives until the entity is no longer tracked. A MovingData must never be shared between entities and must
// not be updated concurrently.
type MovingData struct {
	OnGround, WasOnGround bool

	// AirTicks is the amount of consecutive ticks spent off the ground without an impulse explaining it.
	AirTicks uint32
	// AscendingMoves and DescendingMoves count the ticks of the current ascent or descent. At most one of
	// them is non-zero.
	AscendingMoves, DescendingMoves uint32
	// HoverTicks is the amount of consecutive airborne ticks without any vertical movement.
	HoverTicks uint32

	VerticalSpeed, LastVerticalSpeed float64

	GroundLocation   mgl64.Vec3
	PreviousLocation mgl64.Vec3
	CurrentLocation  mgl64.Vec3

	Ascending, Descending, Climbing bool

	Velocity VelocityImpulse

	// Ticks is the amount of samples the ledger has received.
	Ticks uint64
}

// NewMovingData returns a ledger for an entity that was first seen at the given position.
func NewMovingData(pos mgl64.Vec3) *MovingData {
	return &MovingData{
		GroundLocation:   pos,
		PreviousLocation: pos,
		CurrentLocation:  pos,
	}
}

// Update applies a movement sample to the ledger.
func (d *MovingData) Update(s Sample, env Environment) {
	d.Ticks++
	d.WasOnGround = d.OnGround
	d.OnGround = s.OnGround
	d.PreviousLocation = s.From
	d.CurrentLocation = s.To

	if s.OnGround {
		d.AirTicks = 0
		d.AscendingMoves = 0
		d.DescendingMoves = 0
		d.GroundLocation = s.To
	}

	d.LastVerticalSpeed = d.VerticalSpeed
	d.VerticalSpeed = s.To.Y() - s.From.Y()

	d.Ascending = d.VerticalSpeed > 0 && !s.OnGround
	d.Descending = d.VerticalSpeed < 0 && !s.OnGround
	d.Climbing = s.Climbing || env.Climbable(s.To)

	if d.Ascending {
		d.DescendingMoves = 0
		d.AscendingMoves++
	}
	if d.Descending {
		d.AscendingMoves = 0
		d.DescendingMoves++
	}

	if !s.OnGround && !d.Velocity.Active {
		d.AirTicks++
	}

	if !s.OnGround && d.VerticalSpeed == 0 && d.LastVerticalSpeed == 0 && !s.Vehicle {
		d.HoverTicks++
	} else {
		d.HoverTicks = 0
	}

	assert.IsTrue(d.AscendingMoves == 0 || d.DescendingMoves == 0, "ledger: ascendingMoves=%d and descendingMoves=%d both set", d.AscendingMoves, d.DescendingMoves)
	assert.IsTrue(!s.OnGround || d.AirTicks+d.AscendingMoves+d.DescendingMoves == 0, "ledger: counters not reset on ground")
}

// Snapshot returns a copy of the ledger that can be evaluated without affecting the entity's state.
func (d *MovingData) Snapshot() MovingData {
	return *d
}
