package flight

import "github.com/go-gl/mathgl/mgl64"

// Sample is a single movement update of an entity, delivered by the host once per tick.
type Sample struct {
	// From and To are the feet positions of the entity before and after the movement.
	From, To mgl64.Vec3

	OnGround bool
	Climbing bool
	// Vehicle is true if the entity is riding another entity.
	Vehicle bool
	// JumpBoost is true if the entity has an active jump boost effect.
	JumpBoost bool
	// FallDistance is the distance the entity has fallen since it last touched the ground.
	FallDistance float64
}

// Surface is the kind of block an entity is standing on, as far as vertical movement is concerned.
type Surface uint8

const (
	SurfaceDefault Surface = iota
	SurfaceSlime
	SurfaceBed
)

// Bounces returns true if landing on the surface launches the entity back up.
func (s Surface) Bounces() bool {
	return s == SurfaceSlime || s == SurfaceBed
}

func (s Surface) String() string {
	switch s {
	case SurfaceSlime:
		return "slime"
	case SurfaceBed:
		return "bed"
	default:
		return "default"
	}
}

// Environment answers read-only questions about the world around an entity. Implementations must be safe
// for concurrent reads and must answer conservatively (not solid, not liquid) for positions they cannot
// resolve, such as unloaded chunks.
type Environment interface {
	// OnSlab returns true if the position is on or inside a slab.
	OnSlab(pos mgl64.Vec3) bool
	// OnStair returns true if the position is on or inside a stair.
	OnStair(pos mgl64.Vec3) bool
	// InLiquid returns true if the position is inside any liquid.
	InLiquid(pos mgl64.Vec3) bool
	// Climbable returns true if the position is inside a climbable block such as a ladder or vines.
	Climbable(pos mgl64.Vec3) bool
	// Surface returns the kind of surface the position is standing on.
	Surface(pos mgl64.Vec3) Surface
	// Solid returns true if the block at the given block coordinates is solid.
	Solid(x, y, z int) bool
}

// ViolationSink receives the violations found by a Detector.
type ViolationSink interface {
	// RecordViolation records a violation for the entity and returns true if the movement should be cancelled.
	RecordViolation(entity, message string) bool
	// RequestRollback asks the host to move the entity back to the given position.
	RequestRollback(entity string, pos mgl64.Vec3)
}
