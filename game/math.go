package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// Float64ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float64ApproxEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-5
}

// Vec32To64 converts a 32-bit vector to a 64-bit one.
func Vec32To64(vec3 mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(vec3[0]), float64(vec3[1]), float64(vec3[2])}
}

// RoundVec64 will round a 64-bit vector to a given precision.
func RoundVec64(v mgl64.Vec3, p int) mgl64.Vec3 {
	return mgl64.Vec3{Round64(v.X(), p), Round64(v.Y(), p), Round64(v.Z(), p)}
}

// VerticalDistance returns the absolute distance between two positions on the Y axis.
func VerticalDistance(a, b mgl64.Vec3) float64 {
	return math.Abs(a.Y() - b.Y())
}

// BlockCoord returns the integer block coordinate that contains the given value.
func BlockCoord(v float64) int {
	return int(math.Floor(v))
}

// ExpectedFallSpeed returns the magnitude of the vertical speed an entity reaches after falling freely for
// the given amount of ticks, starting from rest. The result is never negative, so it must be compared against
// the absolute value of a downward (negative) vertical speed.
func ExpectedFallSpeed(airTicks int) float64 {
	return math.Abs((math.Pow(NormalGravityMultiplier, float64(airTicks)) - 1) * TerminalFallSpeed)
}
