package game

const (
	DefaultJumpHeight       = 0.42
	NormalGravity           = 0.08
	NormalGravityMultiplier = 0.98
	// TerminalFallSpeed is the speed a falling entity converges to: NormalGravity * NormalGravityMultiplier / (1 - NormalGravityMultiplier).
	TerminalFallSpeed = 3.92

	DefaultPlayerHeightOffset = 1.62
	DefaultPlayerWidth        = 0.6
	DefaultPlayerHeight       = 1.8
)
