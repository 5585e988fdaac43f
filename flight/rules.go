package flight

import (
	"math"

	"github.com/oomph-ac/ofly/game"
)

const (
	// hoverTicksLimit is the amount of ticks an entity may stay in the air without moving vertically.
	hoverTicksLimit = 10
	// instantLadderTolerance is added to the ladder speed for the check against entering a ladder
	// abruptly after staying in the air.
	instantLadderTolerance = 0.12
	// clipMinSpeed is the vertical speed above which a movement is checked for passing through blocks.
	clipMinSpeed = 0.99
)

type rule func(c *ruleContext, res *Result)

var rules = []rule{
	hoverRule,
	ladderRule,
	impulseRule,
	ascentRule,
	descentRule,
	clipRule,
}

func hoverRule(c *ruleContext, res *Result) {
	d := c.data
	if d.WasOnGround || d.OnGround || c.s.Vehicle {
		return
	}
	if d.VerticalSpeed != 0 || d.LastVerticalSpeed != 0 {
		return
	}
	if d.HoverTicks >= hoverTicksLimit {
		res.fail(RuleHover, c.rollback(RuleHover), "hoverTicks", d.HoverTicks, "airTicks", d.AirTicks)
	}
}

func ladderRule(c *ruleContext, res *Result) {
	d := c.data
	if !d.Climbing || !c.airborne {
		return
	}

	maxAscend := c.e.thresholds.AscendLadderSpeed
	if d.Ascending {
		if d.VerticalSpeed > maxAscend {
			res.fail(RuleLadderAscend, c.rollback(RuleLadderAscend),
				"vertical", game.Round64(d.VerticalSpeed, 4), "max", maxAscend)
		}
		if d.AirTicks >= 20 && d.VerticalSpeed > maxAscend+instantLadderTolerance {
			res.fail(RuleLadderInstant, c.rollback(RuleLadderInstant),
				"vertical", game.Round64(d.VerticalSpeed, 4), "airTicks", d.AirTicks, "max", maxAscend+instantLadderTolerance)
		}
	}

	if d.Descending {
		maxDescend := c.e.thresholds.DescendLadderSpeed
		if math.Abs(d.VerticalSpeed) > maxDescend {
			res.fail(RuleLadderDescend, c.rollback(RuleLadderDescend),
				"vertical", game.Round64(d.VerticalSpeed, 4), "max", maxDescend)
		}
	}
}

func impulseRule(c *ruleContext, res *Result) {
	d := c.data
	if d.OnGround || !d.Velocity.Active {
		return
	}
	v := d.Velocity
	if IsSuspiciousContinuation(v.CurrentMagnitude, v.LastMagnitude, d.AscendingMoves, c.e.thresholds.MaxAscendTicks) {
		res.fail(RuleImpulseContinuation, c.rollback(RuleImpulseContinuation),
			"cause", v.Cause, "velocity", game.Round64(v.CurrentMagnitude, 4), "last", game.Round64(v.LastMagnitude, 4),
			"moves", d.AscendingMoves)
	}
}

func ascentRule(c *ruleContext, res *Result) {
	d := c.data
	if !c.actual || !d.Ascending {
		return
	}
	t, p := c.e.thresholds, c.e.params

	if p.AscentHeightLimit > 0 {
		if dist := game.VerticalDistance(d.GroundLocation, d.CurrentLocation); dist >= p.AscentHeightLimit {
			res.fail(RuleAscendHeight, c.rollback(RuleAscendHeight),
				"distance", game.Round64(dist, 4), "max", p.AscentHeightLimit)
		}
	}
	if d.AscendingMoves > t.MaxAscendTicks {
		res.fail(RuleAscendTime, c.rollback(RuleAscendTime), "moves", d.AscendingMoves, "max", t.MaxAscendTicks)
	}
	if maxJump := t.MaxJump(c.s.JumpBoost); d.VerticalSpeed > maxJump {
		res.fail(RuleAscendSpeed, c.rollback(RuleAscendSpeed),
			"vertical", game.Round64(d.VerticalSpeed, 4), "max", maxJump)
	}
}

func descentRule(c *ruleContext, res *Result) {
	d := c.data
	if !c.actual || !d.Descending {
		return
	}

	// Falling entities accelerate every tick, so the speed never stays exactly the same.
	if math.Abs(d.VerticalSpeed-d.LastVerticalSpeed) == 0 {
		res.fail(RuleDescendDelta, c.rollback(RuleDescendDelta), "vertical", game.Round64(d.VerticalSpeed, 4))
	}

	p := c.e.params
	if !p.GravityModel {
		return
	}
	expected := game.ExpectedFallSpeed(int(d.AirTicks))
	diff := math.Abs(expected - math.Abs(d.VerticalSpeed))
	if dist := game.VerticalDistance(d.GroundLocation, d.CurrentLocation); dist > p.GravityMinDistance && diff > p.GravityTolerance {
		res.fail(RuleDescendExpected, c.rollback(RuleDescendExpected),
			"vertical", game.Round64(d.VerticalSpeed, 4), "expected", game.Round64(-expected, 4),
			"airTicks", d.AirTicks, "distance", game.Round64(dist, 4))
	}
}

func clipRule(c *ruleContext, res *Result) {
	d := c.data
	if d.VerticalSpeed <= clipMinSpeed {
		return
	}
	from, to := d.PreviousLocation, d.CurrentLocation
	fromY, toY := game.BlockCoord(from.Y()), game.BlockCoord(to.Y())
	x, z := game.BlockCoord(to.X()), game.BlockCoord(to.Z())
	for y := min(fromY, toY); y < max(fromY, toY); y++ {
		if c.env.Solid(x, y, z) {
			res.fail(RuleVerticalClip, c.rollback(RuleVerticalClip), "blockY", y, "fromY", fromY, "toY", toY)
			return
		}
	}
}
