package flight

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/game"
)

var bothVariants = []Variant{VariantBaseline, VariantCompat}

func TestHoverFailsOnTenthTick(t *testing.T) {
	for _, v := range bothVariants {
		d := NewMovingData(mgl64.Vec3{0.5, 70, 0.5})
		det := NewDetector(mustEvaluator(v), &mockSink{}, nil)
		env := mockEnv{}

		if res := det.Process("steve", d, move(70, 70, true), env); res.Failed {
			t.Fatalf("%v: ground tick failed: %s", v, res.Reason)
		}
		for tick := 1; tick <= 10; tick++ {
			res := det.Process("steve", d, move(70, 70, false), env)
			if tick < 10 && res.Failed {
				t.Fatalf("%v: hover flagged early on tick %d: %s", v, tick, res.Reason)
			}
			if tick == 10 && !res.Has(RuleHover) {
				t.Fatalf("%v: expected hover violation on tick 10, got %+v", v, res)
			}
		}
	}
}

func TestHoverRollbackDependsOnVariant(t *testing.T) {
	d := MovingData{HoverTicks: 12, AirTicks: 12, GroundLocation: mgl64.Vec3{1, 2, 3}}
	s := move(70, 70, false)

	res := mustEvaluator(VariantBaseline).Evaluate(d, s, mockEnv{})
	if !res.Has(RuleHover) || res.Rollback == nil || *res.Rollback != d.GroundLocation {
		t.Fatalf("baseline hover should roll back to the ground, got %+v", res)
	}

	res = mustEvaluator(VariantCompat).Evaluate(d, s, mockEnv{})
	if !res.Has(RuleHover) || res.Rollback != nil {
		t.Fatalf("compat hover should not roll back, got %+v", res)
	}
}

func TestHoverIgnoresVehicles(t *testing.T) {
	d := MovingData{HoverTicks: 12}
	s := move(70, 70, false)
	s.Vehicle = true
	if res := mustEvaluator(VariantBaseline).Evaluate(d, s, mockEnv{}); res.Has(RuleHover) {
		t.Fatal("entities in vehicles should not be flagged for hovering")
	}
}

func ladderData(vertical float64) MovingData {
	return MovingData{
		AirTicks:         20,
		AscendingMoves:   5,
		VerticalSpeed:    vertical,
		Ascending:        true,
		Climbing:         true,
		PreviousLocation: mgl64.Vec3{0.5, 20, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 20 + vertical, 0.5},
	}
}

func TestLadderInstantTolerance(t *testing.T) {
	for _, v := range bothVariants {
		e := mustEvaluator(v)

		res := e.Evaluate(ladderData(testThresholds.AscendLadderSpeed+0.13), Sample{}, mockEnv{})
		if !res.Has(RuleLadderInstant) || !res.Has(RuleLadderAscend) {
			t.Fatalf("%v: expected both ladder rules to fail, got %+v", v, res.Violations)
		}

		res = e.Evaluate(ladderData(testThresholds.AscendLadderSpeed+0.05), Sample{}, mockEnv{})
		if res.Has(RuleLadderInstant) {
			t.Fatalf("%v: instant ladder rule should tolerate +0.05", v)
		}
		if !res.Has(RuleLadderAscend) {
			t.Fatalf("%v: expected ladder ascend to fail above the ladder speed", v)
		}

		res = e.Evaluate(ladderData(testThresholds.AscendLadderSpeed), Sample{}, mockEnv{})
		if res.Failed {
			t.Fatalf("%v: climbing at ladder speed should pass, got %s", v, res.Reason)
		}
	}
}

func TestLadderRulesNeedAirborneGate(t *testing.T) {
	e := mustEvaluator(VariantBaseline)
	fast := testThresholds.AscendLadderSpeed + 0.5

	d := ladderData(fast)
	d.AirTicks = 19
	if res := e.Evaluate(d, Sample{}, mockEnv{}); res.Has(RuleLadderAscend) {
		t.Fatal("ladder rules should not apply before 20 air ticks")
	}

	d = ladderData(fast)
	d.AscendingMoves = 4
	if res := e.Evaluate(d, Sample{}, mockEnv{}); res.Has(RuleLadderAscend) {
		t.Fatal("ladder rules should not apply to short ascents")
	}

	if res := e.Evaluate(ladderData(fast), Sample{FallDistance: 0.5}, mockEnv{}); res.Has(RuleLadderAscend) {
		t.Fatal("ladder rules should not apply while a fall is recorded")
	}
}

func TestLadderRollbackDependsOnVariant(t *testing.T) {
	d := ladderData(testThresholds.AscendLadderSpeed + 0.05)
	d.GroundLocation = mgl64.Vec3{0.5, 5, 0.5}

	res := mustEvaluator(VariantBaseline).Evaluate(d, Sample{}, mockEnv{})
	if res.Rollback == nil || *res.Rollback != d.GroundLocation {
		t.Fatalf("baseline should roll back to the ground, got %v", res.Rollback)
	}
	res = mustEvaluator(VariantCompat).Evaluate(d, Sample{}, mockEnv{})
	if res.Rollback == nil || *res.Rollback != d.PreviousLocation {
		t.Fatalf("compat should roll back to the previous location, got %v", res.Rollback)
	}
}

func TestLadderDescend(t *testing.T) {
	d := MovingData{
		AirTicks:        25,
		DescendingMoves: 6,
		Descending:      true,
		Climbing:        true,
	}
	e := mustEvaluator(VariantBaseline)

	d.VerticalSpeed, d.LastVerticalSpeed = -0.3, -0.25
	if res := e.Evaluate(d, Sample{}, mockEnv{}); !res.Has(RuleLadderDescend) {
		t.Fatalf("expected fast ladder descent to fail, got %+v", res.Violations)
	}

	d.VerticalSpeed = -0.15
	if res := e.Evaluate(d, Sample{}, mockEnv{}); res.Failed {
		t.Fatalf("descending at ladder speed should pass, got %s", res.Reason)
	}
}

func TestImpulseContinuation(t *testing.T) {
	d := MovingData{
		AscendingMoves: 8,
		Ascending:      true,
		VerticalSpeed:  0.3,
		Velocity: VelocityImpulse{
			Active:           true,
			Cause:            CauseBouncePad,
			CurrentMagnitude: 0.3,
			LastMagnitude:    0.25,
		},
	}
	for _, v := range bothVariants {
		e := mustEvaluator(v)
		if res := e.Evaluate(d, Sample{}, mockEnv{}); !res.Has(RuleImpulseContinuation) {
			t.Fatalf("%v: expected growing impulse to fail, got %+v", v, res.Violations)
		}

		decaying := d
		decaying.Velocity.CurrentMagnitude = 0.2
		if res := e.Evaluate(decaying, Sample{}, mockEnv{}); res.Failed {
			t.Fatalf("%v: decaying impulse should pass, got %s", v, res.Reason)
		}
	}
}

func TestAscentRules(t *testing.T) {
	base := MovingData{
		Ascending:       true,
		AscendingMoves:  3,
		VerticalSpeed:   0.3,
		GroundLocation:  mgl64.Vec3{0.5, 64, 0.5},
		CurrentLocation: mgl64.Vec3{0.5, 64.9, 0.5},
	}

	tests := []struct {
		name    string
		variant Variant
		mutate  func(d *MovingData, s *Sample, env *mockEnv)
		want    Rule
		fails   bool
	}{
		{"normal ascent", VariantBaseline, func(*MovingData, *Sample, *mockEnv) {}, 0, false},
		{"too long", VariantBaseline, func(d *MovingData, _ *Sample, _ *mockEnv) { d.AscendingMoves = 8 }, RuleAscendTime, true},
		{"too fast", VariantBaseline, func(d *MovingData, _ *Sample, _ *mockEnv) { d.VerticalSpeed = 0.5 }, RuleAscendSpeed, true},
		{"jump boost", VariantBaseline, func(d *MovingData, s *Sample, _ *mockEnv) { d.VerticalSpeed = 0.5; s.JumpBoost = true }, 0, false},
		{"jump boost too fast", VariantCompat, func(d *MovingData, s *Sample, _ *mockEnv) { d.VerticalSpeed = 0.9; s.JumpBoost = true }, RuleAscendSpeed, true},
		{"liquid", VariantBaseline, func(d *MovingData, _ *Sample, env *mockEnv) { d.VerticalSpeed = 0.9; env.liquid = true }, 0, false},
		{"slab", VariantBaseline, func(d *MovingData, _ *Sample, env *mockEnv) { d.VerticalSpeed = 0.9; env.slab = true }, 0, false},
		{"stair", VariantCompat, func(d *MovingData, _ *Sample, env *mockEnv) { d.VerticalSpeed = 0.9; env.stair = true }, 0, false},
		{"vehicle", VariantBaseline, func(d *MovingData, s *Sample, _ *mockEnv) { d.VerticalSpeed = 0.9; s.Vehicle = true }, 0, false},
		{"impulse", VariantBaseline, func(d *MovingData, _ *Sample, _ *mockEnv) {
			d.VerticalSpeed = 0.9
			d.Velocity = VelocityImpulse{Active: true, Cause: CauseKnockback, CurrentMagnitude: 0.9, LastMagnitude: 1}
		}, 0, false},
		{"height baseline", VariantBaseline, func(d *MovingData, _ *Sample, _ *mockEnv) { d.CurrentLocation[1] = 65.4 }, 0, false},
		{"height compat", VariantCompat, func(d *MovingData, _ *Sample, _ *mockEnv) { d.CurrentLocation[1] = 65.4 }, RuleAscendHeight, true},
		{"below height compat", VariantCompat, func(d *MovingData, _ *Sample, _ *mockEnv) { d.CurrentLocation[1] = 65.3 }, 0, false},
	}
	for _, tt := range tests {
		d, s, env := base, Sample{}, mockEnv{}
		tt.mutate(&d, &s, &env)
		res := mustEvaluator(tt.variant).Evaluate(d, s, env)
		if res.Failed != tt.fails {
			t.Errorf("%s: failed=%v, want %v (%s)", tt.name, res.Failed, tt.fails, res.Reason)
			continue
		}
		if tt.fails && !res.Has(tt.want) {
			t.Errorf("%s: expected %v, got %+v", tt.name, tt.want, res.Violations)
		}
	}
}

func TestDescentConsistency(t *testing.T) {
	d := MovingData{
		Descending:        true,
		DescendingMoves:   4,
		AirTicks:          10,
		VerticalSpeed:     -0.2,
		LastVerticalSpeed: -0.2,
		GroundLocation:    mgl64.Vec3{0.5, 64, 0.5},
		CurrentLocation:   mgl64.Vec3{0.5, 63.5, 0.5},
	}
	for _, v := range bothVariants {
		e := mustEvaluator(v)
		if res := e.Evaluate(d, Sample{}, mockEnv{}); !res.Has(RuleDescendDelta) {
			t.Fatalf("%v: flat descent should fail, got %+v", v, res.Violations)
		}
		if res := e.Evaluate(d, Sample{}, mockEnv{liquid: true}); res.Failed {
			t.Fatalf("%v: descent in liquid should pass, got %s", v, res.Reason)
		}

		accelerating := d
		accelerating.VerticalSpeed = -0.28
		if res := e.Evaluate(accelerating, Sample{}, mockEnv{}); res.Has(RuleDescendDelta) {
			t.Fatalf("%v: accelerating descent should pass the delta rule", v)
		}
	}
}

func TestGravityModel(t *testing.T) {
	expected := game.ExpectedFallSpeed(5)
	d := MovingData{
		Descending:        true,
		DescendingMoves:   5,
		AirTicks:          5,
		VerticalSpeed:     -(expected + 0.05),
		LastVerticalSpeed: -0.2,
		GroundLocation:    mgl64.Vec3{0.5, 100, 0.5},
		CurrentLocation:   mgl64.Vec3{0.5, 98, 0.5},
	}

	compat := mustEvaluator(VariantCompat)
	if res := compat.Evaluate(d, Sample{}, mockEnv{}); !res.Has(RuleDescendExpected) {
		t.Fatalf("expected deviation from the gravity model to fail, got %+v", res.Violations)
	}
	if res := mustEvaluator(VariantBaseline).Evaluate(d, Sample{}, mockEnv{}); res.Has(RuleDescendExpected) {
		t.Fatal("baseline variant should not run the gravity model")
	}

	near := d
	near.CurrentLocation[1] = 98.5
	if res := compat.Evaluate(near, Sample{}, mockEnv{}); res.Has(RuleDescendExpected) {
		t.Fatal("gravity model should not apply within 1.6 blocks of the ground")
	}

	matching := d
	matching.VerticalSpeed = -expected
	if res := compat.Evaluate(matching, Sample{}, mockEnv{}); res.Failed {
		t.Fatalf("descent matching the gravity model should pass, got %s", res.Reason)
	}
}

func TestVerticalClip(t *testing.T) {
	solid := mockEnv{solid: map[[3]int]bool{{0, 11, 0}: true}}
	for _, v := range bothVariants {
		d := NewMovingData(mgl64.Vec3{0.5, 10, 0.5})
		det := NewDetector(mustEvaluator(v), &mockSink{}, nil)
		det.Process("steve", d, move(10, 10, true), solid)
		res := det.Process("steve", d, move(10, 13, false), solid)
		if !res.Has(RuleVerticalClip) {
			t.Fatalf("%v: expected clip through solid block, got %+v", v, res.Violations)
		}

		d = NewMovingData(mgl64.Vec3{0.5, 10, 0.5})
		det.Process("steve", d, move(10, 10, true), mockEnv{})
		res = det.Process("steve", d, move(10, 13, false), mockEnv{})
		if res.Has(RuleVerticalClip) {
			t.Fatalf("%v: no clip expected without solid blocks", v)
		}
	}
}

func TestVerticalClipProbesHalfOpenRange(t *testing.T) {
	d := MovingData{
		VerticalSpeed:    3,
		PreviousLocation: mgl64.Vec3{0.5, 10, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 13, 0.5},
	}
	e := mustEvaluator(VariantBaseline)
	for y, want := range map[int]bool{9: false, 10: true, 12: true, 13: false} {
		env := mockEnv{solid: map[[3]int]bool{{0, y, 0}: true}}
		if got := e.Evaluate(d, Sample{}, env).Has(RuleVerticalClip); got != want {
			t.Errorf("solid block at y=%d: clip=%v, want %v", y, got, want)
		}
	}

	slow := d
	slow.VerticalSpeed = 0.99
	if e.Evaluate(slow, Sample{}, mockEnv{solid: map[[3]int]bool{{0, 11, 0}: true}}).Has(RuleVerticalClip) {
		t.Error("clip rule should only apply above 0.99 blocks per tick")
	}
}

func TestClipRollback(t *testing.T) {
	d := MovingData{
		VerticalSpeed:    3,
		GroundLocation:   mgl64.Vec3{0.5, 2, 0.5},
		PreviousLocation: mgl64.Vec3{0.5, 10, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 13, 0.5},
	}
	env := mockEnv{solid: map[[3]int]bool{{0, 11, 0}: true}}

	res := mustEvaluator(VariantBaseline).Evaluate(d, Sample{}, env)
	if res.Rollback == nil || *res.Rollback != d.PreviousLocation {
		t.Fatalf("baseline clip should roll back to the previous location, got %v", res.Rollback)
	}

	res = mustEvaluator(VariantCompat).Evaluate(d, Sample{}, env)
	if !res.Has(RuleVerticalClip) {
		t.Fatal("expected compat clip violation")
	}
	for _, v := range res.Violations {
		if v.Rule == RuleVerticalClip && v.Rollback != nil {
			t.Fatal("compat clip should not override the rollback target")
		}
	}
}

func TestReasonIsLastWriter(t *testing.T) {
	d := MovingData{
		Ascending:        true,
		AscendingMoves:   9,
		VerticalSpeed:    3,
		GroundLocation:   mgl64.Vec3{0.5, 10, 0.5},
		PreviousLocation: mgl64.Vec3{0.5, 10, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 13, 0.5},
	}
	env := mockEnv{solid: map[[3]int]bool{{0, 12, 0}: true}}
	for _, v := range bothVariants {
		res := mustEvaluator(v).Evaluate(d, Sample{}, env)
		if len(res.Violations) < 3 {
			t.Fatalf("%v: expected several violations, got %+v", v, res.Violations)
		}
		last := res.Violations[len(res.Violations)-1]
		if last.Rule != RuleVerticalClip || res.Reason != last.Message() {
			t.Fatalf("%v: reason should come from the last violation, got %q", v, res.Reason)
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	d := MovingData{
		Ascending:        true,
		AscendingMoves:   9,
		AirTicks:         9,
		VerticalSpeed:    3,
		GroundLocation:   mgl64.Vec3{0.5, 10, 0.5},
		PreviousLocation: mgl64.Vec3{0.5, 10, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 13, 0.5},
	}
	env := mockEnv{solid: map[[3]int]bool{{0, 11, 0}: true}}
	s := move(10, 13, false)
	for _, v := range bothVariants {
		e := mustEvaluator(v)
		before := d
		a, b := e.Evaluate(d, s, env), e.Evaluate(d, s, env)
		if d != before {
			t.Fatalf("%v: Evaluate modified the ledger", v)
		}
		if a.Failed != b.Failed || a.Reason != b.Reason || len(a.Violations) != len(b.Violations) {
			t.Fatalf("%v: results differ: %+v vs %+v", v, a, b)
		}
		if (a.Rollback == nil) != (b.Rollback == nil) || (a.Rollback != nil && *a.Rollback != *b.Rollback) {
			t.Fatalf("%v: rollbacks differ: %v vs %v", v, a.Rollback, b.Rollback)
		}
		for i := range a.Violations {
			if a.Violations[i].Message() != b.Violations[i].Message() {
				t.Fatalf("%v: violation %d differs: %q vs %q", v, i, a.Violations[i].Message(), b.Violations[i].Message())
			}
		}
	}
}

func TestNaturalJumpPasses(t *testing.T) {
	for _, v := range bothVariants {
		d := NewMovingData(mgl64.Vec3{0.5, 0, 0.5})
		det := NewDetector(mustEvaluator(v), &mockSink{}, nil)
		env := mockEnv{}

		det.Process("steve", d, move(0, 0, true), env)
		y, vy := 0.0, game.DefaultJumpHeight
		landed := false
		for tick := 0; tick < 40 && !landed; tick++ {
			next := y + vy
			if next <= 0 {
				next, landed = 0, true
			}
			if res := det.Process("steve", d, move(y, next, landed), env); res.Failed {
				t.Fatalf("%v: natural jump failed on tick %d: %s", v, tick, res.Reason)
			}
			y = next
			vy = (vy - game.NormalGravity) * game.NormalGravityMultiplier
		}
		if !landed {
			t.Fatalf("%v: jump never landed", v)
		}
	}
}

func TestFreeFallPasses(t *testing.T) {
	for _, v := range bothVariants {
		d := NewMovingData(mgl64.Vec3{0.5, 100, 0.5})
		det := NewDetector(mustEvaluator(v), &mockSink{}, nil)
		env := mockEnv{}

		det.Process("steve", d, move(100, 100, true), env)
		y, vy := 100.0, 0.0
		for tick := 0; tick < 30; tick++ {
			vy = (vy - game.NormalGravity) * game.NormalGravityMultiplier
			if res := det.Process("steve", d, move(y, y+vy, false), env); res.Failed {
				t.Fatalf("%v: free fall failed on tick %d: %s", v, tick, res.Reason)
			}
			y += vy
		}
	}
}

func TestGlideFails(t *testing.T) {
	d := NewMovingData(mgl64.Vec3{0.5, 100, 0.5})
	det := NewDetector(mustEvaluator(VariantCompat), &mockSink{}, nil)
	env := mockEnv{}

	det.Process("steve", d, move(100, 100, true), env)
	y := 100.0
	var res Result
	for tick := 0; tick < 25; tick++ {
		res = det.Process("steve", d, move(y, y-0.1, false), env)
		y -= 0.1
	}
	if !res.Has(RuleDescendExpected) {
		t.Fatalf("expected a slow glide to break the gravity model, got %+v", res.Violations)
	}
}

func TestBounceDoesNotFlagAscent(t *testing.T) {
	d := NewMovingData(mgl64.Vec3{0.5, 0, 0.5})
	det := NewDetector(mustEvaluator(VariantBaseline), &mockSink{}, nil)

	det.Process("steve", d, move(0.5, 0, true), mockEnv{surface: SurfaceSlime})
	if !d.Velocity.Active {
		t.Fatal("expected a bounce impulse after landing on slime")
	}

	// A bounce launches the entity faster than it could ever jump.
	y, vy := 0.0, 1.2
	for vy > 0 {
		if res := det.Process("steve", d, move(y, y+vy, false), mockEnv{}); res.Failed {
			t.Fatalf("bounce ascent failed: %s", res.Reason)
		}
		y += vy
		vy = (vy - game.NormalGravity) * game.NormalGravityMultiplier
	}
	det.Process("steve", d, move(y, y+vy, false), mockEnv{})
	if d.Velocity.Active {
		t.Fatal("expected the impulse to be consumed once descending")
	}
}

func TestLastFailedRuleSetsReason(t *testing.T) {
	d := MovingData{
		Ascending:        true,
		AscendingMoves:   testThresholds.MaxAscendTicks + 1,
		VerticalSpeed:    0.5,
		GroundLocation:   mgl64.Vec3{0.5, 20, 0.5},
		PreviousLocation: mgl64.Vec3{0.5, 20, 0.5},
		CurrentLocation:  mgl64.Vec3{0.5, 20.5, 0.5},
	}
	for _, v := range bothVariants {
		res := mustEvaluator(v).Evaluate(d, Sample{}, mockEnv{})
		if len(res.Violations) != 2 || res.Violations[0].Rule != RuleAscendTime || res.Violations[1].Rule != RuleAscendSpeed {
			t.Fatalf("%v: expected ascend_time then ascend_speed, got %+v", v, res.Violations)
		}
		if res.Reason != res.Violations[1].Message() {
			t.Fatalf("%v: expected the reason of the last rule, got %q", v, res.Reason)
		}
		if last := res.Violations[1].Rollback; last != nil && (res.Rollback == nil || *res.Rollback != *last) {
			t.Fatalf("%v: expected the rollback of the last rule, got %v", v, res.Rollback)
		}
	}
}
