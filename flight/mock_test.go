package flight

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

type mockEnv struct {
	solid map[[3]int]bool

	slab, stair, liquid, climbable bool
	surface                        Surface
}

func (m mockEnv) OnSlab(mgl64.Vec3) bool { return m.slab }
func (m mockEnv) OnStair(mgl64.Vec3) bool { return m.stair }
func (m mockEnv) InLiquid(mgl64.Vec3) bool { return m.liquid }
func (m mockEnv) Climbable(mgl64.Vec3) bool { return m.climbable }
func (m mockEnv) Surface(mgl64.Vec3) Surface { return m.surface }
func (m mockEnv) Solid(x, y, z int) bool { return m.solid[[3]int{x, y, z}] }

type mockSink struct {
	cancel    bool
	messages  []string
	rollbacks []mgl64.Vec3
}

func (s *mockSink) RecordViolation(_, message string) bool {
	s.messages = append(s.messages, message)
	return s.cancel
}

func (s *mockSink) RequestRollback(_ string, pos mgl64.Vec3) {
	s.rollbacks = append(s.rollbacks, pos)
}

type mockProvider struct {
	doubles map[string]float64
	ints    map[string]int
}

func (p mockProvider) Double(kind, key string) (float64, error) {
	v, ok := p.doubles[kind+"."+key]
	if !ok {
		return 0, errors.New("missing " + key)
	}
	return v, nil
}

func (p mockProvider) Int(kind, key string) (int, error) {
	v, ok := p.ints[kind+"."+key]
	if !ok {
		return 0, errors.New("missing " + key)
	}
	return v, nil
}

var testThresholds = Thresholds{
	AscendLadderSpeed:  0.1176,
	DescendLadderSpeed: 0.15,
	MaxJumpHeight:      0.42,
	MaxAscendTicks:     7,
}

func mustEvaluator(v Variant) *Evaluator {
	e, err := NewEvaluator(v, testThresholds)
	if err != nil {
		panic(err)
	}
	return e
}

// move returns a sample moving from one Y level to another at a fixed X/Z.
func move(fromY, toY float64, onGround bool) Sample {
	return Sample{
		From:     mgl64.Vec3{0.5, fromY, 0.5},
		To:       mgl64.Vec3{0.5, toY, 0.5},
		OnGround: onGround,
	}
}
