package session

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/detection"
	"github.com/oomph-ac/ofly/flight"
	"github.com/oomph-ac/ofly/settings"
	"github.com/oomph-ac/ofly/world"
)

type mockHost struct {
	mu        sync.Mutex
	rollbacks []mgl64.Vec3
}

func (h *mockHost) Rollback(_ string, pos mgl64.Vec3) {
	h.mu.Lock()
	h.rollbacks = append(h.rollbacks, pos)
	h.mu.Unlock()
}

func (h *mockHost) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rollbacks)
}

// floorProbe returns a probe over a stone floor whose top is at y=64.
func floorProbe() world.Probe {
	w := world.New(nil)
	for x := -8; x <= 8; x++ {
		for z := -8; z <= 8; z++ {
			w.SetBlock(cube.Pos{x, 63, z}, block.Stone{})
		}
	}
	return world.NewProbe(w)
}

func newTestPipeline(v flight.Variant) (*flight.Detector, *detection.Manager, *mockHost) {
	eval, err := flight.NewEvaluatorFromProvider(v, settings.Default())
	if err != nil {
		panic(err)
	}
	m := detection.NewManager(detection.NewFly(v.Params().SubType, false), detection.Metadata{MaxViolations: 100, MaxBuffer: 1}, nil)
	host := &mockHost{}
	m.HandleRollbacks(host)
	return flight.NewDetector(eval, m, nil), m, host
}

func newTestSession(v flight.Variant) (*Session, *mockHost) {
	det, m, host := newTestPipeline(v)
	return New("steve", 1, det, m, floorProbe(), nil), host
}
