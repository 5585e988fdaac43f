package session

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/detection"
	"github.com/oomph-ac/ofly/flight"
	"github.com/oomph-ac/ofly/worker"
	"github.com/oomph-ac/ofly/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Registry owns the sessions of every tracked entity. The work of an entity is always run on the same worker
// lane, so the movements of one entity are processed in order while different entities run in parallel.
type Registry struct {
	detector *flight.Detector
	manager  *detection.Manager
	pool     *worker.Pool
	probe    world.Probe
	log      *logrus.Logger

	mu       deadlock.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns a Registry creating sessions that read blocks through probe.
func NewRegistry(detector *flight.Detector, manager *detection.Manager, pool *worker.Pool, probe world.Probe, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Registry{
		detector: detector,
		manager:  manager,
		pool:     pool,
		probe:    probe,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session of the entity, creating it with the runtime ID passed if it does not exist yet.
// New sessions read blocks through the probe of the Registry.
func (r *Registry) Open(name string, runtimeID uint64) *Session {
	return r.OpenIn(name, runtimeID, r.probe)
}

// OpenIn works like Open, but new sessions read blocks through the probe passed.
func (r *Registry) OpenIn(name string, runtimeID uint64, probe world.Probe) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[name]; ok {
		return s
	}
	s := New(name, runtimeID, r.detector, r.manager, probe, r.log)
	r.sessions[name] = s
	r.log.Debugf("opened session for %s (runtime ID %d)", name, runtimeID)
	return s
}

// Session returns the session of the entity, if it exists.
func (r *Registry) Session(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Len returns the amount of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// HandleClientPacket queues a packet sent by the entity. done, if not nil, is called on the lane of the entity
// with whether the packet should be dropped.
func (r *Registry) HandleClientPacket(name string, pk packet.Packet, done func(cancel bool)) error {
	s := r.Open(name, 0)
	return r.pool.Submit(name, func() {
		ctx := NewPacketContext(pk)
		s.HandleClientPacket(ctx)
		if done != nil {
			done(ctx.Cancelled())
		}
	})
}

// HandleServerPacket queues a packet sent to the entity. Packets for entities without a session are ignored.
func (r *Registry) HandleServerPacket(name string, pk packet.Packet) error {
	s, ok := r.Session(name)
	if !ok {
		return nil
	}
	return r.pool.Submit(name, func() {
		s.HandleServerPacket(NewPacketContext(pk))
	})
}

// Move queues a movement of the feet of the entity to pos, creating the session on the first movement.
func (r *Registry) Move(name string, pos mgl64.Vec3, done func(flight.Result)) error {
	s := r.Open(name, 0)
	return r.pool.Submit(name, func() {
		res := s.Move(pos)
		if done != nil {
			done(res)
		}
	})
}

// Do queues f to run on the lane of the entity with its session.
func (r *Registry) Do(name string, f func(s *Session)) error {
	s, ok := r.Session(name)
	if !ok {
		return nil
	}
	return r.pool.Submit(name, func() {
		f(s)
	})
}

// Close removes the session of the entity once all work queued for it has run.
func (r *Registry) Close(name string) error {
	return r.pool.Submit(name, func() {
		r.mu.Lock()
		delete(r.sessions, name)
		r.mu.Unlock()
		r.manager.Remove(name)
		r.log.Debugf("closed session for %s", name)
	})
}
