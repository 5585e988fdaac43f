package session

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/detection"
	"github.com/oomph-ac/ofly/flight"
	"github.com/oomph-ac/ofly/game"
	"github.com/oomph-ac/ofly/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// passBuffer is the amount the detection buffer is lowered by for every movement that passes all rules.
const passBuffer = 0.1

// Session tracks the vertical movement of a single entity. It turns the packets of the entity into movement
// samples and runs them through a flight.Detector.
type Session struct {
	name      string
	runtimeID uint64

	detector *flight.Detector
	manager  *detection.Manager
	probe    world.Probe
	log      *logrus.Logger

	deadlock.Mutex
	data         *flight.MovingData
	effects      *Effects
	fallDistance float64
	riding       bool
	last         flight.Result
}

// New returns a Session for the entity with the name and runtime ID passed. Violations are reported to the
// manager, which must be the sink of the detector.
func New(name string, runtimeID uint64, detector *flight.Detector, manager *detection.Manager, probe world.Probe, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Session{
		name:      name,
		runtimeID: runtimeID,
		detector:  detector,
		manager:   manager,
		probe:     probe,
		log:       log,
		effects:   NewEffects(),
	}
}

// Name ...
func (s *Session) Name() string {
	return s.name
}

// RuntimeID ...
func (s *Session) RuntimeID() uint64 {
	return s.runtimeID
}

// Effects returns the effects of the entity. It must only be used while holding the lock of the Session.
func (s *Session) Effects() *Effects {
	return s.effects
}

// Data returns a copy of the movement ledger of the entity and false if no position was received yet.
func (s *Session) Data() (flight.MovingData, bool) {
	s.Lock()
	defer s.Unlock()
	if s.data == nil {
		return flight.MovingData{}, false
	}
	return s.data.Snapshot(), true
}

// LastResult returns the result of the last evaluated movement.
func (s *Session) LastResult() flight.Result {
	s.Lock()
	defer s.Unlock()
	return s.last
}

// SetRiding sets whether the entity is riding another entity.
func (s *Session) SetRiding(riding bool) {
	s.Lock()
	s.riding = riding
	s.Unlock()
}

// HandleClientPacket handles a packet sent by the entity. The context is cancelled if the packet carried a
// movement that should not be accepted.
func (s *Session) HandleClientPacket(ctx *PacketContext) {
	input, ok := ctx.Packet().(*packet.PlayerAuthInput)
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()
	s.effects.Tick()

	// The position of PlayerAuthInput is the position of the eyes.
	pos := game.Vec32To64(input.Position).Sub(mgl64.Vec3{0, game.DefaultPlayerHeightOffset})
	if s.move(pos).Cancel {
		ctx.Cancel()
	}
}

// HandleServerPacket handles a packet sent to the entity.
func (s *Session) HandleServerPacket(ctx *PacketContext) {
	switch pk := ctx.Packet().(type) {
	case *packet.MobEffect:
		if pk.EntityRuntimeID != s.runtimeID {
			return
		}
		s.Lock()
		s.effects.HandleMobEffect(pk)
		s.Unlock()
	case *packet.SetActorMotion:
		if pk.EntityRuntimeID != s.runtimeID || pk.Velocity.Y() <= 0 {
			return
		}
		s.Lock()
		s.ApplyKnockback(float64(pk.Velocity.Y()))
		s.Unlock()
	}
}

// ApplyKnockback applies an upward impulse to the entity. It must only be used while holding the lock of the
// Session.
func (s *Session) ApplyKnockback(magnitude float64) {
	if s.data == nil {
		return
	}
	s.data.Velocity.Apply(flight.CauseKnockback, magnitude)
	s.log.Debugf("%s received knockback (vertical=%.4f)", s.name, magnitude)
}

// Move processes a movement of the feet of the entity to pos.
func (s *Session) Move(pos mgl64.Vec3) flight.Result {
	s.Lock()
	defer s.Unlock()
	return s.move(pos)
}

func (s *Session) move(pos mgl64.Vec3) flight.Result {
	if s.data == nil {
		s.data = flight.NewMovingData(pos)
		s.data.OnGround = s.probe.Supported(pos)
		s.data.WasOnGround = s.data.OnGround
		return flight.Result{}
	}

	from := s.data.CurrentLocation
	onGround := s.probe.Supported(pos)
	switch {
	case onGround || s.probe.Climbable(pos) || s.probe.InLiquid(pos):
		s.fallDistance = 0
	case pos.Y() < from.Y():
		s.fallDistance += from.Y() - pos.Y()
	}

	sample := flight.Sample{
		From:         from,
		To:           pos,
		OnGround:     onGround,
		Vehicle:      s.riding,
		JumpBoost:    s.effects.Has(packet.EffectJumpBoost),
		FallDistance: s.fallDistance,
	}

	s.manager.Tick(s.name)
	res := s.detector.Process(s.name, s.data, sample, s.probe)
	s.last = res
	if !res.Failed {
		s.manager.Pass(s.name, passBuffer)
		return res
	}

	if res.Cancel && res.Rollback != nil {
		if !s.detector.Evaluator().Params().InlineRollback {
			s.manager.RequestRollback(s.name, *res.Rollback)
		}
		s.teleport(*res.Rollback)
	}
	return res
}

// teleport moves the ledger to pos, which the host is expected to move the entity to.
func (s *Session) teleport(pos mgl64.Vec3) {
	s.data.CurrentLocation = pos
	s.fallDistance = 0
}
