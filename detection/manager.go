package detection

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/game"
	"github.com/oomph-ac/ofly/utils"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// DefaultPunishmentMessage is the message given to entities removed for a punishable detection.
const DefaultPunishmentMessage = "Cheating Detected: we've identified suspicious movement and removed you from the server."

// Manager keeps the violation accounting of a single detection for every entity. It implements
// flight.ViolationSink.
type Manager struct {
	det      Detection
	defaults Metadata
	log      *logrus.Logger

	handler    Handler
	rollbacker Rollbacker
	punisher   Punisher
	listener   Listener

	mu       deadlock.RWMutex
	entities map[string]*entry
}

type entry struct {
	deadlock.Mutex

	meta     Metadata
	tick     int64
	punished bool
}

// NewManager returns a Manager reporting violations for d. Every entity starts with a copy of meta.
func NewManager(d Detection, meta Metadata, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Manager{
		det:        d,
		defaults:   meta,
		log:        log,
		handler:    NopHandler{},
		rollbacker: NopHandler{},
		punisher:   NopHandler{},
		listener:   NopHandler{},
		entities:   make(map[string]*entry),
	}
}

// Handle sets the Handler of the Manager. Passing nil resets it.
func (m *Manager) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	m.handler = h
}

// HandleRollbacks sets the Rollbacker the Manager forwards rollback requests to.
func (m *Manager) HandleRollbacks(r Rollbacker) {
	if r == nil {
		r = NopHandler{}
	}
	m.rollbacker = r
}

// HandlePunishments sets the Punisher used once an entity reaches the maximum violations.
func (m *Manager) HandlePunishments(p Punisher) {
	if p == nil {
		p = NopHandler{}
	}
	m.punisher = p
}

// Listen sets the Listener that receives the events of the Manager.
func (m *Manager) Listen(l Listener) {
	if l == nil {
		l = NopHandler{}
	}
	m.listener = l
}

// Detection ...
func (m *Manager) Detection() Detection {
	return m.det
}

func (m *Manager) entry(entity string) *entry {
	m.mu.RLock()
	e, ok := m.entities[entity]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entities[entity]; !ok {
		e = &entry{meta: m.defaults}
		m.entities[entity] = e
	}
	return e
}

// Tick advances the tick of the entity. Violations are weighted against the ticks passed since the last flag.
func (m *Manager) Tick(entity string) {
	e := m.entry(entity)
	e.Lock()
	e.tick++
	e.Unlock()
}

// Pass lowers the buffer of the entity by sub.
func (m *Manager) Pass(entity string, sub float64) {
	e := m.entry(entity)
	e.Lock()
	e.meta.pass(sub)
	e.Unlock()
}

// Metadata returns a copy of the metadata of the entity, if it is known.
func (m *Manager) Metadata(entity string) (Metadata, bool) {
	m.mu.RLock()
	e, ok := m.entities[entity]
	m.mu.RUnlock()
	if !ok {
		return Metadata{}, false
	}
	e.Lock()
	defer e.Unlock()
	return e.meta, true
}

// Remove forgets the entity.
func (m *Manager) Remove(entity string) {
	m.mu.Lock()
	delete(m.entities, entity)
	m.mu.Unlock()
}

// Len returns the amount of entities known to the Manager.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// RecordViolation records a violation described by message, which is the rule name optionally followed by
// its data. It returns true if the violation was flagged, meaning the buffer was full and the Handler did not
// cancel the flag.
func (m *Manager) RecordViolation(entity, message string) bool {
	extraData := orderedmap.NewOrderedMap[string, any]()
	rule, info, _ := strings.Cut(message, " ")
	extraData.Set("rule", rule)
	if info != "" {
		extraData.Set("info", info)
	}

	e := m.entry(entity)
	e.Lock()
	if !e.meta.fail() {
		e.Unlock()
		return false
	}
	oldVl := e.meta.Violations
	e.meta.addViolation(e.tick)
	e.Unlock()

	ctx := &Context{}
	m.handler.HandleFlag(ctx, entity, m.det, extraData)

	e.Lock()
	if ctx.Cancelled() {
		e.meta.Violations = oldVl
		e.Unlock()
		return false
	}
	e.meta.LastFlagged = e.tick
	meta := e.meta
	e.Unlock()

	if meta.Violations >= 0.5 {
		extraDataString := utils.OrderedMapToString(*extraData)
		if !meta.Mitigation {
			m.listener.HandleEvent(&FlaggedEvent{
				Entity:     entity,
				Detection:  m.det.Type(),
				Type:       m.det.SubType(),
				Violations: meta.Violations,
				ExtraData:  extraDataString,
			})
			m.log.Warnf("%s flagged %s (%s) <x%f> %s", entity, m.det.Type(), m.det.SubType(), game.Round64(meta.Violations, 2), extraDataString)
		} else {
			m.listener.HandleEvent(&MitigationEvent{
				Entity:    entity,
				Type:      m.det.Type(),
				SubType:   m.det.SubType(),
				ExtraData: extraDataString,
				Count:     meta.Violations,
			})
			m.log.Warnf("%s was mitigated for %s (%s) <%.2f> %s", entity, m.det.Type(), m.det.SubType(), meta.Violations, extraDataString)
		}
	}

	if m.det.Punishable() && meta.Violations >= meta.MaxViolations {
		m.punish(entity, e)
	}
	return true
}

func (m *Manager) punish(entity string, e *entry) {
	e.Lock()
	punished := e.punished
	e.Unlock()
	if punished {
		return
	}

	ctx := &Context{}
	message := DefaultPunishmentMessage
	m.handler.HandlePunishment(ctx, entity, m.det, &message)
	if ctx.Cancelled() {
		return
	}

	e.Lock()
	e.punished = true
	e.Unlock()

	m.log.Warnf("%s was removed from the server for usage of third-party modifications (%s-%s).", entity, m.det.Type(), m.det.SubType())
	m.listener.HandleEvent(&PunishedEvent{Entity: entity, Type: m.det.Type(), SubType: m.det.SubType(), Message: message})
	m.punisher.Punish(entity, message)
}

// RequestRollback forwards the rollback to the Rollbacker of the Manager.
func (m *Manager) RequestRollback(entity string, pos mgl64.Vec3) {
	m.log.Debugf("rolling back %s to %v", entity, game.RoundVec64(pos, 4))
	m.rollbacker.Rollback(entity, pos)
}
