package session

import (
	"time"

	"github.com/df-mc/dragonfly/server/entity/effect"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Effects keeps track of the lasting effects of an entity, keyed by their network ID.
type Effects struct {
	effects map[int32]effect.Effect
}

// NewEffects returns an empty Effects.
func NewEffects() *Effects {
	return &Effects{effects: make(map[int32]effect.Effect)}
}

// Get returns the effect with the network ID passed.
func (ec *Effects) Get(effectID int32) (effect.Effect, bool) {
	e, ok := ec.effects[effectID]
	return e, ok
}

// Has ...
func (ec *Effects) Has(effectID int32) bool {
	_, ok := ec.effects[effectID]
	return ok
}

// Add adds an effect. An effect already present at a higher level is kept.
func (ec *Effects) Add(effectID int32, e effect.Effect) {
	if current, ok := ec.effects[effectID]; ok && current.Level() > e.Level() {
		return
	}
	ec.effects[effectID] = e
}

// Remove ...
func (ec *Effects) Remove(effectID int32) {
	delete(ec.effects, effectID)
}

// Tick ticks all the effects, and removes those effects in which the duration has expired.
func (ec *Effects) Tick() {
	for id, e := range ec.effects {
		e = e.TickDuration()
		if e.Duration() <= 0 {
			delete(ec.effects, id)
		} else {
			ec.effects[id] = e
		}
	}
}

// HandleMobEffect applies a MobEffect packet. Effects that are not lasting are ignored.
func (ec *Effects) HandleMobEffect(pk *packet.MobEffect) {
	switch pk.Operation {
	case packet.MobEffectAdd, packet.MobEffectModify:
		t, ok := effect.ByID(int(pk.EffectType))
		if !ok {
			return
		}
		e, ok := t.(effect.LastingType)
		if !ok {
			return
		}
		eff := effect.New(e, int(pk.Amplifier)+1, time.Duration(pk.Duration*50)*time.Millisecond)
		if pk.Operation == packet.MobEffectModify {
			ec.effects[pk.EffectType] = eff
			return
		}
		ec.Add(pk.EffectType, eff)
	case packet.MobEffectRemove:
		ec.Remove(pk.EffectType)
	}
}
