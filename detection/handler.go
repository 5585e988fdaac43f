package detection

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Context is passed to Handler methods. Cancelling it stops the action the handler was notified of.
type Context struct {
	cancel bool
}

// Cancel cancels the action.
func (ctx *Context) Cancel() {
	ctx.cancel = true
}

// Cancelled returns true if the action was cancelled.
func (ctx *Context) Cancelled() bool {
	return ctx.cancel
}

// Handler handles the flags and punishments of a Manager.
type Handler interface {
	// HandleFlag is called when an entity is about to be flagged for a detection. The extra data may be
	// modified before it is logged.
	HandleFlag(ctx *Context, entity string, d Detection, extraData *orderedmap.OrderedMap[string, any])
	// HandlePunishment is called when an entity reached the maximum violations of a punishable detection. The
	// message is the reason given to the entity and may be modified.
	HandlePunishment(ctx *Context, entity string, d Detection, message *string)
}

// Rollbacker moves entities back to a previous position.
type Rollbacker interface {
	Rollback(entity string, pos mgl64.Vec3)
}

// Punisher removes entities from the host.
type Punisher interface {
	Punish(entity, message string)
}

// Listener receives the events of a Manager.
type Listener interface {
	HandleEvent(e Event)
}

// NopHandler implements Handler, Rollbacker, Punisher and Listener and does nothing.
type NopHandler struct{}

func (NopHandler) HandleFlag(*Context, string, Detection, *orderedmap.OrderedMap[string, any]) {}
func (NopHandler) HandlePunishment(*Context, string, Detection, *string) {}
func (NopHandler) Rollback(string, mgl64.Vec3) {}
func (NopHandler) Punish(string, string) {}
func (NopHandler) HandleEvent(Event) {}
