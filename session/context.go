package session

import "github.com/sandertv/gophertunnel/minecraft/protocol/packet"

// PacketContext is passed to the packet handlers of a Session.
type PacketContext struct {
	// pk is the packet being handled.
	pk packet.Packet
	// cancel is true if the packet should not be forwarded.
	cancel bool
}

// NewPacketContext returns a PacketContext for pk.
func NewPacketContext(pk packet.Packet) *PacketContext {
	return &PacketContext{pk: pk}
}

func (ctx *PacketContext) Packet() packet.Packet {
	return ctx.pk
}

func (ctx *PacketContext) Cancelled() bool {
	return ctx.cancel
}

func (ctx *PacketContext) Cancel() {
	ctx.cancel = true
}
