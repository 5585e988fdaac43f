package trace

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/block/cube"
	dfworld "github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly"
	"github.com/oomph-ac/ofly/game"
	"github.com/oomph-ac/ofly/oerror"
	"github.com/oomph-ac/ofly/session"
	"github.com/oomph-ac/ofly/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// maxLineSize is the longest trace line accepted.
const maxLineSize = 1 << 20

// Stats summarises a replay.
type Stats struct {
	Moves     int64
	Cancelled int64
}

// Replayer feeds trace entries to an Ofly instance as the packets a host would receive.
type Replayer struct {
	o     *ofly.Ofly
	world *world.World

	runtimeIDs map[string]uint64
	ticks      map[string]uint64

	moves, cancelled atomic.Int64
}

// NewReplayer returns a Replayer that writes blocks to w, which must be the block source of o.
func NewReplayer(o *ofly.Ofly, w *world.World) *Replayer {
	return &Replayer{
		o:          o,
		world:      w,
		runtimeIDs: make(map[string]uint64),
		ticks:      make(map[string]uint64),
	}
}

// Stats returns the statistics of the movements replayed so far. Movements still queued are not counted.
func (r *Replayer) Stats() Stats {
	return Stats{Moves: r.moves.Load(), Cancelled: r.cancelled.Load()}
}

// Replay applies every line of rd. Empty lines and lines starting with '#' are skipped.
func (r *Replayer) Replay(ctx context.Context, rd io.Reader) (int64, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var lines int64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return lines, err
		}
		lines++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		e, err := Parse(line)
		if err != nil {
			return lines, fmt.Errorf("line %d: %w", lines, err)
		}
		if err := r.Apply(e); err != nil {
			return lines, fmt.Errorf("line %d: %w", lines, err)
		}
	}
	return lines, scanner.Err()
}

// Apply applies a single entry.
func (r *Replayer) Apply(e Entry) error {
	reg := r.o.Registry()
	rid := r.runtimeIDs[e.Entity]

	switch e.Kind {
	case KindBlock, KindFill:
		b, ok := dfworld.BlockByName(e.Block, e.Properties)
		if !ok {
			return oerror.New("unknown block %s %v", e.Block, e.Properties)
		}
		minX, maxX := min(e.Pos.X(), e.To.X()), max(e.Pos.X(), e.To.X())
		minY, maxY := min(e.Pos.Y(), e.To.Y()), max(e.Pos.Y(), e.To.Y())
		minZ, maxZ := min(e.Pos.Z(), e.To.Z()), max(e.Pos.Z(), e.To.Z())
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				for z := minZ; z <= maxZ; z++ {
					r.world.SetBlock(cube.Pos{x, y, z}, b)
				}
			}
		}
		return nil
	case KindJoin:
		r.runtimeIDs[e.Entity] = e.RuntimeID
		reg.Open(e.Entity, e.RuntimeID)
		return nil
	case KindMove:
		r.ticks[e.Entity]++
		eye := e.Position.Add(mgl64.Vec3{0, game.DefaultPlayerHeightOffset, 0})
		pk := &packet.PlayerAuthInput{
			Position: mgl32.Vec3{float32(eye.X()), float32(eye.Y()), float32(eye.Z())},
			Tick:     r.ticks[e.Entity],
		}
		return reg.HandleClientPacket(e.Entity, pk, func(cancel bool) {
			r.moves.Add(1)
			if cancel {
				r.cancelled.Add(1)
			}
		})
	case KindMotion:
		return reg.HandleServerPacket(e.Entity, &packet.SetActorMotion{
			EntityRuntimeID: rid,
			Velocity:        mgl32.Vec3{float32(e.Velocity.X()), float32(e.Velocity.Y()), float32(e.Velocity.Z())},
		})
	case KindEffect:
		op := byte(packet.MobEffectAdd)
		if e.Remove {
			op = packet.MobEffectRemove
		}
		return reg.HandleServerPacket(e.Entity, &packet.MobEffect{
			EntityRuntimeID: rid,
			Operation:       op,
			EffectType:      e.EffectType,
			Amplifier:       e.Amplifier,
			Duration:        e.Duration,
		})
	case KindRide:
		return reg.Do(e.Entity, func(s *session.Session) {
			s.SetRiding(e.Riding)
		})
	case KindQuit:
		delete(r.runtimeIDs, e.Entity)
		delete(r.ticks, e.Entity)
		return reg.Close(e.Entity)
	}
	return oerror.New("unknown entry type %q", e.Kind)
}
