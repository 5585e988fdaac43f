package world

import (
	"math"
	"sync"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/chunk"
	"github.com/oomph-ac/ofly/oerror"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

var (
	airRuntimeID     uint32
	airRuntimeIDOnce sync.Once
)

// AirRuntimeID returns the runtime ID of air.
func AirRuntimeID() uint32 {
	airRuntimeIDOnce.Do(func() {
		rid, ok := chunk.StateToRuntimeID("minecraft:air", nil)
		if !ok {
			panic(oerror.New("unable to find runtime ID for air"))
		}
		airRuntimeID = rid
	})
	return airRuntimeID
}

// World is a view of the blocks around the entities of a host. It holds the chunks sent by the host and
// single block updates on top of them, and implements world.BlockSource. Positions in unknown chunks are
// treated as air.
type World struct {
	lastCleanPos protocol.ChunkPos

	chunks       map[protocol.ChunkPos]*chunk.Chunk
	blockUpdates map[protocol.ChunkPos]map[cube.Pos]world.Block

	log *logrus.Logger

	deadlock.RWMutex
}

// New returns an empty World. A nil logger disables logging.
func New(log *logrus.Logger) *World {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &World{
		chunks:       make(map[protocol.ChunkPos]*chunk.Chunk),
		blockUpdates: make(map[protocol.ChunkPos]map[cube.Pos]world.Block),
		log:          log,
	}
}

func chunkPosOf(pos cube.Pos) protocol.ChunkPos {
	return protocol.ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
}

// AddChunk adds a chunk to the world, dropping the block updates of the chunk it replaces.
func (w *World) AddChunk(pos protocol.ChunkPos, c *chunk.Chunk) {
	w.Lock()
	defer w.Unlock()

	w.chunks[pos] = c
	delete(w.blockUpdates, pos)
}

// Block returns the block at the position passed.
func (w *World) Block(pos cube.Pos) world.Block {
	if pos.OutOfBounds(world.Overworld.Range()) {
		return block.Air{}
	}
	chunkPos := chunkPosOf(pos)

	w.RLock()
	defer w.RUnlock()
	if b, ok := w.blockUpdates[chunkPos][pos]; ok {
		return b
	}

	c, ok := w.chunks[chunkPos]
	if !ok {
		return block.Air{}
	}
	// TODO: Account for blocks on the second layer, such as waterlogged blocks.
	rid := c.Block(uint8(pos[0]), int16(pos[1]), uint8(pos[2]), 0)
	if b, ok := world.BlockByRuntimeID(rid); ok && b != nil {
		return b
	}
	return block.Air{}
}

// SetBlock sets the block at the position passed. A nil block sets air.
func (w *World) SetBlock(pos cube.Pos, b world.Block) {
	if pos.OutOfBounds(world.Overworld.Range()) {
		return
	}
	if b == nil {
		b = block.Air{}
	}
	chunkPos := chunkPosOf(pos)

	w.Lock()
	defer w.Unlock()

	if w.blockUpdates[chunkPos] == nil {
		w.blockUpdates[chunkPos] = make(map[cube.Pos]world.Block)
	}
	w.blockUpdates[chunkPos][pos] = b
}

// RemoveChunk removes the chunk and every block update in it.
func (w *World) RemoveChunk(pos protocol.ChunkPos) {
	w.Lock()
	delete(w.chunks, pos)
	delete(w.blockUpdates, pos)
	w.Unlock()
}

// Chunks returns the amount of chunks that hold a chunk or at least one block update.
func (w *World) Chunks() int {
	w.RLock()
	defer w.RUnlock()

	n := len(w.chunks)
	for pos := range w.blockUpdates {
		if _, ok := w.chunks[pos]; !ok {
			n++
		}
	}
	return n
}

// CleanChunks removes all chunks outside the given chunk radius around pos.
func (w *World) CleanChunks(radius int32, pos protocol.ChunkPos) {
	w.Lock()
	defer w.Unlock()

	if pos == w.lastCleanPos {
		return
	}
	w.lastCleanPos = pos

	for chunkPos := range w.chunks {
		if !chunkInRange(radius, chunkPos, pos) {
			delete(w.chunks, chunkPos)
			w.log.Debugf("removed chunk %v outside of radius %d around %v", chunkPos, radius, pos)
		}
	}
	for chunkPos := range w.blockUpdates {
		if !chunkInRange(radius, chunkPos, pos) {
			delete(w.blockUpdates, chunkPos)
		}
	}
}

// PurgeChunks removes all chunks from the world.
func (w *World) PurgeChunks() {
	w.Lock()
	defer w.Unlock()

	clear(w.chunks)
	clear(w.blockUpdates)
}

// HandleServerPacket updates the world with a packet sent by the host. Chunks are only read from LevelChunk
// packets that carry their sub chunks.
func (w *World) HandleServerPacket(pk packet.Packet) {
	switch pk := pk.(type) {
	case *packet.LevelChunk:
		if pk.CacheEnabled || pk.SubChunkCount == protocol.SubChunkRequestModeLimitless || pk.SubChunkCount == protocol.SubChunkRequestModeLimited {
			w.log.Debugf("unsupported chunk at %v (sub chunks=%d cache=%v)", pk.Position, pk.SubChunkCount, pk.CacheEnabled)
			return
		}
		c, err := chunk.NetworkDecode(AirRuntimeID(), pk.RawPayload, int(pk.SubChunkCount), world.Overworld.Range())
		if err != nil {
			w.log.Errorf("failed to decode chunk at %v: %v", pk.Position, err)
			c = chunk.New(AirRuntimeID(), world.Overworld.Range())
		}
		c.Compact()
		w.AddChunk(pk.Position, c)
	case *packet.UpdateBlock:
		if pk.Layer != 0 {
			return
		}
		b, ok := world.BlockByRuntimeID(pk.NewBlockRuntimeID)
		if !ok || b == nil {
			b = block.Air{}
		}
		w.SetBlock(cube.Pos{int(pk.Position[0]), int(pk.Position[1]), int(pk.Position[2])}, b)
	case *packet.ChangeDimension:
		w.PurgeChunks()
	case *packet.NetworkChunkPublisherUpdate:
		w.CleanChunks(int32(pk.Radius>>4), protocol.ChunkPos{pk.Position.X() >> 4, pk.Position.Z() >> 4})
	}
}

// chunkInRange returns true if the chunk position is within the given radius of the chunk position.
func chunkInRange(radius int32, chunkPos, pos protocol.ChunkPos) bool {
	diffX, diffZ := float64(pos[0]-chunkPos[0]), float64(pos[1]-chunkPos[1])
	dist := math.Sqrt(diffX*diffX + diffZ*diffZ)

	return int32(dist) <= radius
}
