package world

import (
	"math"
	"sync"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/ofly/flight"
)

var (
	blockNameMapping     map[uint64]string
	blockNameMappingOnce sync.Once
)

func initBlockNameMapping() {
	blockNameMapping = make(map[uint64]string, len(world.Blocks()))
	for _, b := range world.Blocks() {
		x, y := b.Hash()
		if x == 0 && y == math.MaxUint64 {
			continue
		}
		name, _ := b.EncodeBlock()
		blockNameMapping[world.BlockHash(b)] = name
	}
}

// BlockName returns the canonical name of a block.
func BlockName(b world.Block) string {
	blockNameMappingOnce.Do(initBlockNameMapping)
	if n, ok := blockNameMapping[world.BlockHash(b)]; ok {
		return n
	}
	n, _ := b.EncodeBlock()
	return n
}

// BlockClimbable returns whether the given block is climbable.
func BlockClimbable(b world.Block) bool {
	switch b.(type) {
	case block.Ladder:
		return true
	}

	switch BlockName(b) {
	case "minecraft:vine", "minecraft:cave_vines", "minecraft:cave_vines_body_with_berries", "minecraft:cave_vines_head_with_berries",
		"minecraft:twisting_vines", "minecraft:weeping_vines", "minecraft:scaffolding":
		return true
	default:
		return false
	}
}

// BlockSolid returns whether the block has any collision box at the position passed.
func BlockSolid(b world.Block, pos cube.Pos, src world.BlockSource) bool {
	return len(b.Model().BBox(pos, src)) > 0
}

// BlockSurface returns the surface an entity landing on the block comes into contact with.
func BlockSurface(b world.Block) flight.Surface {
	switch BlockName(b) {
	case "minecraft:slime":
		return flight.SurfaceSlime
	case "minecraft:bed":
		return flight.SurfaceBed
	default:
		return flight.SurfaceDefault
	}
}
