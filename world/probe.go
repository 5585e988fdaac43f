package world

import (
	"math"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/flight"
	"github.com/oomph-ac/ofly/game"
)

const (
	// supportEpsilon is how far above the top of a collision box the feet of an entity may be while still
	// being considered supported by it.
	supportEpsilon = 1e-3
	// surfaceOffset is how far below the feet the block an entity stands on is looked up.
	surfaceOffset = 0.2
)

// Probe implements flight.Environment on top of a dragonfly block source. A nil source answers air for
// every position.
type Probe struct {
	Source world.BlockSource
}

// NewProbe returns a Probe reading blocks from src.
func NewProbe(src world.BlockSource) Probe {
	return Probe{Source: src}
}

// Block implements world.BlockSource, answering air where the source has no block.
func (p Probe) Block(pos cube.Pos) world.Block {
	if p.Source == nil {
		return block.Air{}
	}
	if b := p.Source.Block(pos); b != nil {
		return b
	}
	return block.Air{}
}

func (p Probe) blockAt(pos mgl64.Vec3) world.Block {
	return p.Block(cube.PosFromVec3(pos))
}

// feetAndBelow returns the block the feet are in and the block half a block below the feet.
func (p Probe) feetAndBelow(pos mgl64.Vec3) (world.Block, world.Block) {
	return p.blockAt(pos), p.blockAt(pos.Sub(mgl64.Vec3{0, 0.5}))
}

// OnSlab ...
func (p Probe) OnSlab(pos mgl64.Vec3) bool {
	feet, below := p.feetAndBelow(pos)
	_, a := feet.(block.Slab)
	_, b := below.(block.Slab)
	return a || b
}

// OnStair ...
func (p Probe) OnStair(pos mgl64.Vec3) bool {
	feet, below := p.feetAndBelow(pos)
	_, a := feet.(block.Stairs)
	_, b := below.(block.Stairs)
	return a || b
}

// InLiquid returns true if either the feet or the head of an entity at pos are inside a liquid.
func (p Probe) InLiquid(pos mgl64.Vec3) bool {
	if _, ok := p.blockAt(pos).(world.Liquid); ok {
		return true
	}
	_, ok := p.blockAt(pos.Add(mgl64.Vec3{0, game.DefaultPlayerHeightOffset})).(world.Liquid)
	return ok
}

// Climbable ...
func (p Probe) Climbable(pos mgl64.Vec3) bool {
	return BlockClimbable(p.blockAt(pos))
}

// Surface returns the surface of the block directly below the feet.
func (p Probe) Surface(pos mgl64.Vec3) flight.Surface {
	return BlockSurface(p.blockAt(pos.Sub(mgl64.Vec3{0, surfaceOffset})))
}

// Solid ...
func (p Probe) Solid(x, y, z int) bool {
	pos := cube.Pos{x, y, z}
	return BlockSolid(p.Block(pos), pos, p)
}

// Supported returns true if the player hitbox with its feet at pos rests on top of a collision box. Every
// block below the hitbox counts, so a hitbox hanging over an edge is still supported by the block it overlaps.
func (p Probe) Supported(pos mgl64.Vec3) bool {
	box := game.PlayerBox(pos)
	minX, maxX := game.BlockCoord(box.Min().X()), game.BlockCoord(box.Max().X())
	minZ, maxZ := game.BlockCoord(box.Min().Z()), game.BlockCoord(box.Max().Z())
	feetY := game.BlockCoord(pos.Y())

	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			for _, y := range [...]int{feetY, feetY - 1} {
				blockPos := cube.Pos{x, y, z}
				for _, bb := range p.Block(blockPos).Model().BBox(blockPos, p) {
					bb = bb.Translate(blockPos.Vec3())
					if math.Abs(pos.Y()-bb.Max().Y()) > supportEpsilon {
						continue
					}
					if bb.Min().X() < box.Max().X() && bb.Max().X() > box.Min().X() &&
						bb.Min().Z() < box.Max().Z() && bb.Max().Z() > box.Min().Z() {
						return true
					}
				}
			}
		}
	}
	return false
}
