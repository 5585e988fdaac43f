package game

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// AABBFromDimensions returns a bounding box from the given dimensions, centred on the origin horizontally.
func AABBFromDimensions(width, height float64) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, 0, -h,
		h, height, h,
	)
}

// PlayerBox returns the bounding box of a player whose feet are at pos.
func PlayerBox(pos mgl64.Vec3) cube.BBox {
	return AABBFromDimensions(DefaultPlayerWidth, DefaultPlayerHeight).Translate(pos)
}
