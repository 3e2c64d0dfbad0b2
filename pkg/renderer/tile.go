package renderer

import "image"

// Tile is a rectangular region of the image rendered as one task
type Tile struct {
	ID     int             // Row-major index in the tile grid
	X, Y   int             // Position in the tile grid
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// Stream returns the sampler stream of the tile. It depends only on the
// tile's grid position so results do not depend on which worker renders it.
func (t *Tile) Stream() uint64 {
	return uint64(t.ID)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil
	}

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	tiles := make([]*Tile, 0, tilesX*tilesY)
	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{
				ID:     tileY*tilesX + tileX,
				X:      tileX,
				Y:      tileY,
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}
	return tiles
}
