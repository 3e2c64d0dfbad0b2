package renderer

import (
	"image"
	"testing"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		wantTiles     int
		wantLast      image.Rectangle
	}{
		{"exact fit", 32, 32, 16, 4, image.Rect(16, 16, 32, 32)},
		{"partial edge tiles", 40, 20, 16, 6, image.Rect(32, 16, 40, 20)},
		{"single tile", 5, 7, 16, 1, image.Rect(0, 0, 5, 7)},
		{"one pixel tiles", 3, 2, 1, 6, image.Rect(2, 1, 3, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			if len(tiles) != tt.wantTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.wantTiles, len(tiles))
			}
			if last := tiles[len(tiles)-1].Bounds; last != tt.wantLast {
				t.Errorf("Expected last tile %v, got %v", tt.wantLast, last)
			}

			covered := make(map[image.Point]int)
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Tile %d has ID %d, want row-major order", i, tile.ID)
				}
				if tile.Stream() != uint64(i) {
					t.Errorf("Tile %d has stream %d", i, tile.Stream())
				}
				if tile.Bounds.Dx() > tt.tileSize || tile.Bounds.Dy() > tt.tileSize {
					t.Errorf("Tile %d is larger than the tile size: %v", i, tile.Bounds)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
						covered[image.Pt(x, y)]++
					}
				}
			}

			if len(covered) != tt.width*tt.height {
				t.Errorf("Tiles cover %d pixels, want %d", len(covered), tt.width*tt.height)
			}
			for p, n := range covered {
				if n != 1 {
					t.Errorf("Pixel %v covered by %d tiles", p, n)
				}
			}
		})
	}
}

func TestNewTileGrid_Empty(t *testing.T) {
	if tiles := NewTileGrid(0, 10, 16); tiles != nil {
		t.Errorf("Expected no tiles for an empty image, got %d", len(tiles))
	}
	if tiles := NewTileGrid(10, 10, 0); tiles != nil {
		t.Errorf("Expected no tiles for a zero tile size, got %d", len(tiles))
	}
}

func TestTile_PositionMatchesID(t *testing.T) {
	tiles := NewTileGrid(50, 40, 16) // 4x3 tiles
	for _, tile := range tiles {
		if want := tile.Y*4 + tile.X; tile.ID != want {
			t.Errorf("Tile at (%d, %d) has ID %d, want %d", tile.X, tile.Y, tile.ID, want)
		}
		if tile.Bounds.Min.X != tile.X*16 || tile.Bounds.Min.Y != tile.Y*16 {
			t.Errorf("Tile at (%d, %d) starts at %v", tile.X, tile.Y, tile.Bounds.Min)
		}
	}
}
