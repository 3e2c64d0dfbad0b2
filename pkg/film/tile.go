package film

import (
	"image"
	"math"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

type tilePixel struct {
	L         core.Vec3
	weightSum float64
}

// Tile is a private accumulation buffer owned by one worker
type Tile struct {
	bounds       image.Rectangle
	pixels       []tilePixel
	filterRadius core.Vec2
	invRadius    core.Vec2
	filterTable  *[filterTableWidth * filterTableWidth]float64
}

// Bounds returns the pixels covered by the tile, including the filter margin
func (t *Tile) Bounds() image.Rectangle { return t.bounds }

// AddSample splats L into every tile pixel whose filter support contains pFilm
func (t *Tile) AddSample(pFilm core.Vec2, L core.Vec3) {
	dx, dy := pFilm.X-0.5, pFilm.Y-0.5
	x0 := max(int(math.Ceil(dx-t.filterRadius.X)), t.bounds.Min.X)
	y0 := max(int(math.Ceil(dy-t.filterRadius.Y)), t.bounds.Min.Y)
	x1 := min(int(math.Floor(dx+t.filterRadius.X))+1, t.bounds.Max.X)
	y1 := min(int(math.Floor(dy+t.filterRadius.Y))+1, t.bounds.Max.Y)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	var ftX, ftY [maxFootprint]int
	if x1-x0 > len(ftX) || y1-y0 > len(ftY) {
		// only filters built around NewFilter can be this wide
		return
	}
	for x := x0; x < x1; x++ {
		ftX[x-x0] = tableIndex(float64(x)-dx, t.invRadius.X)
	}
	for y := y0; y < y1; y++ {
		ftY[y-y0] = tableIndex(float64(y)-dy, t.invRadius.Y)
	}

	width := t.bounds.Dx()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			weight := t.filterTable[ftY[y-y0]*filterTableWidth+ftX[x-x0]]
			p := &t.pixels[(y-t.bounds.Min.Y)*width+(x-t.bounds.Min.X)]
			p.L = p.L.Add(L.Multiply(weight))
			p.weightSum += weight
		}
	}
}

// maxFootprint is the widest run of pixels a single sample can reach
const maxFootprint = 64

func tableIndex(offset, invRadius float64) int {
	return min(int(math.Abs(offset*invRadius*filterTableWidth)), filterTableWidth-1)
}
