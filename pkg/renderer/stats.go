package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/arena"
	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/olekukonko/tablewriter"
)

// TileStats counts the work done for one tile
type TileStats struct {
	Pixels    int
	Samples   int
	NonFinite int // Samples whose radiance was replaced with black
}

// WorkerStats accumulates the tiles one worker rendered
type WorkerStats struct {
	ID        int
	Tiles     int
	Samples   int
	NonFinite int
	Busy      time.Duration
}

func (ws *WorkerStats) add(ts TileStats, elapsed time.Duration) {
	ws.Tiles++
	ws.Samples += ts.Samples
	ws.NonFinite += ts.NonFinite
	ws.Busy += elapsed
}

// RenderStats contains statistics about one call to Render
type RenderStats struct {
	Width, Height    int
	SamplesPerPixel  int
	Tiles            int
	TotalPixels      int
	TotalSamples     int
	NonFinite        int
	Splats           int64
	Duration         time.Duration
	AverageLuminance float64 // Mean luminance of the resolved image
	Workers          []WorkerStats
	Arena            arena.Stats
}

func (s *RenderStats) addTile(ts TileStats) {
	s.Tiles++
	s.TotalPixels += ts.Pixels
	s.TotalSamples += ts.Samples
	s.NonFinite += ts.NonFinite
}

// SamplesPerSecond returns the sample throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}

// Table writes a summary table followed by a per-worker table to w
func (s RenderStats) Table(w io.Writer) {
	summary := tablewriter.NewWriter(w)
	summary.SetAutoFormatHeaders(false)
	summary.SetAutoWrapText(false)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.AppendBulk([][]string{
		{"Resolution", fmt.Sprintf("%dx%d", s.Width, s.Height)},
		{"Samples per pixel", fmt.Sprint(s.SamplesPerPixel)},
		{"Tiles", fmt.Sprint(s.Tiles)},
		{"Samples", fmt.Sprint(s.TotalSamples)},
		{"Non-finite samples", fmt.Sprint(s.NonFinite)},
		{"Splats", fmt.Sprint(s.Splats)},
		{"Render time", s.Duration.Round(time.Millisecond).String()},
		{"Samples/sec", fmt.Sprintf("%.0f", s.SamplesPerSecond())},
		{"Average luminance", fmt.Sprintf("%.4f", s.AverageLuminance)},
		{"Arena blocks (created/free/cached)", fmt.Sprintf("%d/%d/%d", s.Arena.CreatedBlocks, s.Arena.FreeBlocks, s.Arena.CachedBlocks)},
		{"Arena block size", fmt.Sprintf("%d bytes", s.Arena.BlockSize)},
	})
	summary.Render()

	workers := tablewriter.NewWriter(w)
	workers.SetAutoFormatHeaders(false)
	workers.SetAutoWrapText(false)
	workers.SetAlignment(tablewriter.ALIGN_RIGHT)
	workers.SetHeader([]string{"Worker", "Tiles", "Samples", "Non-finite", "Busy", "% of samples"})

	var tiles, samples, nonFinite int
	for _, ws := range s.Workers {
		workers.Append([]string{
			fmt.Sprint(ws.ID),
			fmt.Sprint(ws.Tiles),
			fmt.Sprint(ws.Samples),
			fmt.Sprint(ws.NonFinite),
			ws.Busy.Round(time.Millisecond).String(),
			fmt.Sprintf("%02.1f %%", percent(ws.Samples, s.TotalSamples)),
		})
		tiles += ws.Tiles
		samples += ws.Samples
		nonFinite += ws.NonFinite
	}
	workers.SetFooter([]string{"Total", fmt.Sprint(tiles), fmt.Sprint(samples), fmt.Sprint(nonFinite), "", ""})
	workers.Render()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// AverageLuminance returns the mean luminance of resolved pixel radiance
func AverageLuminance(pixels []core.Vec3) float64 {
	if len(pixels) == 0 {
		return 0
	}
	var total float64
	for _, p := range pixels {
		total += p.Luminance()
	}
	return total / float64(len(pixels))
}
