package cmd

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/sampler"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// bvhBenchResult holds the timings of one traversal order
type bvhBenchResult struct {
	Name     string
	Rays     int
	Hits     int
	Duration time.Duration
}

// Build the scene BVH and time camera ray queries against it.
func BenchBVH(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx.String("scene"), ctx.String("scene-dir"))
	if err != nil {
		return err
	}
	if sc.Camera == nil {
		return scene.ErrNoCamera
	}

	bvh := geometry.NewBVH(sc.Primitives, ctx.Int("leaf-size"))
	results, err := benchTraversal(bvh, sc.Camera, ctx.Int("rays"), ctx.Uint64("seed"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writeBVHTable(&buf, bvh.Stats(), results)
	logger.Noticef("BVH benchmark for %q\n%s", sc.Name, buf.String())
	return nil
}

// benchTraversal traces the same camera rays with the default and the
// direction-ordered traversal. Both must report the same hits.
func benchTraversal(bvh *geometry.BVH, camera geometry.Camera, numRays int, seed uint64) ([]bvhBenchResult, error) {
	rays := cameraRays(camera, numRays, seed)
	results := make([]bvhBenchResult, 0, 2)

	var hitT []float64
	for _, ordered := range []bool{false, true} {
		bvh.OrderedTraversal = ordered
		res := bvhBenchResult{Name: "first child", Rays: len(rays)}
		if ordered {
			res.Name = "ordered"
		}

		ts := make([]float64, len(rays))
		start := time.Now()
		for i, ray := range rays {
			ts[i] = math.Inf(1)
			if si, ok := bvh.Intersect(ray, math.Inf(1)); ok {
				ts[i] = si.T
				res.Hits++
			}
		}
		res.Duration = time.Since(start)
		results = append(results, res)

		if hitT == nil {
			hitT = ts
			continue
		}
		for i := range ts {
			if ts[i] != hitT[i] {
				bvh.OrderedTraversal = false
				return nil, fmt.Errorf("traversal orders disagree on ray %d: t=%g vs t=%g", i, hitT[i], ts[i])
			}
		}
	}
	bvh.OrderedTraversal = false
	return results, nil
}

// cameraRays generates rays through uniformly random film positions
func cameraRays(camera geometry.Camera, n int, seed uint64) []core.Ray {
	width, height := camera.Resolution()
	rng := sampler.NewPCG32(seed)

	rays := make([]core.Ray, 0, n)
	for len(rays) < n {
		pFilm := core.NewVec2(rng.Float64()*float64(width), rng.Float64()*float64(height))
		uLens := core.NewVec2(rng.Float64(), rng.Float64())
		if cr, ok := camera.GenerateRay(pFilm, uLens); ok {
			rays = append(rays, cr.Ray)
		}
	}
	return rays
}

func writeBVHTable(w io.Writer, stats geometry.BVHStats, results []bvhBenchResult) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Traversal", "Rays", "Hits", "Time", "Mrays/sec"})
	for _, res := range results {
		var mrays float64
		if res.Duration > 0 {
			mrays = float64(res.Rays) / res.Duration.Seconds() / 1e6
		}
		table.Append([]string{
			res.Name,
			fmt.Sprint(res.Rays),
			fmt.Sprint(res.Hits),
			res.Duration.Round(time.Microsecond).String(),
			fmt.Sprintf("%.2f", mrays),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d prims", stats.Primitives),
		fmt.Sprintf("%d nodes", stats.Nodes),
		fmt.Sprintf("%d leaves", stats.Leaves),
		fmt.Sprintf("depth %d", stats.MaxDepth),
		stats.BuildTime.Round(time.Microsecond).String(),
	})
	table.Render()
}
