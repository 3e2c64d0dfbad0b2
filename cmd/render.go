package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/geometry"
	"github.com/df07/go-bdpt-renderer/pkg/renderer"
	"github.com/df07/go-bdpt-renderer/pkg/scene"
	"github.com/urfave/cli"
)

// ErrNoScene is returned when neither a scene name nor a file was given
var ErrNoScene = errors.New("no scene given")

// flagSource is the part of *cli.Context the render options are read from
type flagSource interface {
	IsSet(name string) bool
	Int(name string) int
	Float64(name string) float64
	String(name string) string
	Uint64(name string) uint64
}

// Render a still frame.
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	name := ctx.String("scene")
	if ctx.String("file") != "" {
		name = ctx.String("file")
	} else if ctx.NArg() == 1 {
		name = ctx.Args().First()
	}

	sc, err := loadScene(name, ctx.String("scene-dir"))
	if err != nil {
		return err
	}
	if err := applyResolution(sc, ctx.Int("width"), ctx.Int("height")); err != nil {
		return err
	}
	if strategy := ctx.String("light-sampler"); strategy != "" {
		sc.LightStrategy = strategy
	}
	if err := sc.Preprocess(); err != nil {
		return err
	}

	config := renderConfig(ctx, sc)
	r, err := renderer.New(sc, config)
	if err != nil {
		return err
	}

	logger.Noticef("rendering %q with the %s integrator", sc.Name, config.Integrator)
	stats, err := r.Render()
	if err != nil {
		return err
	}

	out := outputPath(ctx.String("out"), name, time.Now())
	if err := writeImage(r, out); err != nil {
		return err
	}
	logger.Noticef("render completed in %v, saved as %s", stats.Duration.Round(time.Millisecond), out)

	if ctx.Bool("stats") {
		displayRenderStats(stats)
	}
	return nil
}

// loadScene resolves name to a built-in scene, a PBRT file path, or a PBRT
// file called name.pbrt inside sceneDir
func loadScene(name, sceneDir string) (*scene.Scene, error) {
	if name == "" {
		return nil, ErrNoScene
	}

	sc, err := scene.Load(name)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) || sceneDir == "" {
		return sc, err
	}

	path := filepath.Join(sceneDir, name+".pbrt")
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, err
	}
	return scene.NewPBRTScene(path)
}

// applyResolution rebuilds the scene camera for a new image size. Zero
// values keep the scene's own size.
func applyResolution(sc *scene.Scene, width, height int) error {
	if width <= 0 && height <= 0 {
		return nil
	}
	camera, ok := sc.Camera.(*geometry.PerspectiveCamera)
	if !ok {
		return fmt.Errorf("cannot change the resolution of a %T", sc.Camera)
	}

	config := camera.Config()
	if width > 0 {
		config.Width = width
	}
	if height > 0 {
		config.Height = height
	}
	sc.Camera = geometry.NewCamera(config)
	sc.SamplingConfig.Width, sc.SamplingConfig.Height = config.Width, config.Height
	return nil
}

// renderConfig layers the scene defaults and then any flags set on the
// command line over renderer.DefaultConfig
func renderConfig(flags flagSource, sc *scene.Scene) renderer.Config {
	config := renderer.DefaultConfig().WithScene(sc)

	ints := map[string]*int{
		"spp":       &config.SamplesPerPixel,
		"max-depth": &config.MaxDepth,
		"rr-depth":  &config.RRDepth,
		"workers":   &config.NumWorkers,
		"tile-size": &config.TileSize,
	}
	for name, dst := range ints {
		if flags.IsSet(name) {
			*dst = flags.Int(name)
		}
	}

	strs := map[string]*string{
		"integrator": &config.Integrator,
		"sampler":    &config.Sampler,
		"filter":     &config.Filter,
	}
	for name, dst := range strs {
		if flags.IsSet(name) {
			*dst = flags.String(name)
		}
	}

	if flags.IsSet("filter-radius") {
		config.FilterRadius = flags.Float64("filter-radius")
	}
	if flags.IsSet("seed") {
		config.Seed = flags.Uint64("seed")
	}
	return config
}

// outputPath returns out, or output/<scene>/render_<timestamp>.png when out
// is empty
func outputPath(out, sceneName string, now time.Time) string {
	if out != "" {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	return filepath.Join("output", base, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func writeImage(r *renderer.Renderer, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	stats.Table(&buf)
	logger.Noticef("render statistics\n%s", buf.String())
}
