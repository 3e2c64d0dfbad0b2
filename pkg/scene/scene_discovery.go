package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned for names that are neither built in nor a file
var ErrUnknownScene = errors.New("scene: unknown scene")

// SceneInfo describes a scene that can be rendered
type SceneInfo struct {
	ID          string // Name passed to Load
	Name        string // Display name
	Description string
	Type        string // "builtin" or "pbrt"
	FilePath    string // Path to the PBRT file (pbrt type only)
}

type builtin struct {
	name        string
	description string
	create      func() *Scene
}

var builtins = map[string]builtin{
	"sphere-point": {"Sphere and Point Light", "Unit diffuse sphere lit by one point light", NewSpherePointScene},
	"cornell":      {"Cornell Box", "Cornell box with two boxes and a ceiling area light", NewCornellScene},
	"sphere-grid":  {"Sphere Grid", "10x10 grid of colored diffuse and mirror spheres", NewSphereGridScene},
	"glass":        {"Glass Caustics", "Glass sphere and prism under a spot light", NewGlassScene},
}

// BuiltinScenes lists the scenes compiled into the binary, sorted by ID
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtins))
	for id, b := range builtins {
		infos = append(infos, SceneInfo{ID: id, Name: b.name, Description: b.description, Type: "builtin"})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// NewBuiltin creates the built-in scene with the given ID
func NewBuiltin(id string) (*Scene, error) {
	b, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return b.create(), nil
}

// Load returns a built-in scene by ID or, for names ending in .pbrt, the
// scene described by that file
func Load(name string) (*Scene, error) {
	if strings.HasSuffix(strings.ToLower(name), ".pbrt") {
		return NewPBRTScene(name)
	}
	return NewBuiltin(name)
}

// ListPBRTScenes scans dir for .pbrt files and reads their header comments
func ListPBRTScenes(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.pbrt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		info, err := ParsePBRTMetadata(filePath)
		if err != nil {
			logger.Warningf("failed to parse metadata for %s: %v", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParsePBRTMetadata extracts metadata from PBRT file header comments
// of the form "# Scene: ..." and "# Description: ..."
func ParsePBRTMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Type:     "pbrt",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// metadata lives only in the leading comment block
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if v, ok := strings.CutPrefix(content, "Scene:"); ok {
			info.Name = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(content, "Description:"); ok {
			info.Description = strings.TrimSpace(v)
		}
	}
	return info, scanner.Err()
}

// ListAllScenes returns the built-in scenes followed by the PBRT files in dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	all := BuiltinScenes()
	if dir == "" {
		return all, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return all, nil
	}

	pbrtScenes, err := ListPBRTScenes(dir)
	if err != nil {
		return nil, err
	}
	return append(all, pbrtScenes...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
