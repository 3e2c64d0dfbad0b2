package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/log"
)

var logger = log.New("loaders")

var (
	ErrUnsupported = errors.New("loaders: unsupported")
	ErrSyntax      = errors.New("loaders: syntax error")
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Camera, Material, Shape, etc.)
	Subtype    string               // Subtype (perspective, diffuse, sphere, etc.)
	Parameters map[string]PBRTParam // Named parameters
	Line       int                  // Line the statement starts on
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, etc.)
	Values []string // Parameter values as strings
}

// PBRTShape is a world shape together with the graphics state it was declared in
type PBRTShape struct {
	PBRTStatement
	Material           *PBRTStatement // nil when no Material was active
	AreaLight          *PBRTStatement // non-nil when the shape emits
	Translate          core.Vec3
	ReverseOrientation bool
}

// PBRTLight is a LightSource with the translation active where it was declared
type PBRTLight struct {
	PBRTStatement
	Translate core.Vec3
}

// PBRTScene contains all parsed PBRT scene data
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera     *PBRTStatement
	LookAt     *core.Vec3 // Eye position
	LookAtTo   *core.Vec3 // Look at target
	LookAtUp   *core.Vec3 // Up vector
	Film       *PBRTStatement
	Sampler    *PBRTStatement
	Integrator *PBRTStatement

	// World content
	Shapes []PBRTShape
	Lights []PBRTLight

	// Dir resolves relative file names such as plymesh paths
	Dir string
}

// graphicsState is what AttributeBegin saves and AttributeEnd restores
type graphicsState struct {
	material  *PBRTStatement
	areaLight *PBRTStatement
	translate core.Vec3
	reverse   bool
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene      *PBRTScene
	state      graphicsState
	stateStack []graphicsState
	inWorld    bool
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	tokens, err := tokenizePBRT(reader)
	if err != nil {
		return nil, err
	}

	parser := NewPBRTParser()
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if tok.kind != tokenWord {
			return nil, fmt.Errorf("%w: line %d: expected directive, got %q", ErrSyntax, tok.line, tok.text)
		}

		// a directive owns every token up to the next bare word
		j := i + 1
		for j < len(tokens) && tokens[j].kind != tokenWord {
			j++
		}
		if err := parser.directive(tok, tokens[i+1:j]); err != nil {
			return nil, err
		}
		i = j
	}

	if len(parser.stateStack) != 0 {
		return nil, fmt.Errorf("%w: %d AttributeBegin without AttributeEnd", ErrSyntax, len(parser.stateStack))
	}
	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pbrt") {
		return nil, fmt.Errorf("%w: %s is not a .pbrt file", ErrUnsupported, filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	scene, err := ParsePBRT(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	scene.Dir = filepath.Dir(filename)
	return scene, nil
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{scene: &PBRTScene{}}
}

func (p *PBRTParser) directive(name token, args []token) error {
	switch name.text {
	case "WorldBegin":
		p.inWorld = true
		p.state = graphicsState{}
		return nil
	case "WorldEnd":
		p.inWorld = false
		return nil
	case "AttributeBegin":
		p.stateStack = append(p.stateStack, p.state)
		return nil
	case "AttributeEnd":
		if len(p.stateStack) == 0 {
			return fmt.Errorf("%w: line %d: AttributeEnd without AttributeBegin", ErrSyntax, name.line)
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
		return nil
	case "ReverseOrientation":
		p.state.reverse = !p.state.reverse
		return nil
	case "LookAt":
		return p.parseLookAt(name, args)
	case "Translate":
		v, err := parseNumbers(name, args, 3)
		if err != nil {
			return err
		}
		p.state.translate = p.state.translate.Add(core.NewVec3(v[0], v[1], v[2]))
		return nil
	case "Camera", "Film", "Sampler", "Integrator", "Material", "AreaLightSource", "LightSource", "Shape":
	default:
		return fmt.Errorf("%w: line %d: directive %s", ErrUnsupported, name.line, name.text)
	}

	stmt, err := parseStatement(name, args)
	if err != nil {
		return err
	}

	if !p.inWorld {
		switch stmt.Type {
		case "Camera":
			p.scene.Camera = stmt
		case "Film":
			p.scene.Film = stmt
		case "Sampler":
			p.scene.Sampler = stmt
		case "Integrator":
			p.scene.Integrator = stmt
		default:
			return fmt.Errorf("%w: line %d: %s before WorldBegin", ErrUnsupported, stmt.Line, stmt.Type)
		}
		return nil
	}

	switch stmt.Type {
	case "Material":
		p.state.material = stmt
	case "AreaLightSource":
		p.state.areaLight = stmt
	case "LightSource":
		p.scene.Lights = append(p.scene.Lights, PBRTLight{PBRTStatement: *stmt, Translate: p.state.translate})
	case "Shape":
		p.scene.Shapes = append(p.scene.Shapes, PBRTShape{
			PBRTStatement:      *stmt,
			Material:           p.state.material,
			AreaLight:          p.state.areaLight,
			Translate:          p.state.translate,
			ReverseOrientation: p.state.reverse,
		})
	default:
		return fmt.Errorf("%w: line %d: %s after WorldBegin", ErrUnsupported, stmt.Line, stmt.Type)
	}
	return nil
}

// parseLookAt parses a LookAt statement into scene camera vectors
func (p *PBRTParser) parseLookAt(name token, args []token) error {
	v, err := parseNumbers(name, args, 9)
	if err != nil {
		return err
	}
	eye := core.NewVec3(v[0], v[1], v[2])
	at := core.NewVec3(v[3], v[4], v[5])
	up := core.NewVec3(v[6], v[7], v[8])
	p.scene.LookAt, p.scene.LookAtTo, p.scene.LookAtUp = &eye, &at, &up
	return nil
}

func parseNumbers(name token, args []token, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: line %d: %s requires %d values, got %d", ErrSyntax, name.line, name.text, n, len(args))
	}
	values := make([]float64, n)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg.text, 64)
		if arg.kind != tokenNumber || err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: invalid number %q", ErrSyntax, arg.line, name.text, arg.text)
		}
		values[i] = v
	}
	return values, nil
}

// parseStatement parses: Type "subtype" "paramtype name" value-or-[values] ...
func parseStatement(name token, args []token) (*PBRTStatement, error) {
	stmt := &PBRTStatement{
		Type:       name.text,
		Parameters: make(map[string]PBRTParam),
		Line:       name.line,
	}
	if len(args) == 0 || args[0].kind != tokenString {
		return nil, fmt.Errorf("%w: line %d: %s needs a quoted type", ErrSyntax, name.line, name.text)
	}
	stmt.Subtype = args[0].text

	for i := 1; i < len(args); {
		def := args[i]
		fields := strings.Fields(def.text)
		if def.kind != tokenString || len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected \"type name\", got %q", ErrSyntax, def.line, def.text)
		}
		i++

		var values []string
		switch {
		case i < len(args) && args[i].kind == tokenOpen:
			i++
			for i < len(args) && args[i].kind != tokenClose {
				values = append(values, args[i].text)
				i++
			}
			if i == len(args) {
				return nil, fmt.Errorf("%w: line %d: unterminated [", ErrSyntax, def.line)
			}
			i++
		case i < len(args) && (args[i].kind == tokenNumber || args[i].kind == tokenString):
			values = []string{args[i].text}
			i++
		default:
			return nil, fmt.Errorf("%w: line %d: parameter %q has no value", ErrSyntax, def.line, fields[1])
		}

		stmt.Parameters[fields[1]] = PBRTParam{Type: fields[0], Values: values}
	}
	return stmt, nil
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	values, ok := stmt.GetFloatsParam(name)
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// GetFloatsParam extracts every value of a numeric parameter
func (stmt *PBRTStatement) GetFloatsParam(name string) ([]float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	values := make([]float64, len(param.Values))
	for i, s := range param.Values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// GetIntsParam extracts an integer array parameter such as "integer indices"
func (stmt *PBRTStatement) GetIntsParam(name string) ([]int, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	values := make([]int, len(param.Values))
	for i, s := range param.Values {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// GetRGBParam extracts an RGB color parameter from a PBRT statement
func (stmt *PBRTStatement) GetRGBParam(name string) (core.Vec3, bool) {
	v, ok := stmt.GetFloatsParam(name)
	if !ok || len(v) != 3 {
		return core.Vec3{}, false
	}
	return core.NewVec3(v[0], v[1], v[2]), true
}

// GetPoint3sParam extracts a point3 array parameter
func (stmt *PBRTStatement) GetPoint3sParam(name string) ([]core.Vec3, bool) {
	v, ok := stmt.GetFloatsParam(name)
	if !ok || len(v)%3 != 0 {
		return nil, false
	}
	points := make([]core.Vec3, len(v)/3)
	for i := range points {
		points[i] = core.NewVec3(v[3*i], v[3*i+1], v[3*i+2])
	}
	return points, true
}

// GetPoint3Param extracts a single point3 parameter
func (stmt *PBRTStatement) GetPoint3Param(name string) (core.Vec3, bool) {
	points, ok := stmt.GetPoint3sParam(name)
	if !ok || len(points) != 1 {
		return core.Vec3{}, false
	}
	return points[0], true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetBoolParam extracts a bool parameter written either as true or "true"
func (stmt *PBRTStatement) GetBoolParam(name string) (bool, bool) {
	s, ok := stmt.GetStringParam(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenString
	tokenNumber
	tokenOpen
	tokenClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

// tokenizePBRT splits the input into directives, quoted strings, numbers
// and brackets. Comments run from # to the end of the line.
func tokenizePBRT(reader io.Reader) ([]token, error) {
	var tokens []token
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		for i := 0; i < len(text); {
			c := text[i]
			switch {
			case c == '#':
				i = len(text)
			case c == ' ' || c == '\t' || c == '\r':
				i++
			case c == '[':
				tokens = append(tokens, token{tokenOpen, "[", line})
				i++
			case c == ']':
				tokens = append(tokens, token{tokenClose, "]", line})
				i++
			case c == '"':
				end := strings.IndexByte(text[i+1:], '"')
				if end < 0 {
					return nil, fmt.Errorf("%w: line %d: unterminated string", ErrSyntax, line)
				}
				tokens = append(tokens, token{tokenString, text[i+1 : i+1+end], line})
				i += end + 2
			default:
				j := i
				for j < len(text) && !strings.ContainsRune(" \t\r[]\"#", rune(text[j])) {
					j++
				}
				word := text[i:j]
				kind := tokenWord
				if _, err := strconv.ParseFloat(word, 64); err == nil {
					kind = tokenNumber
				} else if word == "true" || word == "false" {
					kind = tokenString
				}
				tokens = append(tokens, token{kind, word, line})
				i = j
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return tokens, nil
}
