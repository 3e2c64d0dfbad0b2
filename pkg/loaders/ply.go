package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one "element" block of the header with its properties
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// PLYData contains the geometry read from a PLY file
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle), quads are split in two
}

// LoadPLY loads a PLY file and returns its vertex and face data
func LoadPLY(filename string) (*PLYData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Infof("loaded PLY %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces)/3, time.Since(startTime))
	return data, nil
}

// ReadPLY decodes ascii and binary PLY content
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var next valueReader
	switch header.Format {
	case "ascii":
		next = newASCIIReader(reader)
	case "binary_little_endian":
		next = newBinaryReader(reader, binary.LittleEndian)
	case "binary_big_endian":
		next = newBinaryReader(reader, binary.BigEndian)
	default:
		return nil, fmt.Errorf("%w: PLY format %q", ErrUnsupported, header.Format)
	}

	data := &PLYData{}
	for _, elem := range header.Elements {
		switch elem.Name {
		case "vertex":
			if err := readVertices(elem, next, data); err != nil {
				return nil, err
			}
		case "face":
			if err := readFaces(elem, next, data); err != nil {
				return nil, err
			}
		default:
			// other elements (edges, materials) are skipped
			for i := 0; i < elem.Count; i++ {
				for _, prop := range elem.Properties {
					if _, err := readProperty(prop, next); err != nil {
						return nil, fmt.Errorf("element %s: %w", elem.Name, err)
					}
				}
			}
		}
	}

	for _, idx := range data.Faces {
		if idx < 0 || idx >= len(data.Vertices) {
			return nil, fmt.Errorf("%w: face index %d out of range for %d vertices", ErrSyntax, idx, len(data.Vertices))
		}
	}
	return data, nil
}

// parsePLYHeader reads lines up to end_header, leaving reader at the body
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrSyntax)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header ended before end_header", ErrSyntax)
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: bad format line %q", ErrSyntax, line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: bad element line %q", ErrSyntax, line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrSyntax, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrSyntax)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			elem := &header.Elements[len(header.Elements)-1]
			elem.Properties = append(elem.Properties, prop)
		default:
			return nil, fmt.Errorf("%w: unknown header line %q", ErrSyntax, line)
		}
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("%w: invalid property definition", ErrSyntax)
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("%w: invalid list property definition", ErrSyntax)
		}
		if typeSize(parts[1]) == 0 || typeSize(parts[2]) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: unknown list types %s %s", ErrSyntax, parts[1], parts[2])
		}
		return PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if typeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("%w: unknown property type %s", ErrSyntax, parts[0])
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func readVertices(elem PLYElement, next valueReader, data *PLYData) error {
	xi, yi, zi := -1, -1, -1
	for i, prop := range elem.Properties {
		switch prop.Name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return fmt.Errorf("%w: vertex element without x, y, z", ErrSyntax)
	}

	data.Vertices = make([]core.Vec3, 0, elem.Count)
	values := make([]float64, len(elem.Properties))
	for v := 0; v < elem.Count; v++ {
		for i, prop := range elem.Properties {
			value, err := readProperty(prop, next)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", v, err)
			}
			values[i] = value
		}
		data.Vertices = append(data.Vertices, core.NewVec3(values[xi], values[yi], values[zi]))
	}
	return nil
}

func readFaces(elem PLYElement, next valueReader, data *PLYData) error {
	data.Faces = make([]int, 0, elem.Count*3)
	for f := 0; f < elem.Count; f++ {
		for _, prop := range elem.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if _, err := readProperty(prop, next); err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				continue
			}

			count, err := next(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", f, err)
			}
			n := int(count)
			if n != 3 && n != 4 {
				return fmt.Errorf("%w: face %d has %d vertices", ErrUnsupported, f, n)
			}
			var idx [4]int
			for i := 0; i < n; i++ {
				v, err := next(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				idx[i] = int(v)
			}
			data.Faces = append(data.Faces, idx[0], idx[1], idx[2])
			if n == 4 {
				data.Faces = append(data.Faces, idx[0], idx[2], idx[3])
			}
		}
	}
	return nil
}

// readProperty reads one property value. Lists are consumed and report their length.
func readProperty(prop PLYProperty, next valueReader) (float64, error) {
	if !prop.IsList {
		return next(prop.Type)
	}
	count, err := next(prop.ListType)
	if err != nil {
		return 0, err
	}
	for i := 0; i < int(count); i++ {
		if _, err := next(prop.Type); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// valueReader returns the next scalar of the given PLY type from the body
type valueReader func(dataType string) (float64, error)

func newASCIIReader(reader *bufio.Reader) valueReader {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)
	return func(dataType string) (float64, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, scanner.Text())
		}
		return v, nil
	}
}

func newBinaryReader(reader *bufio.Reader, order binary.ByteOrder) valueReader {
	var buf [8]byte
	return func(dataType string) (float64, error) {
		size := typeSize(dataType)
		if size == 0 {
			return 0, fmt.Errorf("%w: unknown type %s", ErrSyntax, dataType)
		}
		if _, err := io.ReadFull(reader, buf[:size]); err != nil {
			return 0, err
		}
		b := buf[:size]
		switch dataType {
		case "char", "int8":
			return float64(int8(b[0])), nil
		case "uchar", "uint8":
			return float64(b[0]), nil
		case "short", "int16":
			return float64(int16(order.Uint16(b))), nil
		case "ushort", "uint16":
			return float64(order.Uint16(b)), nil
		case "int", "int32":
			return float64(int32(order.Uint32(b))), nil
		case "uint", "uint32":
			return float64(order.Uint32(b)), nil
		case "float", "float32":
			return float64(math.Float32frombits(order.Uint32(b))), nil
		default: // double, float64
			return math.Float64frombits(order.Uint64(b)), nil
		}
	}
}

// typeSize returns the byte size of a PLY scalar type, 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
