package obj

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// TagKind identifies the record kind of one line.
type TagKind int

const (
	TagObject TagKind = iota
	TagVertex
	TagVertexNormal
	TagVertexTexture
	TagParamVertex
	TagFace
	TagLine
	TagSmoothShade
	TagGroup
	TagMaterialLib
	TagUseMaterial
)

// tagTable maps a line's leading token to its tag kind.
// Read-only after package init.
var tagTable = map[string]TagKind{
	"o":      TagObject,
	"v":      TagVertex,
	"vn":     TagVertexNormal,
	"vt":     TagVertexTexture,
	"vp":     TagParamVertex,
	"f":      TagFace,
	"l":      TagLine,
	"s":      TagSmoothShade,
	"g":      TagGroup,
	"mtllib": TagMaterialLib,
	"usemtl": TagUseMaterial,
}

var tagString = map[TagKind]string{}

func init() {
	for s, k := range tagTable {
		tagString[k] = s
	}
}

// UnknownTagError is returned when a line's first token is not in the
// tag table.
type UnknownTagError struct {
	Tag  string
	Line string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("obj: unknown tag %q in line %q", e.Tag, e.Line)
}

// ShapeError is returned when a face reference token does not match any
// known shape, or does not match the shape inferred for its line.
type ShapeError struct {
	Token string
	Shape FaceShape // expected shape; -1 if no shape could be inferred
}

func (e *ShapeError) Error() string {
	if e.Shape < VertexOnly || e.Shape > VertexAndTextureAndNormal {
		return fmt.Sprintf("obj: face token %q: unrecognized reference shape", e.Token)
	}
	return fmt.Sprintf("obj: face token %q: expected shape %q", e.Token, e.Shape)
}

func tagAndPayload(line string) (TagKind, string, error) {
	tok := line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		tok = line[:i]
	}
	kind, ok := tagTable[tok]
	if !ok {
		return 0, "", &UnknownTagError{Tag: tok, Line: line}
	}
	return kind, strings.TrimSpace(line[len(tok):]), nil
}

func tagOnly(line string) (TagKind, error) {
	kind, _, err := tagAndPayload(line)
	return kind, err
}

func parseFloats(payload string) ([]float64, error) {
	fields := strings.Fields(payload)
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func parseVertex(payload string) (*Vertex, error) {
	vals, err := parseFloats(payload)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 3:
		return &Vertex{X: vals[0], Y: vals[1], Z: vals[2], W: 1}, nil
	case 4:
		return &Vertex{X: vals[0], Y: vals[1], Z: vals[2], W: vals[3]}, nil
	}
	return nil, fmt.Errorf("obj: vertex needs 3 or 4 values, got %d", len(vals))
}

func parseNormal(payload string) (*Normal, error) {
	vals, err := parseFloats(payload)
	if err != nil {
		return nil, err
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("obj: vertex normal needs 3 values, got %d", len(vals))
	}
	return &Normal{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func parseTexCoord(payload string) (*TexCoord, error) {
	vals, err := parseFloats(payload)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 2:
		return &TexCoord{X: vals[0], Y: vals[1], W: 0}, nil
	case 3:
		return &TexCoord{X: vals[0], Y: vals[1], W: vals[2]}, nil
	}
	return nil, fmt.Errorf("obj: texture coord needs 2 or 3 values, got %d", len(vals))
}

// inferFaceShape classifies a face payload by its first reference token
// only. The remaining tokens are assumed to share the shape; the face
// parsers reject those that do not.
func inferFaceShape(payload string) (FaceShape, error) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return -1, &ShapeError{Token: payload, Shape: -1}
	}
	tok := fields[0]
	if strings.Contains(tok, "//") {
		return VertexAndNormal, nil
	}
	switch parts := strings.Split(tok, "/"); len(parts) {
	case 1:
		if _, err := strconv.Atoi(parts[0]); err == nil {
			return VertexOnly, nil
		}
	case 2:
		return VertexAndTexture, nil
	case 3:
		return VertexAndTextureAndNormal, nil
	}
	return -1, &ShapeError{Token: tok, Shape: -1}
}

func parseVertexOnlyFace(payload string) ([]*VertexRef, error) {
	var refs []*VertexRef
	for _, tok := range strings.Fields(payload) {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, err
		}
		refs = append(refs, &VertexRef{Vertex: v, Shape: VertexOnly})
	}
	return refs, nil
}

func parseVertexTextureFace(payload string) ([]*VertexRef, error) {
	var refs []*VertexRef
	for _, tok := range strings.Fields(payload) {
		parts := strings.Split(tok, "/")
		if len(parts) != 2 {
			return nil, &ShapeError{Token: tok, Shape: VertexAndTexture}
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, err
		}
		t, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, err
		}
		refs = append(refs, &VertexRef{Vertex: v, Texture: t, Shape: VertexAndTexture})
	}
	return refs, nil
}

func parseVertexNormalFace(payload string) ([]*VertexRef, error) {
	var refs []*VertexRef
	for _, tok := range strings.Fields(payload) {
		parts := strings.Split(tok, "//")
		if len(parts) != 2 {
			return nil, &ShapeError{Token: tok, Shape: VertexAndNormal}
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, err
		}
		refs = append(refs, &VertexRef{Vertex: v, Normal: n, Shape: VertexAndNormal})
	}
	return refs, nil
}

func parseVertexTextureNormalFace(payload string) ([]*VertexRef, error) {
	var refs []*VertexRef
	for _, tok := range strings.Fields(payload) {
		parts := strings.Split(tok, "/")
		if len(parts) != 3 {
			return nil, &ShapeError{Token: tok, Shape: VertexAndTextureAndNormal}
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, err
		}
		t, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, err
		}
		refs = append(refs, &VertexRef{Vertex: v, Texture: t, Normal: n, Shape: VertexAndTextureAndNormal})
	}
	return refs, nil
}

func parseFace(payload string) ([]*VertexRef, error) {
	shape, err := inferFaceShape(payload)
	if err != nil {
		return nil, err
	}
	switch shape {
	case VertexOnly:
		return parseVertexOnlyFace(payload)
	case VertexAndTexture:
		return parseVertexTextureFace(payload)
	case VertexAndNormal:
		return parseVertexNormalFace(payload)
	case VertexAndTextureAndNormal:
		return parseVertexTextureNormalFace(payload)
	}
	return nil, &ShapeError{Token: payload, Shape: shape}
}

// Parser for Wavefront OBJ files.
type Parser struct {
	name string
	r    io.Reader
}

// NewParser returns a new parser reading OBJ text from r. path names the
// default object and may be empty.
func NewParser(r io.Reader, path string) *Parser {
	return &Parser{name: path, r: r}
}

func (p *Parser) detectCodePage() {
	buf := make([]byte, 1024)
	n, _ := p.r.Read(buf)
	p.r = io.MultiReader(bytes.NewReader(buf[:n]), p.r)
	b := buf[:n]
	// a rune cut at the buffer boundary leaves at most utf8.UTFMax-1 bytes
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	if !utf8.Valid(b) {
		p.r = transform.NewReader(p.r, japanese.ShiftJIS.NewDecoder())
	}
}

// decodeState is the mutable state threaded across lines.
type decodeState struct {
	current  *Object
	mtlLibs  []string
	material string // sticky usemtl name
}

func (st *decodeState) line(line string) error {
	kind, payload, err := tagAndPayload(line)
	if err != nil {
		return err
	}
	switch kind {
	case TagObject:
		st.current.Name = payload
	case TagVertex:
		v, err := parseVertex(payload)
		if err != nil {
			return err
		}
		st.current.Vertexes = append(st.current.Vertexes, v)
	case TagVertexNormal:
		n, err := parseNormal(payload)
		if err != nil {
			return err
		}
		st.current.Normals = append(st.current.Normals, n)
	case TagVertexTexture:
		t, err := parseTexCoord(payload)
		if err != nil {
			return err
		}
		st.current.TexCoords = append(st.current.TexCoords, t)
	case TagSmoothShade:
		n, err := strconv.Atoi(payload)
		if err != nil {
			return err
		}
		on := n == 1
		st.current.SmoothShaded = &on
	case TagMaterialLib:
		st.mtlLibs = append(st.mtlLibs, payload)
	case TagUseMaterial:
		st.material = payload
	case TagFace:
		refs, err := parseFace(payload)
		if err != nil {
			return err
		}
		if st.material != "" {
			for _, r := range refs {
				r.Material = st.material
			}
		}
		st.current.Faces = append(st.current.Faces, &Face{Refs: refs})
	case TagLine, TagGroup, TagParamVertex:
		// recognized, no handler
	}
	return nil
}

func (p *Parser) Parse() (*Document, error) {
	p.detectCodePage()

	name := "object"
	if p.name != "" {
		base := filepath.Base(p.name)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	st := &decodeState{current: NewObject(name)}

	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := st.line(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := &Document{Objects: []*Object{st.current}}
	for _, o := range doc.Objects {
		o.MaterialLibs = st.mtlLibs
	}
	return doc, nil
}

// Parse decodes OBJ text held in memory.
func Parse(src string) (*Document, error) {
	return NewParser(strings.NewReader(src), "").Parse()
}

// Load reads an OBJ file.
func Load(path string) (*Document, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return NewParser(r, path).Parse()
}
