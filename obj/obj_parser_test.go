package obj

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) *Object {
	t.Helper()
	doc, err := Parse(src)
	if err != nil {
		t.Fatal("Parse failed:", err)
	}
	if len(doc.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(doc.Objects))
	}
	return doc.Objects[0]
}

func TestTagLexer(t *testing.T) {
	kind, payload, err := tagAndPayload("v 1.0 2.0 3.0")
	if err != nil {
		t.Fatal(err)
	}
	if kind != TagVertex || payload != "1.0 2.0 3.0" {
		t.Error("tagAndPayload:", kind, payload)
	}

	if kind, err := tagOnly("usemtl gold"); err != nil || kind != TagUseMaterial {
		t.Error("tagOnly:", kind, err)
	}

	// a line without a space is a tag candidate on its own
	if kind, err := tagOnly("vp"); err != nil || kind != TagParamVertex {
		t.Error("tagOnly:", kind, err)
	}
}

func TestParseVertex(t *testing.T) {
	o := parseOne(t, "v 1.0 2.0 3.0")
	if len(o.Vertexes) != 1 {
		t.Fatal("expected 1 vertex")
	}
	if *o.Vertexes[0] != (Vertex{X: 1, Y: 2, Z: 3, W: 1}) {
		t.Error("W should default to 1.0:", o.Vertexes[0])
	}

	o = parseOne(t, "v 1 2 3 0.5")
	if o.Vertexes[0].W != 0.5 {
		t.Error("explicit W:", o.Vertexes[0])
	}

	if _, err := Parse("v 1 2"); err == nil {
		t.Error("2 values should fail")
	}
	if _, err := Parse("v 1 x 3"); err == nil {
		t.Error("non-numeric token should fail")
	}
}

func TestParseTexCoord(t *testing.T) {
	o := parseOne(t, "vt 0.5 0.25")
	if *o.TexCoords[0] != (TexCoord{X: 0.5, Y: 0.25, W: 0}) {
		t.Error("W should default to 0.0:", o.TexCoords[0])
	}

	o = parseOne(t, "vt 0.5 0.25 0.125")
	if o.TexCoords[0].W != 0.125 {
		t.Error("explicit W:", o.TexCoords[0])
	}
}

func TestParseNormal(t *testing.T) {
	o := parseOne(t, "vn 0 1 0")
	if *o.Normals[0] != (Normal{X: 0, Y: 1, Z: 0}) {
		t.Error("normal:", o.Normals[0])
	}
	if _, err := Parse("vn 0 1"); err == nil {
		t.Error("2 values should fail")
	}
}

func TestNormalizedSpacing(t *testing.T) {
	o := parseOne(t, "v   1.0\t 2.0   3.0")
	if *o.Vertexes[0] != (Vertex{X: 1, Y: 2, Z: 3, W: 1}) {
		t.Error("internal whitespace runs should be accepted:", o.Vertexes[0])
	}
}

func TestFaceShapes(t *testing.T) {
	tests := []struct {
		line    string
		shape   FaceShape
		refs    int
		texture int
		normal  int
	}{
		{"f 1 2 3", VertexOnly, 3, 0, 0},
		{"f 1/4 2/5 3/6", VertexAndTexture, 3, 4, 0},
		{"f 1//7 2//8 3//9", VertexAndNormal, 3, 0, 7},
		{"f 1/1/1 2/2/2 3/3/3 4/4/4", VertexAndTextureAndNormal, 4, 1, 1},
	}
	for _, tt := range tests {
		o := parseOne(t, tt.line)
		if len(o.Faces) != 1 {
			t.Fatalf("%q: expected 1 face", tt.line)
		}
		f := o.Faces[0]
		if len(f.Refs) != tt.refs {
			t.Errorf("%q: expected %d refs, got %d", tt.line, tt.refs, len(f.Refs))
		}
		for _, r := range f.Refs {
			if r.Shape != tt.shape {
				t.Errorf("%q: shape %v on ref %v", tt.line, r.Shape, r)
			}
		}
		if f.Refs[0].Texture != tt.texture || f.Refs[0].Normal != tt.normal {
			t.Errorf("%q: first ref %+v", tt.line, f.Refs[0])
		}
	}
}

func TestShapeInference(t *testing.T) {
	// only the first token determines the shape; "2/2" then fails the
	// arity check for v/vt/vn
	_, err := Parse("f 1/1/1 2/2")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatal("expected ShapeError, got:", err)
	}
	if shapeErr.Token != "2/2" || shapeErr.Shape != VertexAndTextureAndNormal {
		t.Error("ShapeError:", shapeErr)
	}

	if _, err := Parse("f x y z"); err == nil {
		t.Error("uninferable shape should fail")
	}
}

func TestUnknownTag(t *testing.T) {
	_, err := Parse("qq 1 2")
	var tagErr *UnknownTagError
	if !errors.As(err, &tagErr) {
		t.Fatal("expected UnknownTagError, got:", err)
	}
	if tagErr.Tag != "qq" {
		t.Error("offending tag:", tagErr.Tag)
	}
	if !strings.Contains(tagErr.Error(), "qq 1 2") {
		t.Error("error should name the line:", tagErr)
	}

	if _, err := Parse("zz 1 2 3"); err == nil {
		t.Error("unknown tags are never silently ignored")
	}
}

func TestIgnoredTags(t *testing.T) {
	o := parseOne(t, "l 1 2\ng side\nvp 0.5 0.5\nv 1 2 3")
	if len(o.Vertexes) != 1 || len(o.Faces) != 0 || len(o.ParamVertexes) != 0 {
		t.Error("l/g/vp must have no effect on the model")
	}
}

func TestCommentsAndBlankLines(t *testing.T) {
	o := parseOne(t, "# comment\n\n   \nv 1 2 3\n# another\n")
	if len(o.Vertexes) != 1 {
		t.Error("comments and blank lines should be dropped")
	}
}

func TestObjectRename(t *testing.T) {
	o := parseOne(t, "v 1 2 3\no cube")
	if o.Name != "cube" {
		t.Error("o tag should rename the object:", o.Name)
	}
	if len(o.Vertexes) != 1 {
		t.Error("rename must not reset accumulated data")
	}

	// a second o tag renames again, never starts a new object
	o = parseOne(t, "o first\no second")
	if o.Name != "second" {
		t.Error("name:", o.Name)
	}
}

func TestSmoothShade(t *testing.T) {
	o := parseOne(t, "s 1")
	if o.SmoothShaded == nil || !*o.SmoothShaded {
		t.Error("s 1 should set the flag")
	}
	o = parseOne(t, "s 0")
	if o.SmoothShaded == nil || *o.SmoothShaded {
		t.Error("s 0 should set the flag to false")
	}
	o = parseOne(t, "v 1 2 3")
	if o.SmoothShaded != nil {
		t.Error("flag should be unset without an s line")
	}
	if _, err := Parse("s x"); err == nil {
		t.Error("non-integer payload should fail")
	}
}

func TestMaterialStickiness(t *testing.T) {
	o := parseOne(t, "usemtl A\nf 1 2 3\nf 4 5 6")
	if len(o.Faces) != 2 {
		t.Fatal("expected 2 faces")
	}
	for _, f := range o.Faces {
		for _, r := range f.Refs {
			if r.Material != "A" {
				t.Error("sticky material should reach every ref:", r)
			}
		}
	}

	o = parseOne(t, "f 1 2 3\nusemtl B\nf 4 5 6")
	if o.Faces[0].Material() != "" || o.Faces[1].Material() != "B" {
		t.Error("material applies only from its usemtl line on")
	}
}

func TestMaterialLibs(t *testing.T) {
	o := parseOne(t, "mtllib a.mtl\nv 1 2 3\nmtllib b.mtl")
	if len(o.MaterialLibs) != 2 || o.MaterialLibs[0] != "a.mtl" || o.MaterialLibs[1] != "b.mtl" {
		t.Error("mtllib order:", o.MaterialLibs)
	}
}

func TestDefaultObjectName(t *testing.T) {
	o := parseOne(t, "v 1 2 3")
	if o.Name != "object" {
		t.Error("default name:", o.Name)
	}

	doc, err := NewParser(strings.NewReader("v 1 2 3"), "models/teapot.obj").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Objects[0].Name != "teapot" {
		t.Error("name from path:", doc.Objects[0].Name)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	if !os.IsNotExist(err) {
		t.Error("expected not-found error, got:", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	o := doc.Objects[0]
	if o.Name != "tri" || len(o.Vertexes) != 3 || len(o.Faces) != 1 {
		t.Error("loaded object:", o.Name, len(o.Vertexes), len(o.Faces))
	}
}

func TestShiftJISFallback(t *testing.T) {
	// "o <U+65E5 U+672C>" in Shift_JIS. Only 4 non-ASCII bytes at the
	// very end of the input, so none may be trimmed away as a cut rune.
	src := append([]byte("o "), 0x93, 0xfa, 0x96, 0x7b)
	doc, err := NewParser(bytes.NewReader(src), "").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Objects[0].Name != "日本" {
		t.Error("name:", doc.Objects[0].Name)
	}

	// "o <U+65E5 U+672C U+8A9E>" in Shift_JIS
	src = append([]byte("o "), 0x93, 0xfa, 0x96, 0x7b, 0x8c, 0xea)
	doc, err = NewParser(bytes.NewReader(src), "").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Objects[0].Name != "日本語" {
		t.Error("name:", doc.Objects[0].Name)
	}
}

func TestCodePageBufferBoundary(t *testing.T) {
	// UTF-8 rune straddling the 1024-byte detection buffer must not
	// trip the Shift_JIS fallback
	name := strings.Repeat("a", 1020) + "日本"
	doc, err := NewParser(strings.NewReader("o "+name), "").Parse()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Objects[0].Name != name {
		t.Error("name:", doc.Objects[0].Name)
	}
}
