package obj

import (
	"math"
	"testing"
)

func TestSmoothNormals(t *testing.T) {
	doc, err := Parse("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3")
	if err != nil {
		t.Fatal(err)
	}
	normals := doc.Objects[0].SmoothNormals()
	if len(normals) != 3 {
		t.Fatal("expected one normal per vertex")
	}
	for i, n := range normals {
		if math.Abs(n.X) > 1e-9 || math.Abs(n.Y) > 1e-9 || math.Abs(n.Z-1) > 1e-9 {
			t.Error("normal should be +Z for a CCW triangle in the XY plane:", i, n)
		}
	}
}

func TestSmoothNormalsOutOfRange(t *testing.T) {
	doc, err := Parse("v 0 0 0\nf 1 2 3")
	if err != nil {
		t.Fatal(err)
	}
	// must not panic on dangling references
	normals := doc.Objects[0].SmoothNormals()
	if len(normals) != 1 {
		t.Fatal("expected one normal per vertex")
	}
}

func TestTriangulateFace(t *testing.T) {
	doc, err := Parse("v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4")
	if err != nil {
		t.Fatal(err)
	}
	o := doc.Objects[0]
	tris := o.TriangulateFace(o.Faces[0])
	if len(tris) != 2 {
		t.Error("quad should split into 2 triangles:", tris)
	}

	doc, _ = Parse("v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 3")
	o = doc.Objects[0]
	if tris := o.TriangulateFace(o.Faces[0]); len(tris) != 1 {
		t.Error("triangle should stay one triangle:", tris)
	}
}

func TestTransform(t *testing.T) {
	doc, err := Parse("v 1 2 3")
	if err != nil {
		t.Fatal(err)
	}
	doc.Transform(func(v *Vertex) {
		v.X *= 2
		v.Y *= 2
		v.Z *= 2
	})
	if *doc.Objects[0].Vertexes[0] != (Vertex{X: 2, Y: 4, Z: 6, W: 1}) {
		t.Error("transform:", doc.Objects[0].Vertexes[0])
	}
}
