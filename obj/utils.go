package obj

import "github.com/binzume/objconv/geom"

// position resolves a 1-based vertex reference, nil if out of range.
func (o *Object) position(r *VertexRef) *geom.Vector3 {
	if r.Vertex < 1 || r.Vertex > len(o.Vertexes) {
		return nil
	}
	v := o.Vertexes[r.Vertex-1]
	return &geom.Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// Transform applies transform to all vertex positions.
func (o *Object) Transform(transform func(v *Vertex)) {
	for _, v := range o.Vertexes {
		transform(v)
	}
}

// Transform applies transform to all objects.
func (doc *Document) Transform(transform func(v *Vertex)) {
	for _, o := range doc.Objects {
		o.Transform(transform)
	}
}

// SmoothNormals computes one averaged normal per vertex from the face
// geometry. References with out-of-range indices are skipped.
func (o *Object) SmoothNormals() []geom.Vector3 {
	normals := make([]geom.Vector3, len(o.Vertexes))

	for _, f := range o.Faces {
		refs := f.Refs
		n := len(refs)
		if n < 3 {
			continue
		}
		for i, r := range refs {
			cur := o.position(r)
			prev := o.position(refs[(i+n-1)%n])
			next := o.position(refs[(i+1)%n])
			if cur == nil || prev == nil || next == nil {
				continue
			}
			// counter-clockwise front faces
			cross := next.Sub(cur).Cross(prev.Sub(cur))
			normals[r.Vertex-1] = *normals[r.Vertex-1].Add(cross.Normalize())
		}
	}
	for i := range normals {
		normals[i].Normalize()
	}
	return normals
}

// TriangulateFace splits an n-gon face into triangles and returns index
// triples into f.Refs.
func (o *Object) TriangulateFace(f *Face) [][3]int {
	if len(f.Refs) == 3 {
		return [][3]int{{0, 1, 2}}
	}
	poly := make([]*geom.Vector3, len(f.Refs))
	for i, r := range f.Refs {
		p := o.position(r)
		if p == nil {
			p = &geom.Vector3{}
		}
		poly[i] = p
	}
	return geom.Triangulate(poly)
}
