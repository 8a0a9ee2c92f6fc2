package obj

// FaceShape identifies which index channels the vertex references of a
// face carry. All references within one face share the same shape.
type FaceShape int

const (
	VertexOnly FaceShape = iota
	VertexAndTexture
	VertexAndNormal
	VertexAndTextureAndNormal
)

func (s FaceShape) String() string {
	switch s {
	case VertexOnly:
		return "v"
	case VertexAndTexture:
		return "v/vt"
	case VertexAndNormal:
		return "v//vn"
	case VertexAndTextureAndNormal:
		return "v/vt/vn"
	}
	return "unknown"
}

type Vertex struct {
	X float64
	Y float64
	Z float64
	W float64 // 1.0 unless the file gives a 4th value
}

type Normal struct {
	X float64
	Y float64
	Z float64
}

type TexCoord struct {
	X float64
	Y float64
	W float64 // 0.0 unless the file gives a 3rd value
}

// ParamVertex is a placeholder for "vp" records. The tag is recognized
// but the payload is not parsed.
type ParamVertex struct {
}

// VertexRef points into the owning object's vertex/texture/normal lists.
// Indices are 1-based; 0 means the channel is absent for this shape.
type VertexRef struct {
	Vertex  int
	Texture int
	Normal  int

	Shape    FaceShape
	Material string // sticky usemtl name, empty if none was active
}

type Face struct {
	Refs []*VertexRef
}

// Shape returns the shape shared by all references of the face.
func (f *Face) Shape() FaceShape {
	if len(f.Refs) == 0 {
		return VertexOnly
	}
	return f.Refs[0].Shape
}

// Material returns the material stamped on the face, empty if none.
func (f *Face) Material() string {
	if len(f.Refs) == 0 {
		return ""
	}
	return f.Refs[0].Material
}

type Object struct {
	Name string

	// nil until an "s" line is seen.
	SmoothShaded *bool

	Vertexes      []*Vertex
	Normals       []*Normal
	TexCoords     []*TexCoord
	ParamVertexes []*ParamVertex
	Faces         []*Face

	MaterialLibs []string
}

func NewObject(name string) *Object {
	return &Object{Name: name}
}

type Document struct {
	Objects []*Object
}
