package converter

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/obj"
)

const unlitMaterialExt = "KHR_materials_unlit"

type OBJToGLTFOption struct {
	Scale      float64 // Default: 1.0
	ForceUnlit bool

	// Compute smooth normals when the source has none.
	GenerateNormals bool
}

type objToGltf struct {
	*OBJToGLTFOption
	*gltf.Document
	materialMap map[string]uint32
}

func NewOBJToGLTFConverter(options *OBJToGLTFOption) *objToGltf {
	if options == nil {
		options = &OBJToGLTFOption{}
	}
	if options.Scale == 0 {
		options.Scale = 1.0
	}
	return &objToGltf{
		OBJToGLTFOption: options,
		Document:        gltf.NewDocument(),
		materialMap:     map[string]uint32{},
	}
}

// convertMaterial emits default PBR parameters only. Material libraries
// are opaque references, so nothing beyond the usemtl name is known.
func (m *objToGltf) convertMaterial(name string) *gltf.Material {
	var rf float32 = 0.9
	var mf float32 = 0
	mm := &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			RoughnessFactor: &rf,
			MetallicFactor:  &mf,
		},
	}
	if m.ForceUnlit {
		mm.Extensions = map[string]interface{}{unlitMaterialExt: map[string]string{}}
	}
	return mm
}

func (m *objToGltf) material(name string) uint32 {
	if i, ok := m.materialMap[name]; ok {
		return i
	}
	i := uint32(len(m.Materials))
	m.Materials = append(m.Materials, m.convertMaterial(name))
	m.materialMap[name] = i
	return i
}

func (m *objToGltf) convertObject(o *obj.Object) (*gltf.Mesh, error) {
	scale := m.Scale
	useTex, useNormal := false, false
	for _, f := range o.Faces {
		switch f.Shape() {
		case obj.VertexAndTexture:
			useTex = true
		case obj.VertexAndNormal:
			useNormal = true
		case obj.VertexAndTextureAndNormal:
			useTex = true
			useNormal = true
		}
	}
	genNormal := m.GenerateNormals && !useNormal
	var smooth []geom.Vector3
	if genNormal {
		smooth = o.SmoothNormals()
		useNormal = true
	}

	type refKey struct {
		v, t, n int
	}
	index := map[refKey]uint32{}
	var positions [][3]float32
	var texcoords [][2]float32
	var normals [][3]float32

	addRef := func(r *obj.VertexRef) (uint32, error) {
		k := refKey{r.Vertex, r.Texture, r.Normal}
		if i, ok := index[k]; ok {
			return i, nil
		}
		if r.Vertex < 1 || r.Vertex > len(o.Vertexes) {
			return 0, errors.Errorf("vertex index %d out of range in object %q", r.Vertex, o.Name)
		}
		v := o.Vertexes[r.Vertex-1]
		positions = append(positions, [3]float32{float32(v.X * scale), float32(v.Y * scale), float32(v.Z * scale)})
		if useTex {
			var tc [2]float32
			if r.Texture >= 1 && r.Texture <= len(o.TexCoords) {
				t := o.TexCoords[r.Texture-1]
				// obj V origin is bottom-left
				tc = [2]float32{float32(t.X), float32(1 - t.Y)}
			}
			texcoords = append(texcoords, tc)
		}
		if useNormal {
			var nn [3]float32
			if genNormal {
				n := smooth[r.Vertex-1]
				nn = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
			} else if r.Normal >= 1 && r.Normal <= len(o.Normals) {
				n := o.Normals[r.Normal-1]
				nn = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
			}
			normals = append(normals, nn)
		}
		i := uint32(len(positions) - 1)
		index[k] = i
		return i, nil
	}

	indices := map[int][]uint32{}
	var matOrder []int // -1: no active material
	for _, f := range o.Faces {
		if len(f.Refs) < 3 {
			continue
		}
		mat := -1
		if name := f.Material(); name != "" {
			mat = int(m.material(name))
		}
		refIdx := make([]uint32, len(f.Refs))
		for i, r := range f.Refs {
			idx, err := addRef(r)
			if err != nil {
				return nil, err
			}
			refIdx[i] = idx
		}
		if _, ok := indices[mat]; !ok {
			matOrder = append(matOrder, mat)
			indices[mat] = []uint32{}
		}
		for _, tri := range o.TriangulateFace(f) {
			indices[mat] = append(indices[mat], refIdx[tri[0]], refIdx[tri[1]], refIdx[tri[2]])
		}
	}
	if len(positions) == 0 {
		return nil, nil
	}

	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(m.Document, positions),
	}
	if useTex {
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(m.Document, texcoords)
	}
	if useNormal && !m.ForceUnlit {
		attributes["NORMAL"] = modeler.WriteNormal(m.Document, normals)
	}

	var primitives []*gltf.Primitive
	for _, mat := range matOrder {
		primitive := &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(m.Document, indices[mat])),
			Attributes: attributes,
		}
		if mat >= 0 {
			primitive.Material = gltf.Index(uint32(mat))
		}
		primitives = append(primitives, primitive)
	}
	return &gltf.Mesh{Name: o.Name, Primitives: primitives}, nil
}

func (m *objToGltf) Convert(doc *obj.Document) (*gltf.Document, error) {
	for _, o := range doc.Objects {
		node := &gltf.Node{Name: o.Name}
		mesh, err := m.convertObject(o)
		if err != nil {
			return nil, err
		}
		if mesh != nil && len(mesh.Primitives) > 0 {
			node.Mesh = gltf.Index(uint32(len(m.Document.Meshes)))
			m.Document.Meshes = append(m.Document.Meshes, mesh)
		}
		m.Scenes[0].Nodes = append(m.Scenes[0].Nodes, uint32(len(m.Nodes)))
		m.Nodes = append(m.Nodes, node)
	}
	if m.ForceUnlit {
		m.ExtensionsUsed = append(m.ExtensionsUsed, unlitMaterialExt)
	}
	return m.Document, nil
}
