package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatFace(f *Face) (string, error) {
	toks := make([]string, 0, len(f.Refs))
	for _, r := range f.Refs {
		switch r.Shape {
		case VertexOnly:
			toks = append(toks, strconv.Itoa(r.Vertex))
		case VertexAndTexture:
			toks = append(toks, fmt.Sprintf("%d/%d", r.Vertex, r.Texture))
		case VertexAndNormal:
			toks = append(toks, fmt.Sprintf("%d//%d", r.Vertex, r.Normal))
		case VertexAndTextureAndNormal:
			toks = append(toks, fmt.Sprintf("%d/%d/%d", r.Vertex, r.Texture, r.Normal))
		default:
			// unreachable as long as the face came from the parser
			return "", &ShapeError{Token: strconv.Itoa(r.Vertex), Shape: r.Shape}
		}
	}
	return strings.Join(toks, " "), nil
}

func writeObject(w *bufio.Writer, o *Object) error {
	fmt.Fprintf(w, "%s %s\n", tagString[TagObject], o.Name)
	w.WriteString("\n")

	for _, v := range o.Vertexes {
		if v.W != 1.0 {
			fmt.Fprintf(w, "%s %.6f %.6f %.6f %.6f\n", tagString[TagVertex], v.X, v.Y, v.Z, v.W)
		} else {
			fmt.Fprintf(w, "%s %.6f %.6f %.6f\n", tagString[TagVertex], v.X, v.Y, v.Z)
		}
	}
	for _, vt := range o.TexCoords {
		fmt.Fprintf(w, "%s %.6f %.6f\n", tagString[TagVertexTexture], vt.X, vt.Y)
	}
	for _, vn := range o.Normals {
		fmt.Fprintf(w, "%s %.6f %.6f %.6f\n", tagString[TagVertexNormal], vn.X, vn.Y, vn.Z)
	}
	if o.SmoothShaded != nil {
		fmt.Fprintf(w, "%s %d\n", tagString[TagSmoothShade], boolToInt(*o.SmoothShaded))
	}
	w.WriteString("\n")

	for _, f := range o.Faces {
		if len(f.Refs) == 0 {
			continue
		}
		// not deduplicated across faces sharing the same material
		if mat := f.Material(); mat != "" {
			fmt.Fprintf(w, "%s %s\n", tagString[TagUseMaterial], mat)
		}
		s, err := formatFace(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", tagString[TagFace], s)
	}
	return nil
}

func WriteOBJ(doc *Document, ww io.Writer) error {
	w := bufio.NewWriter(ww)
	w.WriteString("# Exported by objconv\n")
	w.WriteString("\n")

	seen := map[string]bool{}
	for _, o := range doc.Objects {
		for _, lib := range o.MaterialLibs {
			if seen[lib] {
				continue
			}
			seen[lib] = true
			fmt.Fprintf(w, "%s %s\n", tagString[TagMaterialLib], lib)
		}
	}
	if len(seen) > 0 {
		w.WriteString("\n")
	}

	for _, o := range doc.Objects {
		if err := writeObject(w, o); err != nil {
			return err
		}
	}
	w.WriteString("# EOF\n")
	return w.Flush()
}

// Save writes doc to path, appending the .obj extension when missing.
// An existing file is overwritten.
func Save(doc *Document, path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".obj") {
		path += ".obj"
	}
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return WriteOBJ(doc, w)
}
