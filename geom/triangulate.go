package geom

func IsInTriangle(p, a, b, c *Vector3) bool {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	c1, c2, c3 := ab.Cross(p.Sub(a)), bc.Cross(p.Sub(b)), ca.Cross(p.Sub(c))
	return c1.Dot(c2) > 0 && c2.Dot(c3) > 0 && c3.Dot(c1) > 0
}

// Triangulate splits a planar polygon into triangles by ear clipping and
// returns index triples into poly, preserving the polygon's winding.
func Triangulate(poly []*Vector3) [][3]int {
	var dst [][3]int
	if len(poly) < 3 {
		return dst
	}
	normal := &Vector3{}
	remaining := make([]int, len(poly))
	for i := range poly {
		remaining[i] = i
		v0 := poly[(i+len(poly)-1)%len(poly)]
		v1 := poly[i]
		v2 := poly[(i+1)%len(poly)]
		normal = normal.Add(v0.Sub(v1).Cross(v2.Sub(v1)))
	}
	normal = normal.Normalize()

	// O(N*N)
	count := len(remaining)
	for count >= 3 {
		lastCount := count
		for i := count - 1; i >= 0 && count >= 3; i-- {
			i0 := remaining[(i+count-1)%count]
			i1 := remaining[i]
			i2 := remaining[(i+1)%count]
			v0 := poly[i0]
			v1 := poly[i1]
			v2 := poly[i2]
			if v0.Sub(v1).Cross(v2.Sub(v1)).Dot(normal) < 0 {
				continue
			}
			ok := true
			var rest []int
			rest = append(rest, remaining[:i]...)
			rest = append(rest, remaining[i+1:]...)
			for _, r := range rest {
				if IsInTriangle(poly[r], v0, v1, v2) {
					ok = false
					break
				}
			}
			if ok {
				dst = append(dst, [3]int{i0, i1, i2})
				remaining = rest
				count--
			}
		}
		if lastCount == count {
			// maybe self-intersecting polygon
			for i := 0; i < len(remaining)-2; i++ {
				dst = append(dst, [3]int{remaining[0], remaining[i+1], remaining[i+2]})
			}
			break
		}
	}
	return dst
}
