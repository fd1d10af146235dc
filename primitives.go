package vantage

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh constructors for the stock primitives. Each returns a MeshSpec
// centered on the origin; set Offset to place it in the world.

// NewCube returns an axis-aligned cube with the given edge length.
func NewCube(name string, size float64) MeshSpec {
	h := size / 2
	verts := []mgl64.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	idx := []uint16{
		0, 2, 1, 0, 3, 2, // bottom
		4, 5, 6, 4, 6, 7, // top
		0, 1, 5, 0, 5, 4, // front
		2, 3, 7, 2, 7, 6, // back
		1, 2, 6, 1, 6, 5, // right
		3, 0, 4, 3, 4, 7, // left
	}
	return MeshSpec{Name: name, Vertices: verts, Indices: idx, Material: DefaultMaterial()}
}

// NewPlane returns a flat square in the XY plane.
func NewPlane(name string, size float64) MeshSpec {
	h := size / 2
	return MeshSpec{
		Name: name,
		Vertices: []mgl64.Vec3{
			{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0},
		},
		Indices:  []uint16{0, 1, 2, 0, 2, 3},
		Material: DefaultMaterial(),
	}
}

// NewIcosphere returns a subdivided icosahedron of the given radius.
// Subdivision levels above 3 are clamped to keep indices in 16-bit range.
func NewIcosphere(name string, radius float64, subdivisions int) MeshSpec {
	if subdivisions < 0 {
		subdivisions = 0
	}
	if subdivisions > 3 {
		subdivisions = 3
	}

	t := (1 + math.Sqrt(5)) / 2
	verts := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	idx := []uint16{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	// Each pass splits every triangle into four, caching midpoints so
	// shared edges stay welded.
	for s := 0; s < subdivisions; s++ {
		mid := make(map[[2]uint16]uint16)
		midpoint := func(a, b uint16) uint16 {
			key := [2]uint16{a, b}
			if a > b {
				key = [2]uint16{b, a}
			}
			if m, ok := mid[key]; ok {
				return m
			}
			v := verts[a].Add(verts[b]).Mul(0.5)
			verts = append(verts, v)
			m := uint16(len(verts) - 1)
			mid[key] = m
			return m
		}

		next := make([]uint16, 0, len(idx)*4)
		for i := 0; i < len(idx); i += 3 {
			a, b, c := idx[i], idx[i+1], idx[i+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		idx = next
	}

	for i := range verts {
		verts[i] = verts[i].Normalize().Mul(radius)
	}
	return MeshSpec{Name: name, Vertices: verts, Indices: idx, Material: DefaultMaterial()}
}

// NewTorus returns a torus with the given major and minor radii lying in
// the XY plane.
func NewTorus(name string, major, minor float64, majorSegments, minorSegments int) MeshSpec {
	if majorSegments < 3 {
		majorSegments = 3
	}
	if minorSegments < 3 {
		minorSegments = 3
	}

	verts := make([]mgl64.Vec3, 0, majorSegments*minorSegments)
	for i := 0; i < majorSegments; i++ {
		u := 2 * math.Pi * float64(i) / float64(majorSegments)
		cu, su := math.Cos(u), math.Sin(u)
		for j := 0; j < minorSegments; j++ {
			v := 2 * math.Pi * float64(j) / float64(minorSegments)
			cv, sv := math.Cos(v), math.Sin(v)
			r := major + minor*cv
			verts = append(verts, mgl64.Vec3{r * cu, r * su, minor * sv})
		}
	}

	idx := make([]uint16, 0, majorSegments*minorSegments*6)
	for i := 0; i < majorSegments; i++ {
		ni := (i + 1) % majorSegments
		for j := 0; j < minorSegments; j++ {
			nj := (j + 1) % minorSegments
			a := uint16(i*minorSegments + j)
			b := uint16(ni*minorSegments + j)
			c := uint16(ni*minorSegments + nj)
			d := uint16(i*minorSegments + nj)
			idx = append(idx, a, b, c, a, c, d)
		}
	}
	return MeshSpec{Name: name, Vertices: verts, Indices: idx, Material: DefaultMaterial()}
}

// NewPointCloud returns a mesh with no triangles; engines draw each
// vertex as a point.
func NewPointCloud(name string, points []mgl64.Vec3) MeshSpec {
	return MeshSpec{Name: name, Vertices: points, Material: DefaultMaterial()}
}
