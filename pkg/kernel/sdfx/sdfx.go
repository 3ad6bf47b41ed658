// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// ErrBadPrism is returned for prism dimensions that do not describe a solid.
var ErrBadPrism = errors.New("sdfx: invalid prism dimensions")

// prism records the profile a solid was extruded from so it can be meshed
// exactly instead of sampled.
type prism struct {
	radius, hole, height float64
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. m is the
// accumulated object-to-world transform applied since extrusion.
type sdfxSolid struct {
	s     sdf.SDF3
	prism *prism
	m     sdf.M44
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Distance returns the signed distance to the surface.
func (s *sdfxSolid) Distance(p [3]float64) float64 {
	return s.s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]})
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMarchingCubes samples every solid with uniform marching cubes at the
// given resolution instead of meshing prisms exactly.
func WithMarchingCubes(cells int) Option {
	return func(k *SdfxKernel) {
		k.marching = true
		if cells > 0 {
			k.cells = cells
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	marching bool
	cells    int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// hexagon returns the six corners of a regular hexagon, corner 0 on +X.
func hexagon(r float64) []v2.Vec {
	pts := make([]v2.Vec, 6)
	for i := range pts {
		a := float64(i) * math.Pi / 3
		pts[i] = v2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return pts
}

// HexPrism extrudes a hexagon (optionally with a hexagonal hole) along Z.
func (k *SdfxKernel) HexPrism(radius, holeRadius, height float64) (kernel.Solid, error) {
	if radius <= 0 || height <= 0 || holeRadius < 0 || holeRadius >= radius {
		return nil, fmt.Errorf("%w: radius %.4f hole %.4f height %.4f", ErrBadPrism, radius, holeRadius, height)
	}

	profile, err := sdf.Polygon2D(hexagon(radius))
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	if holeRadius > 0 {
		hole, err := sdf.Polygon2D(hexagon(holeRadius))
		if err != nil {
			return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
		}
		profile = sdf.Difference2D(profile, hole)
	}

	return &sdfxSolid{
		s:     sdf.Extrude3D(profile, height),
		prism: &prism{radius: radius, hole: holeRadius, height: height},
		m:     sdf.Identity3d(),
	}, nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return k.transform(unwrap(s), m)
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return k.transform(unwrap(s), m)
}

func (k *SdfxKernel) transform(s *sdfxSolid, m sdf.M44) kernel.Solid {
	return &sdfxSolid{
		s:     sdf.Transform3D(s.s, m),
		prism: s.prism,
		m:     m.Mul(s.m),
	}
}

// ToMesh converts a solid to a triangle mesh. Prisms are meshed exactly
// with flat-shaded faces unless marching cubes was requested.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	solid := unwrap(s)
	if solid.prism != nil && !k.marching {
		return prismMesh(solid.prism, solid.m), nil
	}
	return k.marchingCubes(solid.s), nil
}

func (k *SdfxKernel) marchingCubes(sdf3 sdf.SDF3) *kernel.Mesh {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
}

// meshBuilder accumulates flat-shaded triangles in world space.
type meshBuilder struct {
	m    sdf.M44
	mesh *kernel.Mesh
}

func (b *meshBuilder) vertex(p, n v3.Vec) {
	w := b.m.MulPosition(p)
	wn := b.m.MulPosition(n).Sub(b.m.MulPosition(v3.Vec{})).Normalize()
	b.mesh.Vertices = append(b.mesh.Vertices, float32(w.X), float32(w.Y), float32(w.Z))
	b.mesh.Normals = append(b.mesh.Normals, float32(wn.X), float32(wn.Y), float32(wn.Z))
	b.mesh.Indices = append(b.mesh.Indices, uint32(len(b.mesh.Indices)))
}

// tri emits a, b, c wound counter-clockwise around the outward normal n.
func (b *meshBuilder) tri(p0, p1, p2, n v3.Vec) {
	if p1.Sub(p0).Cross(p2.Sub(p0)).Dot(n) < 0 {
		p1, p2 = p2, p1
	}
	b.vertex(p0, n)
	b.vertex(p1, n)
	b.vertex(p2, n)
}

func (b *meshBuilder) quad(p0, p1, p2, p3, n v3.Vec) {
	b.tri(p0, p1, p2, n)
	b.tri(p0, p2, p3, n)
}

// prismMesh triangulates a hexagonal prism: fan caps when solid, ring caps
// and an inner wall when holed.
func prismMesh(p *prism, m sdf.M44) *kernel.Mesh {
	b := &meshBuilder{m: m, mesh: &kernel.Mesh{}}
	top, bot := p.height/2, -p.height/2
	up, down := v3.Vec{Z: 1}, v3.Vec{Z: -1}

	outer := hexagon(p.radius)
	at := func(c v2.Vec, z float64) v3.Vec { return v3.Vec{X: c.X, Y: c.Y, Z: z} }
	side := func(i int) v3.Vec {
		a := (float64(i) + 0.5) * math.Pi / 3
		return v3.Vec{X: math.Cos(a), Y: math.Sin(a)}
	}

	if p.hole == 0 {
		for i := 1; i < 5; i++ {
			b.tri(at(outer[0], top), at(outer[i], top), at(outer[i+1], top), up)
			b.tri(at(outer[0], bot), at(outer[i], bot), at(outer[i+1], bot), down)
		}
	} else {
		inner := hexagon(p.hole)
		for i := range 6 {
			j := (i + 1) % 6
			b.quad(at(outer[i], top), at(outer[j], top), at(inner[j], top), at(inner[i], top), up)
			b.quad(at(outer[i], bot), at(outer[j], bot), at(inner[j], bot), at(inner[i], bot), down)
			b.quad(at(inner[i], bot), at(inner[j], bot), at(inner[j], top), at(inner[i], top), side(i).MulScalar(-1))
		}
	}
	for i := range 6 {
		j := (i + 1) % 6
		b.quad(at(outer[i], bot), at(outer[j], bot), at(outer[j], top), at(outer[i], top), side(i))
	}
	return b.mesh
}
