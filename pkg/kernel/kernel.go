// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx) provide the solids piece meshes are cut from.
// The kernel abstraction allows swapping backends without changing the
// geometry cache.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance from p to the surface;
	// negative inside.
	Distance(p [3]float64) float64
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// HexPrism returns a regular hexagonal prism extruded along Z and
	// centered on the origin, with corner 0 on +X. A positive holeRadius
	// cuts a concentric hexagonal hole through it.
	HexPrism(radius, holeRadius, height float64) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
