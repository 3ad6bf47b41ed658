package kernel

import "github.com/chewxy/math32"

// Mesh is a triangle mesh suitable for rendering and picking.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
// Meshes handed out by the geometry cache are shared and must be treated
// as read-only.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which piece part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c [3]float32) {
	return m.Vertex(m.Indices[3*i]), m.Vertex(m.Indices[3*i+1]), m.Vertex(m.Indices[3*i+2])
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh has min > max.
func (m *Mesh) Bounds() (min, max [3]float32) {
	for i := range 3 {
		min[i] = math32.Inf(1)
		max[i] = math32.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := range 3 {
			min[i] = math32.Min(min[i], m.Vertices[v+i])
			max[i] = math32.Max(max[i], m.Vertices[v+i])
		}
	}
	return min, max
}

// PlaneMesh returns a single quad of the given extent in the XZ plane,
// centered on the origin, facing +Y.
func PlaneMesh(width, depth float64) *Mesh {
	hw, hd := float32(width/2), float32(depth/2)
	return &Mesh{
		Vertices: []float32{
			-hw, 0, -hd,
			-hw, 0, hd,
			hw, 0, hd,
			hw, 0, -hd,
		},
		Normals: []float32{
			0, 1, 0,
			0, 1, 0,
			0, 1, 0,
			0, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
