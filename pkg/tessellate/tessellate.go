// Package tessellate walks a scene tree and produces world-space triangle
// meshes for a renderer. One mesh is produced per drawable node.
package tessellate

import (
	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/chazu/hexstack/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Part is a drawable node baked into world space.
type Part struct {
	Mesh     *kernel.Mesh
	Material *scene.Material
}

// transformStack accumulates node transforms during traversal.
type transformStack struct {
	matrices []sdf.M44
}

func newTransformStack() *transformStack {
	return &transformStack{matrices: []sdf.M44{sdf.Identity3d()}}
}

func (ts *transformStack) push(local sdf.M44) {
	ts.matrices = append(ts.matrices, ts.top().Mul(local))
}

func (ts *transformStack) pop() {
	if len(ts.matrices) > 1 {
		ts.matrices = ts.matrices[:len(ts.matrices)-1]
	}
}

func (ts *transformStack) top() sdf.M44 {
	return ts.matrices[len(ts.matrices)-1]
}

// Tessellate walks root and returns one world-space part per visible
// drawable node. LOD roots contribute only the level selected for a viewer
// at the given position. Hidden nodes and their subtrees are skipped. The
// tree and its shared meshes are never mutated.
func Tessellate(root *scene.Node, viewer v3.Vec) []Part {
	if root == nil {
		return nil
	}
	ts := newTransformStack()
	// Start from the root's ancestors so a subtree lands where it is drawn.
	if p := root.Parent(); p != nil {
		ts.push(p.WorldMatrix())
	}
	return walkNode(root, viewer, ts)
}

// walkNode recursively traverses a node and its children, collecting parts.
func walkNode(n *scene.Node, viewer v3.Vec, ts *transformStack) []Part {
	if !n.Visible {
		return nil
	}
	ts.push(n.LocalMatrix())
	defer ts.pop()

	var parts []Part
	if n.Mesh != nil && !n.Mesh.IsEmpty() {
		parts = append(parts, Part{
			Mesh:     bake(n.Mesh, ts.top(), n.Name),
			Material: n.Material,
		})
	}

	if len(n.Levels()) > 0 {
		active := n.LevelForDistance(viewer.Sub(ts.top().MulPosition(v3.Vec{})).Length())
		for _, c := range n.Children() {
			if c == active || !isLevel(n, c) {
				parts = append(parts, walkNode(c, viewer, ts)...)
			}
		}
		return parts
	}

	for _, c := range n.Children() {
		parts = append(parts, walkNode(c, viewer, ts)...)
	}
	return parts
}

func isLevel(lod, child *scene.Node) bool {
	for _, l := range lod.Levels() {
		if l.Object == child {
			return true
		}
	}
	return false
}

// bake returns a copy of m with vertices and normals transformed.
func bake(m *kernel.Mesh, world sdf.M44, name string) *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: name,
	}
	origin := world.MulPosition(v3.Vec{})
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		p := world.MulPosition(v3.Vec{X: float64(m.Vertices[i]), Y: float64(m.Vertices[i+1]), Z: float64(m.Vertices[i+2])})
		out.Vertices[i], out.Vertices[i+1], out.Vertices[i+2] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := world.MulPosition(v3.Vec{X: float64(m.Normals[i]), Y: float64(m.Normals[i+1]), Z: float64(m.Normals[i+2])}).Sub(origin).Normalize()
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
	return out
}
