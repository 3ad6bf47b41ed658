// Package scene is the minimal scene graph the placement core talks to:
// tagged nodes with parent links, LOD levels, cameras and a viewport.
// A renderer walks the same tree to draw it.
package scene

import (
	"slices"

	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tag marks the nodes at which an upward walk from a picked mesh stops.
type Tag int

const (
	TagOther Tag = iota
	TagPieceRoot
	TagLODRoot
)

func (t Tag) String() string {
	switch t {
	case TagPieceRoot:
		return "piece-root"
	case TagLODRoot:
		return "lod-root"
	}
	return "other"
}

// Level is one LOD entry: the object shown once the viewer is at least
// Distance away.
type Level struct {
	Object   *Node
	Distance float64
}

// Node is an element of the scene tree. Position and Rotation are local to
// the parent; Rotation holds Euler angles in radians applied X, then Y,
// then Z.
type Node struct {
	Name     string
	Tag      Tag
	Kind     piece.Kind
	Position v3.Vec
	Rotation v3.Vec
	Visible  bool

	// Mesh and Material are set on drawable nodes. Both may be shared
	// between nodes and are never modified through a Node.
	Mesh     *kernel.Mesh
	Material *Material

	levels   []Level
	parent   *Node
	children []*Node
}

// NewGroup returns an empty visible node.
func NewGroup(name string) *Node {
	return &Node{Name: name, Visible: true}
}

// NewMesh returns a drawable node.
func NewMesh(name string, m *kernel.Mesh, mat *Material) *Node {
	return &Node{Name: name, Visible: true, Mesh: m, Material: mat}
}

// NewLOD returns an LOD root. Levels are added with AddLevel.
func NewLOD(name string) *Node {
	return &Node{Name: name, Tag: TagLODRoot, Visible: true}
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports whether child was attached.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	n.levels = slices.DeleteFunc(n.levels, func(l Level) bool { return l.Object == child })
	return true
}

// Traverse calls fn for n and every descendant in depth-first pre-order.
// Returning false from fn skips that node's children.
func (n *Node) Traverse(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// LocalMatrix returns the node's transform relative to its parent.
func (n *Node) LocalMatrix() sdf.M44 {
	r := sdf.RotateX(n.Rotation.X).Mul(sdf.RotateY(n.Rotation.Y)).Mul(sdf.RotateZ(n.Rotation.Z))
	return sdf.Translate3d(n.Position).Mul(r)
}

// WorldMatrix returns the node's transform relative to the tree root.
func (n *Node) WorldMatrix() sdf.M44 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// WorldPosition returns the origin of the node in world space.
func (n *Node) WorldPosition() v3.Vec {
	return n.WorldMatrix().MulPosition(v3.Vec{})
}

// AddLevel attaches object as a child shown from distance on. Levels stay
// sorted by distance.
func (n *Node) AddLevel(object *Node, distance float64) {
	n.Add(object)
	i, _ := slices.BinarySearchFunc(n.levels, distance, func(l Level, d float64) int {
		switch {
		case l.Distance < d:
			return -1
		case l.Distance > d:
			return 1
		}
		return 0
	})
	n.levels = slices.Insert(n.levels, i, Level{Object: object, Distance: distance})
}

// Levels returns the registered LOD levels, nearest first.
func (n *Node) Levels() []Level { return n.levels }

// LevelForDistance returns the object of the last level whose threshold
// does not exceed d, or nil when the node has no levels. There is no
// hysteresis: a viewer exactly at a threshold gets the farther level.
func (n *Node) LevelForDistance(d float64) *Node {
	if len(n.levels) == 0 {
		return nil
	}
	i := 1
	for ; i < len(n.levels); i++ {
		if d < n.levels[i].Distance {
			break
		}
	}
	return n.levels[i-1].Object
}

// ActiveLevel returns the level selected for a viewer at the given world
// position.
func (n *Node) ActiveLevel(viewer v3.Vec) *Node {
	return n.LevelForDistance(viewer.Sub(n.WorldPosition()).Length())
}

// UpdateLevels shows only the active level of every LOD root under n.
func (n *Node) UpdateLevels(viewer v3.Vec) {
	n.Traverse(func(c *Node) bool {
		if len(c.levels) == 0 {
			return true
		}
		active := c.ActiveLevel(viewer)
		for _, l := range c.levels {
			l.Object.Visible = l.Object == active
		}
		return true
	})
}
