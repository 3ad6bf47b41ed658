package scene

import "errors"

// ErrNilNode is returned when a nil node is added to a container.
var ErrNilNode = errors.New("scene: nil node")

// Container accepts and releases top-level visual objects.
type Container interface {
	Add(n *Node) error
	Remove(n *Node) bool
}

// Scene is an in-memory Container rooted at a single group node.
type Scene struct {
	root *Node
}

var _ Container = (*Scene)(nil)

// New returns an empty scene.
func New() *Scene {
	return &Scene{root: NewGroup("scene")}
}

// Root returns the root node.
func (s *Scene) Root() *Node { return s.root }

// Add attaches n to the scene root.
func (s *Scene) Add(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	s.root.Add(n)
	return nil
}

// Remove detaches a top-level node.
func (s *Scene) Remove(n *Node) bool {
	return s.root.Remove(n)
}

// Contains reports whether n is attached anywhere below the root.
func (s *Scene) Contains(n *Node) bool {
	return n != nil && n != s.root && n.Root() == s.root
}
