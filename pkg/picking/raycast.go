package picking

import (
	"math"
	"slices"

	"github.com/chazu/hexstack/pkg/scene"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// barycentric slack for hits on shared triangle edges
const edgeEpsilon = 1e-9

// Hit is one ray/triangle intersection.
type Hit struct {
	Distance float64
	Point    v3.Vec
	Node     *scene.Node
}

// Raycaster intersects a ray with scene meshes. Hits closer than Near or
// farther than Far are ignored.
type Raycaster struct {
	Ray       scene.Ray
	Near, Far float64
}

// IntersectObjects returns every hit on nodes, sorted nearest first. With
// recursive set, descendants are tested too; below an LOD root only the
// level active for the ray origin is visited. Each node is tested once.
// Meshes on inactive levels are never hit, even when listed directly.
func (rc Raycaster) IntersectObjects(nodes []*scene.Node, recursive bool) []Hit {
	var hits []Hit
	seen := make(map[*scene.Node]struct{})
	for _, n := range nodes {
		if !rc.inActiveLevel(n) {
			continue
		}
		if recursive {
			n.Traverse(func(c *scene.Node) bool {
				if _, ok := seen[c]; ok {
					return false
				}
				seen[c] = struct{}{}
				hits = append(hits, rc.intersectNode(c)...)
				if len(c.Levels()) > 0 {
					active := c.ActiveLevel(rc.Ray.Origin)
					for _, l := range c.Levels() {
						if l.Object != active {
							seen[l.Object] = struct{}{}
						}
					}
				}
				return true
			})
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		hits = append(hits, rc.intersectNode(n)...)
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// inActiveLevel reports whether no LOD ancestor has n on a level other
// than its active one. Hits on a level that is not drawn would pick the
// simplified mesh instead of the visible one.
func (rc Raycaster) inActiveLevel(n *scene.Node) bool {
	for child, p := n, n.Parent(); p != nil; child, p = p, p.Parent() {
		if len(p.Levels()) == 0 {
			continue
		}
		active := p.ActiveLevel(rc.Ray.Origin)
		for _, l := range p.Levels() {
			if l.Object == child && child != active {
				return false
			}
		}
	}
	return true
}

func (rc Raycaster) intersectNode(n *scene.Node) []Hit {
	if n.Mesh == nil || n.Mesh.IsEmpty() {
		return nil
	}
	world := n.WorldMatrix()
	if !rc.hitsBox(world, n) {
		return nil
	}

	var hits []Hit
	m := n.Mesh
	toWorld := func(p [3]float32) v3.Vec {
		return world.MulPosition(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
	}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		t, ok := rc.triangle(toWorld(a), toWorld(b), toWorld(c))
		if !ok {
			continue
		}
		hits = append(hits, Hit{Distance: t, Point: rc.Ray.At(t), Node: n})
	}
	return hits
}

// hitsBox is the broadphase: a slab test against the world-space box
// around the node's mesh bounds.
func (rc Raycaster) hitsBox(world sdf.M44, n *scene.Node) bool {
	lmin, lmax := n.Mesh.Bounds()
	min := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := range 8 {
		corner := v3.Vec{X: float64(lmin[0]), Y: float64(lmin[1]), Z: float64(lmin[2])}
		if i&1 != 0 {
			corner.X = float64(lmax[0])
		}
		if i&2 != 0 {
			corner.Y = float64(lmax[1])
		}
		if i&4 != 0 {
			corner.Z = float64(lmax[2])
		}
		w := world.MulPosition(corner)
		min = v3.Vec{X: math.Min(min.X, w.X), Y: math.Min(min.Y, w.Y), Z: math.Min(min.Z, w.Z)}
		max = v3.Vec{X: math.Max(max.X, w.X), Y: math.Max(max.Y, w.Y), Z: math.Max(max.Z, w.Z)}
	}

	tmin, tmax := rc.Near, rc.Far
	o, d := rc.Ray.Origin, rc.Ray.Dir
	for _, axis := range [3][4]float64{
		{o.X, d.X, min.X, max.X},
		{o.Y, d.Y, min.Y, max.Y},
		{o.Z, d.Z, min.Z, max.Z},
	} {
		origin, dir, lo, hi := axis[0], axis[1], axis[2], axis[3]
		if math.Abs(dir) < 1e-15 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		t0, t1 := (lo-origin)/dir, (hi-origin)/dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin, tmax = math.Max(tmin, t0), math.Min(tmax, t1)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// triangle is the Moller-Trumbore test. It is two-sided.
func (rc Raycaster) triangle(a, b, c v3.Vec) (float64, bool) {
	e1, e2 := b.Sub(a), c.Sub(a)
	p := rc.Ray.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := rc.Ray.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < -edgeEpsilon || u > 1+edgeEpsilon {
		return 0, false
	}
	q := s.Cross(e1)
	v := rc.Ray.Dir.Dot(q) * inv
	if v < -edgeEpsilon || u+v > 1+edgeEpsilon {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < rc.Near || t > rc.Far {
		return 0, false
	}
	return t, true
}

// TargetSet is the mutable set of nodes eligible for picking, kept in
// insertion order.
type TargetSet struct {
	nodes []*scene.Node
	index map[*scene.Node]struct{}
}

// NewTargetSet returns a set holding nodes.
func NewTargetSet(nodes ...*scene.Node) *TargetSet {
	s := &TargetSet{index: make(map[*scene.Node]struct{})}
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

// Add inserts n and reports whether it was new.
func (s *TargetSet) Add(n *scene.Node) bool {
	if n == nil {
		return false
	}
	if _, ok := s.index[n]; ok {
		return false
	}
	s.index[n] = struct{}{}
	s.nodes = append(s.nodes, n)
	return true
}

// Remove deletes n and reports whether it was present.
func (s *TargetSet) Remove(n *scene.Node) bool {
	if _, ok := s.index[n]; !ok {
		return false
	}
	delete(s.index, n)
	s.nodes = slices.DeleteFunc(s.nodes, func(x *scene.Node) bool { return x == n })
	return true
}

// Contains reports whether n is a target.
func (s *TargetSet) Contains(n *scene.Node) bool {
	_, ok := s.index[n]
	return ok
}

// Nodes returns the targets in insertion order.
func (s *TargetSet) Nodes() []*scene.Node {
	return slices.Clone(s.nodes)
}

// Len returns the number of targets.
func (s *TargetSet) Len() int { return len(s.nodes) }

// Clear removes every target.
func (s *TargetSet) Clear() {
	s.nodes = nil
	clear(s.index)
}
