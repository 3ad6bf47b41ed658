// Package placement commits pieces to the board: it computes stacking
// heights, instantiates pieces and keeps the scene, the placed-piece
// registry and the pick targets in step.
package placement

import (
	"math"
	"slices"

	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// pointTolerance is the half-width of a placed piece's entry in the index.
const pointTolerance = 1e-9

// PlacedPiece is a committed piece. It never changes after placement.
type PlacedPiece struct {
	id    uuid.UUID
	seq   uint64
	kind  piece.Kind
	pos   v3.Vec
	coord hex.Coord
	root  *scene.Node
}

// ID returns the piece's unique identifier.
func (p *PlacedPiece) ID() uuid.UUID { return p.id }

// Kind returns the piece kind.
func (p *PlacedPiece) Kind() piece.Kind { return p.kind }

// Position returns the world position of the piece root; Y is its base
// height.
func (p *PlacedPiece) Position() v3.Vec { return p.pos }

// Coord returns the cell derived from the piece's world position.
func (p *PlacedPiece) Coord() hex.Coord { return p.coord }

// Root returns the scene node owning the piece's visuals.
func (p *PlacedPiece) Root() *scene.Node { return p.root }

// Bounds indexes the piece by its planar (x, z) position.
func (p *PlacedPiece) Bounds() rtreego.Rect {
	return rtreego.Point{p.pos.X, p.pos.Z}.ToRect(pointTolerance)
}

// Registry is the set of placed pieces, indexed by planar position for
// proximity queries and by root node for picking.
type Registry struct {
	tree   *rtreego.Rtree
	byRoot map[*scene.Node]*PlacedPiece
	byID   map[uuid.UUID]*PlacedPiece
	seq    uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tree:   rtreego.NewTree(2, 25, 50),
		byRoot: make(map[*scene.Node]*PlacedPiece),
		byID:   make(map[uuid.UUID]*PlacedPiece),
	}
}

// Add registers p. Adding a piece twice is a no-op.
func (r *Registry) Add(p *PlacedPiece) {
	if _, ok := r.byID[p.id]; ok {
		return
	}
	r.seq++
	p.seq = r.seq
	r.tree.Insert(p)
	r.byRoot[p.root] = p
	r.byID[p.id] = p
}

// Remove unregisters p and reports whether it was present.
func (r *Registry) Remove(p *PlacedPiece) bool {
	if _, ok := r.byID[p.id]; !ok {
		return false
	}
	r.tree.Delete(p)
	delete(r.byRoot, p.root)
	delete(r.byID, p.id)
	return true
}

// Lookup returns the piece owning root.
func (r *Registry) Lookup(root *scene.Node) (*PlacedPiece, bool) {
	p, ok := r.byRoot[root]
	return p, ok
}

// Get returns the piece with the given ID.
func (r *Registry) Get(id uuid.UUID) (*PlacedPiece, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// PieceAt returns the stored position of the piece rooted at root.
func (r *Registry) PieceAt(root *scene.Node) (v3.Vec, bool) {
	p, ok := r.byRoot[root]
	if !ok {
		return v3.Vec{}, false
	}
	return p.pos, true
}

// Near returns the pieces whose planar distance to (x, z) is strictly
// less than radius.
func (r *Registry) Near(x, z, radius float64) []*PlacedPiece {
	if radius <= 0 || r.Len() == 0 {
		return nil
	}
	box, err := rtreego.NewRect(rtreego.Point{x - radius, z - radius}, []float64{2 * radius, 2 * radius})
	if err != nil {
		return nil
	}
	found := lo.FilterMap(r.tree.SearchIntersect(box), func(s rtreego.Spatial, _ int) (*PlacedPiece, bool) {
		p := s.(*PlacedPiece)
		return p, math.Hypot(p.pos.X-x, p.pos.Z-z) < radius
	})
	sortBySeq(found)
	return found
}

// All returns every piece in placement order.
func (r *Registry) All() []*PlacedPiece {
	all := lo.Values(r.byID)
	sortBySeq(all)
	return all
}

// Len returns the number of placed pieces.
func (r *Registry) Len() int { return len(r.byID) }

func sortBySeq(ps []*PlacedPiece) {
	slices.SortFunc(ps, func(a, b *PlacedPiece) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
}
