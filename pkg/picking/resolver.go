package picking

import (
	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// PieceIndex tells whether a node is the root of a placed piece and, if so,
// where that piece stands.
type PieceIndex interface {
	PieceAt(root *scene.Node) (v3.Vec, bool)
}

// Deps are the collaborators a Resolver reads from. Targets and Pieces
// are owned by the placement engine and change as pieces are placed.
type Deps struct {
	Camera   scene.Camera
	Viewport scene.Viewport
	Plane    *scene.Node
	Targets  *TargetSet
	Pieces   PieceIndex
	Allow    *hex.AllowSet
}

// Resolver maps pointer events to hex cells.
type Resolver struct {
	cfg  *config.Config
	deps Deps
}

// NewResolver returns a resolver over the given collaborators.
func NewResolver(cfg *config.Config, d Deps) *Resolver {
	if d.Targets == nil {
		d.Targets = NewTargetSet()
	}
	return &Resolver{cfg: cfg, deps: d}
}

// SetViewport replaces the render target rectangle after a resize.
func (r *Resolver) SetViewport(v scene.Viewport) {
	r.deps.Viewport = v
}

// Viewport returns the current render target rectangle.
func (r *Resolver) Viewport() scene.Viewport {
	return r.deps.Viewport
}

// Raycaster returns the ray for an event, or false when the event has no
// position or the viewport is empty.
func (r *Resolver) Raycaster(ev Event) (Raycaster, bool) {
	cx, cy, ok := ev.Point()
	if !ok {
		return Raycaster{}, false
	}
	x, y, ok := r.deps.Viewport.NDC(cx, cy)
	if !ok {
		return Raycaster{}, false
	}
	return Raycaster{
		Ray: r.deps.Camera.Ray(x, y),
		Far: r.cfg.Pick.MaxDistance,
	}, true
}

// Resolve returns the cell under the event: the cell of the topmost placed
// piece hit, otherwise the empty cell under the pointer on the ground
// plane when it is inside the disk and allowed. Misses report false.
func (r *Resolver) Resolve(ev Event) (hex.Coord, bool) {
	rc, ok := r.Raycaster(ev)
	if !ok {
		return hex.Coord{}, false
	}
	if c, ok := r.resolvePiece(rc); ok {
		return c, true
	}
	return r.resolveGround(rc)
}

func (r *Resolver) resolvePiece(rc Raycaster) (hex.Coord, bool) {
	if r.deps.Pieces == nil || r.deps.Targets.Len() == 0 {
		return hex.Coord{}, false
	}
	hits := rc.IntersectObjects(r.deps.Targets.Nodes(), true)
	if len(hits) == 0 {
		return hex.Coord{}, false
	}
	// Highest point wins, not nearest: stacked pieces are picked by the
	// top surface.
	top := lo.MaxBy(hits, func(a, b Hit) bool { return a.Point.Y > b.Point.Y })

	pos, ok := r.deps.Pieces.PieceAt(ownerOf(top.Node))
	if !ok {
		return hex.Coord{}, false
	}
	return hex.WorldToAxial(pos.X, pos.Z, r.cfg.Grid.CellRadius), true
}

// ownerOf walks up from a hit mesh to the nearest piece or LOD root.
func ownerOf(n *scene.Node) *scene.Node {
	for n.Parent() != nil && n.Tag != scene.TagPieceRoot && n.Tag != scene.TagLODRoot {
		n = n.Parent()
	}
	return n
}

func (r *Resolver) resolveGround(rc Raycaster) (hex.Coord, bool) {
	if r.deps.Plane == nil {
		return hex.Coord{}, false
	}
	hits := rc.IntersectObjects([]*scene.Node{r.deps.Plane}, false)
	if len(hits) == 0 {
		return hex.Coord{}, false
	}
	p := hits[0].Point
	c := hex.WorldToAxial(p.X, p.Z, r.cfg.Grid.CellRadius)
	if !hex.InDisk(c.Q, c.R, r.cfg.Grid.Radius) {
		return hex.Coord{}, false
	}
	if !r.deps.Allow.Has(c) {
		return hex.Coord{}, false
	}
	return c, true
}
