package placement

import (
	"fmt"
	"log/slog"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/geometry"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/picking"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Engine places pieces. It is the only writer of the registry and the pick
// targets and must be driven from a single goroutine.
type Engine struct {
	cfg      *config.Config
	cache    *geometry.Cache
	scene    scene.Container
	registry *Registry
	targets  *picking.TargetSet
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report placements.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an engine adding pieces to container and their meshes to
// targets.
func New(cfg *config.Config, cache *geometry.Cache, container scene.Container, targets *picking.TargetSet, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		cache:    cache,
		scene:    container,
		registry: NewRegistry(),
		targets:  targets,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the placed-piece registry.
func (e *Engine) Registry() *Registry { return e.registry }

// PieceAt implements picking.PieceIndex.
func (e *Engine) PieceAt(root *scene.Node) (v3.Vec, bool) {
	return e.registry.PieceAt(root)
}

// StackHeight returns the base height for a new piece of kind k at (x, z):
// the highest top among pieces closer than the detection radius plus the
// stack gap, or half the piece's own height when nothing is close.
// Meshes sit at local y = plate/2, so a piece shorter than the plate
// resting on the board shows its bottom below the plate top.
func (e *Engine) StackHeight(k piece.Kind, x, z float64) float64 {
	near := e.registry.Near(x, z, e.cfg.StackDetectionRadius())
	if len(near) == 0 {
		return e.cfg.PieceHeight(k) / 2
	}
	maxTop := 0.0
	for i, p := range near {
		top := p.pos.Y + e.cfg.PieceHeight(p.kind)
		if i == 0 || top > maxTop {
			maxTop = top
		}
	}
	return maxTop + e.cfg.StackGap()
}

// PlaceAt builds a piece of kind k at cell c, stacked on whatever is
// already there. The cell is not validated; callers gate on the disk and
// the allow-set first.
func (e *Engine) PlaceAt(k piece.Kind, c hex.Coord) (*PlacedPiece, error) {
	x, z := hex.AxialToWorld(c.Q, c.R, e.cfg.Grid.CellRadius)
	base := e.StackHeight(k, x, z)

	root, err := e.cache.BuildPiece(k)
	if err != nil {
		return nil, fmt.Errorf("placement: %w", err)
	}
	root.Position = v3.Vec{X: x, Y: base, Z: z}
	root.Tag = scene.TagPieceRoot
	root.Kind = k

	if err := e.scene.Add(root); err != nil {
		return nil, fmt.Errorf("placement: add to scene: %w", err)
	}

	p := &PlacedPiece{
		id:    uuid.New(),
		kind:  k,
		pos:   root.Position,
		coord: hex.WorldToAxial(x, z, e.cfg.Grid.CellRadius),
		root:  root,
	}
	e.registry.Add(p)
	e.targets.Add(root)
	root.Traverse(func(n *scene.Node) bool {
		if n.Mesh != nil {
			e.targets.Add(n)
		}
		return true
	})

	e.log.Info("piece placed",
		"id", p.id,
		"kind", k,
		"q", c.Q,
		"r", c.R,
		"base", base,
		"pieces", e.registry.Len())
	return p, nil
}

// Remove takes p off the board. It reports whether p was placed.
func (e *Engine) Remove(p *PlacedPiece) bool {
	if !e.registry.Remove(p) {
		return false
	}
	e.scene.Remove(p.root)
	p.root.Traverse(func(n *scene.Node) bool {
		e.targets.Remove(n)
		return true
	})
	e.log.Info("piece removed", "id", p.id, "kind", p.kind, "pieces", e.registry.Len())
	return true
}

// Clear removes every placed piece and returns how many were removed.
func (e *Engine) Clear() int {
	all := e.registry.All()
	for _, p := range all {
		e.Remove(p)
	}
	return len(all)
}
