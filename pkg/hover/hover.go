// Package hover drives the placement highlight from throttled pointer
// moves. It only shows where the next piece would go; it never places.
package hover

import (
	"log/slog"
	"time"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/picking"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Resolver maps an event to a cell.
type Resolver interface {
	Resolve(ev picking.Event) (hex.Coord, bool)
}

// ToolSource reports the currently selected tool.
type ToolSource interface {
	Tool() piece.Tool
}

// ToolFunc adapts a function to ToolSource.
type ToolFunc func() piece.Tool

// Tool calls f.
func (f ToolFunc) Tool() piece.Tool { return f() }

// Controller owns the highlight overlay and the last hovered cell.
type Controller struct {
	resolver  Resolver
	tools     ToolSource
	highlight *scene.Node
	cfg       *config.Config
	now       func() time.Time
	log       *slog.Logger

	last     time.Time
	started  bool
	hovered  hex.Coord
	hasHover bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used for throttling.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a controller moving highlight over resolved cells.
func New(resolver Resolver, tools ToolSource, highlight *scene.Node, cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		resolver:  resolver,
		tools:     tools,
		highlight: highlight,
		cfg:       cfg,
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PointerMove handles one pointer or touch move and reports whether the
// event was sampled. Without a placement tool the overlay is hidden and
// the hover cleared. Events arriving within the throttle interval of the
// last sampled one are dropped.
func (c *Controller) PointerMove(ev picking.Event) bool {
	if !c.tools.Tool().IsPlacement() {
		c.Reset()
		return false
	}

	now := c.now()
	if c.started && now.Sub(c.last) < c.cfg.MoveThrottle() {
		return false
	}
	c.started = true
	c.last = now

	coord, ok := c.resolver.Resolve(ev)
	c.hovered, c.hasHover = coord, ok
	if !ok {
		c.highlight.Visible = false
		return true
	}

	x, z := hex.AxialToWorld(coord.Q, coord.R, c.cfg.Grid.CellRadius)
	c.highlight.Position = v3.Vec{X: x, Y: c.cfg.PlateTop(), Z: z}
	c.highlight.Visible = true
	c.log.Debug("hover", "q", coord.Q, "r", coord.R)
	return true
}

// ResetThrottle forgets the last sampled time so the next move is
// accepted whatever the clock reads.
func (c *Controller) ResetThrottle() {
	c.started = false
	c.last = time.Time{}
}

// Hovered returns the cell resolved by the last sampled move.
func (c *Controller) Hovered() (hex.Coord, bool) {
	return c.hovered, c.hasHover
}

// Reset hides the overlay and forgets the hovered cell.
func (c *Controller) Reset() {
	c.highlight.Visible = false
	c.hovered, c.hasHover = hex.Coord{}, false
}
