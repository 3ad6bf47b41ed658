package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/engine"
	"github.com/chazu/hexstack/pkg/geometry"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/hover"
	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/chazu/hexstack/pkg/kernel/sdfx"
	"github.com/chazu/hexstack/pkg/picking"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/placement"
	"github.com/chazu/hexstack/pkg/scene"
	"github.com/chazu/hexstack/pkg/tessellate"
)

var (
	// ErrMissingCollaborator is returned by NewApp when the camera, scene
	// or viewport is absent.
	ErrMissingCollaborator = errors.New("missing collaborator")

	// ErrInvalidCell is returned when a direct placement targets a cell
	// outside the disk or the allow-set.
	ErrInvalidCell = errors.New("cell is not a valid placement target")
)

// Collaborators are supplied by the embedding renderer.
type Collaborators struct {
	Camera   scene.Camera
	Scene    *scene.Scene
	Viewport scene.Viewport
}

// App wires the placement core to a scene: geometry cache, picking,
// stacking, hover and the build-script engine.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	kernel kernel.Kernel
	now    func() time.Time

	camera    scene.Camera
	scene     *scene.Scene
	cache     *geometry.Cache
	allow     *hex.AllowSet
	highlight *scene.Node
	plane     *scene.Node
	targets   *picking.TargetSet
	resolver  *picking.Resolver
	placer    *placement.Engine
	hover     *hover.Controller
	scripts   *engine.Engine

	tool piece.Tool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithKernel replaces the kernel chosen from the geometry config.
func WithKernel(k kernel.Kernel) Option {
	return func(a *App) { a.kernel = k }
}

// WithClock replaces the wall clock used for pointer throttling.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// MeshData is the JSON-serializable mesh format sent to a renderer.
type MeshData struct {
	Vertices    []float32 `json:"vertices"`
	Normals     []float32 `json:"normals"`
	Indices     []uint32  `json:"indices"`
	PartName    string    `json:"partName"`
	Color       string    `json:"color"`
	Opacity     float64   `json:"opacity"`
	Transparent bool      `json:"transparent"`
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// PlacementData describes one placed piece.
type PlacementData struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	Q    int     `json:"q"`
	R    int     `json:"r"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// EvalResult is the full result of evaluating a build script.
type EvalResult struct {
	Placements []PlacementData `json:"placements"`
	Errors     []EvalErrorData `json:"errors"`
}

// kernelFor picks the meshing strategy named by the geometry config.
func kernelFor(cfg *config.Config) kernel.Kernel {
	if cfg.Geometry.Tessellation == config.TessellationMarchingCubes {
		return sdfx.New(sdfx.WithMarchingCubes(cfg.Geometry.MeshCells))
	}
	return sdfx.New()
}

// NewApp builds the placement core over the given collaborators. The
// highlight overlay and pick plane are added to the scene only when every
// precondition holds; on error the scene is left untouched.
func NewApp(cfg *config.Config, c Collaborators, opts ...Option) (*App, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("app: %w: config", ErrMissingCollaborator)
	case c.Camera == nil:
		return nil, fmt.Errorf("app: %w: camera", ErrMissingCollaborator)
	case c.Scene == nil:
		return nil, fmt.Errorf("app: %w: scene", ErrMissingCollaborator)
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return nil, fmt.Errorf("app: %w: viewport", ErrMissingCollaborator)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     slog.Default(),
		now:     time.Now,
		camera:  c.Camera,
		scene:   c.Scene,
		allow:   cfg.AllowSet(),
		targets: picking.NewTargetSet(),
		scripts: engine.NewEngine(),
		tool:    piece.ToolNone,
	}
	for _, o := range opts {
		o(a)
	}
	if a.kernel == nil {
		a.kernel = kernelFor(cfg)
	}

	a.cache = geometry.New(cfg, a.kernel, geometry.WithLogger(a.log))
	if err := a.cache.EnsureCache(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	highlight, err := a.cache.Highlight()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.highlight = highlight
	a.plane = a.cache.PickPlane()

	if err := a.scene.Add(a.highlight); err != nil {
		return nil, fmt.Errorf("app: add highlight: %w", err)
	}
	if err := a.scene.Add(a.plane); err != nil {
		a.scene.Remove(a.highlight)
		return nil, fmt.Errorf("app: add pick plane: %w", err)
	}

	a.placer = placement.New(cfg, a.cache, a.scene, a.targets, placement.WithLogger(a.log))
	a.resolver = picking.NewResolver(cfg, picking.Deps{
		Camera:   a.camera,
		Viewport: c.Viewport,
		Plane:    a.plane,
		Targets:  a.targets,
		Pieces:   a.placer,
		Allow:    a.allow,
	})
	a.hover = hover.New(a.resolver, a, a.highlight, cfg,
		hover.WithClock(func() time.Time { return a.now() }),
		hover.WithLogger(a.log))

	a.log.Info("app ready", "radius", cfg.Grid.Radius, "allowed", a.allow.Len())
	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config { return a.cfg }

// Highlight returns the hover overlay node.
func (a *App) Highlight() *scene.Node { return a.highlight }

// PickPlane returns the ground pick plane node.
func (a *App) PickPlane() *scene.Node { return a.plane }

// AllowSet returns the live set of valid placement cells.
func (a *App) AllowSet() *hex.AllowSet { return a.allow }

// Pieces returns the placed pieces in placement order.
func (a *App) Pieces() []*placement.PlacedPiece {
	return a.placer.Registry().All()
}

// SetViewport updates the render target rectangle after a resize.
func (a *App) SetViewport(v scene.Viewport) {
	a.resolver.SetViewport(v)
}

// SelectTool changes the active tool. Selecting a non-placement tool hides
// the highlight immediately.
func (a *App) SelectTool(t piece.Tool) {
	a.tool = t
	if !t.IsPlacement() {
		a.hover.Reset()
	}
	a.log.Debug("tool selected", "tool", string(t))
}

// Tool returns the active tool.
func (a *App) Tool() piece.Tool { return a.tool }

// PointerMove forwards a mouse or touch move to the hover controller and
// reports whether it was sampled.
func (a *App) PointerMove(ev picking.Event) bool {
	return a.hover.PointerMove(ev)
}

// Commit places a piece of the active tool's kind at the cell under ev,
// falling back to the last hovered cell when ev resolves to nothing (a
// touch end carries no position). It returns nil when no placement tool is
// active or no cell is known. Commits are never throttled.
func (a *App) Commit(ev picking.Event) (*placement.PlacedPiece, error) {
	k, ok := a.tool.Kind()
	if !ok {
		return nil, nil
	}
	c, ok := a.resolver.Resolve(ev)
	if !ok {
		c, ok = a.hover.Hovered()
	}
	if !ok {
		a.log.Debug("commit resolved no cell", "event", ev.Type.String())
		return nil, nil
	}
	return a.placer.PlaceAt(k, c)
}

// Place puts a piece directly on a cell, bypassing picking. The cell must
// be inside the disk and allowed.
func (a *App) Place(k piece.Kind, c hex.Coord) (*placement.PlacedPiece, error) {
	if !hex.InDisk(c.Q, c.R, a.cfg.Grid.Radius) || !a.allow.Has(c) {
		return nil, fmt.Errorf("app: place %s at (%d,%d): %w", k, c.Q, c.R, ErrInvalidCell)
	}
	return a.placer.PlaceAt(k, c)
}

// Clear removes every placed piece and forgets the hovered cell.
func (a *App) Clear() int {
	n := a.placer.Clear()
	a.hover.Reset()
	return n
}

// Frame tessellates the visible scene for the camera's position.
func (a *App) Frame() []MeshData {
	parts := tessellate.Tessellate(a.scene.Root(), a.camera.Position())
	out := make([]MeshData, 0, len(parts))
	for _, p := range parts {
		md := MeshData{
			Vertices: p.Mesh.Vertices,
			Normals:  p.Mesh.Normals,
			Indices:  p.Mesh.Indices,
			PartName: p.Mesh.PartName,
			Color:    "#ffffff",
			Opacity:  1,
		}
		if p.Material != nil {
			md.Color = p.Material.Color.Hex()
			md.Opacity = p.Material.Opacity
			md.Transparent = p.Material.Transparent
		}
		out = append(out, md)
	}
	return out
}

// Evaluate runs build script source against the board and reports the
// pieces it placed. Script errors are returned in the result, not as an
// error.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Placements: []PlacementData{},
		Errors:     []EvalErrorData{},
	}

	s, evalErrs, err := a.scripts.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}
	if len(result.Errors) > 0 {
		return result
	}

	placed, err := a.Run(s)
	for _, p := range placed {
		result.Placements = append(result.Placements, placementData(p))
	}
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}
	return result
}

func placementData(p *placement.PlacedPiece) PlacementData {
	pos := p.Position()
	return PlacementData{
		ID:   p.ID().String(),
		Kind: p.Kind().String(),
		Q:    p.Coord().Q,
		R:    p.Coord().R,
		X:    pos.X,
		Y:    pos.Y,
		Z:    pos.Z,
	}
}
