// Package geometry builds and memoizes the meshes and materials of every
// piece kind and assembles renderable, LOD-wrapped piece instances.
package geometry

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/scene"
)

// Geometry is the cached mesh set for one piece kind. Meshes are shared by
// every instance and must not be modified.
type Geometry struct {
	Outer      *kernel.Mesh
	Inner      *kernel.Mesh // nil when the kind has no insert
	Simplified *kernel.Mesh
}

type materials struct {
	outer, inner, simple *scene.Material
}

// Cache builds piece geometry once per kind.
type Cache struct {
	cfg    *config.Config
	kernel kernel.Kernel
	log    *slog.Logger

	mu        sync.Mutex
	geoms     map[piece.Kind]*Geometry
	materials map[piece.Kind]*materials
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report cache builds.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New returns an empty cache. Nothing is built until EnsureCache or
// BuildPiece is called.
func New(cfg *config.Config, k kernel.Kernel, opts ...Option) *Cache {
	c := &Cache{
		cfg:       cfg,
		kernel:    k,
		log:       slog.Default(),
		geoms:     make(map[piece.Kind]*Geometry),
		materials: make(map[piece.Kind]*materials),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// EnsureCache builds the geometry of every kind that is still missing.
// It is a no-op once all kinds are present.
func (c *Cache) EnsureCache() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked()
}

func (c *Cache) ensureLocked() error {
	if len(c.geoms) == len(piece.Kinds) {
		return nil
	}
	for _, k := range piece.Kinds {
		if _, ok := c.geoms[k]; ok {
			continue
		}
		g, err := c.buildGeometry(k)
		if err != nil {
			return fmt.Errorf("geometry: build %s: %w", k, err)
		}
		m, err := c.buildMaterials(k)
		if err != nil {
			return fmt.Errorf("geometry: materials %s: %w", k, err)
		}
		c.geoms[k] = g
		c.materials[k] = m
		c.log.Debug("piece geometry cached",
			"kind", k,
			"outer_tris", g.Outer.TriangleCount(),
			"simplified_tris", g.Simplified.TriangleCount(),
			"insert", g.Inner != nil)
	}
	return nil
}

// Geometry returns the cached meshes of a kind, building the cache first
// if needed.
func (c *Cache) Geometry(k piece.Kind) (*Geometry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !k.Valid() {
		return nil, fmt.Errorf("geometry: %w: %v", piece.ErrUnknownKind, k)
	}
	if err := c.ensureLocked(); err != nil {
		return nil, err
	}
	return c.geoms[k], nil
}

// prism extrudes a hex profile upward so that its bottom sits at local
// y = plateThickness/2 and its top at plateThickness/2 + height.
func (c *Cache) prism(name string, radius, hole, height, bottom float64) (*kernel.Mesh, error) {
	s, err := c.kernel.HexPrism(radius, hole, height)
	if err != nil {
		return nil, err
	}
	s = c.kernel.Rotate(s, -90, 0, 0)
	s = c.kernel.Translate(s, 0, bottom+height/2, 0)
	m, err := c.kernel.ToMesh(s)
	if err != nil {
		return nil, err
	}
	m.PartName = name
	return m, nil
}

func (c *Cache) buildGeometry(k piece.Kind) (*Geometry, error) {
	kc, err := c.cfg.Kind(k)
	if err != nil {
		return nil, err
	}
	radius := c.cfg.Grid.CellRadius * kc.RadiusRatio
	hole := c.cfg.HoleRadius() * kc.HoleRatio
	height := c.cfg.PieceHeight(k)
	bottom := c.cfg.Grid.PlateThickness / 2

	g := &Geometry{}
	if g.Outer, err = c.prism(k.String()+"/outer", radius, hole, height, bottom); err != nil {
		return nil, err
	}
	if kc.InnerHeightRatio > 0 {
		if g.Inner, err = c.prism(k.String()+"/inner", hole*kc.InnerHoleRatio, 0, height*kc.InnerHeightRatio, bottom); err != nil {
			return nil, err
		}
	}
	if g.Simplified, err = c.prism(k.String()+"/simple", radius, 0, height, bottom); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Cache) buildMaterials(k piece.Kind) (*materials, error) {
	kc, err := c.cfg.Kind(k)
	if err != nil {
		return nil, err
	}
	m := &materials{
		outer:  lambert(k.String()+"/outer", kc.Outer),
		inner:  lambert(k.String()+"/inner", kc.Inner),
		simple: lambert(k.String()+"/simple", kc.Outer),
	}
	if k == piece.CurvedPiece {
		m.outer.Shading = scene.ShadingPhong
		m.outer.Specular = c.cfg.Material.Specular
		m.outer.Shininess = c.cfg.Material.Shininess
	}
	return m, nil
}

func lambert(name string, color config.RGB) *scene.Material {
	return &scene.Material{
		Name:       name,
		Shading:    scene.ShadingLambert,
		Color:      color,
		Opacity:    1,
		DepthWrite: true,
	}
}

// BuildPiece returns a new LOD root for a piece of kind k with a detailed
// level at the near threshold and a simplified level at the far one. Every
// call creates fresh nodes; meshes and materials are shared.
func (c *Cache) BuildPiece(k piece.Kind) (*scene.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !k.Valid() {
		return nil, fmt.Errorf("geometry: %w: %v", piece.ErrUnknownKind, k)
	}
	if err := c.ensureLocked(); err != nil {
		return nil, err
	}
	g, m := c.geoms[k], c.materials[k]

	detailed := scene.NewGroup("detailed")
	detailed.Add(scene.NewMesh("outer", g.Outer, m.outer))
	if g.Inner != nil {
		detailed.Add(scene.NewMesh("inner", g.Inner, m.inner))
	}
	simple := scene.NewGroup("simple")
	simple.Add(scene.NewMesh("simple", g.Simplified, m.simple))

	lod := scene.NewLOD(k.String())
	lod.Kind = k
	lod.AddLevel(detailed, c.cfg.LOD.Normal)
	lod.AddLevel(simple, c.cfg.LOD.Simple)
	return lod, nil
}

// Highlight returns the hover overlay: a thin translucent hex resting on
// local y = 0. It starts hidden.
func (c *Cache) Highlight() (*scene.Node, error) {
	h := c.cfg.Hover
	m, err := c.prism("highlight", c.cfg.Grid.CellRadius*h.RadiusRatio, 0, h.Thickness, 0)
	if err != nil {
		return nil, fmt.Errorf("geometry: highlight: %w", err)
	}
	n := scene.NewMesh("highlight", m, &scene.Material{
		Name:                "highlight",
		Shading:             scene.ShadingBasic,
		Color:               h.HighlightColor,
		Opacity:             h.Opacity,
		Transparent:         true,
		PolygonOffset:       true,
		PolygonOffsetFactor: c.cfg.Material.PolygonOffsetFactor,
		PolygonOffsetUnits:  c.cfg.Material.PolygonOffsetUnits,
	})
	n.Visible = false
	return n, nil
}

// PickPlaneExtent is the side length of the square ground pick plane.
func PickPlaneExtent(cfg *config.Config) float64 {
	return math.Sqrt(3) * cfg.Grid.CellRadius * (2*float64(cfg.Grid.Radius) + cfg.Pick.PlaneMargin)
}

// PickPlane returns the invisible ground plane used as the picking
// fallback, lying on the plate surface.
func (c *Cache) PickPlane() *scene.Node {
	ext := PickPlaneExtent(c.cfg)
	n := scene.NewMesh("pick-plane", kernel.PlaneMesh(ext, ext), &scene.Material{
		Name:        "pick-plane",
		Shading:     scene.ShadingBasic,
		Opacity:     c.cfg.Pick.PlaneOpacity,
		Transparent: true,
	})
	n.Mesh.PartName = "pick-plane"
	n.Position.Y = c.cfg.PlateTop()
	return n
}
