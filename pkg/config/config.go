// Package config holds every tunable of the placement core. Values are
// read-only inputs to the core; they are loaded once from defaults, an
// optional TOML file and HEXSTACK_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/piece"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8 `toml:"r"`
	G uint8 `toml:"g"`
	B uint8 `toml:"b"`
}

// Float returns the color scaled to [0, 1].
func (c RGB) Float() (r, g, b float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255
}

// Hex returns the color as a #rrggbb string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// GridConfig describes the base plate and its cells.
type GridConfig struct {
	Radius         int         `toml:"radius"          env:"RADIUS"`
	CellRadius     float64     `toml:"cell_radius"     env:"CELL_RADIUS"`
	HoleRatio      float64     `toml:"hole_ratio"      env:"HOLE_RATIO"`
	PlateThickness float64     `toml:"plate_thickness" env:"PLATE_THICKNESS"`
	FullDisk       bool        `toml:"full_disk"       env:"FULL_DISK"`
	Valid          []hex.Coord `toml:"valid"`
}

// KindConfig describes the geometry and palette of one piece kind.
// Radius is relative to the cell radius, Hole to the plate hole radius,
// Height to the plate thickness. A zero Hole yields a solid piece and a
// zero InnerHeight yields no inner insert.
type KindConfig struct {
	RadiusRatio      float64 `toml:"radius_ratio"`
	HoleRatio        float64 `toml:"hole_ratio"`
	HeightRatio      float64 `toml:"height_ratio"`
	InnerHoleRatio   float64 `toml:"inner_hole_ratio"`
	InnerHeightRatio float64 `toml:"inner_height_ratio"`
	Outer            RGB     `toml:"outer"`
	Inner            RGB     `toml:"inner"`
}

// PiecesConfig holds per-kind settings.
type PiecesConfig struct {
	Stacker     KindConfig `toml:"stacker"`
	ThinStacker KindConfig `toml:"thin_stacker"`
	CurvedPiece KindConfig `toml:"curved_piece"`
}

// StackConfig controls vertical stacking.
type StackConfig struct {
	GapRatio       float64 `toml:"gap_ratio"       env:"GAP_RATIO"`
	DetectionRatio float64 `toml:"detection_ratio" env:"DETECTION_RATIO"`
}

// HoverConfig controls pointer-move handling and the highlight overlay.
type HoverConfig struct {
	ThrottleMS     int     `toml:"throttle_ms"  env:"THROTTLE_MS"`
	Thickness      float64 `toml:"thickness"    env:"HIGHLIGHT_THICKNESS"`
	Opacity        float64 `toml:"opacity"      env:"HIGHLIGHT_OPACITY"`
	Offset         float64 `toml:"offset"       env:"HIGHLIGHT_OFFSET"`
	RadiusRatio    float64 `toml:"radius_ratio" env:"HIGHLIGHT_RADIUS_RATIO"`
	HighlightColor RGB     `toml:"color"`
}

// PickConfig controls ray picking.
type PickConfig struct {
	MaxDistance  float64 `toml:"max_distance"  env:"MAX_DISTANCE"`
	PlaneMargin  float64 `toml:"plane_margin"  env:"PLANE_MARGIN"`
	PlaneOpacity float64 `toml:"plane_opacity" env:"PLANE_OPACITY"`
}

// LODConfig holds camera-distance thresholds for the two detail levels.
type LODConfig struct {
	Normal float64 `toml:"normal" env:"NORMAL"`
	Simple float64 `toml:"simple" env:"SIMPLE"`
}

// MaterialConfig holds shading parameters shared by all pieces.
type MaterialConfig struct {
	Specular            RGB     `toml:"specular"`
	Shininess           float64 `toml:"shininess"             env:"SHININESS"`
	PolygonOffsetFactor float64 `toml:"polygon_offset_factor" env:"POLYGON_OFFSET_FACTOR"`
	PolygonOffsetUnits  float64 `toml:"polygon_offset_units"  env:"POLYGON_OFFSET_UNITS"`
}

// Tessellation modes.
const (
	TessellationExact         = "exact"
	TessellationMarchingCubes = "marching-cubes"
)

// GeometryConfig selects how piece solids are meshed.
type GeometryConfig struct {
	Tessellation string `toml:"tessellation" env:"TESSELLATION"`
	MeshCells    int    `toml:"mesh_cells"   env:"MESH_CELLS"`
}

// Config is the complete configuration surface.
type Config struct {
	Grid     GridConfig     `toml:"grid"     envPrefix:"GRID_"`
	Pieces   PiecesConfig   `toml:"pieces"`
	Stack    StackConfig    `toml:"stack"    envPrefix:"STACK_"`
	Hover    HoverConfig    `toml:"hover"    envPrefix:"HOVER_"`
	Pick     PickConfig     `toml:"pick"     envPrefix:"PICK_"`
	LOD      LODConfig      `toml:"lod"      envPrefix:"LOD_"`
	Material MaterialConfig `toml:"material" envPrefix:"MATERIAL_"`
	Geometry GeometryConfig `toml:"geometry" envPrefix:"GEOMETRY_"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Radius:         3,
			CellRadius:     1.0,
			HoleRatio:      0.7,
			PlateThickness: 0.4,
			Valid:          []hex.Coord{{Q: 0, R: 0}},
		},
		Pieces: PiecesConfig{
			Stacker: KindConfig{
				RadiusRatio:      0.75,
				HoleRatio:        0.85,
				HeightRatio:      1.0,
				InnerHoleRatio:   0.95,
				InnerHeightRatio: 0.7,
				Outer:            RGB{201, 201, 201},
				Inner:            RGB{176, 176, 176},
			},
			ThinStacker: KindConfig{
				RadiusRatio:      0.75,
				HoleRatio:        0.85,
				HeightRatio:      0.475,
				InnerHoleRatio:   0.95,
				InnerHeightRatio: 0.7,
				Outer:            RGB{107, 107, 107},
				Inner:            RGB{72, 72, 72},
			},
			CurvedPiece: KindConfig{
				RadiusRatio: 0.92,
				HeightRatio: 1.0,
				Outer:       RGB{50, 150, 250},
				Inner:       RGB{50, 150, 250},
			},
		},
		Stack: StackConfig{
			GapRatio:       0.025,
			DetectionRatio: 0.5,
		},
		Hover: HoverConfig{
			ThrottleMS:     16,
			Thickness:      0.04,
			Opacity:        0.45,
			Offset:         0.001,
			RadiusRatio:    0.92,
			HighlightColor: RGB{255, 48, 48},
		},
		Pick: PickConfig{
			MaxDistance:  53,
			PlaneMargin:  3,
			PlaneOpacity: 0,
		},
		LOD: LODConfig{
			Normal: 0,
			Simple: 50,
		},
		Material: MaterialConfig{
			Specular:            RGB{170, 170, 170},
			Shininess:           12,
			PolygonOffsetFactor: -2,
			PolygonOffsetUnits:  -2,
		},
		Geometry: GeometryConfig{
			Tessellation: TessellationExact,
			MeshCells:    64,
		},
	}
}

// Kind returns the settings for a piece kind.
func (c *Config) Kind(k piece.Kind) (KindConfig, error) {
	switch k {
	case piece.Stacker:
		return c.Pieces.Stacker, nil
	case piece.ThinStacker:
		return c.Pieces.ThinStacker, nil
	case piece.CurvedPiece:
		return c.Pieces.CurvedPiece, nil
	}
	return KindConfig{}, fmt.Errorf("config: %w: %v", piece.ErrUnknownKind, k)
}

// HoleRadius is the radius of the holes cut into the base plate.
func (c *Config) HoleRadius() float64 {
	return c.Grid.CellRadius * c.Grid.HoleRatio
}

// PieceHeight returns the height of a piece kind. Unknown kinds are
// treated as full height.
func (c *Config) PieceHeight(k piece.Kind) float64 {
	kc, err := c.Kind(k)
	if err != nil {
		return c.Grid.PlateThickness
	}
	return c.Grid.PlateThickness * kc.HeightRatio
}

// StackGap is the vertical clearance between stacked pieces.
func (c *Config) StackGap() float64 {
	return c.Grid.PlateThickness * c.Stack.GapRatio
}

// StackDetectionRadius is the planar distance under which a placed piece
// supports a new one.
func (c *Config) StackDetectionRadius() float64 {
	return c.Grid.CellRadius * c.Stack.DetectionRatio
}

// MoveThrottle is the minimum interval between accepted pointer moves.
func (c *Config) MoveThrottle() time.Duration {
	return time.Duration(c.Hover.ThrottleMS) * time.Millisecond
}

// PlateTop is the world height of the plate surface used for hover and
// ground picking.
func (c *Config) PlateTop() float64 {
	return c.Grid.PlateThickness + c.Hover.Offset
}

// AllowSet builds the set of valid placement cells.
func (c *Config) AllowSet() *hex.AllowSet {
	if c.Grid.FullDisk {
		return hex.NewDiskAllowSet(c.Grid.Radius)
	}
	return hex.NewAllowSet(c.Grid.Valid...)
}
