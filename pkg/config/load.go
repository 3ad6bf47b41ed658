package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEXSTACK_"

// Load returns the default configuration overlaid with the TOML file at
// path (skipped when path is empty) and then with HEXSTACK_* environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays TOML data onto cfg. Keys absent from data keep their
// current values; unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode toml: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encode toml: %w", err)
	}
	return data, nil
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Grid.Radius >= 0, "grid.radius is %d, must not be negative", c.Grid.Radius)
	check(c.Grid.CellRadius > 0, "grid.cell_radius is %.4f, must be positive", c.Grid.CellRadius)
	check(c.Grid.HoleRatio > 0 && c.Grid.HoleRatio < 1, "grid.hole_ratio is %.4f, must be in (0, 1)", c.Grid.HoleRatio)
	check(c.Grid.PlateThickness > 0, "grid.plate_thickness is %.4f, must be positive", c.Grid.PlateThickness)

	for _, k := range piece.Kinds {
		kc, _ := c.Kind(k)
		check(kc.RadiusRatio > 0, "pieces.%s.radius_ratio is %.4f, must be positive", k, kc.RadiusRatio)
		check(kc.HeightRatio > 0, "pieces.%s.height_ratio is %.4f, must be positive", k, kc.HeightRatio)
		check(kc.HoleRatio >= 0, "pieces.%s.hole_ratio is %.4f, must not be negative", k, kc.HoleRatio)
		check(c.HoleRadius()*kc.HoleRatio < c.Grid.CellRadius*kc.RadiusRatio,
			"pieces.%s: hole is wider than the piece", k)
		check(kc.InnerHeightRatio >= 0, "pieces.%s.inner_height_ratio is %.4f, must not be negative", k, kc.InnerHeightRatio)
		check(kc.InnerHeightRatio == 0 || kc.HoleRatio > 0,
			"pieces.%s: an inner insert needs a hole", k)
		check(kc.InnerHeightRatio == 0 || kc.InnerHoleRatio > 0,
			"pieces.%s.inner_hole_ratio must be positive when an inner insert is configured", k)
	}

	check(c.Stack.GapRatio >= 0, "stack.gap_ratio is %.4f, must not be negative", c.Stack.GapRatio)
	check(c.Stack.DetectionRatio > 0, "stack.detection_ratio is %.4f, must be positive", c.Stack.DetectionRatio)
	check(c.Hover.ThrottleMS >= 0, "hover.throttle_ms is %d, must not be negative", c.Hover.ThrottleMS)
	check(c.Hover.Thickness > 0, "hover.thickness is %.4f, must be positive", c.Hover.Thickness)
	check(c.Hover.Opacity >= 0 && c.Hover.Opacity <= 1, "hover.opacity is %.4f, must be in [0, 1]", c.Hover.Opacity)
	check(c.Hover.RadiusRatio > 0, "hover.radius_ratio is %.4f, must be positive", c.Hover.RadiusRatio)
	check(c.Pick.MaxDistance > 0, "pick.max_distance is %.4f, must be positive", c.Pick.MaxDistance)
	check(c.Pick.PlaneMargin >= 0, "pick.plane_margin is %.4f, must not be negative", c.Pick.PlaneMargin)
	check(c.LOD.Normal >= 0, "lod.normal is %.4f, must not be negative", c.LOD.Normal)
	check(c.LOD.Simple >= c.LOD.Normal, "lod.simple (%.4f) must not be below lod.normal (%.4f)", c.LOD.Simple, c.LOD.Normal)

	switch c.Geometry.Tessellation {
	case TessellationExact:
	case TessellationMarchingCubes:
		check(c.Geometry.MeshCells > 0, "geometry.mesh_cells is %d, must be positive", c.Geometry.MeshCells)
	default:
		check(false, "geometry.tessellation %q is not %q or %q",
			c.Geometry.Tessellation, TessellationExact, TessellationMarchingCubes)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}
