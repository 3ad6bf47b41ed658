package scene

import "github.com/chazu/hexstack/pkg/config"

// Shading selects the lighting model a renderer applies.
type Shading int

const (
	ShadingBasic Shading = iota
	ShadingLambert
	ShadingPhong
)

func (s Shading) String() string {
	switch s {
	case ShadingLambert:
		return "lambert"
	case ShadingPhong:
		return "phong"
	}
	return "basic"
}

// Material describes how a mesh is drawn.
type Material struct {
	Name      string
	Shading   Shading
	Color     config.RGB
	Specular  config.RGB
	Shininess float64

	Opacity     float64
	Transparent bool
	DepthWrite  bool

	PolygonOffset       bool
	PolygonOffsetFactor float64
	PolygonOffsetUnits  float64
}
