package scene

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin v3.Vec
	Dir    v3.Vec
}

// At returns the point t units along the ray.
func (r Ray) At(t float64) v3.Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// Camera produces picking rays for normalized device coordinates in
// [-1, 1] with +Y up.
type Camera interface {
	Ray(ndcX, ndcY float64) Ray
	Position() v3.Vec
}

// basis returns the camera's forward, right and up unit vectors.
func basis(pos, target, up v3.Vec) (f, r, u v3.Vec) {
	f = target.Sub(pos).Normalize()
	r = f.Cross(up).Normalize()
	u = r.Cross(f)
	return f, r, u
}

// PerspectiveCamera looks from Position toward Target. FovY is the
// vertical field of view in degrees; Aspect is width over height.
type PerspectiveCamera struct {
	Eye    v3.Vec
	Target v3.Vec
	Up     v3.Vec
	FovY   float64
	Aspect float64
}

// Position returns the eye position.
func (c *PerspectiveCamera) Position() v3.Vec { return c.Eye }

// Ray returns the ray from the eye through the given NDC point.
func (c *PerspectiveCamera) Ray(ndcX, ndcY float64) Ray {
	f, r, u := basis(c.Eye, c.Target, c.Up)
	h := math.Tan(c.FovY * math.Pi / 360)
	d := f.Add(r.MulScalar(ndcX * h * c.Aspect)).Add(u.MulScalar(ndcY * h))
	return Ray{Origin: c.Eye, Dir: d.Normalize()}
}

// OrthographicCamera projects along its view direction. Width and Height
// are the extents of the view volume.
type OrthographicCamera struct {
	Eye    v3.Vec
	Target v3.Vec
	Up     v3.Vec
	Width  float64
	Height float64
}

// Position returns the eye position.
func (c *OrthographicCamera) Position() v3.Vec { return c.Eye }

// Ray returns the view-direction ray through the given NDC point.
func (c *OrthographicCamera) Ray(ndcX, ndcY float64) Ray {
	f, r, u := basis(c.Eye, c.Target, c.Up)
	o := c.Eye.Add(r.MulScalar(ndcX * c.Width / 2)).Add(u.MulScalar(ndcY * c.Height / 2))
	return Ray{Origin: o, Dir: f}
}

// Viewport is the on-screen rectangle of the render target.
type Viewport struct {
	Left, Top     float64
	Width, Height float64
}

// NDC maps client coordinates to normalized device coordinates. It
// reports false for an empty viewport.
func (v Viewport) NDC(clientX, clientY float64) (x, y float64, ok bool) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0, false
	}
	x = (clientX-v.Left)/v.Width*2 - 1
	y = -(clientY-v.Top)/v.Height*2 + 1
	return x, y, true
}
