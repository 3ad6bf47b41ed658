package picking

import (
	"math"
	"testing"

	"github.com/chazu/hexstack/pkg/config"
	"github.com/chazu/hexstack/pkg/geometry"
	"github.com/chazu/hexstack/pkg/hex"
	"github.com/chazu/hexstack/pkg/kernel"
	"github.com/chazu/hexstack/pkg/kernel/sdfx"
	"github.com/chazu/hexstack/pkg/piece"
	"github.com/chazu/hexstack/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqrt3 = math.Sqrt(3)

// topDown maps screen (100+10x, 100+10z) to world (x, z) on a 200x200
// viewport, looking straight down from y = 20.
func topDown() (scene.Camera, scene.Viewport) {
	cam := &scene.OrthographicCamera{
		Eye:    v3.Vec{Y: 20},
		Target: v3.Vec{},
		Up:     v3.Vec{Z: -1},
		Width:  20,
		Height: 20,
	}
	return cam, scene.Viewport{Width: 200, Height: 200}
}

func at(x, z float64) Event {
	return Event{Type: MouseMove, ClientX: 100 + 10*x, ClientY: 100 + 10*z}
}

// fixedCamera returns the same ray for every NDC point.
type fixedCamera struct{ ray scene.Ray }

func (c fixedCamera) Ray(_, _ float64) scene.Ray { return c.ray }
func (c fixedCamera) Position() v3.Vec           { return c.ray.Origin }

// pieceIndex is a map-backed PieceIndex.
type pieceIndex map[*scene.Node]v3.Vec

func (p pieceIndex) PieceAt(root *scene.Node) (v3.Vec, bool) {
	pos, ok := p[root]
	return pos, ok
}

type fixture struct {
	cfg     *config.Config
	cache   *geometry.Cache
	world   *scene.Scene
	targets *TargetSet
	index   pieceIndex
	allow   *hex.AllowSet
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	f := &fixture{
		cfg:     cfg,
		cache:   geometry.New(cfg, sdfx.New()),
		world:   scene.New(),
		targets: NewTargetSet(),
		index:   pieceIndex{},
		allow:   cfg.AllowSet(),
	}
	plane := f.cache.PickPlane()
	require.NoError(t, f.world.Add(plane))
	cam, vp := topDown()
	f.deps = Deps{
		Camera:   cam,
		Viewport: vp,
		Plane:    plane,
		Targets:  f.targets,
		Pieces:   f.index,
		Allow:    f.allow,
	}
	return f
}

// place adds a piece of kind k standing at pos, registered or not.
func (f *fixture) place(t *testing.T, k piece.Kind, pos v3.Vec, registered bool) *scene.Node {
	t.Helper()
	n, err := f.cache.BuildPiece(k)
	require.NoError(t, err)
	n.Position = pos
	n.Tag = scene.TagPieceRoot
	require.NoError(t, f.world.Add(n))
	f.targets.Add(n)
	n.Traverse(func(c *scene.Node) bool {
		if c.Mesh != nil {
			f.targets.Add(c)
		}
		return true
	})
	if registered {
		f.index[n] = pos
	}
	return n
}

func TestEventPoint(t *testing.T) {
	tests := []struct {
		name   string
		ev     Event
		x, y   float64
		wantOK bool
	}{
		{"mouse", Event{Type: MouseMove, ClientX: 3, ClientY: 4}, 3, 4, true},
		{"first touch", Event{Type: TouchMove, ClientX: 9, Touches: []Touch{{5, 6}, {7, 8}}}, 5, 6, true},
		{"touch end without contacts", Event{Type: TouchEnd, ClientX: 9, ClientY: 9}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := tt.ev.Point()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestResolveGroundCenter(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.cfg, f.deps)
	c, ok := r.Resolve(at(0.1, 0.1))
	require.True(t, ok)
	assert.Equal(t, hex.Coord{}, c)
}

func TestResolveValidityGate(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.cfg, f.deps)

	// (1,0) is on the disk and under the plane but not allowed.
	_, ok := r.Resolve(at(sqrt3+0.1, 0.1))
	assert.False(t, ok)

	f.allow.Add(hex.Coord{Q: 1, R: 0})
	c, ok := r.Resolve(at(sqrt3+0.1, 0.1))
	require.True(t, ok)
	assert.Equal(t, hex.Coord{Q: 1, R: 0}, c)
}

func TestResolveOutsideDisk(t *testing.T) {
	f := newFixture(t)
	f.allow.Add(hex.Coord{Q: 4, R: 0})
	r := NewResolver(f.cfg, f.deps)

	// Cell (4,0) is allowed and under the plane, but off the radius-3 disk.
	x, _ := hex.AxialToWorld(4, 0, 1)
	require.Less(t, x, geometry.PickPlaneExtent(f.cfg)/2)
	_, ok := r.Resolve(at(x+0.1, 0.1))
	assert.False(t, ok)
}

func TestResolveMissesPlane(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.cfg, f.deps)
	_, ok := r.Resolve(at(9.5, 9.5))
	assert.False(t, ok)
}

func TestResolveTouchEnd(t *testing.T) {
	f := newFixture(t)
	r := NewResolver(f.cfg, f.deps)
	_, ok := r.Resolve(Event{Type: TouchEnd})
	assert.False(t, ok)

	c, ok := r.Resolve(Event{Type: TouchStart, Touches: []Touch{{101, 101}}})
	require.True(t, ok)
	assert.Equal(t, hex.Coord{}, c)
}

func TestResolveEmptyViewport(t *testing.T) {
	f := newFixture(t)
	f.deps.Viewport = scene.Viewport{}
	r := NewResolver(f.cfg, f.deps)
	_, ok := r.Resolve(at(0.1, 0.1))
	assert.False(t, ok)
}

func TestResolvePlacedPieceBypassesAllowSet(t *testing.T) {
	f := newFixture(t)
	x, z := hex.AxialToWorld(1, 0, 1)
	f.place(t, piece.Stacker, v3.Vec{X: x, Y: 0.2, Z: z}, true)
	r := NewResolver(f.cfg, f.deps)

	c, ok := r.Resolve(at(x+0.1, z+0.1))
	require.True(t, ok)
	assert.Equal(t, hex.Coord{Q: 1, R: 0}, c)
}

func TestResolveUnregisteredPieceFallsBackToGround(t *testing.T) {
	f := newFixture(t)
	f.place(t, piece.Stacker, v3.Vec{Y: 0.2}, false)
	x, z := hex.AxialToWorld(1, 0, 1)
	f.place(t, piece.Stacker, v3.Vec{X: x, Y: 0.2, Z: z}, false)
	r := NewResolver(f.cfg, f.deps)

	c, ok := r.Resolve(at(0.1, 0.1))
	require.True(t, ok, "ground below is allowed")
	assert.Equal(t, hex.Coord{}, c)

	_, ok = r.Resolve(at(x+0.1, z+0.1))
	assert.False(t, ok, "ground below is not allowed")
}

func TestResolveTopmostNotNearest(t *testing.T) {
	f := newFixture(t)
	low := f.place(t, piece.Stacker, v3.Vec{Y: 0.2}, false)
	high := f.place(t, piece.Stacker, v3.Vec{Y: 0.61}, false)
	f.index[low] = v3.Vec{}
	qx, qz := hex.AxialToWorld(0, 1, 1)
	f.index[high] = v3.Vec{X: qx, Y: 0.61, Z: qz}

	// Looking up from below, the low piece is nearest along the ray.
	f.deps.Camera = fixedCamera{scene.Ray{Origin: v3.Vec{X: 0.1, Y: -10, Z: 0.1}, Dir: v3.Vec{Y: 1}}}
	r := NewResolver(f.cfg, f.deps)

	c, ok := r.Resolve(at(0, 0))
	require.True(t, ok)
	assert.Equal(t, hex.Coord{Q: 0, R: 1}, c)
}

func TestResolveHonorsMaxDistance(t *testing.T) {
	f := newFixture(t)
	f.deps.Camera = fixedCamera{scene.Ray{Origin: v3.Vec{X: 0.1, Y: 60, Z: 0.1}, Dir: v3.Vec{Y: -1}}}
	r := NewResolver(f.cfg, f.deps)
	_, ok := r.Resolve(at(0, 0))
	assert.False(t, ok, "plane is beyond the ray's reach")
}

func quad(y float64) *kernel.Mesh {
	m := kernel.PlaneMesh(2, 2)
	for i := 1; i < len(m.Vertices); i += 3 {
		m.Vertices[i] = float32(y)
	}
	return m
}

func TestIntersectObjectsSortedAndBounded(t *testing.T) {
	a := scene.NewMesh("a", quad(1), nil)
	b := scene.NewMesh("b", quad(2), nil)
	ray := scene.Ray{Origin: v3.Vec{X: 0.1, Y: 10, Z: 0.2}, Dir: v3.Vec{Y: -1}}

	hits := Raycaster{Ray: ray, Far: 100}.IntersectObjects([]*scene.Node{a, b}, false)
	require.Len(t, hits, 2)
	assert.Same(t, b, hits[0].Node)
	assert.InDelta(t, 8, hits[0].Distance, 1e-9)
	assert.InDelta(t, 2, hits[0].Point.Y, 1e-9)
	assert.Same(t, a, hits[1].Node)

	hits = Raycaster{Ray: ray, Far: 8.5}.IntersectObjects([]*scene.Node{a, b}, false)
	require.Len(t, hits, 1)
	assert.Same(t, b, hits[0].Node)
}

func TestIntersectObjectsRecursion(t *testing.T) {
	g := scene.NewGroup("g")
	child := scene.NewMesh("child", quad(0), nil)
	g.Add(child)
	ray := scene.Ray{Origin: v3.Vec{X: 0.1, Y: 5, Z: 0.2}, Dir: v3.Vec{Y: -1}}
	rc := Raycaster{Ray: ray, Far: 100}

	assert.Empty(t, rc.IntersectObjects([]*scene.Node{g}, false))
	hits := rc.IntersectObjects([]*scene.Node{g, child}, true)
	assert.Len(t, hits, 1, "child listed twice is tested once")
}

func TestIntersectObjectsSkipsInactiveLevels(t *testing.T) {
	lod := scene.NewLOD("lod")
	near := scene.NewMesh("near", quad(0), nil)
	far := scene.NewMesh("far", quad(0.5), nil)
	lod.AddLevel(near, 0)
	lod.AddLevel(far, 50)

	nearby := Raycaster{Ray: scene.Ray{Origin: v3.Vec{X: 0.1, Y: 10, Z: 0.2}, Dir: v3.Vec{Y: -1}}, Far: 100}
	hits := nearby.IntersectObjects([]*scene.Node{lod, near, far}, true)
	require.Len(t, hits, 1)
	assert.Same(t, near, hits[0].Node)

	distant := Raycaster{Ray: scene.Ray{Origin: v3.Vec{X: 0.1, Y: 60, Z: 0.2}, Dir: v3.Vec{Y: -1}}, Far: 100}
	hits = distant.IntersectObjects([]*scene.Node{lod, near, far}, true)
	require.Len(t, hits, 1)
	assert.Same(t, far, hits[0].Node)
}

func TestIntersectTransformedNode(t *testing.T) {
	n := scene.NewMesh("n", quad(0), nil)
	n.Position = v3.Vec{X: 5, Y: 1}
	rc := Raycaster{Ray: scene.Ray{Origin: v3.Vec{X: 5.1, Y: 10, Z: 0.2}, Dir: v3.Vec{Y: -1}}, Far: 100}
	hits := rc.IntersectObjects([]*scene.Node{n}, false)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1, hits[0].Point.Y, 1e-9)

	rc.Ray.Origin.X = 0.1
	assert.Empty(t, rc.IntersectObjects([]*scene.Node{n}, false))
}

func TestTargetSet(t *testing.T) {
	a, b := scene.NewGroup("a"), scene.NewGroup("b")
	s := NewTargetSet(a)
	assert.True(t, s.Add(b))
	assert.False(t, s.Add(b))
	assert.False(t, s.Add(nil))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []*scene.Node{a, b}, s.Nodes())

	assert.True(t, s.Remove(a))
	assert.False(t, s.Contains(a))
	assert.False(t, s.Remove(a))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(b))
}
