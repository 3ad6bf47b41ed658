package hex

import (
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, cellRadius := range []float64{0.5, 1.0, 2.3} {
		for q := -50; q <= 50; q++ {
			for r := -50; r <= 50; r++ {
				x, z := AxialToWorld(q, r, cellRadius)
				got := WorldToAxial(x, z, cellRadius)
				if got != (Coord{Q: q, R: r}) {
					t.Fatalf("cellRadius %v: WorldToAxial(AxialToWorld(%d,%d)) = %v", cellRadius, q, r, got)
				}
			}
		}
	}
}

func TestAxialToWorld(t *testing.T) {
	tests := []struct {
		name   string
		q, r   int
		radius float64
		wantX  float64
		wantZ  float64
	}{
		{"origin", 0, 0, 1, 0, 0},
		{"plus q", 1, 0, 1, math.Sqrt(3), 0},
		{"plus r", 0, 1, 1, math.Sqrt(3) / 2, 1.5},
		{"scaled", -2, 2, 2, -math.Sqrt(3) * 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, z := AxialToWorld(tt.q, tt.r, tt.radius)
			if math.Abs(x-tt.wantX) > 1e-12 || math.Abs(z-tt.wantZ) > 1e-12 {
				t.Errorf("AxialToWorld(%d,%d,%v) = (%v,%v), want (%v,%v)", tt.q, tt.r, tt.radius, x, z, tt.wantX, tt.wantZ)
			}
		})
	}
}

func TestWorldToAxialNearBoundaries(t *testing.T) {
	// Points just inside a neighbor's territory must snap to that neighbor.
	x1, z1 := AxialToWorld(1, 0, 1)
	tests := []struct {
		name string
		x, z float64
		want Coord
	}{
		{"just left of midpoint", x1/2 - 0.01, 0, Coord{0, 0}},
		{"just right of midpoint", x1/2 + 0.01, 0, Coord{1, 0}},
		{"near upper corner of origin", 0.01, 0.99, Coord{0, 0}},
		{"past upper corner of origin", 0.01, 1.01, Coord{0, 1}},
		{"neighbor center", x1, z1, Coord{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorldToAxial(tt.x, tt.z, 1); got != tt.want {
				t.Errorf("WorldToAxial(%v,%v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestRoundKeepsCubeInvariant(t *testing.T) {
	for qf := -3.0; qf <= 3.0; qf += 0.137 {
		for rf := -3.0; rf <= 3.0; rf += 0.113 {
			c := Round(qf, rf)
			if c.Q+c.R+c.S() != 0 {
				t.Fatalf("Round(%v,%v) = %v breaks cube invariant", qf, rf, c)
			}
			// The rounded cell is never more than one step from the
			// independently rounded axial pair.
			if d := c.Distance(Coord{Q: int(math.Round(qf)), R: int(math.Round(rf))}); d > 1 {
				t.Fatalf("Round(%v,%v) = %v is %d steps away", qf, rf, c, d)
			}
		}
	}
}

func TestInDisk(t *testing.T) {
	tests := []struct {
		q, r, radius int
		want         bool
	}{
		{0, 0, 0, true},
		{3, 0, 3, true},
		{4, 0, 3, false},
		{2, 2, 3, false},
		{2, 1, 3, true},
		{-3, 3, 3, true},
		{-3, -1, 3, false},
		{1, 0, 0, false},
	}
	for _, tt := range tests {
		if got := InDisk(tt.q, tt.r, tt.radius); got != tt.want {
			t.Errorf("InDisk(%d,%d,%d) = %v, want %v", tt.q, tt.r, tt.radius, got, tt.want)
		}
	}
}

func TestInDiskMatchesMaxNorm(t *testing.T) {
	for radius := 0; radius <= 4; radius++ {
		for q := -6; q <= 6; q++ {
			for r := -6; r <= 6; r++ {
				want := max(abs(q), abs(r), abs(q+r)) <= radius
				if got := InDisk(q, r, radius); got != want {
					t.Fatalf("InDisk(%d,%d,%d) = %v, want %v", q, r, radius, got, want)
				}
			}
		}
	}
}

func TestDisk(t *testing.T) {
	tests := []struct {
		radius int
		want   int
	}{
		{-1, 0},
		{0, 1},
		{1, 7},
		{3, 37},
	}
	for _, tt := range tests {
		cells := Disk(tt.radius)
		if len(cells) != tt.want {
			t.Errorf("len(Disk(%d)) = %d, want %d", tt.radius, len(cells), tt.want)
		}
		for _, c := range cells {
			if !InDisk(c.Q, c.R, tt.radius) {
				t.Errorf("Disk(%d) contains %v outside the disk", tt.radius, c)
			}
		}
	}
}

func TestNeighborsAndDistance(t *testing.T) {
	origin := Coord{}
	for _, n := range origin.Neighbors() {
		if d := origin.Distance(n); d != 1 {
			t.Errorf("distance to neighbor %v = %d, want 1", n, d)
		}
	}
	if d := (Coord{Q: 2, R: -1}).Distance(Coord{Q: -1, R: 2}); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
}

func TestAllowSet(t *testing.T) {
	s := NewAllowSet(Coord{})
	if !s.Contains(0, 0) {
		t.Fatal("origin should be allowed")
	}
	if s.Contains(1, 0) {
		t.Fatal("(1,0) should not be allowed")
	}

	s.Add(Coord{Q: 1, R: 0}, Coord{Q: -1, R: 1})
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.Contains(1, 0) {
		t.Error("(1,0) should be allowed after Add")
	}

	if !s.Remove(Coord{Q: 1, R: 0}) {
		t.Error("Remove of present cell returned false")
	}
	if s.Remove(Coord{Q: 1, R: 0}) {
		t.Error("Remove of absent cell returned true")
	}

	got := s.Coords()
	want := []Coord{{Q: -1, R: 1}, {Q: 0, R: 0}}
	if len(got) != len(want) {
		t.Fatalf("Coords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Coords()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNilAllowSetAllowsNothing(t *testing.T) {
	var s *AllowSet
	if s.Contains(0, 0) {
		t.Error("nil set should contain nothing")
	}
	if s.Len() != 0 {
		t.Error("nil set should be empty")
	}
	s.Add(Coord{Q: 1, R: 0})
	if s.Remove(Coord{}) {
		t.Error("nil set has nothing to remove")
	}
	if got := s.Coords(); got != nil {
		t.Errorf("nil set coords = %v, want nil", got)
	}
}

func TestDiskAllowSet(t *testing.T) {
	s := NewDiskAllowSet(2)
	if s.Len() != 19 {
		t.Fatalf("Len() = %d, want 19", s.Len())
	}
	if !s.Contains(2, -2) || s.Contains(2, 1) {
		t.Error("disk allow set membership mismatch")
	}
}
