// Package hex implements axial hex-grid coordinates for a pointy-side
// layout in the world XZ plane. Axial (q, r) maps to cube coordinates as
// x=q, z=r, y=-q-r.
package hex

import "math"

var sqrt3 = math.Sqrt(3)

// Coord is a cell address in axial coordinates.
type Coord struct {
	Q int `json:"q" toml:"q"`
	R int `json:"r" toml:"r"`
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns the component-wise sum of two coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

// Distance returns the number of cell steps between c and o.
func (c Coord) Distance(o Coord) int {
	dq := abs(c.Q - o.Q)
	dr := abs(c.R - o.R)
	ds := abs(c.S() - o.S())
	return max(dq, dr, ds)
}

// World returns the world-plane center of the cell.
func (c Coord) World(cellRadius float64) (x, z float64) {
	return AxialToWorld(c.Q, c.R, cellRadius)
}

// neighborDirections are the six axial offsets, counter-clockwise from +q.
var neighborDirections = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent cells.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, d := range neighborDirections {
		out[i] = c.Add(d)
	}
	return out
}

// WorldToAxial returns the cell containing the world-plane point (x, z).
func WorldToAxial(x, z, cellRadius float64) Coord {
	qf := x/(sqrt3*cellRadius) - z/(3*cellRadius)
	rf := z / (1.5 * cellRadius)
	return Round(qf, rf)
}

// Round converts fractional axial coordinates to the nearest cell.
// Each cube component is rounded independently and the one with the
// largest rounding error is recomputed from the other two so that
// x+y+z == 0 holds exactly.
func Round(qf, rf float64) Coord {
	x, z := qf, rf
	y := -x - z

	rx, ry, rz := roundHalfUp(x), roundHalfUp(y), roundHalfUp(z)
	dx, dy, dz := math.Abs(rx-x), math.Abs(ry-y), math.Abs(rz-z)

	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}
	return Coord{Q: int(rx), R: int(rz)}
}

// AxialToWorld returns the world-plane center of cell (q, r).
func AxialToWorld(q, r int, cellRadius float64) (x, z float64) {
	hx := sqrt3 * cellRadius
	hz := 1.5 * cellRadius
	return hx * (float64(q) + float64(r)/2), hz * float64(r)
}

// InDisk reports whether (q, r) lies within a hex disk of the given radius
// centered on the origin.
func InDisk(q, r, radius int) bool {
	return abs(q) <= radius && abs(r) <= radius && abs(q+r) <= radius
}

// Disk enumerates every cell of the hex disk of the given radius, ordered
// by q then r.
func Disk(radius int) []Coord {
	if radius < 0 {
		return nil
	}
	out := make([]Coord, 0, 3*radius*(radius+1)+1)
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			out = append(out, Coord{Q: q, R: r})
		}
	}
	return out
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
