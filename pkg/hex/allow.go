package hex

import (
	"slices"
	"sync"
)

// AllowSet is an explicitly owned set of cells on which new pieces may be
// placed. It is independent of the disk bound; placement requires both.
// A nil set is empty and ignores writes.
type AllowSet struct {
	mu    sync.RWMutex
	cells map[Coord]struct{}
}

// NewAllowSet returns a set containing the given cells.
func NewAllowSet(cells ...Coord) *AllowSet {
	s := &AllowSet{cells: make(map[Coord]struct{}, len(cells))}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

// NewDiskAllowSet returns a set containing every cell of the disk of the
// given radius.
func NewDiskAllowSet(radius int) *AllowSet {
	return NewAllowSet(Disk(radius)...)
}

// Contains reports whether (q, r) is an allowed position.
func (s *AllowSet) Contains(q, r int) bool {
	return s.Has(Coord{Q: q, R: r})
}

// Has reports whether c is an allowed position.
func (s *AllowSet) Has(c Coord) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cells[c]
	return ok
}

// Add inserts cells into the set.
func (s *AllowSet) Add(cells ...Coord) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
}

// Remove deletes a cell from the set and reports whether it was present.
func (s *AllowSet) Remove(c Coord) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cells[c]; !ok {
		return false
	}
	delete(s.cells, c)
	return true
}

// Len returns the number of allowed cells.
func (s *AllowSet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Coords returns the allowed cells ordered by q then r.
func (s *AllowSet) Coords() []Coord {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	out := make([]Coord, 0, len(s.cells))
	for c := range s.cells {
		out = append(out, c)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Coord) int {
		if a.Q != b.Q {
			return a.Q - b.Q
		}
		return a.R - b.R
	})
	return out
}
