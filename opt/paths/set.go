package paths

import "sort"

// Set maps traffic classes to their candidate paths. Paths are kept
// duplicate-free per class (keyed by Path.Key) in first-insertion order;
// classes iterate in ascending ID order.
//
// A Set is built fresh per composition call and is not safe for concurrent
// mutation.
type Set struct {
	classes map[int]*TrafficClass
	paths   map[int][]Path
	seen    map[int]map[string]bool
}

// NewSet creates an empty path set.
func NewSet() *Set {
	return &Set{
		classes: make(map[int]*TrafficClass),
		paths:   make(map[int][]Path),
		seen:    make(map[int]map[string]bool),
	}
}

// Add registers paths as candidates for tc. The first registration of a
// class ID pins the class object; later Adds with the same ID contribute
// paths only. Duplicate paths are ignored.
func (s *Set) Add(tc *TrafficClass, ps ...Path) {
	if tc == nil {
		return
	}
	if _, ok := s.classes[tc.ID]; !ok {
		s.classes[tc.ID] = tc
		s.seen[tc.ID] = make(map[string]bool)
	}
	for _, p := range ps {
		key := p.Key()
		if s.seen[tc.ID][key] {
			continue
		}
		s.seen[tc.ID][key] = true
		s.paths[tc.ID] = append(s.paths[tc.ID], p)
	}
}

// Classes returns the registered traffic classes in ascending ID order.
func (s *Set) Classes() []*TrafficClass {
	ids := make([]int, 0, len(s.classes))
	for id := range s.classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*TrafficClass, len(ids))
	for i, id := range ids {
		out[i] = s.classes[id]
	}
	return out
}

// Class looks up a registered traffic class by ID.
func (s *Set) Class(id int) (*TrafficClass, bool) {
	tc, ok := s.classes[id]
	return tc, ok
}

// Paths returns the candidate paths of a class in first-insertion order.
// Unknown class IDs yield nil.
func (s *Set) Paths(tcID int) []Path {
	return s.paths[tcID]
}

// NumClasses returns the number of registered traffic classes.
func (s *Set) NumClasses() int { return len(s.classes) }

// NumPaths returns the total number of candidate paths across all classes.
func (s *Set) NumPaths() int {
	n := 0
	for _, ps := range s.paths {
		n += len(ps)
	}
	return n
}

// Merge unions any number of path sets into a fresh one. For a class present
// in several sets the merged path collection is the set union; the class
// object from the first set that carries it wins. Nil sets are skipped.
// Merging is idempotent: merging a set with itself changes nothing.
func Merge(sets ...*Set) *Set {
	merged := NewSet()
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, tc := range s.Classes() {
			merged.Add(tc, s.Paths(tc.ID)...)
		}
	}
	return merged
}
