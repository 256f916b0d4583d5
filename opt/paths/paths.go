// Package paths holds the routing side of a composition input: traffic
// classes, candidate paths, and the per-traffic-class path set that
// applications contribute and the composer merges.
//
// Path sets have set semantics per traffic class: adding the same path twice
// is a no-op, and merging two sets unions their path collections class by
// class. Everything here is deterministic — classes iterate in ascending ID
// order and paths in first-insertion order — so composed models are
// reproducible byte for byte.
package paths

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/netcompose/netcompose/opt/topo"
)

// TrafficClass is a logical demand category routed over candidate paths.
// Volumes holds the demand per epoch; its length fixes the class's epoch
// count. Classes are read-only during composition.
type TrafficClass struct {
	ID      int
	Name    string
	Src     int64
	Dst     int64
	Volumes []float64
}

// Epochs returns the number of epochs the class carries demand for.
func (tc *TrafficClass) Epochs() int { return len(tc.Volumes) }

// VolumeAt returns the demand in the given epoch.
func (tc *TrafficClass) VolumeAt(epoch int) float64 { return tc.Volumes[epoch] }

// TotalVolume returns the demand summed over all epochs.
func (tc *TrafficClass) TotalVolume() float64 { return floats.Sum(tc.Volumes) }

// String renders the class for logs: "tc3(video)".
func (tc *TrafficClass) String() string {
	return fmt.Sprintf("tc%d(%s)", tc.ID, tc.Name)
}

// Path is an ordered walk through topology nodes. A path with N nodes
// crosses N-1 links.
type Path struct {
	Nodes []int64
}

// Key returns the canonical identity of the path, used for set dedup.
func (p Path) Key() string {
	parts := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ">")
}

// String is the numeric rendering of the path.
func (p Path) String() string { return p.Key() }

// Hops returns the number of links the path crosses.
func (p Path) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// Links expands the path into its constituent directed links.
func (p Path) Links() []topo.Link {
	if len(p.Nodes) < 2 {
		return nil
	}
	out := make([]topo.Link, 0, len(p.Nodes)-1)
	for i := 1; i < len(p.Nodes); i++ {
		out = append(out, topo.Link{From: p.Nodes[i-1], To: p.Nodes[i]})
	}
	return out
}

// HasNode reports whether the path visits the node.
func (p Path) HasNode(id int64) bool {
	for _, n := range p.Nodes {
		if n == id {
			return true
		}
	}
	return false
}

// HasLink reports whether the path crosses the directed link.
func (p Path) HasLink(l topo.Link) bool {
	for i := 1; i < len(p.Nodes); i++ {
		if p.Nodes[i-1] == l.From && p.Nodes[i] == l.To {
			return true
		}
	}
	return false
}

// Validate checks that the path is a legal walk over the topology: at least
// two nodes, and every consecutive pair joined by a link.
func (p Path) Validate(t *topo.Topology) error {
	if len(p.Nodes) < 2 {
		return fmt.Errorf("path %s: needs at least two nodes", p)
	}
	for i := 1; i < len(p.Nodes); i++ {
		if !t.HasLink(p.Nodes[i-1], p.Nodes[i]) {
			return fmt.Errorf("path %s: no link %s in topology",
				p, topo.Link{From: p.Nodes[i-1], To: p.Nodes[i]})
		}
	}
	return nil
}
