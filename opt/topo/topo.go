// Package topo models the shared network substrate that traffic-engineering
// applications route over: named nodes, directed links, and per-element
// resource capacity tables.
//
// The structural graph is held in a gonum directed graph; capacities are
// attached per node and per link. A topology is read-only once handed to the
// composition layer — nothing in this package mutates a topology after Build.
package topo

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Topology is a capacitated directed network. Nodes carry stable int64 IDs
// assigned in insertion order and a unique human-readable name; links are
// identified by their endpoint IDs.
type Topology struct {
	name string

	g      *simple.DirectedGraph
	ids    map[string]int64
	names  map[int64]string
	nextID int64

	nodeRes map[int64]map[string]float64
	linkRes map[Link]map[string]float64
}

// New creates an empty topology. The name is informational and appears in
// logs and exported model headers.
func New(name string) *Topology {
	return &Topology{
		name:    name,
		g:       simple.NewDirectedGraph(),
		ids:     make(map[string]int64),
		names:   make(map[int64]string),
		nodeRes: make(map[int64]map[string]float64),
		linkRes: make(map[Link]map[string]float64),
	}
}

// Name returns the topology's informational name.
func (t *Topology) Name() string { return t.name }

// AddNode registers a named node with its advertised resource capacities and
// returns the assigned node ID. Resources may be nil for a node that
// advertises nothing. Duplicate names are rejected.
func (t *Topology) AddNode(name string, resources map[string]float64) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("node name must not be empty")
	}
	if _, ok := t.ids[name]; ok {
		return 0, fmt.Errorf("duplicate node name %q", name)
	}
	id := t.nextID
	t.nextID++
	t.g.AddNode(simple.Node(id))
	t.ids[name] = id
	t.names[id] = name
	if len(resources) > 0 {
		t.nodeRes[id] = copyResources(resources)
	}
	return id, nil
}

// AddLink registers a directed link between two previously added nodes with
// its advertised resource capacities. Self-loops and duplicate links are
// rejected.
func (t *Topology) AddLink(src, dst string, resources map[string]float64) (Link, error) {
	from, ok := t.ids[src]
	if !ok {
		return Link{}, fmt.Errorf("link %s->%s: unknown node %q", src, dst, src)
	}
	to, ok := t.ids[dst]
	if !ok {
		return Link{}, fmt.Errorf("link %s->%s: unknown node %q", src, dst, dst)
	}
	if from == to {
		return Link{}, fmt.Errorf("link %s->%s: self-loops are not allowed", src, dst)
	}
	l := Link{From: from, To: to}
	if t.g.HasEdgeFromTo(from, to) {
		return Link{}, fmt.Errorf("duplicate link %s->%s", src, dst)
	}
	t.g.SetEdge(t.g.NewEdge(simple.Node(from), simple.Node(to)))
	if len(resources) > 0 {
		t.linkRes[l] = copyResources(resources)
	}
	return l, nil
}

// NodeID resolves a node name to its ID.
func (t *Topology) NodeID(name string) (int64, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// NodeName resolves a node ID to its name. Unknown IDs yield "".
func (t *Topology) NodeName(id int64) string { return t.names[id] }

// LinkName renders a link with node names, e.g. "sea->chi".
func (t *Topology) LinkName(l Link) string {
	return fmt.Sprintf("%s->%s", t.names[l.From], t.names[l.To])
}

// Nodes returns all node IDs in ascending order.
func (t *Topology) Nodes() []int64 {
	out := make([]int64, 0, t.g.Nodes().Len())
	it := t.g.Nodes()
	for it.Next() {
		out = append(out, it.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Links returns all links ordered by (From, To).
func (t *Topology) Links() []Link {
	out := make([]Link, 0, t.g.Edges().Len())
	it := t.g.Edges()
	for it.Next() {
		e := it.Edge()
		out = append(out, Link{From: e.From().ID(), To: e.To().ID()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// HasLink reports whether a directed link from one node ID to another exists.
func (t *Topology) HasLink(from, to int64) bool {
	return t.g.HasEdgeFromTo(from, to)
}

// Successors returns the IDs of nodes reachable over one link from id,
// in ascending order.
func (t *Topology) Successors(id int64) []int64 {
	it := t.g.From(id)
	out := make([]int64, 0, it.Len())
	for it.Next() {
		out = append(out, it.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodeResources returns the resource→capacity table a node advertises.
// Nodes that advertise nothing yield nil. The returned map is shared;
// callers must treat it as read-only.
func (t *Topology) NodeResources(id int64) map[string]float64 {
	return t.nodeRes[id]
}

// LinkResources returns the resource→capacity table a link advertises.
// Links that advertise nothing yield nil. The returned map is shared;
// callers must treat it as read-only.
func (t *Topology) LinkResources(l Link) map[string]float64 {
	return t.linkRes[l]
}

func copyResources(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
