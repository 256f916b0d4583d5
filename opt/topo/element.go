package topo

import (
	"fmt"
	"sort"
)

// Link identifies a directed link by the IDs of its endpoint nodes.
type Link struct {
	From int64
	To   int64
}

// String renders the link as "from->to" using numeric node IDs.
// Use Topology.LinkName for the named form.
func (l Link) String() string {
	return fmt.Sprintf("%d->%d", l.From, l.To)
}

// Element addresses one capacity-bearing topology element: a node or a link.
// Exactly one of Node or Link is meaningful, selected by IsLink.
// Elements are comparable and usable as map keys.
type Element struct {
	Node   int64
	Link   Link
	IsLink bool
}

// NodeElement wraps a node ID as an Element.
func NodeElement(id int64) Element {
	return Element{Node: id}
}

// LinkElement wraps a link as an Element.
func LinkElement(l Link) Element {
	return Element{Link: l, IsLink: true}
}

// Key returns a short stable identifier suitable for constraint and variable
// names: "n<id>" for nodes, "l<from>_<to>" for links.
func (e Element) Key() string {
	if e.IsLink {
		return fmt.Sprintf("l%d_%d", e.Link.From, e.Link.To)
	}
	return fmt.Sprintf("n%d", e.Node)
}

// String renders the element for log and error messages.
func (e Element) String() string {
	if e.IsLink {
		return fmt.Sprintf("link(%s)", e.Link)
	}
	return fmt.Sprintf("node(%d)", e.Node)
}

// SortElements orders elements deterministically: all nodes by ID first,
// then all links by (From, To). Model builders rely on this ordering to
// emit constraints in a reproducible sequence.
func SortElements(els []Element) {
	sort.Slice(els, func(i, j int) bool {
		a, b := els[i], els[j]
		if a.IsLink != b.IsLink {
			return !a.IsLink
		}
		if a.IsLink {
			if a.Link.From != b.Link.From {
				return a.Link.From < b.Link.From
			}
			return a.Link.To < b.Link.To
		}
		return a.Node < b.Node
	})
}
