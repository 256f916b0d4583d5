package opt

import (
	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// CostFunc reports how much of a resource one unit of tc's traffic consumes
// at element el when routed along p. The composer never evaluates cost
// functions — it collects them per resource and hands the ordered list to
// the model builder, which turns them into load coefficients. Returning 0
// means the element is traversed without consuming the resource.
type CostFunc func(tc *paths.TrafficClass, p paths.Path, el topo.Element) float64

// ResourceCost pairs an application's cost function for a resource with the
// resource's ownership domain.
type ResourceCost struct {
	Cost   CostFunc
	Domain Domain
}

// UniformCost builds the common case: every element the path traverses in
// the resource's domain consumes v per unit of traffic.
func UniformCost(v float64) CostFunc {
	return func(_ *paths.TrafficClass, _ paths.Path, _ topo.Element) float64 {
		return v
	}
}

// EndpointCost consumes v only at the path's terminal nodes, the shape used
// for resources charged at ingress/egress processing rather than in transit.
// It contributes nothing on link elements.
func EndpointCost(v float64) CostFunc {
	return func(_ *paths.TrafficClass, p paths.Path, el topo.Element) float64 {
		if el.IsLink || len(p.Nodes) == 0 {
			return 0
		}
		if el.Node == p.Nodes[0] || el.Node == p.Nodes[len(p.Nodes)-1] {
			return v
		}
		return 0
	}
}

// ScopedToClasses restricts a cost function to the given traffic classes;
// every other class consumes nothing. Model builders evaluate each cost
// function against the full merged path set, so the class filter inside the
// cost function is the only signal of which traffic an application owns.
// Applications compiled from scenario specs scope their costs this way.
func ScopedToClasses(fn CostFunc, classIDs ...int) CostFunc {
	scope := make(map[int]bool, len(classIDs))
	for _, id := range classIDs {
		scope[id] = true
	}
	return func(tc *paths.TrafficClass, p paths.Path, el topo.Element) float64 {
		if tc == nil || !scope[tc.ID] {
			return 0
		}
		return fn(tc, p, el)
	}
}
