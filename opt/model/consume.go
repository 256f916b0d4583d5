package model

import (
	"fmt"
	"sort"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// loadTerm is one application's contribution to an element's load in one
// epoch: coef is demand volume times per-unit cost, in capacity units.
type loadTerm struct {
	varIdx  int
	coef    float64
	classID int
}

// resourceLoad remembers the ingredients of one consumed resource so later
// Cap calls can emit class-scoped rows against the same loads.
type resourceLoad struct {
	domain   opt.Domain
	elements []topo.Element
	caps     map[topo.Element]float64
	terms    map[topo.Element][][]loadTerm // element -> epoch -> terms
}

// Consume implements opt.ModelBuilder. It registers the route variables and
// routing rows for every class in ps, then emits one load row per
// advertising element and epoch:
//
//	sum over classes, paths, applications of
//	    volume[epoch] * cost(class, path, element) * x_path  <=  capacity
//
// Cost functions are evaluated only for elements a path actually traverses;
// a zero cost contributes nothing. Consuming the same resource twice is a
// composition error.
func (m *Model) Consume(ps *paths.Set, resource string, costs []opt.AppCost, caps map[topo.Element]float64, domain opt.Domain) error {
	if _, dup := m.resources[resource]; dup {
		return fmt.Errorf("%w: resource %q consumed twice", opt.ErrComposition, resource)
	}
	for _, ac := range costs {
		if ac.Cost == nil {
			return fmt.Errorf("%w: application %q has a nil cost function for resource %q",
				opt.ErrComposition, ac.App, resource)
		}
	}
	for _, tc := range ps.Classes() {
		if err := m.ensureClassRouting(tc, ps.Paths(tc.ID)); err != nil {
			return err
		}
	}

	elements := make([]topo.Element, 0, len(caps))
	for el := range caps {
		elements = append(elements, el)
	}
	topo.SortElements(elements)
	if len(elements) == 0 {
		m.log.Warnf("resource %q is consumed but no topology element advertises it", resource)
	}

	rl := &resourceLoad{
		domain:   domain,
		elements: elements,
		caps:     caps,
		terms:    make(map[topo.Element][][]loadTerm, len(elements)),
	}
	for _, el := range elements {
		rl.terms[el] = make([][]loadTerm, m.epochs)
	}

	for _, ac := range costs {
		for _, tc := range ps.Classes() {
			for pi, p := range ps.Paths(tc.ID) {
				varIdx := m.routeVar(tc.ID, pi, p)
				for _, el := range pathElements(p, domain) {
					if _, ok := caps[el]; !ok {
						continue
					}
					cost := ac.Cost(tc, p, el)
					if cost == 0 {
						continue
					}
					for e := 0; e < m.epochs; e++ {
						coef := tc.VolumeAt(e) * cost
						if coef == 0 {
							continue
						}
						rl.terms[el][e] = append(rl.terms[el][e], loadTerm{varIdx: varIdx, coef: coef, classID: tc.ID})
					}
				}
			}
		}
	}

	for _, el := range elements {
		for e := 0; e < m.epochs; e++ {
			terms := mergeTerms(rl.terms[el][e], nil)
			if len(terms) == 0 {
				continue
			}
			name := fmt.Sprintf("load_%s_%s_e%d", sanitizeName(resource), el.Key(), e)
			m.addRow(name, terms, opLE, caps[el])
		}
	}

	m.resources[resource] = rl
	m.log.Debugf("consumed %s-owned resource %q over %d elements (%d epochs)",
		domain, resource, len(elements), m.epochs)
	return nil
}

// Cap implements opt.ModelBuilder. It tightens an already consumed
// resource: for every advertising element and epoch, the load of the scoped
// classes may not exceed fraction times the element's capacity. A nil class
// slice scopes the cap to all classes.
func (m *Model) Cap(resource string, fraction float64, classes []*paths.TrafficClass) error {
	rl, ok := m.resources[resource]
	if !ok {
		return fmt.Errorf("%w: cannot cap resource %q: it is not consumed by any application",
			opt.ErrValidation, resource)
	}
	if !(fraction > 0 && fraction <= 1) {
		return fmt.Errorf("%w: cap fraction %v for resource %q outside (0, 1]",
			opt.ErrValidation, fraction, resource)
	}
	var scope map[int]bool
	if classes != nil {
		scope = make(map[int]bool, len(classes))
		for _, tc := range classes {
			scope[tc.ID] = true
		}
	}

	m.capCalls++
	emitted := 0
	for _, el := range rl.elements {
		for e := 0; e < m.epochs; e++ {
			terms := mergeTerms(rl.terms[el][e], scope)
			if len(terms) == 0 {
				continue
			}
			name := fmt.Sprintf("cap%d_%s_%s_e%d", m.capCalls, sanitizeName(resource), el.Key(), e)
			m.addRow(name, terms, opLE, fraction*rl.caps[el])
			emitted++
		}
	}
	m.log.Debugf("capped resource %q at fraction %v (%d rows)", resource, fraction, emitted)
	return nil
}

// pathElements lists the elements a path traverses in the given domain:
// its nodes or its directed links, in path order.
func pathElements(p paths.Path, domain opt.Domain) []topo.Element {
	if domain == opt.DomainNode {
		els := make([]topo.Element, len(p.Nodes))
		for i, n := range p.Nodes {
			els[i] = topo.NodeElement(n)
		}
		return els
	}
	links := p.Links()
	els := make([]topo.Element, len(links))
	for i, l := range links {
		els[i] = topo.LinkElement(l)
	}
	return els
}

// mergeTerms sums coefficients per variable, optionally restricted to a
// class scope, returning terms in ascending variable order.
func mergeTerms(terms []loadTerm, scope map[int]bool) []term {
	coefs := make(map[int]float64)
	for _, lt := range terms {
		if scope != nil && !scope[lt.classID] {
			continue
		}
		coefs[lt.varIdx] += lt.coef
	}
	idxs := make([]int, 0, len(coefs))
	for idx := range coefs {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	out := make([]term, len(idxs))
	for i, idx := range idxs {
		out[i] = term{varIdx: idx, coef: coefs[idx]}
	}
	return out
}
