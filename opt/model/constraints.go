package model

import (
	"fmt"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/paths"
)

// The methods in this file extend the opt.ModelBuilder surface for
// named-constraint hooks. Hooks receive the builder interface and
// type-assert *Model to reach them.

// MinFlowFraction requires that at least the given fraction of a class's
// demand is routed: sum of the class's route fractions >= fraction. A
// fraction of 1 forces full routing. The class must already be routed.
func (m *Model) MinFlowFraction(tcID int, fraction float64) error {
	if !(fraction > 0 && fraction <= 1) {
		return fmt.Errorf("%w: minimum flow fraction %v for class %d outside (0, 1]",
			opt.ErrValidation, fraction, tcID)
	}
	terms := m.classRouteTerms(tcID)
	if len(terms) == 0 {
		return fmt.Errorf("%w: traffic class %d has no routed paths", opt.ErrValidation, tcID)
	}
	m.hookRows++
	m.addRow(fmt.Sprintf("minflow%d_tc%d", m.hookRows, tcID), terms, opGE, fraction)
	return nil
}

// BoundRouteFraction clamps the route fraction of one candidate path to
// [lo, hi]. The path must be a registered candidate of the class.
func (m *Model) BoundRouteFraction(tcID int, p paths.Path, lo, hi float64) error {
	if !(lo >= 0 && lo <= hi && hi <= 1) {
		return fmt.Errorf("%w: route fraction bounds [%v, %v] for class %d invalid",
			opt.ErrValidation, lo, hi, tcID)
	}
	idx, ok := m.routeVars[tcID][p.Key()]
	if !ok {
		return fmt.Errorf("%w: path %s is not a candidate for traffic class %d",
			opt.ErrValidation, p, tcID)
	}
	m.vars[idx].lo = lo
	m.vars[idx].hi = hi
	return nil
}
