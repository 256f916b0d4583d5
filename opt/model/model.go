// Package model is the linear-program reference backend for the composition
// core: it implements opt.ModelBuilder by turning consumption, caps, and
// objectives into variables and linear rows, and can export the result as
// CPLEX LP text or a JSON summary. It builds models; it never solves them.
package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/paths"
)

// rowOp is a linear row's comparison operator.
type rowOp uint8

const (
	opLE rowOp = iota
	opGE
	opEQ
)

func (op rowOp) String() string {
	switch op {
	case opLE:
		return "<="
	case opGE:
		return ">="
	default:
		return "="
	}
}

// term is one coefficient-variable product in a linear expression.
type term struct {
	varIdx int
	coef   float64
}

// row is one linear constraint: sum(terms) op rhs.
type row struct {
	name  string
	terms []term
	op    rowOp
	rhs   float64
}

// variable is a bounded continuous decision variable.
type variable struct {
	name   string
	lo, hi float64
}

// Model accumulates the variables, rows, and the composed objective of one
// traffic-engineering model. All objective values are utilities in [0, 1]
// and the model is always a maximization, so heterogeneous objective kinds
// combine without sign juggling.
//
// A Model serves exactly one composition; build a fresh one per call.
type Model struct {
	id   string
	name string
	log  logrus.FieldLogger

	// epochs is pinned by the first traffic class the model sees; every
	// later class must agree.
	epochs int

	vars     []variable
	varIndex map[string]int

	rows []row

	// routeVars indexes route-fraction variables by class ID and path key;
	// routePaths keeps each class's paths in registration order.
	routeVars  map[int]map[string]int
	routePaths map[int][]paths.Path
	// classRows tracks which classes already have their routing row.
	classRows map[int]bool

	resources map[string]*resourceLoad
	capCalls  int
	hookRows  int

	objTerms []term
	composed bool
}

// New creates an empty model. A nil logger falls back to the logrus
// standard logger.
func New(name string, log logrus.FieldLogger) *Model {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Model{
		id:         uuid.NewString(),
		name:       name,
		log:        log,
		varIndex:   make(map[string]int),
		routeVars:  make(map[int]map[string]int),
		routePaths: make(map[int][]paths.Path),
		classRows:  make(map[int]bool),
		resources:  make(map[string]*resourceLoad),
	}
}

// ID returns the model's unique identifier.
func (m *Model) ID() string { return m.id }

// Name returns the model's display name.
func (m *Model) Name() string { return m.name }

// Epochs returns the epoch count pinned by the first registered traffic
// class, or 0 before any registration.
func (m *Model) Epochs() int { return m.epochs }

// NumVariables returns the number of decision variables.
func (m *Model) NumVariables() int { return len(m.vars) }

// NumRows returns the number of linear constraints.
func (m *Model) NumRows() int { return len(m.rows) }

// Composed reports whether ComposeObjectives has run.
func (m *Model) Composed() bool { return m.composed }

// HasVariable reports whether a variable with the given name exists.
func (m *Model) HasVariable(name string) bool {
	_, ok := m.varIndex[name]
	return ok
}

// VariableBounds returns the bounds of a named variable.
func (m *Model) VariableBounds(name string) (lo, hi float64, ok bool) {
	idx, ok := m.varIndex[name]
	if !ok {
		return 0, 0, false
	}
	return m.vars[idx].lo, m.vars[idx].hi, true
}

// ensureVar creates the named variable if absent and returns its index.
// Existing variables keep their bounds.
func (m *Model) ensureVar(name string, lo, hi float64) int {
	if idx, ok := m.varIndex[name]; ok {
		return idx
	}
	idx := len(m.vars)
	m.vars = append(m.vars, variable{name: name, lo: lo, hi: hi})
	m.varIndex[name] = idx
	return idx
}

func (m *Model) addRow(name string, terms []term, op rowOp, rhs float64) {
	m.rows = append(m.rows, row{name: name, terms: terms, op: op, rhs: rhs})
}

// pinEpochs records the model-wide epoch count from a traffic class, or
// rejects the class when it disagrees with an earlier registration.
func (m *Model) pinEpochs(tc *paths.TrafficClass) error {
	n := tc.Epochs()
	if n == 0 {
		return fmt.Errorf("%w: traffic class %d has no demand epochs", opt.ErrComposition, tc.ID)
	}
	if m.epochs == 0 {
		m.epochs = n
		return nil
	}
	if n != m.epochs {
		return fmt.Errorf("%w: traffic class %d has %d epochs, model is pinned to %d",
			opt.ErrComposition, tc.ID, n, m.epochs)
	}
	return nil
}

// routeVar returns the route-fraction variable for one candidate path of a
// class, creating it on first use. Route fractions live in [0, 1].
func (m *Model) routeVar(tcID, pathIdx int, p paths.Path) int {
	byPath, ok := m.routeVars[tcID]
	if !ok {
		byPath = make(map[string]int)
		m.routeVars[tcID] = byPath
	}
	key := p.Key()
	if idx, ok := byPath[key]; ok {
		return idx
	}
	idx := m.ensureVar(fmt.Sprintf("x_tc%d_p%d", tcID, pathIdx), 0, 1)
	byPath[key] = idx
	m.routePaths[tcID] = append(m.routePaths[tcID], p)
	return idx
}

// ensureClassRouting registers a class's route variables and its routing
// row sum(x) <= 1. Safe to call repeatedly.
func (m *Model) ensureClassRouting(tc *paths.TrafficClass, ps []paths.Path) error {
	if err := m.pinEpochs(tc); err != nil {
		return err
	}
	for pi, p := range ps {
		m.routeVar(tc.ID, pi, p)
	}
	if m.classRows[tc.ID] || len(ps) == 0 {
		return nil
	}
	terms := make([]term, 0, len(ps))
	for pi, p := range ps {
		terms = append(terms, term{varIdx: m.routeVar(tc.ID, pi, p), coef: 1})
	}
	m.addRow(fmt.Sprintf("route_tc%d", tc.ID), terms, opLE, 1)
	m.classRows[tc.ID] = true
	return nil
}

// classRouteTerms returns unit terms over a class's route variables, in
// registration order. Nil when the class was never routed.
func (m *Model) classRouteTerms(tcID int) []term {
	ps := m.routePaths[tcID]
	if len(ps) == 0 {
		return nil
	}
	terms := make([]term, len(ps))
	for i, p := range ps {
		terms[i] = term{varIdx: m.routeVars[tcID][p.Key()], coef: 1}
	}
	return terms
}

// sanitizeName maps an arbitrary display name onto the LP-safe alphabet.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}
