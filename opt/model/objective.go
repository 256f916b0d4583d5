package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/paths"
)

// Objective kinds the reference builder can express. Every kind yields a
// per-epoch utility variable in [0, 1] that the composed model maximizes.
const (
	// ObjectiveMaxFlow maximizes the volume-weighted routed share of the
	// target classes' demand.
	ObjectiveMaxFlow = "max-flow"
	// ObjectiveMinLinkLoad maximizes headroom on a consumed resource: the
	// utility is one minus the highest element utilization.
	ObjectiveMinLinkLoad = "min-link-load"
	// ObjectiveMinLatency maximizes one minus the volume-weighted relative
	// hop count of the chosen paths.
	ObjectiveMinLatency = "min-latency"
)

// validObjectives maps accepted objective kinds.
var validObjectives = map[string]bool{
	ObjectiveMaxFlow:     true,
	ObjectiveMinLinkLoad: true,
	ObjectiveMinLatency:  true,
}

// IsValidObjective returns true if kind is a recognized objective kind.
func IsValidObjective(kind string) bool {
	return validObjectives[kind]
}

// ValidObjectiveKinds returns the accepted objective kinds, sorted.
func ValidObjectiveKinds() []string {
	kinds := make([]string, 0, len(validObjectives))
	for k := range validObjectives {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// AddSingleObjective implements opt.ModelBuilder. It creates one utility
// variable per epoch for the requested objective, ties the variables to the
// route variables with kind-specific rows, and returns the variables in
// epoch order.
//
// Every target class must already be routed, which in practice means at
// least one Consume call covered it.
func (m *Model) AddSingleObjective(req opt.ObjectiveRequest) ([]opt.VarRef, error) {
	if m.composed {
		return nil, fmt.Errorf("%w: cannot add objectives after composition", opt.ErrComposition)
	}
	if !IsValidObjective(req.Kind) {
		return nil, fmt.Errorf("%w: unknown objective kind %q; valid: %s",
			opt.ErrValidation, req.Kind, strings.Join(ValidObjectiveKinds(), ", "))
	}
	if len(req.Classes) == 0 {
		return nil, fmt.Errorf("%w: objective %q has no target traffic classes", opt.ErrComposition, req.Kind)
	}
	for _, tc := range req.Classes {
		if err := m.pinEpochs(tc); err != nil {
			return nil, err
		}
		if len(m.routePaths[tc.ID]) == 0 {
			return nil, fmt.Errorf("%w: traffic class %d has no routed paths; register resource consumption first",
				opt.ErrComposition, tc.ID)
		}
	}

	base := "o_" + sanitizeName(req.VarName)
	if m.HasVariable(base + "_e0") {
		return nil, fmt.Errorf("%w: duplicate objective variable name %q", opt.ErrComposition, req.VarName)
	}
	objVars := make([]int, m.epochs)
	refs := make([]opt.VarRef, m.epochs)
	for e := 0; e < m.epochs; e++ {
		objVars[e] = m.ensureVar(fmt.Sprintf("%s_e%d", base, e), 0, 1)
		refs[e] = opt.VarRef(objVars[e])
	}

	var err error
	switch req.Kind {
	case ObjectiveMaxFlow:
		m.maxFlowRows(base, req.Classes, objVars)
	case ObjectiveMinLinkLoad:
		err = m.minLinkLoadRows(base, req.Args, objVars)
	case ObjectiveMinLatency:
		m.minLatencyRows(base, req.Classes, objVars)
	default:
		panic(fmt.Sprintf("unreachable objective kind %q", req.Kind))
	}
	if err != nil {
		return nil, err
	}
	m.log.Debugf("added %s objective %q over %d classes", req.Kind, req.VarName, len(req.Classes))
	return refs, nil
}

// maxFlowRows ties each utility variable to the volume-weighted routed
// share of the epoch's demand:
//
//	o_e = sum over classes of (volume share) * sum(x_path)
//
// With per-class routing rows at <= 1 the share never exceeds 1. An epoch
// with zero total demand pins its utility to 0.
func (m *Model) maxFlowRows(base string, classes []*paths.TrafficClass, objVars []int) {
	for e := range objVars {
		total := 0.0
		for _, tc := range classes {
			total += tc.VolumeAt(e)
		}
		terms := []term{{varIdx: objVars[e], coef: 1}}
		if total > 0 {
			for _, tc := range classes {
				share := tc.VolumeAt(e) / total
				if share == 0 {
					continue
				}
				for _, t := range m.classRouteTerms(tc.ID) {
					terms = append(terms, term{varIdx: t.varIdx, coef: -share})
				}
			}
		}
		m.addRow(fmt.Sprintf("%s_def_e%d", base, e), terms, opEQ, 0)
	}
}

// minLinkLoadRows bounds each utility variable by the headroom of every
// element advertising the target resource:
//
//	o_e <= 1 - load(element, epoch) / capacity(element)
//
// Maximizing o_e therefore minimizes the worst element utilization.
// Elements with zero capacity are skipped; their load rows already force
// zero usage.
func (m *Model) minLinkLoadRows(base string, args []string, objVars []int) error {
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("%w: objective %q requires a resource argument", opt.ErrValidation, ObjectiveMinLinkLoad)
	}
	resource := args[0]
	rl, ok := m.resources[resource]
	if !ok {
		return fmt.Errorf("%w: objective %q references resource %q, which is not consumed",
			opt.ErrValidation, ObjectiveMinLinkLoad, resource)
	}
	for e := range objVars {
		for _, el := range rl.elements {
			capacity := rl.caps[el]
			if capacity <= 0 {
				continue
			}
			terms := []term{{varIdx: objVars[e], coef: 1}}
			for _, t := range mergeTerms(rl.terms[el][e], nil) {
				terms = append(terms, term{varIdx: t.varIdx, coef: t.coef / capacity})
			}
			m.addRow(fmt.Sprintf("%s_%s_e%d", base, el.Key(), e), terms, opLE, 1)
		}
	}
	return nil
}

// minLatencyRows defines each utility variable as one minus the
// volume-weighted relative path length of the routed traffic:
//
//	o_e = 1 - sum over classes of (volume share) * sum((hops/maxhops) * x_path)
//
// Hop counts are normalized per class against its longest candidate path,
// so the proxy stays in [0, 1] regardless of topology size.
func (m *Model) minLatencyRows(base string, classes []*paths.TrafficClass, objVars []int) {
	for e := range objVars {
		total := 0.0
		for _, tc := range classes {
			total += tc.VolumeAt(e)
		}
		terms := []term{{varIdx: objVars[e], coef: 1}}
		if total > 0 {
			for _, tc := range classes {
				share := tc.VolumeAt(e) / total
				if share == 0 {
					continue
				}
				maxHops := 0
				for _, p := range m.routePaths[tc.ID] {
					if p.Hops() > maxHops {
						maxHops = p.Hops()
					}
				}
				if maxHops == 0 {
					continue
				}
				for _, p := range m.routePaths[tc.ID] {
					coef := share * float64(p.Hops()) / float64(maxHops)
					if coef == 0 {
						continue
					}
					terms = append(terms, term{varIdx: m.routeVars[tc.ID][p.Key()], coef: coef})
				}
			}
		}
		m.addRow(fmt.Sprintf("%s_def_e%d", base, e), terms, opEQ, 1)
	}
}

// ComposeObjectives implements opt.ModelBuilder. It reduces each
// application's per-epoch utilities under the epoch mode, combines the
// reduced values under the fairness mode, and installs the result as the
// model's single maximized objective. A model composes exactly once.
func (m *Model) ComposeObjectives(matrix [][]opt.VarRef, epochMode opt.EpochMode, fairness opt.FairnessMode, weights []float64) error {
	if m.composed {
		return fmt.Errorf("%w: objectives already composed", opt.ErrComposition)
	}
	if len(matrix) == 0 {
		return fmt.Errorf("%w: no objectives to compose", opt.ErrComposition)
	}
	if len(weights) != len(matrix) {
		return fmt.Errorf("%w: %d weights for %d objective rows", opt.ErrComposition, len(weights), len(matrix))
	}
	epochs := len(matrix[0])
	if epochs == 0 {
		return fmt.Errorf("%w: objective row 0 is empty", opt.ErrComposition)
	}
	for i, row := range matrix {
		if len(row) != epochs {
			return fmt.Errorf("%w: ragged objective matrix: row %d has %d epochs, row 0 has %d",
				opt.ErrComposition, i, len(row), epochs)
		}
		for _, ref := range row {
			if int(ref) < 0 || int(ref) >= len(m.vars) {
				return fmt.Errorf("%w: objective row %d references unknown variable %d", opt.ErrComposition, i, ref)
			}
		}
	}

	// Reduce each row across epochs into a linear expression.
	reduced := make([][]term, len(matrix))
	switch epochMode {
	case opt.EpochAvg, "":
		for i, row := range matrix {
			expr := make([]term, len(row))
			for e, ref := range row {
				expr[e] = term{varIdx: int(ref), coef: 1 / float64(epochs)}
			}
			reduced[i] = expr
		}
	case opt.EpochWorst:
		for i, row := range matrix {
			aux := m.ensureVar(fmt.Sprintf("red_%d", i), 0, 1)
			for e, ref := range row {
				m.addRow(fmt.Sprintf("red_%d_e%d", i, e),
					[]term{{varIdx: aux, coef: 1}, {varIdx: int(ref), coef: -1}}, opLE, 0)
			}
			reduced[i] = []term{{varIdx: aux, coef: 1}}
		}
	default:
		return fmt.Errorf("%w: epoch mode %q is not supported by the linear builder", opt.ErrValidation, epochMode)
	}

	// Combine the reduced expressions under the fairness mode.
	switch fairness {
	case opt.FairnessWeighted, "":
		var obj []term
		for i, expr := range reduced {
			for _, t := range expr {
				obj = append(obj, term{varIdx: t.varIdx, coef: weights[i] * t.coef})
			}
		}
		m.objTerms = mergeObjectiveTerms(obj)
	case opt.FairnessMaxMin:
		// Maximize the smallest weighted utility: t <= w_i * reduced_i.
		tvar := m.ensureVar("t_fair", 0, 1)
		for i, expr := range reduced {
			terms := []term{{varIdx: tvar, coef: 1}}
			for _, t := range expr {
				terms = append(terms, term{varIdx: t.varIdx, coef: -weights[i] * t.coef})
			}
			m.addRow(fmt.Sprintf("fair_%d", i), terms, opLE, 0)
		}
		m.objTerms = []term{{varIdx: tvar, coef: 1}}
	case opt.FairnessPropFair:
		return fmt.Errorf("%w: fairness mode %q needs a logarithmic objective; the linear builder cannot express it",
			opt.ErrValidation, fairness)
	default:
		return fmt.Errorf("%w: fairness mode %q is not supported by the linear builder", opt.ErrValidation, fairness)
	}

	m.composed = true
	m.log.Infof("composed objective over %d applications, %d epochs (epoch=%s fairness=%s)",
		len(matrix), epochs, epochMode, fairness)
	return nil
}

// mergeObjectiveTerms sums duplicate variables in the objective expression,
// ordering terms by variable index.
func mergeObjectiveTerms(terms []term) []term {
	coefs := make(map[int]float64, len(terms))
	for _, t := range terms {
		coefs[t.varIdx] += t.coef
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
