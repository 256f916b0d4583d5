package scenario

import (
	"fmt"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/model"
	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// Scenario is a compiled spec: applications bound to a topology plus the
// composition options they run under. The Logger option is left nil for the
// caller to fill in.
type Scenario struct {
	Name    string
	Apps    []*opt.Application
	Options opt.Options
}

// Build compiles the spec against a topology: node names resolve to IDs,
// explicit paths are checked link by link, omitted paths are enumerated,
// cost models become cost functions, and constraints become hooks against
// the linear model builder.
func (s *Spec) Build(tp *topo.Topology) (*Scenario, error) {
	if tp == nil {
		return nil, fmt.Errorf("topology required")
	}
	apps := make([]*opt.Application, 0, len(s.Applications))
	for i := range s.Applications {
		app, err := buildApp(tp, &s.Applications[i], fmt.Sprintf("application[%d]", i))
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	opts := opt.Options{
		EpochMode: opt.EpochMode(s.EpochMode),
		Fairness:  opt.FairnessMode(s.Fairness),
	}
	if s.Weights != nil {
		opts.Weights = append([]float64(nil), s.Weights...)
	}
	if s.Network != nil && len(s.Network.Caps) > 0 {
		opts.Network = opt.NewNetworkConfig(opt.NewResourceCaps(s.Network.Caps))
	}
	return &Scenario{Name: s.Name, Apps: apps, Options: opts}, nil
}

func buildApp(tp *topo.Topology, spec *AppSpec, prefix string) (*opt.Application, error) {
	ps := paths.NewSet()
	for j, c := range spec.Classes {
		cp := fmt.Sprintf("%s.class[%d]", prefix, j)
		src, ok := tp.NodeID(c.Src)
		if !ok {
			return nil, fmt.Errorf("%s: unknown node %q", cp, c.Src)
		}
		dst, ok := tp.NodeID(c.Dst)
		if !ok {
			return nil, fmt.Errorf("%s: unknown node %q", cp, c.Dst)
		}
		tc := &paths.TrafficClass{ID: c.ID, Name: c.Name, Src: src, Dst: dst, Volumes: c.Volumes}

		var candidates []paths.Path
		if len(c.Paths) > 0 {
			for k, names := range c.Paths {
				p, err := resolvePath(tp, names)
				if err != nil {
					return nil, fmt.Errorf("%s.paths[%d]: %v", cp, k, err)
				}
				if err := p.Validate(tp); err != nil {
					return nil, fmt.Errorf("%s.paths[%d]: %v", cp, k, err)
				}
				if p.Nodes[0] != src || p.Nodes[len(p.Nodes)-1] != dst {
					return nil, fmt.Errorf("%s.paths[%d]: path %s does not connect %q to %q",
						cp, k, p, c.Src, c.Dst)
				}
				candidates = append(candidates, p)
			}
		} else {
			candidates = paths.EnumerateSimple(tp, src, dst, c.MaxHops)
			if len(candidates) == 0 {
				return nil, fmt.Errorf("%s: no candidate paths from %q to %q (max_hops %d)",
					cp, c.Src, c.Dst, c.MaxHops)
			}
		}
		ps.Add(tc, candidates...)
	}

	ownClasses := make([]int, len(spec.Classes))
	for j, c := range spec.Classes {
		ownClasses[j] = c.ID
	}

	costs := make(map[string]opt.ResourceCost, len(spec.Resources))
	for j, r := range spec.Resources {
		rp := fmt.Sprintf("%s.resource[%d]", prefix, j)
		domain, err := opt.ParseDomain(r.Domain)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", rp, err)
		}
		var cost opt.CostFunc
		switch r.Model {
		case "", "uniform":
			cost = opt.UniformCost(r.Cost)
		case "endpoint":
			cost = opt.EndpointCost(r.Cost)
		default:
			return nil, fmt.Errorf("%s: unknown cost model %q", rp, r.Model)
		}
		// Scope the cost to this application's classes so that in the
		// shared model it never charges another tenant's traffic.
		costs[r.Name] = opt.ResourceCost{Cost: opt.ScopedToClasses(cost, ownClasses...), Domain: domain}
	}

	return &opt.Application{
		Name:          spec.Name,
		PPTC:          ps,
		ResourceCosts: costs,
		Objective:     opt.ObjectiveSpec{Kind: spec.Objective.Kind, Args: spec.Objective.Args},
		Hook:          compileConstraints(spec.Constraints),
	}, nil
}

// compileConstraints turns declared constraints into a single hook against
// the linear model builder. Nil when the application declares none.
func compileConstraints(cons []ConstraintSpec) func(opt.ModelBuilder, *opt.Application) error {
	if len(cons) == 0 {
		return nil
	}
	compiled := append([]ConstraintSpec(nil), cons...)
	return func(mb opt.ModelBuilder, _ *opt.Application) error {
		lp, ok := mb.(*model.Model)
		if !ok {
			return fmt.Errorf("%w: named constraints require the linear model builder, got %T",
				opt.ErrValidation, mb)
		}
		for _, c := range compiled {
			var err error
			switch c.Kind {
			case ConstraintRouteAll:
				err = lp.MinFlowFraction(c.Class, 1)
			case ConstraintMinFlowFraction:
				err = lp.MinFlowFraction(c.Class, c.Fraction)
			default:
				err = fmt.Errorf("%w: unknown constraint kind %q", opt.ErrValidation, c.Kind)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func resolvePath(tp *topo.Topology, names []string) (paths.Path, error) {
	nodes := make([]int64, len(names))
	for i, name := range names {
		id, ok := tp.NodeID(name)
		if !ok {
			return paths.Path{}, fmt.Errorf("unknown node %q", name)
		}
		nodes[i] = id
	}
	return paths.Path{Nodes: nodes}, nil
}
