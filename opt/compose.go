package opt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// Options carries the knobs of one composition run. The zero value is
// usable: average epoch reduction, weighted fairness, derived weights, no
// global caps, and the logrus standard logger.
type Options struct {
	// EpochMode selects how per-epoch objective values reduce to one value.
	// Empty means EpochAvg.
	EpochMode EpochMode

	// Fairness selects how per-application objectives combine. Empty means
	// FairnessWeighted.
	Fairness FairnessMode

	// Weights are explicit objective weights, one per application, each in
	// [0, 1]. Nil derives weights from traffic volumes.
	Weights []float64

	// Network holds operator-wide settings such as global capacity caps.
	// Nil means no caps.
	Network *NetworkConfig

	// Logger receives composition progress. Nil means the logrus standard
	// logger.
	Logger logrus.FieldLogger
}

// Compose assembles the applications' traffic-engineering demands into the
// given model builder: it merges path sets, registers resource consumption
// against topology capacities, applies global caps, runs constraint hooks,
// resolves objective weights, and composes the global objective. The builder
// afterwards holds a complete model; Compose itself never solves anything.
//
// Stages run in a fixed order and the first failing stage aborts the run, so
// a builder is never left with a partially registered resource.
func Compose(apps []*Application, topology *topo.Topology, builder ModelBuilder, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := validateInputs(apps, topology, builder, opts); err != nil {
		return err
	}
	epochMode := opts.EpochMode
	if epochMode == "" {
		epochMode = EpochAvg
	}
	fairness := opts.Fairness
	if fairness == "" {
		fairness = FairnessWeighted
	}

	merged := mergePathSets(apps)
	log.Infof("composing %d applications over %d traffic classes (epoch=%s fairness=%s)",
		len(apps), merged.NumClasses(), epochMode, fairness)

	if err := buildConsumption(log, builder, merged, apps, topology); err != nil {
		return err
	}
	if err := applyCaps(log, builder, opts.Network); err != nil {
		return err
	}
	if err := injectNamedConstraints(log, builder, apps); err != nil {
		return err
	}
	weights, err := deriveWeights(apps, opts.Weights)
	if err != nil {
		return err
	}
	log.Debugf("objective weights: %v", weights)
	return composeObjectives(log, builder, apps, epochMode, fairness, weights)
}

// validateInputs rejects compositions that cannot possibly succeed before
// the builder sees anything.
func validateInputs(apps []*Application, topology *topo.Topology, builder ModelBuilder, opts Options) error {
	if len(apps) == 0 {
		return fmt.Errorf("%w: no applications to compose", ErrValidation)
	}
	if topology == nil {
		return fmt.Errorf("%w: topology must not be nil", ErrValidation)
	}
	if builder == nil {
		return fmt.Errorf("%w: model builder must not be nil", ErrValidation)
	}
	if !IsValidEpochMode(opts.EpochMode) {
		return fmt.Errorf("%w: unknown epoch mode %q; valid: %s",
			ErrValidation, opts.EpochMode, strings.Join(ValidEpochModes(), ", "))
	}
	if !IsValidFairnessMode(opts.Fairness) {
		return fmt.Errorf("%w: unknown fairness mode %q; valid: %s",
			ErrValidation, opts.Fairness, strings.Join(ValidFairnessModes(), ", "))
	}
	seen := make(map[string]bool, len(apps))
	for _, app := range apps {
		if app == nil {
			return fmt.Errorf("%w: nil application", ErrConfig)
		}
		if err := app.validate(); err != nil {
			return err
		}
		if seen[app.Name] {
			return fmt.Errorf("%w: duplicate application name %q", ErrConfig, app.Name)
		}
		seen[app.Name] = true
	}
	return nil
}

// mergePathSets unions the applications' per-class path sets into one set
// shared by all consumption constraints. Classes keep the identity of their
// first registration; duplicate paths collapse.
func mergePathSets(apps []*Application) *paths.Set {
	sets := make([]*paths.Set, 0, len(apps))
	for _, app := range apps {
		sets = append(sets, app.PPTC)
	}
	return paths.Merge(sets...)
}

// buildConsumption registers resource consumption with the builder: one
// Consume call per distinct resource, carrying every consuming application's
// cost function and the capacities of every element that advertises the
// resource.
//
// The resource table is assembled and validated in full before the first
// Consume call, so a domain conflict leaves the builder untouched.
func buildConsumption(log logrus.FieldLogger, builder ModelBuilder, merged *paths.Set, apps []*Application, topology *topo.Topology) error {
	costs := make(map[string][]AppCost)
	domains := make(map[string]Domain)
	for _, app := range apps {
		for _, resource := range app.ResourceNames() {
			rc := app.ResourceCosts[resource]
			if !rc.Domain.Valid() {
				return fmt.Errorf("%w: application %q resource %q has invalid ownership domain %s",
					ErrConfig, app.Name, resource, rc.Domain)
			}
			if prev, ok := domains[resource]; ok && prev != rc.Domain {
				return fmt.Errorf("%w: resource %q claimed as %s-owned and %s-owned by different applications",
					ErrConfig, resource, prev, rc.Domain)
			}
			domains[resource] = rc.Domain
			costs[resource] = append(costs[resource], AppCost{App: app.Name, Cost: rc.Cost})
		}
	}

	resources := make([]string, 0, len(costs))
	for resource := range costs {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	for _, resource := range resources {
		caps := elementCapacities(topology, resource, domains[resource])
		if err := builder.Consume(merged, resource, costs[resource], caps, domains[resource]); err != nil {
			return fmt.Errorf("consuming resource %q: %w", resource, err)
		}
		log.Debugf("registered %s-owned resource %q: %d applications, %d elements",
			domains[resource], resource, len(costs[resource]), len(caps))
	}
	return nil
}

// elementCapacities collects the capacity of every element that advertises
// the resource in its domain. Elements without the resource are absent from
// the result, not zero.
func elementCapacities(topology *topo.Topology, resource string, domain Domain) map[topo.Element]float64 {
	caps := make(map[topo.Element]float64)
	switch domain {
	case DomainNode:
		for _, node := range topology.Nodes() {
			if cap, ok := topology.NodeResources(node)[resource]; ok {
				caps[topo.NodeElement(node)] = cap
			}
		}
	case DomainLink:
		for _, link := range topology.Links() {
			if cap, ok := topology.LinkResources(link)[resource]; ok {
				caps[topo.LinkElement(link)] = cap
			}
		}
	}
	return caps
}

// applyCaps forwards global capacity caps to the builder, one Cap call per
// capped resource in sorted order. No network config, or an empty caps
// table, is a no-op.
func applyCaps(log logrus.FieldLogger, builder ModelBuilder, network *NetworkConfig) error {
	caps := network.Caps()
	if caps.Len() == 0 {
		log.Debugf("no global capacity caps")
		return nil
	}
	for _, resource := range caps.Resources() {
		fraction := caps.Cap(resource)
		if err := builder.Cap(resource, fraction, nil); err != nil {
			return fmt.Errorf("capping resource %q: %w", resource, err)
		}
		log.Debugf("capped resource %q at fraction %v of element capacity", resource, fraction)
	}
	return nil
}

// injectNamedConstraints runs each application's constraint hook against the
// shared builder. Hook errors propagate unchanged apart from naming the
// application.
func injectNamedConstraints(log logrus.FieldLogger, builder ModelBuilder, apps []*Application) error {
	for _, app := range apps {
		if app.Hook == nil {
			continue
		}
		if err := app.Hook(builder, app); err != nil {
			return fmt.Errorf("application %q constraint hook: %w", app.Name, err)
		}
		log.Debugf("applied constraint hook for application %q", app.Name)
	}
	return nil
}

// composeObjectives registers every application objective, stacks the
// returned per-epoch variables into a matrix with one row per application,
// and hands the matrix to the builder for the final global objective.
func composeObjectives(log logrus.FieldLogger, builder ModelBuilder, apps []*Application, epochMode EpochMode, fairness FairnessMode, weights []float64) error {
	matrix := make([][]VarRef, 0, len(apps))
	for _, app := range apps {
		req := ObjectiveRequest{
			Kind:    app.Objective.Kind,
			Args:    app.Objective.Args,
			VarName: app.Name,
			Classes: app.ObjectiveClasses(),
		}
		vars, err := builder.AddSingleObjective(req)
		if err != nil {
			return fmt.Errorf("application %q objective: %w", app.Name, err)
		}
		matrix = append(matrix, vars)
	}
	if err := builder.ComposeObjectives(matrix, epochMode, fairness, weights); err != nil {
		return fmt.Errorf("composing objectives: %w", err)
	}
	log.Infof("composed %d objectives", len(matrix))
	return nil
}
