package opt

import (
	"fmt"
	"sort"

	"github.com/netcompose/netcompose/opt/paths"
)

// Application is one traffic-engineering participant in a composition: a
// path set per traffic class, a resource cost table, an objective, and
// optionally extra named constraints. Applications are owned by the caller
// and read-only while a composition runs.
type Application struct {
	// Name identifies the application in errors, logs and model variable
	// names. Must be unique within one composition.
	Name string

	// PPTC holds the application's candidate paths per traffic class.
	PPTC *paths.Set

	// ResourceCosts maps each resource the application consumes to its cost
	// function and the resource's ownership domain.
	ResourceCosts map[string]ResourceCost

	// Objective describes the application's objective.
	Objective ObjectiveSpec

	// ObjClasses restricts the objective to a subset of the application's
	// traffic classes. Nil means all classes in PPTC.
	ObjClasses []*paths.TrafficClass

	// Hook, when non-nil, may attach arbitrary additional constraints to the
	// shared model. It receives the shared builder and the application
	// itself as context. Failures propagate unchanged to the Compose caller.
	Hook func(mb ModelBuilder, app *Application) error
}

// ObjectiveSpec declares an application objective: a registered kind plus
// its positional arguments (for example the resource name a load objective
// targets). The variable-name hint and target traffic classes are filled in
// by the composer, not here.
type ObjectiveSpec struct {
	Kind string
	Args []string
}

// Volume returns the application's total traffic volume: the sum over its
// traffic classes of their per-epoch demands. Used for derived objective
// weights — lower-volume applications weigh more under weighted fairness.
func (a *Application) Volume() float64 {
	if a.PPTC == nil {
		return 0
	}
	total := 0.0
	for _, tc := range a.PPTC.Classes() {
		total += tc.TotalVolume()
	}
	return total
}

// ObjectiveClasses returns the traffic classes the objective scopes to:
// ObjClasses if set, otherwise all classes in the path set.
func (a *Application) ObjectiveClasses() []*paths.TrafficClass {
	if a.ObjClasses != nil {
		return a.ObjClasses
	}
	if a.PPTC == nil {
		return nil
	}
	return a.PPTC.Classes()
}

// ResourceNames returns the resources the application consumes, sorted.
func (a *Application) ResourceNames() []string {
	out := make([]string, 0, len(a.ResourceCosts))
	for name := range a.ResourceCosts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// validate checks the minimal application contract before composition
// touches the model builder.
func (a *Application) validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: application name must not be empty", ErrConfig)
	}
	if a.PPTC == nil || a.PPTC.NumClasses() == 0 {
		return fmt.Errorf("%w: application %q has no traffic classes", ErrConfig, a.Name)
	}
	if a.Objective.Kind == "" {
		return fmt.Errorf("%w: application %q has no objective", ErrConfig, a.Name)
	}
	return nil
}

// NetworkConfig carries network-wide composition settings supplied by the
// operator, currently the global capacity caps.
type NetworkConfig struct {
	caps *ResourceCaps
}

// NewNetworkConfig builds a NetworkConfig with the given caps table.
// A nil caps table means "no caps".
func NewNetworkConfig(caps *ResourceCaps) *NetworkConfig {
	return &NetworkConfig{caps: caps}
}

// Caps returns the global caps table, or nil when none was supplied.
// Safe on a nil receiver.
func (c *NetworkConfig) Caps() *ResourceCaps {
	if c == nil {
		return nil
	}
	return c.caps
}

// ResourceCaps is a table of global capacity caps: per resource name, the
// fraction of each element's topology-derived capacity that compositions may
// use. Fractions are validated by the model builder to lie in (0, 1].
type ResourceCaps struct {
	fractions map[string]float64
}

// NewResourceCaps copies the given fractions into a caps table.
func NewResourceCaps(fractions map[string]float64) *ResourceCaps {
	copied := make(map[string]float64, len(fractions))
	for name, f := range fractions {
		copied[name] = f
	}
	return &ResourceCaps{fractions: copied}
}

// Resources returns the capped resource names, sorted.
func (rc *ResourceCaps) Resources() []string {
	if rc == nil {
		return nil
	}
	out := make([]string, 0, len(rc.fractions))
	for name := range rc.fractions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Cap returns the cap fraction for a resource. Unlisted resources yield 0,
// which no valid cap uses.
func (rc *ResourceCaps) Cap(resource string) float64 {
	if rc == nil {
		return 0
	}
	return rc.fractions[resource]
}

// Len returns the number of capped resources.
func (rc *ResourceCaps) Len() int {
	if rc == nil {
		return 0
	}
	return len(rc.fractions)
}
