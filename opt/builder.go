package opt

import (
	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// VarRef is an opaque handle to an objective variable inside a model
// builder. The composer only collects and forwards these; it never
// interprets them.
type VarRef int

// AppCost pairs an application name with its cost function for one
// resource. The consumption builder hands the model builder one AppCost per
// consuming application, in deterministic application order.
type AppCost struct {
	App  string
	Cost CostFunc
}

// ObjectiveRequest asks the model builder to register one application's
// objective. VarName is a naming hint (the application name); Classes are
// the traffic classes the objective scopes to.
type ObjectiveRequest struct {
	Kind    string
	Args    []string
	VarName string
	Classes []*paths.TrafficClass
}

// ModelBuilder is the contract between the composition core and an
// optimization backend. The core drives it in a fixed order per
// composition: Consume for every consumed resource, Cap for every global
// cap, application hooks, AddSingleObjective per application, then one
// ComposeObjectives call. Builders own all mathematical encoding; the core
// never evaluates cost functions or inspects variables.
type ModelBuilder interface {
	// Consume records that the given applications consume one resource on
	// the elements listed in caps, at the per-unit rates their cost
	// functions define. caps maps each element that advertises the resource
	// to its capacity. domain tells the builder whether the resource lives
	// on nodes or links.
	Consume(ps *paths.Set, resource string, costs []AppCost, caps map[topo.Element]float64, domain Domain) error

	// Cap limits total usage of a resource to fraction times each element's
	// capacity. A nil classes slice means the cap binds all traffic classes.
	Cap(resource string, fraction float64, classes []*paths.TrafficClass) error

	// AddSingleObjective registers one application objective and returns the
	// per-epoch variables that represent its value.
	AddSingleObjective(req ObjectiveRequest) ([]VarRef, error)

	// ComposeObjectives combines the per-application objective variables
	// (one row per application, one column per epoch) into the model's
	// global objective under the given epoch and fairness modes. weights
	// has one entry per row.
	ComposeObjectives(matrix [][]VarRef, epochMode EpochMode, fairness FairnessMode, weights []float64) error
}
