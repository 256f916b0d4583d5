// Package scenario loads composition scenarios from YAML and compiles them
// into applications ready for opt.Compose. A scenario names the
// participating applications with their traffic classes, resource costs,
// objectives, and named constraints, plus the run-wide composition options.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/model"
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Version      string       `yaml:"version"`
	Name         string       `yaml:"name"`
	EpochMode    string       `yaml:"epoch_mode,omitempty"`
	Fairness     string       `yaml:"fairness,omitempty"`
	Weights      []float64    `yaml:"weights,omitempty"`
	Network      *NetworkSpec `yaml:"network,omitempty"`
	Applications []AppSpec    `yaml:"applications"`
}

// NetworkSpec carries operator-wide settings, currently global caps as
// fractions of topology capacity per resource.
type NetworkSpec struct {
	Caps map[string]float64 `yaml:"caps,omitempty"`
}

// AppSpec declares one application.
type AppSpec struct {
	Name        string           `yaml:"name"`
	Objective   ObjectiveSpec    `yaml:"objective"`
	Resources   []ResourceSpec   `yaml:"resources"`
	Classes     []ClassSpec      `yaml:"traffic_classes"`
	Constraints []ConstraintSpec `yaml:"constraints,omitempty"`
}

// ObjectiveSpec selects the application objective.
type ObjectiveSpec struct {
	Kind string   `yaml:"kind"`
	Args []string `yaml:"args,omitempty"`
}

// ResourceSpec declares one resource the application consumes.
type ResourceSpec struct {
	Name   string  `yaml:"name"`
	Domain string  `yaml:"domain"`
	Cost   float64 `yaml:"cost"`
	Model  string  `yaml:"model,omitempty"` // cost model; defaults to uniform
}

// ClassSpec declares one traffic class. Candidate paths are either listed
// explicitly as node-name sequences or enumerated up to max_hops.
type ClassSpec struct {
	ID      int        `yaml:"id"`
	Name    string     `yaml:"name"`
	Src     string     `yaml:"src"`
	Dst     string     `yaml:"dst"`
	Volumes []float64  `yaml:"volumes"`
	Paths   [][]string `yaml:"paths,omitempty"`
	MaxHops int        `yaml:"max_hops,omitempty"` // 0 = topology diameter bound
}

// ConstraintSpec declares one named constraint the application injects into
// the shared model.
type ConstraintSpec struct {
	Kind     string  `yaml:"kind"`
	Class    int     `yaml:"class"`
	Fraction float64 `yaml:"fraction,omitempty"`
}

// Named-constraint kinds.
const (
	// ConstraintRouteAll forces a class to route its entire demand.
	ConstraintRouteAll = "route-all"
	// ConstraintMinFlowFraction forces a class to route at least the given
	// fraction of its demand.
	ConstraintMinFlowFraction = "min-flow-fraction"
)

// Valid value registries.
var (
	validCostModels = map[string]bool{
		"": true, "uniform": true, "endpoint": true,
	}
	validConstraintKinds = map[string]bool{
		ConstraintRouteAll: true, ConstraintMinFlowFraction: true,
	}
)

// LoadSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario spec: %w", err)
	}
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid. Topology-dependent
// checks (node names, path feasibility) happen in Build.
func (s *Spec) Validate() error {
	if s.Version != "" && s.Version != "1" {
		return fmt.Errorf("unsupported scenario spec version %q; valid: 1", s.Version)
	}
	if len(s.Applications) == 0 {
		return fmt.Errorf("at least one application required")
	}
	if !opt.IsValidEpochMode(opt.EpochMode(s.EpochMode)) {
		return fmt.Errorf("unknown epoch_mode %q; valid: %s", s.EpochMode, strings.Join(opt.ValidEpochModes(), ", "))
	}
	if !opt.IsValidFairnessMode(opt.FairnessMode(s.Fairness)) {
		return fmt.Errorf("unknown fairness %q; valid: %s", s.Fairness, strings.Join(opt.ValidFairnessModes(), ", "))
	}
	if s.Weights != nil {
		if len(s.Weights) != len(s.Applications) {
			return fmt.Errorf("got %d weights for %d applications", len(s.Weights), len(s.Applications))
		}
		for i, w := range s.Weights {
			if math.IsNaN(w) || w < 0 || w > 1 {
				return fmt.Errorf("weights[%d] = %v outside [0, 1]", i, w)
			}
		}
	}
	if s.Network != nil {
		for name, f := range s.Network.Caps {
			if name == "" {
				return fmt.Errorf("network.caps: empty resource name")
			}
			if !(f > 0 && f <= 1) {
				return fmt.Errorf("network.caps.%s: cap fraction %v outside (0, 1]", name, f)
			}
		}
	}

	epochs := 0
	seenApps := make(map[string]bool, len(s.Applications))
	for i := range s.Applications {
		app := &s.Applications[i]
		prefix := fmt.Sprintf("application[%d]", i)
		if app.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if seenApps[app.Name] {
			return fmt.Errorf("%s: duplicate application name %q", prefix, app.Name)
		}
		seenApps[app.Name] = true
		if err := validateApp(app, prefix, &epochs); err != nil {
			return err
		}
	}
	return nil
}

func validateApp(app *AppSpec, prefix string, epochs *int) error {
	if !model.IsValidObjective(app.Objective.Kind) {
		return fmt.Errorf("%s: unknown objective kind %q; valid: %s",
			prefix, app.Objective.Kind, strings.Join(model.ValidObjectiveKinds(), ", "))
	}
	if len(app.Classes) == 0 {
		return fmt.Errorf("%s: at least one traffic class required", prefix)
	}

	seenRes := make(map[string]bool, len(app.Resources))
	for j, r := range app.Resources {
		rp := fmt.Sprintf("%s.resource[%d]", prefix, j)
		if r.Name == "" {
			return fmt.Errorf("%s: name required", rp)
		}
		if seenRes[r.Name] {
			return fmt.Errorf("%s: duplicate resource %q", rp, r.Name)
		}
		seenRes[r.Name] = true
		if _, err := opt.ParseDomain(r.Domain); err != nil {
			return fmt.Errorf("%s: %v", rp, err)
		}
		if math.IsNaN(r.Cost) || math.IsInf(r.Cost, 0) || r.Cost <= 0 {
			return fmt.Errorf("%s: cost must be a positive finite number, got %v", rp, r.Cost)
		}
		if !validCostModels[r.Model] {
			return fmt.Errorf("%s: unknown cost model %q; valid: uniform, endpoint, or empty", rp, r.Model)
		}
	}

	seenClasses := make(map[int]bool, len(app.Classes))
	for j, c := range app.Classes {
		cp := fmt.Sprintf("%s.class[%d]", prefix, j)
		if c.ID <= 0 {
			return fmt.Errorf("%s: id must be positive, got %d", cp, c.ID)
		}
		if seenClasses[c.ID] {
			return fmt.Errorf("%s: duplicate class id %d", cp, c.ID)
		}
		seenClasses[c.ID] = true
		if c.Src == "" || c.Dst == "" {
			return fmt.Errorf("%s: src and dst required", cp)
		}
		if c.Src == c.Dst {
			return fmt.Errorf("%s: src and dst must differ, got %q", cp, c.Src)
		}
		if len(c.Volumes) == 0 {
			return fmt.Errorf("%s: at least one demand volume required", cp)
		}
		if *epochs == 0 {
			*epochs = len(c.Volumes)
		} else if len(c.Volumes) != *epochs {
			return fmt.Errorf("%s: %d demand volumes, scenario uses %d epochs", cp, len(c.Volumes), *epochs)
		}
		for k, v := range c.Volumes {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%s.volumes[%d]: must be a non-negative finite number, got %v", cp, k, v)
			}
		}
		for k, p := range c.Paths {
			if len(p) < 2 {
				return fmt.Errorf("%s.paths[%d]: a path needs at least two nodes", cp, k)
			}
		}
		if c.MaxHops < 0 {
			return fmt.Errorf("%s: max_hops must be non-negative, got %d", cp, c.MaxHops)
		}
	}

	for j, con := range app.Constraints {
		kp := fmt.Sprintf("%s.constraint[%d]", prefix, j)
		if !validConstraintKinds[con.Kind] {
			return fmt.Errorf("%s: unknown constraint kind %q; valid: %s, %s",
				kp, con.Kind, ConstraintMinFlowFraction, ConstraintRouteAll)
		}
		if !seenClasses[con.Class] {
			return fmt.Errorf("%s: references class %d, which the application does not declare", kp, con.Class)
		}
		if con.Kind == ConstraintMinFlowFraction && !(con.Fraction > 0 && con.Fraction <= 1) {
			return fmt.Errorf("%s: fraction %v outside (0, 1]", kp, con.Fraction)
		}
	}
	return nil
}
