package topo

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the YAML description of a topology.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Version string     `yaml:"version"`
	Name    string     `yaml:"name,omitempty"`
	Nodes   []NodeSpec `yaml:"nodes"`
	Links   []LinkSpec `yaml:"links"`
}

// NodeSpec declares one node and the resource capacities it advertises.
type NodeSpec struct {
	Name      string             `yaml:"name"`
	Resources map[string]float64 `yaml:"resources,omitempty"`
}

// LinkSpec declares one directed link. Bidirectional links expand into two
// directed links sharing the same resource table.
type LinkSpec struct {
	Src           string             `yaml:"src"`
	Dst           string             `yaml:"dst"`
	Resources     map[string]float64 `yaml:"resources,omitempty"`
	Bidirectional bool               `yaml:"bidirectional,omitempty"`
}

// LoadSpec reads and parses a YAML topology specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology spec: %w", err)
	}
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing topology spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *Spec) Validate() error {
	if s.Version != "" && s.Version != "1" {
		return fmt.Errorf("unknown topology spec version %q; valid: 1", s.Version)
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("at least one node required")
	}
	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		prefix := fmt.Sprintf("node[%d]", i)
		if n.Name == "" {
			return fmt.Errorf("%s: name must not be empty", prefix)
		}
		if seen[n.Name] {
			return fmt.Errorf("%s: duplicate node name %q", prefix, n.Name)
		}
		seen[n.Name] = true
		if err := validateResourceTable(prefix, n.Resources); err != nil {
			return err
		}
	}
	for i, l := range s.Links {
		prefix := fmt.Sprintf("link[%d]", i)
		if !seen[l.Src] {
			return fmt.Errorf("%s: unknown node %q", prefix, l.Src)
		}
		if !seen[l.Dst] {
			return fmt.Errorf("%s: unknown node %q", prefix, l.Dst)
		}
		if l.Src == l.Dst {
			return fmt.Errorf("%s: self-loop %q", prefix, l.Src)
		}
		if err := validateResourceTable(prefix, l.Resources); err != nil {
			return err
		}
	}
	return nil
}

func validateResourceTable(prefix string, resources map[string]float64) error {
	for name, cap := range resources {
		if name == "" {
			return fmt.Errorf("%s: resource name must not be empty", prefix)
		}
		if math.IsNaN(cap) || math.IsInf(cap, 0) {
			return fmt.Errorf("%s: resource %q capacity must be a finite number, got %f", prefix, name, cap)
		}
		if cap < 0 {
			return fmt.Errorf("%s: resource %q capacity must be non-negative, got %f", prefix, name, cap)
		}
	}
	return nil
}

// Build validates the spec and materializes it into a Topology.
func (s *Spec) Build() (*Topology, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t := New(s.Name)
	for _, n := range s.Nodes {
		if _, err := t.AddNode(n.Name, n.Resources); err != nil {
			return nil, err
		}
	}
	for _, l := range s.Links {
		if _, err := t.AddLink(l.Src, l.Dst, l.Resources); err != nil {
			return nil, err
		}
		if l.Bidirectional {
			if _, err := t.AddLink(l.Dst, l.Src, l.Resources); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}
