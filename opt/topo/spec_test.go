package topo

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topology.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpec_ValidFile(t *testing.T) {
	path := writeSpecFile(t, `
version: "1"
name: backbone
nodes:
  - name: sea
    resources: {cpu: 4}
  - name: chi
  - name: nyc
links:
  - src: sea
    dst: chi
    resources: {bw: 100}
  - src: chi
    dst: nyc
    resources: {bw: 80}
    bidirectional: true
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	require.NoError(t, spec.Validate())

	topo, err := spec.Build()
	require.NoError(t, err)
	assert.Equal(t, "backbone", topo.Name())
	assert.Len(t, topo.Nodes(), 3)
	assert.Len(t, topo.Links(), 3, "bidirectional link expands into two directed links")

	// The reverse direction shares the resource table.
	chi, _ := topo.NodeID("chi")
	nyc, _ := topo.NodeID("nyc")
	assert.Equal(t, map[string]float64{"bw": 80}, topo.LinkResources(Link{From: nyc, To: chi}))
}

func TestLoadSpec_RejectsUnknownKeys(t *testing.T) {
	path := writeSpecFile(t, `
nodes:
  - name: a
    resourcez: {cpu: 1}
`)

	_, err := LoadSpec(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing topology spec")
}

func TestLoadSpec_MissingFile(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading topology spec")
}

func TestSpecValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{
			"bad version",
			Spec{Version: "7", Nodes: []NodeSpec{{Name: "a"}}},
			"unknown topology spec version",
		},
		{
			"no nodes",
			Spec{},
			"at least one node required",
		},
		{
			"duplicate node",
			Spec{Nodes: []NodeSpec{{Name: "a"}, {Name: "a"}}},
			`duplicate node name "a"`,
		},
		{
			"empty node name",
			Spec{Nodes: []NodeSpec{{Name: ""}}},
			"name must not be empty",
		},
		{
			"link to unknown node",
			Spec{Nodes: []NodeSpec{{Name: "a"}}, Links: []LinkSpec{{Src: "a", Dst: "b"}}},
			`unknown node "b"`,
		},
		{
			"self loop",
			Spec{Nodes: []NodeSpec{{Name: "a"}}, Links: []LinkSpec{{Src: "a", Dst: "a"}}},
			`self-loop "a"`,
		},
		{
			"negative capacity",
			Spec{Nodes: []NodeSpec{{Name: "a", Resources: map[string]float64{"cpu": -1}}}},
			"must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSpecValidate_NaNCapacity(t *testing.T) {
	nan := math.NaN()
	spec := Spec{Nodes: []NodeSpec{{Name: "a", Resources: map[string]float64{"cpu": nan}}}}
	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finite number")
}
