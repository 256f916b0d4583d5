package scenario

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// validScenarioSpec builds a two-application spec that passes Validate.
// Error-path tests mutate a fresh copy of it.
func validScenarioSpec() *Spec {
	return &Spec{
		Version: "1",
		Name:    "two-tenants",
		Weights: []float64{0.6, 0.4},
		Network: &NetworkSpec{Caps: map[string]float64{"bw": 0.9}},
		Applications: []AppSpec{
			{
				Name:      "video",
				Objective: ObjectiveSpec{Kind: "max-flow"},
				Resources: []ResourceSpec{{Name: "bw", Domain: "link", Cost: 1}},
				Classes: []ClassSpec{{
					ID: 1, Src: "sea", Dst: "nyc", Volumes: []float64{10, 20}, MaxHops: 3,
				}},
				Constraints: []ConstraintSpec{{Kind: ConstraintRouteAll, Class: 1}},
			},
			{
				Name:      "voice",
				Objective: ObjectiveSpec{Kind: "min-latency"},
				Resources: []ResourceSpec{
					{Name: "bw", Domain: "link", Cost: 2},
					{Name: "cpu", Domain: "node", Cost: 1, Model: "endpoint"},
				},
				Classes: []ClassSpec{{
					ID: 2, Src: "sea", Dst: "chi", Volumes: []float64{4, 6},
					Paths: [][]string{{"sea", "chi"}, {"sea", "nyc", "chi"}},
				}},
			},
		},
	}
}

func TestLoadSpec_ValidFile(t *testing.T) {
	path := writeScenarioFile(t, `
version: "1"
name: two-tenants
epoch_mode: worst
fairness: max-min
weights: [0.6, 0.4]
network:
  caps: {bw: 0.9}
applications:
  - name: video
    objective:
      kind: max-flow
    resources:
      - name: bw
        domain: link
        cost: 1
    traffic_classes:
      - id: 1
        name: stream
        src: sea
        dst: nyc
        volumes: [10, 20]
        max_hops: 3
    constraints:
      - kind: route-all
        class: 1
  - name: voice
    objective:
      kind: min-link-load
      args: [bw]
    resources:
      - name: bw
        domain: link
        cost: 2
      - name: cpu
        domain: node
        cost: 1
        model: endpoint
    traffic_classes:
      - id: 2
        src: sea
        dst: chi
        volumes: [4, 6]
        paths:
          - [sea, chi]
          - [sea, nyc, chi]
    constraints:
      - kind: min-flow-fraction
        class: 2
        fraction: 0.5
`)

	spec, err := LoadSpec(path)
	require.NoError(t, err)
	require.NoError(t, spec.Validate())

	assert.Equal(t, "two-tenants", spec.Name)
	assert.Equal(t, "worst", spec.EpochMode)
	assert.Equal(t, "max-min", spec.Fairness)
	assert.Equal(t, []float64{0.6, 0.4}, spec.Weights)
	require.NotNil(t, spec.Network)
	assert.Equal(t, map[string]float64{"bw": 0.9}, spec.Network.Caps)

	require.Len(t, spec.Applications, 2)
	video := spec.Applications[0]
	assert.Equal(t, "video", video.Name)
	assert.Equal(t, "max-flow", video.Objective.Kind)
	require.Len(t, video.Classes, 1)
	assert.Equal(t, "stream", video.Classes[0].Name)
	assert.Equal(t, []float64{10, 20}, video.Classes[0].Volumes)
	assert.Equal(t, 3, video.Classes[0].MaxHops)
	require.Len(t, video.Constraints, 1)
	assert.Equal(t, ConstraintRouteAll, video.Constraints[0].Kind)

	voice := spec.Applications[1]
	assert.Equal(t, []string{"bw"}, voice.Objective.Args)
	require.Len(t, voice.Resources, 2)
	assert.Equal(t, "endpoint", voice.Resources[1].Model)
	require.Len(t, voice.Classes, 1)
	assert.Equal(t, [][]string{{"sea", "chi"}, {"sea", "nyc", "chi"}}, voice.Classes[0].Paths)
	require.Len(t, voice.Constraints, 1)
	assert.Equal(t, 0.5, voice.Constraints[0].Fraction)
}

func TestLoadSpec_RejectsUnknownKeys(t *testing.T) {
	path := writeScenarioFile(t, `
applications:
  - name: video
    objectivez:
      kind: max-flow
`)

	_, err := LoadSpec(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario spec")
}

func TestLoadSpec_MissingFile(t *testing.T) {
	_, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario spec")
}

func TestSpecValidate_Valid(t *testing.T) {
	if err := validScenarioSpec().Validate(); err != nil {
		t.Errorf("expected no error for valid spec, got: %v", err)
	}
}

func TestSpecValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr string
	}{
		{
			"bad version",
			func(s *Spec) { s.Version = "7" },
			"unsupported scenario spec version",
		},
		{
			"no applications",
			func(s *Spec) { s.Applications = nil },
			"at least one application required",
		},
		{
			"unknown epoch mode",
			func(s *Spec) { s.EpochMode = "p99" },
			`unknown epoch_mode "p99"; valid: avg, worst`,
		},
		{
			"unknown fairness",
			func(s *Spec) { s.Fairness = "strict" },
			`unknown fairness "strict"; valid: max-min, prop-fair, weighted`,
		},
		{
			"weight count mismatch",
			func(s *Spec) { s.Weights = []float64{1} },
			"got 1 weights for 2 applications",
		},
		{
			"weight out of range",
			func(s *Spec) { s.Weights = []float64{0.6, 1.4} },
			"weights[1] = 1.4 outside [0, 1]",
		},
		{
			"cap fraction zero",
			func(s *Spec) { s.Network.Caps["bw"] = 0 },
			"network.caps.bw",
		},
		{
			"empty application name",
			func(s *Spec) { s.Applications[0].Name = "" },
			"application[0]: name required",
		},
		{
			"duplicate application name",
			func(s *Spec) { s.Applications[1].Name = "video" },
			`duplicate application name "video"`,
		},
		{
			"unknown objective",
			func(s *Spec) { s.Applications[0].Objective.Kind = "max-profit" },
			"unknown objective kind",
		},
		{
			"no traffic classes",
			func(s *Spec) { s.Applications[0].Classes = nil },
			"at least one traffic class required",
		},
		{
			"bad ownership domain",
			func(s *Spec) { s.Applications[0].Resources[0].Domain = "rack" },
			`unknown ownership domain "rack"`,
		},
		{
			"zero cost",
			func(s *Spec) { s.Applications[0].Resources[0].Cost = 0 },
			"cost must be a positive finite number",
		},
		{
			"unknown cost model",
			func(s *Spec) { s.Applications[1].Resources[1].Model = "quadratic" },
			`unknown cost model "quadratic"`,
		},
		{
			"class id zero",
			func(s *Spec) { s.Applications[0].Classes[0].ID = 0 },
			"id must be positive",
		},
		{
			"src equals dst",
			func(s *Spec) { s.Applications[0].Classes[0].Dst = "sea" },
			"src and dst must differ",
		},
		{
			"no volumes",
			func(s *Spec) { s.Applications[0].Classes[0].Volumes = nil },
			"at least one demand volume required",
		},
		{
			"epoch count mismatch",
			func(s *Spec) { s.Applications[1].Classes[0].Volumes = []float64{4} },
			"1 demand volumes, scenario uses 2 epochs",
		},
		{
			"negative volume",
			func(s *Spec) { s.Applications[0].Classes[0].Volumes = []float64{10, -1} },
			"non-negative finite number",
		},
		{
			"one-node path",
			func(s *Spec) { s.Applications[1].Classes[0].Paths = [][]string{{"sea"}} },
			"a path needs at least two nodes",
		},
		{
			"unknown constraint kind",
			func(s *Spec) { s.Applications[0].Constraints[0].Kind = "route-some" },
			`unknown constraint kind "route-some"`,
		},
		{
			"constraint on undeclared class",
			func(s *Spec) { s.Applications[0].Constraints[0].Class = 9 },
			"references class 9, which the application does not declare",
		},
		{
			"constraint fraction out of range",
			func(s *Spec) {
				s.Applications[0].Constraints[0] = ConstraintSpec{
					Kind: ConstraintMinFlowFraction, Class: 1, Fraction: 1.5,
				}
			},
			"fraction 1.5 outside (0, 1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validScenarioSpec()
			tt.mutate(spec)
			err := spec.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSpecValidate_NaNWeight(t *testing.T) {
	spec := validScenarioSpec()
	spec.Weights = []float64{math.NaN(), 0.4}
	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights[0]")
}
