package opt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcompose/netcompose/opt/paths"
)

func twoClassApp(t *testing.T) *Application {
	t.Helper()
	ps := paths.NewSet()
	ps.Add(&paths.TrafficClass{ID: 1, Name: "bulk", Src: 0, Dst: 2, Volumes: []float64{10, 20}},
		paths.Path{Nodes: []int64{0, 1, 2}})
	ps.Add(&paths.TrafficClass{ID: 2, Name: "web", Src: 0, Dst: 1, Volumes: []float64{5}},
		paths.Path{Nodes: []int64{0, 1}})
	return &Application{
		Name:      "loader",
		PPTC:      ps,
		Objective: ObjectiveSpec{Kind: "max-flow"},
	}
}

func TestApplication_Volume(t *testing.T) {
	app := twoClassApp(t)
	assert.Equal(t, 35.0, app.Volume())

	empty := &Application{Name: "empty"}
	assert.Equal(t, 0.0, empty.Volume())
}

func TestApplication_ObjectiveClasses(t *testing.T) {
	app := twoClassApp(t)

	// GIVEN no explicit scope, THEN the objective covers every class.
	classes := app.ObjectiveClasses()
	require.Len(t, classes, 2)
	assert.Equal(t, 1, classes[0].ID)
	assert.Equal(t, 2, classes[1].ID)

	// GIVEN an explicit scope, THEN it wins verbatim.
	scoped := app.PPTC.Classes()[1:]
	app.ObjClasses = scoped
	assert.Equal(t, scoped, app.ObjectiveClasses())
}

func TestApplication_ResourceNames_Sorted(t *testing.T) {
	app := twoClassApp(t)
	app.ResourceCosts = map[string]ResourceCost{
		"cpu":     {Cost: UniformCost(1), Domain: DomainNode},
		"bw":      {Cost: UniformCost(1), Domain: DomainLink},
		"buffers": {Cost: UniformCost(1), Domain: DomainNode},
	}
	assert.Equal(t, []string{"buffers", "bw", "cpu"}, app.ResourceNames())
}

func TestApplication_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Application)
		wantErr string
	}{
		{"empty name", func(a *Application) { a.Name = "" }, "name must not be empty"},
		{"nil path set", func(a *Application) { a.PPTC = nil }, "no traffic classes"},
		{"empty path set", func(a *Application) { a.PPTC = paths.NewSet() }, "no traffic classes"},
		{"missing objective", func(a *Application) { a.Objective.Kind = "" }, "no objective"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := twoClassApp(t)
			tt.mutate(app)
			err := app.validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "want ErrConfig, got %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid app passes", func(t *testing.T) {
		assert.NoError(t, twoClassApp(t).validate())
	})
}

func TestNetworkConfig_NilSafety(t *testing.T) {
	var nilCfg *NetworkConfig
	assert.Nil(t, nilCfg.Caps())
	assert.Equal(t, 0, nilCfg.Caps().Len())
	assert.Nil(t, NewNetworkConfig(nil).Caps())
}

func TestResourceCaps_SortedAndCopied(t *testing.T) {
	in := map[string]float64{"cpu": 0.8, "bw": 0.5}
	caps := NewResourceCaps(in)
	in["bw"] = 0.1 // caller mutation must not leak in

	assert.Equal(t, []string{"bw", "cpu"}, caps.Resources())
	assert.Equal(t, 0.5, caps.Cap("bw"))
	assert.Equal(t, 0.8, caps.Cap("cpu"))
	assert.Equal(t, 0.0, caps.Cap("missing"))
	assert.Equal(t, 2, caps.Len())
}
