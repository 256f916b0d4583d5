package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcompose/netcompose/opt"
	"github.com/netcompose/netcompose/opt/paths"
	"github.com/netcompose/netcompose/opt/topo"
)

// diamondTopology builds s -> {a, b} -> t with a direct s -> t shortcut.
// Every node advertises node-scoped bandwidth.
func diamondTopology(t *testing.T) *topo.Topology {
	t.Helper()
	tp := topo.New("diamond")
	for _, n := range []struct {
		name string
		bw   float64
	}{{"s", 100}, {"a", 60}, {"b", 70}, {"t", 90}} {
		_, err := tp.AddNode(n.name, map[string]float64{"bw": n.bw})
		require.NoError(t, err)
	}
	for _, l := range [][2]string{{"s", "a"}, {"a", "t"}, {"s", "b"}, {"b", "t"}, {"s", "t"}} {
		_, err := tp.AddLink(l[0], l[1], nil)
		require.NoError(t, err)
	}
	return tp
}

// overlappingApps builds the canonical two-application scenario: both route
// class 7 from s to t, sharing one candidate path and contributing one each.
func overlappingApps() (*opt.Application, *opt.Application) {
	psA := paths.NewSet()
	psA.Add(&paths.TrafficClass{ID: 7, Name: "shared", Src: 0, Dst: 3, Volumes: []float64{10}},
		paths.Path{Nodes: []int64{0, 1, 3}},
		paths.Path{Nodes: []int64{0, 3}})
	alpha := &opt.Application{
		Name: "alpha",
		PPTC: psA,
		ResourceCosts: map[string]opt.ResourceCost{
			"bw": {Cost: opt.UniformCost(1), Domain: opt.DomainNode},
		},
		Objective: opt.ObjectiveSpec{Kind: ObjectiveMaxFlow},
	}

	psB := paths.NewSet()
	psB.Add(&paths.TrafficClass{ID: 7, Name: "shared", Src: 0, Dst: 3, Volumes: []float64{30}},
		paths.Path{Nodes: []int64{0, 1, 3}},
		paths.Path{Nodes: []int64{0, 2, 3}})
	beta := &opt.Application{
		Name: "beta",
		PPTC: psB,
		ResourceCosts: map[string]opt.ResourceCost{
			"bw": {Cost: opt.UniformCost(2), Domain: opt.DomainNode},
		},
		Objective: opt.ObjectiveSpec{Kind: ObjectiveMaxFlow},
	}
	return alpha, beta
}

func TestComposeIntoModel_EndToEnd(t *testing.T) {
	tp := diamondTopology(t)
	alpha, beta := overlappingApps()
	m := New("e2e", nil)

	err := opt.Compose([]*opt.Application{alpha, beta}, tp, m, opt.Options{})
	require.NoError(t, err)
	require.True(t, m.Composed())

	// (a) The merged class routes over three distinct candidate paths.
	for _, v := range []string{"x_tc7_p0", "x_tc7_p1", "x_tc7_p2"} {
		assert.True(t, m.HasVariable(v), v)
	}
	route := rowByName(t, m, "route_tc7")
	assert.Equal(t, "x_tc7_p0 + x_tc7_p1 + x_tc7_p2", route.Expr)

	// (b) Exactly one consumed resource, with both cost functions jointly
	// in each load row. The merged class pins alpha's demand (volume 10),
	// so node s carries 10*1 + 10*2 = 30 per traversing path.
	assert.Equal(t, []string{"bw"}, m.Resources())
	load := rowByName(t, m, "load_bw_n0_e0")
	assert.Equal(t, "30 x_tc7_p0 + 30 x_tc7_p1 + 30 x_tc7_p2", load.Expr)
	assert.Equal(t, 100.0, load.RHS)

	// Node a is traversed only by the path through it.
	load = rowByName(t, m, "load_bw_n1_e0")
	assert.Equal(t, "30 x_tc7_p0", load.Expr)
	assert.Equal(t, 60.0, load.RHS)

	// (c) Derived weights 0.75/0.25 appear on the utility variables and
	// (d) the composed objective is a single scalar expression.
	snapshot, err := m.JSON()
	require.NoError(t, err)
	assert.Equal(t, "0.75 o_alpha_e0 + 0.25 o_beta_e0", snapshot.Objective)

	// (e) No capping requests without a network configuration.
	for _, name := range rowNames(snapshot) {
		assert.False(t, strings.HasPrefix(name, "cap"), "unexpected cap row %s", name)
	}
}

func TestComposeIntoModel_Deterministic(t *testing.T) {
	render := func() string {
		tp := diamondTopology(t)
		alpha, beta := overlappingApps()
		m := New("repeat", nil)
		require.NoError(t, opt.Compose([]*opt.Application{alpha, beta}, tp, m, opt.Options{}))
		var b strings.Builder
		require.NoError(t, m.WriteLP(&b))
		return b.String()
	}
	assert.Equal(t, render(), render(), "identical inputs must render identical LP text")
}

func TestComposeIntoModel_GlobalCaps(t *testing.T) {
	tp := diamondTopology(t)
	alpha, beta := overlappingApps()
	m := New("capped", nil)
	network := opt.NewNetworkConfig(opt.NewResourceCaps(map[string]float64{"bw": 0.5}))

	err := opt.Compose([]*opt.Application{alpha, beta}, tp, m, opt.Options{Network: network})
	require.NoError(t, err)

	r := rowByName(t, m, "cap1_bw_n0_e0")
	assert.Equal(t, "30 x_tc7_p0 + 30 x_tc7_p1 + 30 x_tc7_p2", r.Expr)
	assert.Equal(t, 50.0, r.RHS)
}

func TestComposeIntoModel_PropFairRejected(t *testing.T) {
	tp := diamondTopology(t)
	alpha, beta := overlappingApps()
	m := New("propfair", nil)

	err := opt.Compose([]*opt.Application{alpha, beta}, tp, m, opt.Options{Fairness: opt.FairnessPropFair})
	require.Error(t, err)
	assert.True(t, errors.Is(err, opt.ErrValidation))
}

func TestNew_Identity(t *testing.T) {
	m1 := New("one", nil)
	m2 := New("one", nil)
	assert.NotEqual(t, m1.ID(), m2.ID(), "every model gets a fresh identifier")
	assert.Equal(t, "one", m1.Name())
	assert.Equal(t, 0, m1.NumVariables())
	assert.Equal(t, 0, m1.NumRows())
	assert.False(t, m1.Composed())
	assert.Contains(t, m1.String(), `model "one"`)

	_, _, ok := m1.VariableBounds("missing")
	assert.False(t, ok)
}
