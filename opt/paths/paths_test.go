package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcompose/netcompose/opt/topo"
)

func TestTrafficClass_VolumeAccessors(t *testing.T) {
	tc := &TrafficClass{ID: 1, Name: "video", Src: 0, Dst: 2, Volumes: []float64{100, 140, 60}}

	assert.Equal(t, 3, tc.Epochs())
	assert.Equal(t, 140.0, tc.VolumeAt(1))
	assert.Equal(t, 300.0, tc.TotalVolume())
	assert.Equal(t, "tc1(video)", tc.String())
}

func TestPath_KeyLinksAndMembership(t *testing.T) {
	p := Path{Nodes: []int64{0, 1, 2}}

	assert.Equal(t, "0>1>2", p.Key())
	assert.Equal(t, 2, p.Hops())
	assert.Equal(t, []topo.Link{{From: 0, To: 1}, {From: 1, To: 2}}, p.Links())

	assert.True(t, p.HasNode(1))
	assert.False(t, p.HasNode(7))
	assert.True(t, p.HasLink(topo.Link{From: 1, To: 2}))
	assert.False(t, p.HasLink(topo.Link{From: 2, To: 1}), "links are directed")
}

func TestPath_Validate(t *testing.T) {
	topology := topo.New("t")
	for _, n := range []string{"a", "b", "c"} {
		_, err := topology.AddNode(n, nil)
		require.NoError(t, err)
	}
	_, err := topology.AddLink("a", "b", nil)
	require.NoError(t, err)

	assert.NoError(t, Path{Nodes: []int64{0, 1}}.Validate(topology))
	assert.ErrorContains(t, Path{Nodes: []int64{0}}.Validate(topology), "at least two nodes")
	assert.ErrorContains(t, Path{Nodes: []int64{0, 2}}.Validate(topology), "no link 0->2")
}
