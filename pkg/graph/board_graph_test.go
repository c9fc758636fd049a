package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/brandos-canvas/pkg/topology"
)

func endpoints() (Endpoint, Endpoint) {
	prompt := Endpoint{ID: "prompt-1", Handles: topology.Column(topology.SideRight, topology.Output,
		topology.Port{ID: "text_output", Color: topology.ColorText})}
	sw := Endpoint{ID: "switch-1", Handles: topology.SwitchTopology{}.Resolve(nil)}
	return prompt, sw
}

func TestValidateConnection(t *testing.T) {
	prompt, sw := endpoints()

	tests := []struct {
		name string
		src  Endpoint
		dst  Endpoint
		edge Edge
		want error
	}{
		{
			name: "output to input",
			src:  prompt, dst: sw,
			edge: Edge{Source: "prompt-1", SourceHandle: "text_output", Target: "switch-1", TargetHandle: "input_3"},
		},
		{
			name: "handle outside current mode",
			src:  prompt, dst: sw,
			edge: Edge{Source: "prompt-1", SourceHandle: "text_output", Target: "switch-1", TargetHandle: "input_10"},
			want: ErrUnknownHandle,
		},
		{
			name: "input used as source",
			src:  sw, dst: prompt,
			edge: Edge{Source: "switch-1", SourceHandle: "input_0", Target: "prompt-1", TargetHandle: "text_output"},
			want: ErrDirection,
		},
		{
			name: "self loop",
			src:  sw, dst: sw,
			edge: Edge{Source: "switch-1", SourceHandle: "output_0", Target: "switch-1", TargetHandle: "input_0"},
			want: ErrSelfLoop,
		},
		{
			name: "mismatched endpoint",
			src:  prompt, dst: sw,
			edge: Edge{Source: "other", SourceHandle: "text_output", Target: "switch-1", TargetHandle: "input_0"},
			want: ErrUnknownNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConnection(tt.src, tt.dst, tt.edge)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEdgeString(t *testing.T) {
	e := Edge{Source: "a", SourceHandle: "output_0", Target: "b", TargetHandle: "input_1"}
	assert.Equal(t, "a#output_0 -> b#input_1", e.String())
}

func TestBuild(t *testing.T) {
	bg := Build([]string{"a", "b", "c", "lonely"}, []Edge{
		{Source: "a", SourceHandle: "output_0", Target: "b", TargetHandle: "input_0"},
		{Source: "a", SourceHandle: "output_1", Target: "b", TargetHandle: "input_1"},
		{Source: "a", SourceHandle: "output_2", Target: "c", TargetHandle: "input_0"},
	})

	assert.Equal(t, 4, bg.Len())
	assert.Equal(t, []string{"b", "c"}, bg.Downstream("a"))
	assert.Empty(t, bg.Downstream("lonely"))
	assert.Nil(t, bg.Downstream("missing"))
	assert.Equal(t, 2, bg.Graph().Edges().Len(), "parallel handle edges collapse to one node edge")
}

func TestAddEdgeIgnoresSelfEdge(t *testing.T) {
	bg := NewBoardGraph()
	require.NotPanics(t, func() {
		bg.AddEdge(Edge{Source: "a", Target: "a"})
	})
	assert.Equal(t, 0, bg.Len())
}

func TestName(t *testing.T) {
	bg := NewBoardGraph()
	bg.AddNode("first")
	bg.AddNode("first")

	name, ok := bg.Name(0)
	require.True(t, ok)
	assert.Equal(t, "first", name)
	_, ok = bg.Name(1)
	assert.False(t, ok)
}
