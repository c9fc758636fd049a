package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchHandleCounts(t *testing.T) {
	tests := []struct {
		mode    any
		inputs  int
		outputs int
	}{
		{"Aggregator", 10, 1},
		{"Broadcaster", 1, 10},
		{"Matrix", 10, 10},
		{nil, 10, 10},
		{"matrix", 10, 10}, // case matters, falls back
		{"Router", 10, 10},
		{42, 10, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.mode), func(t *testing.T) {
			data := map[string]any{}
			if tt.mode != nil {
				data["mode"] = tt.mode
			}
			points, err := Resolve(SwitchTopology{}, data)
			require.NoError(t, err)

			assert.Len(t, Filter(points, Input), tt.inputs)
			assert.Len(t, Filter(points, Output), tt.outputs)
		})
	}
}

func TestSwitchDefaultScenario(t *testing.T) {
	points := SwitchTopology{}.Resolve(nil)

	inputs := Filter(points, Input)
	outputs := Filter(points, Output)
	require.Len(t, inputs, 10)
	require.Len(t, outputs, 10)

	for i := 0; i < 10; i++ {
		want := float64(i+1) / 11
		assert.Equal(t, fmt.Sprintf("input_%d", i), inputs[i].ID)
		assert.Equal(t, SideLeft, inputs[i].Side)
		assert.InDelta(t, want, inputs[i].Offset, 1e-12)

		assert.Equal(t, fmt.Sprintf("output_%d", i), outputs[i].ID)
		assert.Equal(t, SideRight, outputs[i].Side)
		assert.InDelta(t, want, outputs[i].Offset, 1e-12)
	}
}

func TestSwitchRecomputesOnModeChange(t *testing.T) {
	sw := SwitchTopology{}
	data := map[string]any{"mode": "Matrix"}
	assert.Len(t, sw.Resolve(data), 20)

	data["mode"] = "Aggregator"
	points := sw.Resolve(data)
	assert.Len(t, points, 11)
	_, ok := Find(points, "output_5")
	assert.False(t, ok)
}

func TestDistribute(t *testing.T) {
	assert.Empty(t, Distribute(0))
	assert.Empty(t, Distribute(-3))

	for n := 1; n <= 25; n++ {
		offsets := Distribute(n)
		require.Len(t, offsets, n)
		for i, off := range offsets {
			assert.Greater(t, off, 0.0)
			assert.Less(t, off, 1.0)
			assert.Equal(t, Offset(i, n), off)
			if i > 0 {
				assert.Less(t, offsets[i-1], off, "offsets must increase")
			}
		}
	}
}

func TestFixedReturnsCopy(t *testing.T) {
	g := Generic()
	points := g.Resolve(nil)
	points[0].ID = "changed"
	assert.Equal(t, "l", g[0].ID)
	assert.Equal(t, KindFixed, g.Kind())
	assert.Equal(t, KindDerived, SwitchTopology{}.Kind())
}

func TestColumn(t *testing.T) {
	col := Column(SideRight, Output,
		Port{"model_output", ColorModel},
		Port{"clip_output", ColorClip},
		Port{"vae_output", ColorVAE},
	)

	require.Len(t, col, 3)
	assert.Equal(t, 0.25, col[0].Offset)
	assert.Equal(t, 0.5, col[1].Offset)
	assert.Equal(t, 0.75, col[2].Offset)
	assert.Equal(t, ColorVAE, col[2].Color)
}

func TestValidateRejectsDuplicates(t *testing.T) {
	bad := Join(Generic(), Fixed{{ID: "l", Side: SideLeft, Direction: Input, Offset: 0.2}})
	_, err := Resolve(bad, nil)
	assert.ErrorIs(t, err, ErrDuplicateHandle)
}
