package fields

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	id   string
	data Patch
	size *Size
}

type recorder struct {
	calls []call
}

func (r *recorder) OnChange(id string, data Patch, size *Size) {
	r.calls = append(r.calls, call{id: id, data: data, size: size})
}

var textureSpecs = []Spec{
	Enum("variant", "Variant", "", "noise", "paper", "grain", "linen"),
	Range("intensity", "Intensity", 0, 100, 1, 50),
	Toggle("tiled", "Tiled", true),
	Multiline("prompt", "Prompt", "Describe the texture"),
}

func TestCommitSemanticsByKind(t *testing.T) {
	tests := []struct {
		kind Kind
		want Commit
	}{
		{KindFreeText, CommitOnBlur},
		{KindMultilineText, CommitOnBlur},
		{KindEnumSelect, CommitOnEachChange},
		{KindNumericRange, CommitOnEachChange},
		{KindToggle, CommitOnEachChange},
		{KindColorSwatch, CommitOnEachChange},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Spec{Key: "k", Kind: tt.kind}.Commit(), string(tt.kind))
	}
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, Enum("mode", "Mode", "", "a", "b").Validate())
	assert.Error(t, Spec{Key: "mode", Kind: KindEnumSelect}.Validate())
	assert.Error(t, Spec{Key: "mode", Kind: KindEnumSelect, Options: []string{"a"}, Default: "z"}.Validate())
	assert.Error(t, Spec{Key: "n", Kind: KindNumericRange, Min: 5, Max: 1, Step: 1}.Validate())
	assert.Error(t, Spec{Key: "n", Kind: KindNumericRange, Min: 0, Max: 1}.Validate())
	assert.Error(t, Spec{Kind: KindToggle}.Validate())
	assert.Error(t, Spec{Key: "x", Kind: "slider"}.Validate())
}

func TestMergeKeepsUnnamedFields(t *testing.T) {
	prior := map[string]any{"title": "Hero", "width": 300.0}

	step1 := Merge(prior, Patch{"a": 1})
	step2 := Merge(step1, Patch{"b": 2})

	want := map[string]any{"title": "Hero", "width": 300.0, "a": 1, "b": 2}
	if diff := cmp.Diff(want, step2); diff != "" {
		t.Errorf("merged data mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, prior, "a", "prior record must not be mutated")
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	got := Normalize(textureSpecs, map[string]any{})

	assert.Equal(t, "noise", got["variant"])
	assert.Equal(t, 50.0, got["intensity"])
	assert.Equal(t, true, got["tiled"])
	assert.Equal(t, "", got["prompt"])
}

func TestNormalizeFallsBackOnInvalidValues(t *testing.T) {
	got := Normalize(textureSpecs, map[string]any{
		"variant":   "marble", // removed option
		"intensity": 250.0,
		"tiled":     "yes",
		"custom":    "kept",
	})

	assert.Equal(t, "noise", got["variant"])
	assert.Equal(t, 100.0, got["intensity"])
	assert.Equal(t, true, got["tiled"])
	assert.Equal(t, "kept", got["custom"])
}

func TestNormalizeAcceptsIntegers(t *testing.T) {
	got := Normalize(textureSpecs, map[string]any{"intensity": -3})
	assert.Equal(t, 0.0, got["intensity"])
}

func TestEditorTextCommitsOnBlurOnly(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("node-1", textureSpecs, nil, nil, false, rec)

	require.NoError(t, ed.Input("prompt", "w"))
	require.NoError(t, ed.Input("prompt", "wo"))
	require.NoError(t, ed.Input("prompt", "woven linen"))
	assert.Empty(t, rec.calls, "typing must not reach the store")
	assert.Equal(t, "woven linen", ed.Value("prompt"))

	require.NoError(t, ed.Blur("prompt"))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "node-1", rec.calls[0].id)
	assert.Equal(t, Patch{"prompt": "woven linen"}, rec.calls[0].data)
	assert.Nil(t, rec.calls[0].size)

	_, pending := ed.Draft("prompt")
	assert.False(t, pending)

	// A second blur without typing is a no-op
	require.NoError(t, ed.Blur("prompt"))
	assert.Len(t, rec.calls, 1)
}

func TestEditorBlurWithUnchangedDraft(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("n", textureSpecs, nil, map[string]any{"prompt": "same"}, false, rec)

	require.NoError(t, ed.Input("prompt", "same"))
	require.NoError(t, ed.Blur("prompt"))
	assert.Empty(t, rec.calls)
}

func TestEditorEagerFields(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("n", textureSpecs, nil, nil, false, rec)

	require.NoError(t, ed.Input("variant", "paper"))
	require.NoError(t, ed.Input("intensity", 10.0))
	require.NoError(t, ed.Input("intensity", 20.0))
	require.NoError(t, ed.Input("tiled", false))

	require.Len(t, rec.calls, 4)
	assert.Equal(t, Patch{"intensity": 20.0}, rec.calls[2].data)
	assert.Equal(t, false, ed.Value("tiled"))
}

func TestEditorLocked(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("n", textureSpecs, nil, nil, true, rec)

	assert.ErrorIs(t, ed.Input("variant", "paper"), ErrLocked)
	assert.ErrorIs(t, ed.Input("prompt", "x"), ErrLocked)
	assert.ErrorIs(t, ed.Commit(Patch{"variant": "grain"}, nil), ErrLocked)
	assert.Empty(t, rec.calls)

	ed.SetLocked(false)
	require.NoError(t, ed.Input("prompt", "x"))
	ed.SetLocked(true)
	assert.ErrorIs(t, ed.Blur("prompt"), ErrLocked)
	assert.Empty(t, rec.calls)
}

func TestEditorUnknownField(t *testing.T) {
	ed := NewEditor("n", textureSpecs, nil, nil, false, MutatorFunc(func(string, Patch, *Size) {
		t.Fatal("unexpected OnChange")
	}))

	err := ed.Input("nope", 1)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.ErrorIs(t, ed.Commit(Patch{"variant": "grain", "nope": 1}, nil), ErrUnknownField)
}

func TestEditorCommitIsOneCall(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("n", textureSpecs, nil, nil, false, rec)
	require.NoError(t, ed.Input("prompt", "draft"))

	size := &Size{Width: 320, Height: 240}
	require.NoError(t, ed.Commit(Patch{"variant": "grain", "prompt": "final"}, size))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, Patch{"variant": "grain", "prompt": "final"}, rec.calls[0].data)
	assert.Equal(t, size, rec.calls[0].size)
	_, pending := ed.Draft("prompt")
	assert.False(t, pending, "committed keys drop their drafts")
}

func TestEditorSyncKeepsDrafts(t *testing.T) {
	ed := NewEditor("n", textureSpecs, nil, nil, false, &recorder{})
	require.NoError(t, ed.Input("prompt", "typing"))

	ed.Sync(map[string]any{"variant": "linen", "prompt": "remote"})

	assert.Equal(t, "linen", ed.Value("variant"))
	assert.Equal(t, "typing", ed.Value("prompt"))
}

func TestEditorCommitAcceptsDataKeys(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor("n", textureSpecs, []string{"width", "height"}, nil, false, rec)

	require.NoError(t, ed.Commit(Patch{"variant": "grain", "width": 1000.0, "height": 500.0}, nil))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 500.0, ed.Value("height"))

	assert.ErrorIs(t, ed.Input("width", 10.0), ErrUnknownField, "data keys have no control")
}
