package nodetype

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

func testDescriptor() Descriptor {
	return Descriptor{
		DisplayTitle: "Test",
		Icon:         "box",
		Accent:       "slate",
		Category:     CategoryContent,
		MinSize:      fields.Size{Width: 100, Height: 50},
		Topology:     topology.Generic(),
		Fields:       []fields.Spec{fields.Text("title", "Title", "")},
	}
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("card", testDescriptor()))

	d, err := r.Resolve("card")
	require.NoError(t, err)
	assert.Equal(t, "card", d.TypeTag)
	assert.Equal(t, "Test", d.DisplayTitle)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("card", testDescriptor()))

	err := r.Register("card", testDescriptor())
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestRegisterRejectsInvalidDescriptors(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register("", testDescriptor()))

	noSize := testDescriptor()
	noSize.MinSize = fields.Size{Width: 100}
	assert.Error(t, r.Register("flat", noSize))

	noTopo := testDescriptor()
	noTopo.Topology = nil
	assert.Error(t, r.Register("loose", noTopo))

	dupField := testDescriptor()
	dupField.Fields = append(dupField.Fields, fields.Text("title", "Again", ""))
	assert.Error(t, r.Register("twice", dupField))

	dupHandle := testDescriptor()
	dupHandle.Topology = topology.Join(topology.Generic(), topology.Generic())
	assert.ErrorIs(t, r.Register("knot", dupHandle), topology.ErrDuplicateHandle)
}

func TestSealedRegistryRejectsWrites(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("card", testDescriptor()))
	r.Seal()

	assert.ErrorIs(t, r.Register("other", testDescriptor()), ErrSealed)
	assert.ErrorIs(t, r.Alias("tile", "card"), ErrSealed)
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("hologram")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))

	var ute *UnknownTypeError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "hologram", ute.Tag)

	d := r.ResolveOrPlaceholder("hologram")
	assert.Equal(t, "NULL_VARIANT", d.DisplayTitle)
	assert.Equal(t, "hologram", d.TypeTag)
	assert.True(t, d.MinSize.Positive())
	assert.Len(t, d.Topology.Resolve(nil), 4)
}

func TestAlias(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("shape", testDescriptor()))
	require.NoError(t, r.Alias("circle", "shape"))

	d, err := r.Resolve("circle")
	require.NoError(t, err)
	assert.Equal(t, "circle", d.TypeTag)
	assert.Equal(t, "Test", d.DisplayTitle)

	target, ok := r.AliasOf("circle")
	assert.True(t, ok)
	assert.Equal(t, "shape", target)

	assert.ErrorIs(t, r.Alias("blob", "missing"), ErrUnknownType)
	assert.ErrorIs(t, r.Alias("circle", "shape"), ErrDuplicateType)
}

func TestBuiltinCatalog(t *testing.T) {
	r := Builtin()
	assert.True(t, r.Sealed())
	assert.Same(t, r, Builtin())

	// 57 types plus the 4 shape aliases
	assert.Equal(t, 61, r.Len())

	for _, alias := range ShapeAliases {
		d, err := r.Resolve(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, CategoryShape, d.Category)
		assert.True(t, d.Headerless)
	}

	sw, err := r.Resolve("switch")
	require.NoError(t, err)
	assert.Equal(t, topology.KindDerived, sw.Topology.Kind())

	ckpt, err := r.Resolve("checkpoint_loader")
	require.NoError(t, err)
	handles, err := ckpt.Handles(nil)
	require.NoError(t, err)
	ids := make([]string, len(handles))
	for i, h := range handles {
		ids[i] = h.ID
	}
	assert.Equal(t, []string{"model_output", "clip_output", "vae_output"}, ids)
}

func TestBuiltinCategoriesCoverCatalog(t *testing.T) {
	r := Builtin()
	total := 0
	for _, c := range Categories {
		total += len(r.ByCategory(c))
	}
	assert.Equal(t, r.Len(), total)
}

func TestExportClosure(t *testing.T) {
	r := Builtin()
	exported := r.Export()
	require.Len(t, exported, r.Len())

	for tag, rd := range exported {
		d, err := r.Resolve(tag)
		require.NoError(t, err, tag)
		assert.True(t, d.MinSize.Positive(), "%s min size", tag)
		assert.Equal(t, tag, rd.TypeTag)
		assert.Len(t, rd.Fields, len(d.Fields))
	}

	assert.Equal(t, "shape", exported["hexagon"].AliasOf)
	assert.Len(t, exported["switch"].Handles, 20)
}

func TestExportIsDeterministic(t *testing.T) {
	r := Builtin()
	a := r.Export()
	b := r.Export()
	assert.Equal(t, a, b)

	delete(a, "image")
	_, stillThere := r.Export()["image"]
	assert.True(t, stillThere)
}

func TestExportCommitSemantics(t *testing.T) {
	rd := Builtin().Export()["texture"]
	byKey := map[string]RenderableField{}
	for _, f := range rd.Fields {
		byKey[f.Key] = f
	}
	assert.Equal(t, fields.CommitOnEachChange, byKey["variant"].Commit)
	assert.Equal(t, "noise", byKey["variant"].Default)
	assert.Equal(t, fields.CommitOnBlur, Builtin().Export()["prompt"].Fields[0].Commit)
}

func TestBuiltinDefaultsNormalize(t *testing.T) {
	d, err := Builtin().Resolve("market_share")
	require.NoError(t, err)
	data := d.Normalize(nil)
	assert.Equal(t, 20.0, data["marketShare"])
	assert.Equal(t, "stable", data["trend"])

	tex, _ := Builtin().Resolve("texture")
	assert.Equal(t, "noise", tex.Normalize(map[string]any{"variant": "velvet"})["variant"])
}

func TestConcurrentReadsAfterSeal(t *testing.T) {
	r := Builtin()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, tag := range r.Tags() {
				_, _ = r.Resolve(tag)
			}
		}()
	}
	wg.Wait()
}

func TestDataKeys(t *testing.T) {
	reg := Builtin()

	img, err := reg.Resolve("image")
	require.NoError(t, err)
	assert.Equal(t, []string{"width", "height"}, img.DataKeys)

	req, err := reg.Resolve("api_request")
	require.NoError(t, err)
	assert.Contains(t, req.DataKeys, "executionStatus")
	assert.Contains(t, req.DataKeys, "executionOutput")

	text, err := reg.Resolve("text")
	require.NoError(t, err)
	assert.Empty(t, text.DataKeys)
}
