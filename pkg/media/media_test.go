package media

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/nodetype"
)

func TestDropPatchScalesWideImage(t *testing.T) {
	patch, size, err := DropPatch("blob:hero", fields.Size{Width: 1000, Height: 500})
	require.NoError(t, err)

	assert.Equal(t, fields.Patch{"imageUrl": "blob:hero", "width": 1000.0, "height": 500.0}, patch)
	assert.Equal(t, fields.Size{Width: 500, Height: 500*0.5 + 60}, size)
}

func TestDropPatchKeepsSmallImage(t *testing.T) {
	_, size, err := DropPatch("blob:icon", fields.Size{Width: 200, Height: 400})
	require.NoError(t, err)
	assert.Equal(t, fields.Size{Width: 200, Height: 460}, size)
}

func TestDropPatchRejectsEmpty(t *testing.T) {
	_, _, err := DropPatch("blob:none", fields.Size{Width: 0, Height: 10})
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func imageEditor(t *testing.T, locked bool, m fields.Mutator) *fields.Editor {
	t.Helper()
	img, err := nodetype.Builtin().Resolve("image")
	require.NoError(t, err)
	return img.Editor("img-1", nil, locked, m)
}

func TestApplyDropIsSingleChange(t *testing.T) {
	var calls int
	var gotSize *fields.Size
	m := fields.MutatorFunc(func(id string, data fields.Patch, size *fields.Size) {
		calls++
		gotSize = size
		assert.Equal(t, "img-1", id)
		assert.Len(t, data, 3)
	})

	require.NoError(t, ApplyDrop(imageEditor(t, false, m), "blob:x", fields.Size{Width: 1000, Height: 500}))
	assert.Equal(t, 1, calls)
	require.NotNil(t, gotSize)
	assert.Equal(t, 310.0, gotSize.Height)
}

func TestApplyDropRefusesLockedNode(t *testing.T) {
	m := fields.MutatorFunc(func(string, fields.Patch, *fields.Size) {
		t.Fatal("locked node must not change")
	})

	err := ApplyDrop(imageEditor(t, true, m), "blob:x", fields.Size{Width: 1000, Height: 500})
	assert.ErrorIs(t, err, fields.ErrLocked)
}

func TestProbe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	size, err := Probe(&buf)
	require.NoError(t, err)
	assert.Equal(t, fields.Size{Width: 40, Height: 30}, size)

	_, err = Probe(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("/inbox/Hero.PNG"))
	assert.True(t, IsImage("a.jpeg"))
	assert.False(t, IsImage("notes.txt"))
}
