package nodedata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

func TestDecodeSwitchDefaultsToMatrix(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "switch", nil)
	require.NoError(t, err)

	sw, ok := d.(SwitchData)
	require.True(t, ok, "got %T", d)
	assert.Equal(t, topology.ModeMatrix, sw.Mode)
}

func TestDecodeTextureFallsBackOnRemovedVariant(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "texture", map[string]any{"variant": "velvet", "intensity": 75})
	require.NoError(t, err)

	tex := d.(TextureData)
	assert.Equal(t, "noise", tex.Variant)
	assert.Equal(t, 75.0, tex.Intensity)
	assert.Equal(t, 1.0, tex.Scale)
}

func TestDecodeImage(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "image", map[string]any{
		"imageUrl": "https://cdn.example.com/hero.png",
		"width":    1000.0,
		"height":   500.0,
		"isLocked": true,
	})
	require.NoError(t, err)

	img := d.(ImageData)
	assert.Equal(t, "https://cdn.example.com/hero.png", img.ImageURL)
	assert.Equal(t, "cover", img.Fit)
	assert.Equal(t, 0.5, img.AspectRatio())
	assert.True(t, img.Locked)
}

func TestDecodeKSamplerWeakTypes(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "ksampler", map[string]any{
		"seed":            12345.0,
		"steps":           30.0,
		"executionStatus": "running",
	})
	require.NoError(t, err)

	ks := d.(KSamplerData)
	assert.Equal(t, int64(12345), ks.Seed)
	assert.Equal(t, 30, ks.Steps)
	assert.Equal(t, 7.0, ks.CFG)
	assert.Equal(t, "euler", ks.SamplerName)
	assert.Equal(t, "running", ks.Status)
}

func TestDecodeMessageChannels(t *testing.T) {
	reg := nodetype.Builtin()

	slack, err := Decode(reg, "slack", map[string]any{"message": "Launch day"})
	require.NoError(t, err)
	assert.Equal(t, "slack", slack.TypeTag())
	assert.Equal(t, "#marketing", slack.(MessageData).Target)
	assert.Equal(t, "Launch day", slack.(MessageData).Text())

	mail, err := Decode(reg, "email", map[string]any{"body": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "email", mail.TypeTag())
	assert.Equal(t, "html", mail.(MessageData).Format)
}

func TestDecodeShapeAlias(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "hexagon", nil)
	require.NoError(t, err)
	assert.Equal(t, "hexagon", d.TypeTag())
	assert.Equal(t, 2.0, d.(ShapeData).StrokeWidth)
}

func TestDecodeGenericRecord(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "swot", map[string]any{"strengths": "Loyal customers"})
	require.NoError(t, err)

	rec, ok := d.(Record)
	require.True(t, ok)
	assert.Equal(t, "swot", rec.TypeTag())
	assert.Equal(t, "Loyal customers", rec.Values["strengths"])
	assert.Equal(t, "", rec.Values["threats"])
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(nodetype.Builtin(), "hologram", nil)
	assert.ErrorIs(t, err, nodetype.ErrUnknownType)
}

func TestAdCampaignDailyBudget(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "ad_campaign", map[string]any{"budget": 1400.0})
	require.NoError(t, err)
	assert.Equal(t, 100.0, d.(AdCampaignData).DailyBudget())
}

func TestMarketShareRemainder(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "market_share", nil)
	require.NoError(t, err)
	assert.Equal(t, 80.0, d.(MarketShareData).Remainder())
}

func TestEncode(t *testing.T) {
	rec, err := Encode(TextureData{Variant: "paper", Intensity: 10, Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, "paper", rec["variant"])
	assert.Equal(t, 10.0, rec["intensity"])
	assert.Equal(t, false, rec["isLocked"])

	generic, err := Encode(Record{Tag: "swot", Values: map[string]any{"threats": "Price war"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"threats": "Price war"}, generic)
}

func TestDerived(t *testing.T) {
	reg := nodetype.Builtin()

	img, err := Decode(reg, "image", map[string]any{"width": 400.0, "height": 300.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"aspectRatio": 0.75}, Derived(img))

	empty, err := Decode(reg, "image", nil)
	require.NoError(t, err)
	assert.Nil(t, Derived(empty))

	share, err := Decode(reg, "market_share", map[string]any{"marketShare": 35.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"remainder": 65.0}, Derived(share))

	tex, err := Decode(reg, "texture", nil)
	require.NoError(t, err)
	assert.Nil(t, Derived(tex))
}

func TestEncodeMessageKeepsChannelKeys(t *testing.T) {
	d, err := Decode(nodetype.Builtin(), "email", map[string]any{"to": "a@b", "body": "Hi"})
	require.NoError(t, err)

	rec, err := Encode(d)
	require.NoError(t, err)
	assert.Equal(t, "a@b", rec["to"])
	assert.Equal(t, "Hi", rec["body"])
	assert.Equal(t, "html", rec["format"])
	for _, key := range []string{"chatId", "channel", "message", "parseMode", "executionOutput"} {
		assert.NotContains(t, rec, key)
	}

	d, err = Decode(nodetype.Builtin(), "slack", map[string]any{"message": "Launch"})
	require.NoError(t, err)
	rec, err = Encode(d)
	require.NoError(t, err)
	assert.Equal(t, "#marketing", rec["channel"])
	assert.NotContains(t, rec, "to")
	assert.NotContains(t, rec, "body")
}
