package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gengallery/internal/model"
)

func TestParseMixedInput(t *testing.T) {
	parsed := Parse("提示词: a cat\nseed: 42\nfoo: bar")

	assert.Equal(t, "a cat", parsed.Prompt)
	assert.Equal(t, 42, parsed.Seed)
	v, ok := parsed.CustomParams.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestParseEnglishAliases(t *testing.T) {
	parsed := Parse("prompt: sunset\nnegative: blurry\nsize: 512x512\ncfg: 7.5\nsteps: 30")

	assert.Equal(t, "sunset", parsed.Prompt)
	assert.Equal(t, "blurry", parsed.NegativePrompt)
	assert.Equal(t, "512x512", parsed.Resolution)
	assert.Equal(t, 7.5, parsed.CfgScale)
	assert.Equal(t, 30, parsed.Steps)
}

func TestParsePlainLinesAccumulateOnPrompt(t *testing.T) {
	parsed := Parse("a cat sitting\non a red sofa")
	assert.Equal(t, "a cat sitting\non a red sofa", parsed.Prompt)
}

func TestParseURLLineGoesToPrompt(t *testing.T) {
	parsed := Parse("https://example.com/ref.png\nseed: 7")
	assert.Equal(t, "https://example.com/ref.png", parsed.Prompt)
	assert.Equal(t, 7, parsed.Seed)
	assert.Empty(t, parsed.CustomParams)
}

func TestParseCoercionFallsBackToRawString(t *testing.T) {
	parsed := Parse("seed: abc\nsteps: many\ncfg: high")
	assert.Equal(t, "abc", parsed.Seed)
	assert.Equal(t, "many", parsed.Steps)
	assert.Equal(t, "high", parsed.CfgScale)
}

func TestParseLastWriteWins(t *testing.T) {
	parsed := Parse("seed: 1\nseed: 2\nfoo: x\nfoo: y")
	assert.Equal(t, 2, parsed.Seed)
	v, _ := parsed.CustomParams.Get("foo")
	assert.Equal(t, "y", v)
	// duplicate custom key does not create a second entry
	assert.Len(t, parsed.CustomParams, 1)
}

func TestParseKeysAreCaseInsensitive(t *testing.T) {
	parsed := Parse("Seed: 5\nPROMPT: hi")
	assert.Equal(t, 5, parsed.Seed)
	assert.Equal(t, "hi", parsed.Prompt)
}

func TestParseEmpty(t *testing.T) {
	parsed := Parse("")
	assert.Equal(t, "", parsed.Prompt)
	assert.Empty(t, parsed.CustomParams)
}

func TestCustomParamsPreserveInsertionOrder(t *testing.T) {
	parsed := Parse("zeta: 1\nalpha: 2\nmid: 3")
	require.Len(t, parsed.CustomParams, 3)
	assert.Equal(t, "zeta", parsed.CustomParams[0].Key)
	assert.Equal(t, "alpha", parsed.CustomParams[1].Key)
	assert.Equal(t, "mid", parsed.CustomParams[2].Key)
}

func TestFormatCanonicalOrder(t *testing.T) {
	p := model.Parameters{
		Prompt:         "a cat",
		Model:          "sdxl",
		Seed:           42,
		NegativePrompt: "blurry",
	}
	p.CustomParams.Set("foo", "bar")

	out := Format(p)
	assert.Equal(t, "提示词: a cat\n负向提示词: blurry\n随机种子: 42\n模型: sdxl\nfoo: bar", out)
}

func TestParseFormatRoundTrip(t *testing.T) {
	p := model.Parameters{
		Prompt:         "a cat",
		NegativePrompt: "blurry",
		Resolution:     "1024x768",
		Seed:           42,
		Steps:          30,
		CfgScale:       7.5,
		Sampler:        "euler_a",
		Model:          "sdxl",
	}
	p.CustomParams.Set("foo", "bar")
	p.CustomParams.Set("baz", "qux")

	got := Parse(Format(p))
	assert.Equal(t, p.Prompt, got.Prompt)
	assert.Equal(t, p.NegativePrompt, got.NegativePrompt)
	assert.Equal(t, p.Resolution, got.Resolution)
	assert.Equal(t, 42, got.Seed)
	assert.Equal(t, 30, got.Steps)
	assert.Equal(t, 7.5, got.CfgScale)
	assert.Equal(t, p.Sampler, got.Sampler)
	assert.Equal(t, p.Model, got.Model)
	assert.Equal(t, p.CustomParams, got.CustomParams)
}
