package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstage/internal/domain"
)

func TestCustomSeparatorResolution(t *testing.T) {
	for _, method := range Methods(StageChunk) {
		t.Run(method, func(t *testing.T) {
			cfg, err := New(StageChunk, method)
			require.NoError(t, err)

			schema := cfg.Schema()
			assignments := map[string]string{}
			if _, ok := schema.Param("paragraph_separator"); ok {
				assignments["paragraph_separator.preset"] = CustomPreset
				assignments["paragraph_separator.custom"] = "§|§"
			}
			if _, ok := schema.Param("sentence_separators"); ok {
				assignments["sentence_separators.preset"] = CustomPreset
				assignments["sentence_separators.custom"] = ";|::|\n"
			}

			cfg, err = cfg.Set(assignments)
			require.NoError(t, err)
			wire := cfg.Wire()

			if _, ok := schema.Param("paragraph_separator"); ok {
				assert.Equal(t, "§|§", wire["paragraph_separator"], "paragraph separators are used verbatim")
			}
			if _, ok := schema.Param("sentence_separators"); ok {
				assert.Equal(t, []string{";", "::", "\n"}, wire["sentence_separators"])
			}
			for name := range wire {
				_, ok := schema.Param(name)
				assert.True(t, ok, "wire carries inactive field %q", name)
			}
		})
	}
}

func TestPresetSeparatorResolution(t *testing.T) {
	cfg := MustNew(StageChunk, ChunkHybrid)
	wire := cfg.Wire()

	assert.Equal(t, "\n\n", wire["paragraph_separator"])
	assert.Equal(t, []string{"。", "！", "？", "\n", ".", "!", "?", " "}, wire["sentence_separators"])
}

func TestSeparatorShorthand(t *testing.T) {
	cfg := MustNew(StageChunk, ChunkByParagraphs)

	preset, err := cfg.Set(map[string]string{"paragraph_separator": "\n"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"preset": "\n", "custom": ""}, preset.Values()["paragraph_separator"])

	custom, err := cfg.Set(map[string]string{"paragraph_separator": "---"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"preset": CustomPreset, "custom": "---"}, custom.Values()["paragraph_separator"])
	assert.Equal(t, "---", custom.Wire()["paragraph_separator"])
}

func TestCustomPresetWithEmptyValue(t *testing.T) {
	cfg, err := MustNew(StageChunk, ChunkBySentences).Set(map[string]string{"sentence_separators.preset": CustomPreset})
	require.NoError(t, err)

	assert.Equal(t, []string{}, cfg.Wire()["sentence_separators"])
}

func TestSwitchPreservesSharedFields(t *testing.T) {
	cfg := MustNew(StageChunk, ChunkFixedSize)
	require.Equal(t, 1000, cfg.Values()["chunk_size"])
	require.Equal(t, 200, cfg.Values()["chunk_overlap"])

	next, err := cfg.Switch(ChunkBySentences)
	require.NoError(t, err)

	assert.Equal(t, ChunkBySentences, next.Method())
	assert.Equal(t, 1000, next.Values()["chunk_size"])
	assert.Equal(t, 200, next.Values()["chunk_overlap"])
	assert.Equal(t, false, next.Values()["keep_separator"])
}

func TestSwitchResetsUnsharedFields(t *testing.T) {
	cfg, err := MustNew(StageChunk, ChunkSemantic).Set(map[string]string{
		"chunk_size":           "640",
		"similarity_threshold": "0.35",
		"min_chunk_size":       "20",
	})
	require.NoError(t, err)

	byPages, err := cfg.Switch(ChunkByPages)
	require.NoError(t, err)
	values := byPages.Values()
	assert.Equal(t, 20, values["min_chunk_size"])
	assert.Equal(t, 2000, values["max_page_words"])
	assert.NotContains(t, values, "chunk_size")
	assert.NotContains(t, values, "similarity_threshold")

	back, err := byPages.Switch(ChunkSemantic)
	require.NoError(t, err)
	assert.Equal(t, 1000, back.Values()["chunk_size"], "chunk_size was discarded by by_pages")
	assert.Equal(t, 0.7, back.Values()["similarity_threshold"])
	assert.Equal(t, 20, back.Values()["min_chunk_size"])
}

func TestSwitchKeepsCustomSeparator(t *testing.T) {
	cfg, err := MustNew(StageChunk, ChunkBySentences).Set(map[string]string{"sentence_separators": "!!|??"})
	require.NoError(t, err)

	hybrid, err := cfg.Switch(ChunkHybrid)
	require.NoError(t, err)
	assert.Equal(t, []string{"!!", "??"}, hybrid.Wire()["sentence_separators"])
}

func TestUnsupportedMethod(t *testing.T) {
	_, err := New(StageChunk, "by_vibes")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedMethod))

	_, err = MustNew(StageChunk, ChunkFixedSize).Switch("by_vibes")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)

	_, err = New(StageLoad, ChunkFixedSize)
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)
}

func TestOutOfRangeAcceptedThenClamped(t *testing.T) {
	cfg, err := MustNew(StageChunk, ChunkSemantic).Set(map[string]string{
		"chunk_size":           "5",
		"chunk_overlap":        "99999",
		"similarity_threshold": "1.8",
	})
	require.NoError(t, err, "out of range values are accepted")
	assert.Equal(t, 5, cfg.Values()["chunk_size"])

	clamped := cfg.Clamp()
	assert.Equal(t, 50, clamped.Values()["chunk_size"])
	assert.Equal(t, 2000, clamped.Values()["chunk_overlap"])
	assert.Equal(t, 1.0, clamped.Values()["similarity_threshold"])
	assert.Equal(t, 5, cfg.Values()["chunk_size"], "Clamp returns a copy")
}

func TestSetRejectsUnknownAndBadValues(t *testing.T) {
	cfg := MustNew(StageChunk, ChunkFixedSize)

	_, err := cfg.Set(map[string]string{"keep_separator": "true"})
	assert.Error(t, err)

	_, err = cfg.Set(map[string]string{"chunk_size": "many"})
	assert.Error(t, err)

	_, err = MustNew(StageChunk, ChunkHybrid).Set(map[string]string{"paragraph_separator.value": "x"})
	assert.Error(t, err)
}

func TestConfigIsImmutable(t *testing.T) {
	cfg := MustNew(StageChunk, ChunkFixedSize)
	values := cfg.Values()
	values["chunk_size"] = 1

	next, err := cfg.Set(map[string]string{"chunk_size": "500"})
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Values()["chunk_size"])
	assert.Equal(t, 500, next.Values()["chunk_size"])
}

func TestVariantDecodesTypedRecord(t *testing.T) {
	cfg, err := MustNew(StageChunk, ChunkHybrid).Set(map[string]string{
		"chunk_size":                 "500",
		"paragraph_separator.preset": CustomPreset,
		"paragraph_separator.custom": "##",
	})
	require.NoError(t, err)

	v, err := cfg.Variant()
	require.NoError(t, err)
	h, ok := v.(*Hybrid)
	require.True(t, ok)
	assert.Equal(t, 500, h.ChunkSize)
	assert.Equal(t, "##", h.ParagraphSeparator.Value())
	assert.Equal(t, ChunkHybrid, h.Method())
}

func TestLoadingSchemas(t *testing.T) {
	cfg := MustNew(StageLoad, LoadUnstructured)
	wire := cfg.Wire()
	assert.Equal(t, "fast", wire["strategy"])
	assert.Equal(t, []string{"eng"}, wire["languages"])

	cfg, err := cfg.Set(map[string]string{"languages": "eng, deu", "max_characters": "800"})
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "deu"}, cfg.Wire()["languages"])
	assert.Equal(t, 800, cfg.Wire()["max_characters"])

	for _, m := range []string{LoadPyMuPDF, LoadPyPDF, LoadPDFPlumber, LoadMarkdown} {
		assert.Empty(t, MustNew(StageLoad, m).Wire(), m)
	}
}

func TestLoadMethodsForFile(t *testing.T) {
	tests := []struct {
		name    string
		methods []string
		fixed   bool
	}{
		{"report.pdf", []string{LoadPyMuPDF, LoadPyPDF, LoadPDFPlumber, LoadUnstructured}, false},
		{"REPORT.PDF", []string{LoadPyMuPDF, LoadPyPDF, LoadPDFPlumber, LoadUnstructured}, false},
		{"notes.txt", []string{LoadText}, true},
		{"build.log", []string{LoadText}, true},
		{"table.csv", []string{LoadCSV}, true},
		{"README.md", []string{LoadMarkdown}, true},
	}
	for _, tt := range tests {
		methods, fixed, err := LoadMethodsForFile(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.methods, methods, tt.name)
		assert.Equal(t, tt.fixed, fixed, tt.name)
	}

	_, _, err := LoadMethodsForFile("image.png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)
	assert.True(t, SupportsLoadMethod("a.pdf", LoadPyPDF))
	assert.False(t, SupportsLoadMethod("a.txt", LoadPyPDF))
}

func TestParseMethodsForFile(t *testing.T) {
	pdf, err := ParseMethodsForFile("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{ParseAllText, ParseByPages, ParseByTitles, ParseTextAndTables}, pdf)

	md, err := ParseMethodsForFile("guide.md")
	require.NoError(t, err)
	assert.Equal(t, []string{ParseAllText, ParseBySections, ParseTextAndTables}, md)

	_, err = ParseMethodsForFile("data.csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)
}

func TestSharedParams(t *testing.T) {
	assert.Equal(t, []string{"chunk_overlap", "chunk_size"}, SharedParams(StageChunk, ChunkFixedSize, ChunkBySentences))
	assert.Empty(t, SharedParams(StageChunk, ChunkFixedSize, ChunkByParagraphs))
}

func TestMethodsOrder(t *testing.T) {
	assert.Equal(t, []string{ChunkByPages, ChunkFixedSize, ChunkByParagraphs, ChunkBySentences, ChunkSemantic, ChunkHybrid}, Methods(StageChunk))
}
