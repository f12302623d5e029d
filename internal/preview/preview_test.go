package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstage/internal/domain"
)

func headerValue(p Preview, name string) string {
	for _, f := range p.Header {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestRender_EmptyStates(t *testing.T) {
	tests := map[string]*domain.ProcessingResult{
		"nil result":     nil,
		"malformed":      {Filename: "a.pdf", Malformed: true},
		"no segments":    {Filename: "a.pdf"},
		"empty segments": {Filename: "a.pdf", Segments: []domain.Segment{}},
	}
	for name, r := range tests {
		p := Render(r)
		assert.True(t, p.Empty, name)
		assert.Equal(t, EmptyMessage, p.Message, name)
		assert.Empty(t, p.Rows, name)
		assert.Len(t, p.Header, 7, name)
	}
}

func TestRender_MissingValuesShowMarker(t *testing.T) {
	p := Render(&domain.ProcessingResult{
		Filename:      "notes.txt",
		LoadingMethod: "text",
		Segments:      []domain.Segment{{ChunkID: 1, Content: "hello"}},
	})

	assert.Equal(t, "notes.txt", headerValue(p, "filename"))
	assert.Equal(t, NotAvailable, headerValue(p, "pages"))
	assert.Equal(t, NotAvailable, headerValue(p, "chunks"))
	assert.Equal(t, NotAvailable, headerValue(p, "parsing method"))

	require.Len(t, p.Rows, 1)
	row := p.Rows[0]
	assert.Equal(t, "chunk 1", row.Label)
	assert.Equal(t, "hello", row.Body)
	assert.Equal(t, []Field{
		{Name: "page", Value: NotAvailable},
		{Name: "page range", Value: NotAvailable},
		{Name: "words", Value: NotAvailable},
		{Name: "chunk id", Value: "1"},
	}, row.Meta)
}

func TestRender_Labels(t *testing.T) {
	p := Render(&domain.ProcessingResult{
		TotalPages:  domain.IntPtr(3),
		TotalChunks: domain.IntPtr(3),
		Segments: []domain.Segment{
			{ChunkID: 1, Content: "a", Metadata: domain.SegmentMetadata{PageNumber: domain.IntPtr(2), WordCount: domain.IntPtr(1)}},
			{ChunkID: 2, Content: "b", Metadata: domain.SegmentMetadata{Type: "section", Title: "Setup", Level: domain.IntPtr(2)}},
			{ChunkID: 3, Content: "c", Metadata: domain.SegmentMetadata{Type: "table", PageNumber: domain.IntPtr(3)}},
		},
	})

	require.False(t, p.Empty)
	assert.Equal(t, "3", headerValue(p, "pages"))
	assert.Equal(t, "page 2", p.Rows[0].Label)
	assert.Equal(t, "section · H2", p.Rows[1].Label)
	assert.Equal(t, "Setup", p.Rows[1].Title)
	assert.Equal(t, "table · page 3", p.Rows[2].Label)
	assert.Equal(t, "1", p.Rows[0].Meta[2].Value)
}
