// Package preview turns processing results into uniform display rows.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"docstage/internal/domain"
)

// NotAvailable stands in for every value the service did not report.
const NotAvailable = "N/A"

// EmptyMessage is shown for results without usable segments.
const EmptyMessage = "No content available"

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Row struct {
	Label string  `json:"label"`
	Title string  `json:"title,omitempty"`
	Body  string  `json:"body"`
	Meta  []Field `json:"meta"`
}

type Preview struct {
	Header  []Field `json:"header"`
	Rows    []Row   `json:"rows"`
	Empty   bool    `json:"empty"`
	Message string  `json:"message,omitempty"`
}

// Render maps a result onto a preview. It never fails: a nil result, a
// malformed payload or an empty segment list give an empty preview.
func Render(r *domain.ProcessingResult) Preview {
	if r == nil {
		return Preview{Header: header(&domain.ProcessingResult{}), Rows: []Row{}, Empty: true, Message: EmptyMessage}
	}

	p := Preview{Header: header(r), Rows: make([]Row, 0, len(r.Segments))}
	if r.Malformed || len(r.Segments) == 0 {
		p.Empty = true
		p.Message = EmptyMessage
		return p
	}
	for i, s := range r.Segments {
		p.Rows = append(p.Rows, Row{
			Label: label(s, i),
			Title: s.Metadata.Title,
			Body:  s.Content,
			Meta: []Field{
				{Name: "page", Value: optInt(s.Metadata.PageNumber)},
				{Name: "page range", Value: optString(s.Metadata.PageRange)},
				{Name: "words", Value: optInt(s.Metadata.WordCount)},
				{Name: "chunk id", Value: strconv.Itoa(s.ChunkID)},
			},
		})
	}
	return p
}

func header(r *domain.ProcessingResult) []Field {
	return []Field{
		{Name: "filename", Value: optString(r.Filename)},
		{Name: "pages", Value: optInt(r.TotalPages)},
		{Name: "chunks", Value: optInt(r.TotalChunks)},
		{Name: "loading method", Value: optString(r.LoadingMethod)},
		{Name: "chunking method", Value: optString(r.ChunkingMethod)},
		{Name: "parsing method", Value: optString(r.ParsingMethod)},
		{Name: "timestamp", Value: optString(r.Timestamp)},
	}
}

// label prefers the segment type, then its heading level, then its page,
// falling back to the chunk id.
func label(s domain.Segment, index int) string {
	md := s.Metadata
	var parts []string
	if md.Type != "" {
		parts = append(parts, md.Type)
	}
	if md.Level != nil && *md.Level > 0 {
		parts = append(parts, fmt.Sprintf("H%d", *md.Level))
	}
	if md.PageNumber != nil {
		parts = append(parts, fmt.Sprintf("page %d", *md.PageNumber))
	}
	if len(parts) == 0 {
		if s.ChunkID > 0 {
			return fmt.Sprintf("chunk %d", s.ChunkID)
		}
		return fmt.Sprintf("segment %d", index+1)
	}
	return strings.Join(parts, " · ")
}

func optInt(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}

func optString(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}
