package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the namespace an artifact lives in on the processing service.
type Kind string

const (
	KindRaw     Kind = "raw"
	KindLoaded  Kind = "loaded"
	KindChunked Kind = "chunked"
	KindParsed  Kind = "parsed"
)

// ParseKind accepts the kind names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindRaw:
		return KindRaw, nil
	case KindLoaded:
		return KindLoaded, nil
	case KindChunked:
		return KindChunked, nil
	case KindParsed:
		return KindParsed, nil
	}
	return "", fmt.Errorf("unknown document kind %q (want raw, loaded, chunked or parsed)", s)
}

// DocumentMetadata is the kind-dependent summary reported by the registry.
// Nil pointers and empty strings mean the service did not report the value.
type DocumentMetadata struct {
	Filename       string `json:"filename,omitempty"`
	TotalPages     *int   `json:"total_pages,omitempty"`
	TotalChunks    *int   `json:"total_chunks,omitempty"`
	LoadingMethod  string `json:"loading_method,omitempty"`
	ChunkingMethod string `json:"chunking_method,omitempty"`
	ParsingMethod  string `json:"parsing_method,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

type DocumentSummary struct {
	Name     string           `json:"name"`
	Kind     Kind             `json:"kind"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Document is a summary plus its lazily fetched body.
type Document struct {
	DocumentSummary
	Result *ProcessingResult `json:"result,omitempty"`
}

type SegmentMetadata struct {
	PageNumber *int   `json:"page_number,omitempty"`
	PageRange  string `json:"page_range,omitempty"`
	WordCount  *int   `json:"word_count,omitempty"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title,omitempty"`
	Section    string `json:"section,omitempty"`
	Level      *int   `json:"level,omitempty"`
}

// Segment is one page, chunk or parsed section of a result.
type Segment struct {
	ChunkID  int             `json:"chunk_id"`
	Content  string          `json:"content"`
	Metadata SegmentMetadata `json:"metadata"`
}

// ProcessingResult is what a stage submission (or a registry detail) returns.
type ProcessingResult struct {
	Name           string    `json:"name,omitempty"`
	Filename       string    `json:"filename"`
	TotalPages     *int      `json:"total_pages,omitempty"`
	TotalChunks    *int      `json:"total_chunks,omitempty"`
	LoadingMethod  string    `json:"loading_method,omitempty"`
	ChunkingMethod string    `json:"chunking_method,omitempty"`
	ParsingMethod  string    `json:"parsing_method,omitempty"`
	FileType       string    `json:"file_type,omitempty"`
	Timestamp      string    `json:"timestamp,omitempty"`
	Segments       []Segment `json:"segments"`

	// Malformed is set when the payload had no usable segment array.
	Malformed bool `json:"malformed,omitempty"`
}

// Summary projects the result onto registry metadata.
func (r *ProcessingResult) Summary(kind Kind) DocumentSummary {
	return DocumentSummary{
		Name: r.Name,
		Kind: kind,
		Metadata: DocumentMetadata{
			Filename:       r.Filename,
			TotalPages:     r.TotalPages,
			TotalChunks:    r.TotalChunks,
			LoadingMethod:  r.LoadingMethod,
			ChunkingMethod: r.ChunkingMethod,
			ParsingMethod:  r.ParsingMethod,
			Timestamp:      r.Timestamp,
		},
	}
}

// Verify checks the count and ordering invariants of a result.
func (r *ProcessingResult) Verify() error {
	if r.Malformed {
		return fmt.Errorf("%w: no segment array", ErrMalformedResult)
	}
	if r.TotalChunks != nil && *r.TotalChunks != len(r.Segments) {
		return fmt.Errorf("%w: total_chunks=%d but %d segments", ErrMalformedResult, *r.TotalChunks, len(r.Segments))
	}
	for i := 1; i < len(r.Segments); i++ {
		if r.Segments[i].ChunkID <= r.Segments[i-1].ChunkID {
			return fmt.Errorf("%w: chunk_id %d follows %d", ErrMalformedResult,
				r.Segments[i].ChunkID, r.Segments[i-1].ChunkID)
		}
	}
	return nil
}

// ArtifactName derives the registry name of the artifacts produced from source:
// directories and the last extension are dropped, so "q1.summary.txt" and
// "q1.draft.txt" stay distinct.
func ArtifactName(source string) string {
	base := baseName(source)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

// ArtifactKey normalises a registry name or stored file name. Only a ".json"
// suffix is dropped; other dots belong to the name.
func ArtifactKey(name string) string {
	return strings.TrimSuffix(baseName(name), ".json")
}

// ArtifactID is the stored file name of an artifact, as chunk requests
// address loaded documents.
func ArtifactID(name string) string {
	return ArtifactKey(name) + ".json"
}

func baseName(path string) string {
	return filepath.Base(strings.ReplaceAll(path, "\\", "/"))
}

// IntPtr is a small helper for optional counters.
func IntPtr(v int) *int {
	return &v
}
