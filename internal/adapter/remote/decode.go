package remote

import (
	"github.com/tidwall/gjson"

	"docstage/internal/domain"
)

// decodeResult reads both result shapes of the service: flat chunk documents
// ({filename, total_chunks, ..., chunks}) and parsed documents
// ({metadata: {...}, content: [...]}). It never fails; a payload without a
// segment array comes back with Malformed set.
func decodeResult(root gjson.Result) *domain.ProcessingResult {
	meta := root.Get("metadata")
	field := func(name string) gjson.Result {
		if v := root.Get(name); v.Exists() && v.Type != gjson.Null {
			return v
		}
		if meta.IsObject() {
			return meta.Get(name)
		}
		return gjson.Result{}
	}

	r := &domain.ProcessingResult{
		Filename:       field("filename").String(),
		TotalPages:     optInt(field("total_pages")),
		TotalChunks:    optInt(field("total_chunks")),
		LoadingMethod:  field("loading_method").String(),
		ChunkingMethod: field("chunking_method").String(),
		ParsingMethod:  field("parsing_method").String(),
		FileType:       field("file_type").String(),
		Timestamp:      field("timestamp").String(),
	}
	if r.TotalChunks == nil {
		r.TotalChunks = optInt(field("total_sections"))
	}

	for _, key := range []string{"document_name", "name"} {
		if v := root.Get(key); v.Type == gjson.String && v.String() != "" {
			r.Name = v.String()
			break
		}
	}
	if r.Name == "" && r.Filename != "" {
		r.Name = domain.ArtifactName(r.Filename)
	}

	segments := root.Get("chunks")
	if !segments.Exists() {
		segments = root.Get("content")
	}
	if !segments.IsArray() {
		r.Malformed = true
		return r
	}

	r.Segments = make([]domain.Segment, 0, len(segments.Array()))
	for i, item := range segments.Array() {
		r.Segments = append(r.Segments, decodeSegment(item, i+1))
	}
	return r
}

func decodeSegment(item gjson.Result, ordinal int) domain.Segment {
	md := item.Get("metadata")
	pick := func(names ...string) gjson.Result {
		for _, n := range names {
			if v := md.Get(n); md.IsObject() && v.Exists() && v.Type != gjson.Null {
				return v
			}
			if v := item.Get(n); v.Exists() && v.Type != gjson.Null {
				return v
			}
		}
		return gjson.Result{}
	}

	seg := domain.Segment{
		ChunkID: ordinal,
		Content: pick("content", "text").String(),
		Metadata: domain.SegmentMetadata{
			PageNumber: optInt(pick("page_number", "page")),
			PageRange:  pick("page_range").String(),
			WordCount:  optInt(pick("word_count")),
			Type:       pick("type").String(),
			Title:      pick("title").String(),
			Section:    pick("section").String(),
			Level:      optInt(pick("level")),
		},
	}
	if item.Type == gjson.String {
		seg.Content = item.String()
	}
	if id := pick("chunk_id"); id.Type == gjson.Number {
		seg.ChunkID = int(id.Int())
	}
	return seg
}

// decodeSummaries accepts a bare array or an object holding "documents".
func decodeSummaries(root gjson.Result, kind domain.Kind) []domain.DocumentSummary {
	list := root
	if !list.IsArray() {
		list = root.Get("documents")
	}
	out := []domain.DocumentSummary{}
	if !list.IsArray() {
		return out
	}

	for _, item := range list.Array() {
		if item.Type == gjson.String {
			out = append(out, domain.DocumentSummary{Name: item.String(), Kind: kind})
			continue
		}
		r := decodeResult(item)
		s := r.Summary(kind)
		for _, key := range []string{"name", "id", "document_name"} {
			if v := item.Get(key); v.Type == gjson.String && v.String() != "" {
				s.Name = v.String()
				break
			}
		}
		if s.Name == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func optInt(v gjson.Result) *int {
	if v.Type != gjson.Number {
		return nil
	}
	return domain.IntPtr(int(v.Int()))
}
