package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"docstage/internal/domain"
)

// chunkDoc is the stored form of loaded and chunked documents.
type chunkDoc struct {
	Filename         string         `json:"filename"`
	TotalChunks      int            `json:"total_chunks"`
	TotalPages       int            `json:"total_pages"`
	LoadingMethod    string         `json:"loading_method"`
	ChunkingStrategy string         `json:"chunking_strategy,omitempty"`
	ChunkingMethod   string         `json:"chunking_method"`
	ChunkingConfig   map[string]any `json:"chunking_config,omitempty"`
	Timestamp        string         `json:"timestamp"`
	Chunks           []chunkItem    `json:"chunks"`
}

type chunkItem struct {
	Content  string    `json:"content"`
	Metadata chunkMeta `json:"metadata"`
}

type chunkMeta struct {
	ChunkID    int    `json:"chunk_id"`
	PageNumber int    `json:"page_number"`
	PageRange  string `json:"page_range"`
	WordCount  int    `json:"word_count"`
}

// parsedDoc is the stored form of parsed documents.
type parsedDoc struct {
	Metadata parsedMeta   `json:"metadata"`
	Content  []parsedItem `json:"content"`
}

type parsedMeta struct {
	Filename      string `json:"filename"`
	FileType      string `json:"file_type"`
	TotalPages    *int   `json:"total_pages,omitempty"`
	TotalSections *int   `json:"total_sections,omitempty"`
	ParsingMethod string `json:"parsing_method"`
	Timestamp     string `json:"timestamp"`
}

type parsedItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Page    int    `json:"page,omitempty"`
	Title   string `json:"title,omitempty"`
	Level   int    `json:"level,omitempty"`
	Section string `json:"section,omitempty"`
}

type summary struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

// documentKind reads ?type= for the /documents endpoints. Loaded is the default.
func documentKind(r *http.Request) (domain.Kind, bool) {
	switch t := strings.ToLower(r.URL.Query().Get("type")); t {
	case "", string(domain.KindLoaded):
		return domain.KindLoaded, true
	case string(domain.KindChunked):
		return domain.KindChunked, true
	}
	return "", false
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	kind, ok := documentKind(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "type must be loaded or chunked")
		return
	}
	s.list(w, kind, func(raw []byte) (map[string]any, error) {
		var doc chunkDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return map[string]any{
			"filename":        doc.Filename,
			"total_pages":     doc.TotalPages,
			"total_chunks":    doc.TotalChunks,
			"loading_method":  doc.LoadingMethod,
			"chunking_method": doc.ChunkingMethod,
			"timestamp":       doc.Timestamp,
		}, nil
	})
}

func (s *Server) handleListParsed(w http.ResponseWriter, r *http.Request) {
	s.list(w, domain.KindParsed, func(raw []byte) (map[string]any, error) {
		var doc parsedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		md := map[string]any{
			"filename":       doc.Metadata.Filename,
			"parsing_method": doc.Metadata.ParsingMethod,
			"timestamp":      doc.Metadata.Timestamp,
		}
		if doc.Metadata.TotalPages != nil {
			md["total_pages"] = *doc.Metadata.TotalPages
		}
		if doc.Metadata.TotalSections != nil {
			md["total_sections"] = *doc.Metadata.TotalSections
		}
		return md, nil
	})
}

func (s *Server) list(w http.ResponseWriter, kind domain.Kind, meta func([]byte) (map[string]any, error)) {
	names, err := s.store.List(kind)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	docs := make([]summary, 0, len(names))
	for _, name := range names {
		raw, err := s.store.Get(kind, name)
		if err != nil {
			continue
		}
		md, err := meta(raw)
		if err != nil {
			s.log.Warn("skipping unreadable artifact",
				zap.String("kind", string(kind)), zap.String("name", name), zap.Error(err))
			continue
		}
		docs = append(docs, summary{Name: name, Metadata: md})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	kind, ok := documentKind(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "type must be loaded or chunked")
		return
	}
	s.get(w, kind, chi.URLParam(r, "name"))
}

func (s *Server) handleGetParsed(w http.ResponseWriter, r *http.Request) {
	s.get(w, domain.KindParsed, chi.URLParam(r, "name"))
}

func (s *Server) get(w http.ResponseWriter, kind domain.Kind, name string) {
	raw, err := s.store.Get(kind, strings.TrimSuffix(name, ".json"))
	if errors.Is(err, domain.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	kind, ok := documentKind(r)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "type must be loaded or chunked")
		return
	}
	s.delete(w, kind, chi.URLParam(r, "name"))
}

func (s *Server) handleDeleteParsed(w http.ResponseWriter, r *http.Request) {
	s.delete(w, domain.KindParsed, chi.URLParam(r, "name"))
}

func (s *Server) delete(w http.ResponseWriter, kind domain.Kind, name string) {
	existed, err := s.store.Delete(kind, strings.TrimSuffix(name, ".json"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !existed {
		s.respondError(w, http.StatusNotFound, "Document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}
