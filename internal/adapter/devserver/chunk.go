package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"docstage/internal/adapter/chunker"
	"docstage/internal/domain"
)

type chunkRequest struct {
	DocID          string          `json:"doc_id"`
	ChunkingOption string          `json:"chunking_option"`
	Params         json.RawMessage `json:"params"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.HasSuffix(req.DocID, ".json") {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid doc_id %q: expected <name>.json", req.DocID))
		return
	}
	if req.ChunkingOption == "" {
		s.respondError(w, http.StatusBadRequest, "chunking_option is required")
		return
	}

	name := strings.TrimSuffix(req.DocID, ".json")
	raw, err := s.store.Get(domain.KindLoaded, name)
	if errors.Is(err, domain.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var loaded chunkDoc
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("loaded document %s is unreadable: %v", name, err))
		return
	}

	opts := chunker.DefaultOptions()
	config := map[string]any{}
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if err := json.Unmarshal(req.Params, &config); err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid params: %v", err))
			return
		}
		if err := json.Unmarshal(req.Params, &opts); err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid params: %v", err))
			return
		}
	}

	pieces, err := s.chunker.Chunk(req.ChunkingOption, pagesOf(loaded), opts)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	first, err := s.store.NextChunkID(len(pieces))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	doc := chunkDoc{
		Filename:       loaded.Filename,
		TotalChunks:    len(pieces),
		TotalPages:     loaded.TotalPages,
		LoadingMethod:  loaded.LoadingMethod,
		ChunkingMethod: req.ChunkingOption,
		ChunkingConfig: config,
		Timestamp:      s.timestamp(),
		Chunks:         make([]chunkItem, 0, len(pieces)),
	}
	for i, p := range pieces {
		doc.Chunks = append(doc.Chunks, chunkItem{
			Content: p.Content,
			Metadata: chunkMeta{
				ChunkID:    first + i,
				PageNumber: p.PageNumber,
				PageRange:  p.PageRange,
				WordCount:  p.WordCount,
			},
		})
	}

	if err := s.save(domain.KindChunked, name, doc); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("document chunked",
		zap.String("document", name),
		zap.String("method", req.ChunkingOption),
		zap.Int("chunks", len(pieces)))
	s.respondJSON(w, http.StatusOK, doc)
}
