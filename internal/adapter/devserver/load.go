package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docstage/internal/adapter/analyzer"
	"docstage/internal/adapter/chunker"
	"docstage/internal/domain"
	"docstage/internal/strategy"
)

type upload struct {
	filename string
	data     []byte
	form     loadForm
}

// readUpload reads the multipart file and the loading fields shared by
// /load and /parse.
func readUpload(r *http.Request) (upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return upload{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, errors.New("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return upload{}, fmt.Errorf("reading upload: %w", err)
	}
	return upload{
		filename: filepath.Base(header.Filename),
		data:     data,
		form: loadForm{
			method:          r.FormValue("loading_method"),
			textConfig:      r.FormValue("text_config"),
			csvConfig:       r.FormValue("csv_config"),
			chunkingOptions: r.FormValue("chunking_options"),
		},
	}, nil
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if up.form.method == "" {
		s.respondError(w, http.StatusBadRequest, "loading_method is required")
		return
	}
	if !strategy.SupportsLoadMethod(up.filename, up.form.method) {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("loading method %s cannot load %s", up.form.method, up.filename))
		return
	}

	ex, err := extract(up.data, up.form)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := chunkDoc{
		Filename:       up.filename,
		TotalPages:     ex.totalPages,
		LoadingMethod:  up.form.method,
		ChunkingMethod: "loaded",
		Timestamp:      s.timestamp(),
		Chunks:         make([]chunkItem, 0, len(ex.pages)),
	}
	if up.form.method == strategy.LoadUnstructured {
		doc.ChunkingStrategy = r.FormValue("chunking_strategy")
	}
	for i, p := range ex.pages {
		doc.Chunks = append(doc.Chunks, chunkItem{
			Content: p.Text,
			Metadata: chunkMeta{
				ChunkID:    i + 1,
				PageNumber: p.Number,
				PageRange:  fmt.Sprint(p.Number),
				WordCount:  analyzer.WordCount(p.Text),
			},
		})
	}
	doc.TotalChunks = len(doc.Chunks)

	name := domain.ArtifactName(up.filename)
	if err := s.save(domain.KindLoaded, name, doc); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("document loaded",
		zap.String("document", name),
		zap.String("method", up.form.method),
		zap.Int("pages", ex.totalPages),
		zap.Int("segments", doc.TotalChunks))
	s.respondJSON(w, http.StatusOK, map[string]any{
		"loaded_content": doc,
		"filepath":       domain.ArtifactID(name),
	})
}

func (s *Server) save(kind domain.Kind, name string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.store.Put(kind, name, raw)
}

// pagesOf rebuilds the page map of a loaded document. Segments of one page
// are joined in order; pages keep the order they first appear in.
func pagesOf(doc chunkDoc) []chunker.Page {
	var pages []chunker.Page
	index := map[int]int{}
	for _, c := range doc.Chunks {
		n := c.Metadata.PageNumber
		if i, ok := index[n]; ok {
			pages[i].Text = strings.Join([]string{pages[i].Text, c.Content}, "\n")
			continue
		}
		index[n] = len(pages)
		pages = append(pages, chunker.Page{Number: n, Text: c.Content})
	}
	return pages
}
