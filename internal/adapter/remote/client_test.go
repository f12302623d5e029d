package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"docstage/internal/domain"
	"docstage/internal/port"
	"docstage/internal/strategy"
)

type recorded struct {
	method, path, query string
	form                map[string]string
	fileName            string
	fileType            string
	fileBody            string
	json                map[string]any
	requestID           string
}

type fakeService struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{
		method:    r.Method,
		path:      r.URL.Path,
		query:     r.URL.RawQuery,
		form:      map[string]string{},
		requestID: r.Header.Get(headerRequestID),
	}
	if r.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&rec.json)
	} else if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			rec.form[k] = v[0]
		}
		if fh, ok := r.MultipartForm.File["file"]; ok {
			rec.fileName = fh[0].Filename
			rec.fileType = fh[0].Header.Get("Content-Type")
			fd, _ := fh[0].Open()
			data, _ := io.ReadAll(fd)
			rec.fileBody = string(data)
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	f.handler(w, r)
}

func (f *fakeService) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeService) {
	t.Helper()
	fake := &fakeService{handler: handler}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c, fake
}

func reply(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8000")
	assert.Error(t, err)
	_, err = New("/api")
	assert.Error(t, err)
}

func TestLoad_PDFMultipart(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{"loaded_content":{"filename":"report.pdf","total_pages":2,"total_chunks":2,
		"loading_method":"pymupdf","chunks":[
		{"content":"page one","metadata":{"chunk_id":1,"page_number":1,"page_range":"1","word_count":2}},
		{"content":"page two","metadata":{"chunk_id":2,"page_number":2,"page_range":"2","word_count":2}}]}}`))

	res, err := c.Load(context.Background(), port.LoadRequest{
		File:   port.Upload{Name: "report.pdf", Data: []byte("%PDF-1.4\n...")},
		Config: strategy.MustNew(strategy.StageLoad, strategy.LoadPyMuPDF),
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "POST", req.method)
	assert.Equal(t, "/load", req.path)
	assert.Equal(t, "pymupdf", req.form["loading_method"])
	assert.Equal(t, "report.pdf", req.fileName)
	assert.Equal(t, "application/pdf", req.fileType)
	assert.Equal(t, "%PDF-1.4\n...", req.fileBody)
	assert.NotEmpty(t, req.requestID)
	assert.NotContains(t, req.form, "text_config")

	assert.Equal(t, "report", res.Name)
	assert.Equal(t, 2, *res.TotalPages)
	require.Len(t, res.Segments, 2)
	assert.Equal(t, "page two", res.Segments[1].Content)
	assert.Equal(t, 2, *res.Segments[1].Metadata.PageNumber)
	assert.NoError(t, res.Verify())
}

func TestLoad_MethodSpecificConfig(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{"loaded_content":{"filename":"x","chunks":[]}}`))
	ctx := context.Background()

	text, err := strategy.MustNew(strategy.StageLoad, strategy.LoadText).Set(map[string]string{"preserve_newlines": "false"})
	require.NoError(t, err)
	_, err = c.Load(ctx, port.LoadRequest{File: port.Upload{Name: "a.txt", Data: []byte("hi")}, Config: text})
	require.NoError(t, err)
	assert.JSONEq(t, `{"encoding":"utf-8","preserve_newlines":false,"auto_detect_encoding":false}`, fake.last().form["text_config"])

	csv, err := strategy.MustNew(strategy.StageLoad, strategy.LoadCSV).Set(map[string]string{
		"auto_detect_delimiter": "false",
		"delimiter":             ";",
		"source_column":         "body",
	})
	require.NoError(t, err)
	_, err = c.Load(ctx, port.LoadRequest{File: port.Upload{Name: "a.csv", Data: []byte("a;b")}, Config: csv})
	require.NoError(t, err)
	assert.JSONEq(t, `{"delimiter":";","hasHeader":"","sourceColumn":"body","encoding":"utf-8"}`, fake.last().form["csv_config"])

	unstructured, err := strategy.MustNew(strategy.StageLoad, strategy.LoadUnstructured).Set(map[string]string{
		"strategy":       "hi_res",
		"max_characters": "1500",
	})
	require.NoError(t, err)
	_, err = c.Load(ctx, port.LoadRequest{File: port.Upload{Name: "a.pdf", Data: []byte("%PDF")}, Config: unstructured})
	require.NoError(t, err)
	form := fake.last().form
	assert.Equal(t, "hi_res", form["strategy"])
	assert.Equal(t, "basic", form["chunking_strategy"])
	var options map[string]any
	require.NoError(t, json.Unmarshal([]byte(form["chunking_options"]), &options))
	assert.Equal(t, float64(1500), options["maxCharacters"])
	assert.Equal(t, []any{"eng"}, options["languages"])
}

func TestChunk_TaggedUnionPayload(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{"filename":"report.pdf","total_chunks":1,"total_pages":1,
		"chunking_method":"by_paragraphs","chunks":[{"content":"x","metadata":{"chunk_id":7,"page_number":1}}]}`))

	cfg, err := strategy.MustNew(strategy.StageChunk, strategy.ChunkByParagraphs).Set(map[string]string{
		"paragraph_separator": "~~",
	})
	require.NoError(t, err)

	res, err := c.Chunk(context.Background(), port.ChunkRequest{DocID: "report", Config: cfg})
	require.NoError(t, err)

	body := fake.last().json
	assert.Equal(t, "report.json", body["doc_id"])
	assert.Equal(t, "by_paragraphs", body["chunking_option"])
	assert.Equal(t, map[string]any{"min_chunk_size": float64(1), "paragraph_separator": "~~"}, body["params"])

	assert.Equal(t, "report", res.Name)
	assert.Equal(t, 7, res.Segments[0].ChunkID)
}

func TestParse_Multipart(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{"parsed_content":{"metadata":{"filename":"guide.md","file_type":"markdown",
		"parsing_method":"by_sections","total_sections":2},
		"content":[{"type":"section","title":"Intro","level":1,"content":"a"},{"type":"section","title":"Usage","level":2,"content":"b"}]}}`))

	res, err := c.Parse(context.Background(), port.ParseRequest{
		File:          port.Upload{Name: "guide.md", Data: []byte("# Intro\na\n## Usage\nb")},
		LoadingMethod: strategy.LoadMarkdown,
		Config:        strategy.MustNew(strategy.StageParse, strategy.ParseBySections),
	})
	require.NoError(t, err)

	form := fake.last().form
	assert.Equal(t, "md", form["loading_method"])
	assert.Equal(t, "by_sections", form["parsing_option"])
	assert.Equal(t, "md", form["file_type"])

	assert.Equal(t, "guide", res.Name)
	assert.Equal(t, "by_sections", res.ParsingMethod)
	assert.Equal(t, 2, *res.TotalChunks)
	require.Len(t, res.Segments, 2)
	assert.Equal(t, []int{1, 2}, []int{res.Segments[0].ChunkID, res.Segments[1].ChunkID})
	assert.Equal(t, "Usage", res.Segments[1].Metadata.Title)
	assert.Equal(t, 2, *res.Segments[1].Metadata.Level)
}

func TestMissingSelectionIssuesNoRequest(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{}`))

	_, err := c.Load(context.Background(), port.LoadRequest{Config: strategy.MustNew(strategy.StageLoad, strategy.LoadText)})
	assert.ErrorIs(t, err, domain.ErrMissingSelection)
	_, err = c.Chunk(context.Background(), port.ChunkRequest{Config: strategy.MustNew(strategy.StageChunk, strategy.ChunkFixedSize)})
	assert.ErrorIs(t, err, domain.ErrMissingSelection)
	assert.Empty(t, fake.requests)
}

func TestTransportErrorCarriesDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", 400, `{"detail":"Unsupported file type: .png"}`, "Unsupported file type: .png"},
		{"validation list", 422, `{"detail":[{"loc":["body","doc_id"],"msg":"field required"}]}`, "body.doc_id: field required"},
		{"plain text", 502, `Bad Gateway`, "Bad Gateway"},
		{"no body", 500, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, reply(tt.status, tt.body))

			_, err := c.Chunk(context.Background(), port.ChunkRequest{
				DocID:  "report.json",
				Config: strategy.MustNew(strategy.StageChunk, strategy.ChunkFixedSize),
			})
			var te *domain.TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, tt.detail, te.Detail)
			if tt.detail != "" {
				assert.Contains(t, err.Error(), tt.detail)
			}
		})
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.List(context.Background(), domain.KindLoaded)

	var te *domain.TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Err)
}

func TestRegistry_Endpoints(t *testing.T) {
	c, fake := newTestClient(t, reply(200, `{"documents":[{"name":"report","metadata":{"filename":"report.pdf","total_pages":5}}]}`))
	ctx := context.Background()

	docs, err := c.List(ctx, domain.KindLoaded)
	require.NoError(t, err)
	assert.Equal(t, "/documents", fake.last().path)
	assert.Equal(t, "type=loaded", fake.last().query)
	require.Len(t, docs, 1)
	assert.Equal(t, "report", docs[0].Name)
	assert.Equal(t, 5, *docs[0].Metadata.TotalPages)

	_, err = c.List(ctx, domain.KindParsed)
	require.NoError(t, err)
	assert.Equal(t, "/parsed-docs", fake.last().path)
	assert.Empty(t, fake.last().query)

	require.NoError(t, c.Delete(ctx, "report", domain.KindLoaded))
	assert.Equal(t, "DELETE", fake.last().method)
	assert.Equal(t, "/documents/report", fake.last().path)
	assert.Empty(t, fake.last().query)

	require.NoError(t, c.Delete(ctx, "report", domain.KindChunked))
	assert.Equal(t, "type=chunked", fake.last().query)

	require.NoError(t, c.Delete(ctx, "guide", domain.KindParsed))
	assert.Equal(t, "/parsed-docs/guide", fake.last().path)

	_, err = c.List(ctx, domain.KindRaw)
	assert.Error(t, err)
}

func TestRegistry_ListShapes(t *testing.T) {
	c, _ := newTestClient(t, reply(200, `["a", {"id":"b"}, {"filename":"c.pdf"}, {"unrelated":true}]`))

	docs, err := c.List(context.Background(), domain.KindChunked)
	require.NoError(t, err)
	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
		assert.Equal(t, domain.KindChunked, d.Kind)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	empty, _ := newTestClient(t, reply(200, `{"documents":[]}`))
	docs, err = empty.List(context.Background(), domain.KindLoaded)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestRegistry_DetailNotFound(t *testing.T) {
	c, _ := newTestClient(t, reply(404, `{"detail":"Document not found"}`))

	_, err := c.Detail(context.Background(), "gone", domain.KindChunked)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Document not found")
}

func TestRegistry_DeleteAbsentIsSuccess(t *testing.T) {
	c, _ := newTestClient(t, reply(404, `{"detail":"Document not found"}`))
	assert.NoError(t, c.Delete(context.Background(), "gone", domain.KindLoaded))

	failing, _ := newTestClient(t, reply(500, `{"detail":"disk full"}`))
	err := failing.Delete(context.Background(), "x", domain.KindLoaded)
	assert.ErrorContains(t, err, "disk full")
}

func TestRegistry_DetailMalformed(t *testing.T) {
	c, _ := newTestClient(t, reply(200, `{"filename":"report.pdf","chunks":"oops"}`))

	doc, err := c.Detail(context.Background(), "report", domain.KindChunked)
	require.NoError(t, err)
	assert.True(t, doc.Result.Malformed)
	assert.Nil(t, doc.Result.Segments)
	assert.ErrorIs(t, doc.Result.Verify(), domain.ErrMalformedResult)
}
