package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"docstage/internal/domain"
	"docstage/internal/port"
	"docstage/internal/strategy"
)

func (c *Client) Load(ctx context.Context, req port.LoadRequest) (*domain.ProcessingResult, error) {
	if req.File.Name == "" || req.Config.IsZero() {
		return nil, fmt.Errorf("%w: load needs a file and a loading method", domain.ErrMissingSelection)
	}

	form, err := loadForm(req.Config)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/load", func(r *resty.Request) {
		attachFile(r, req.File)
		r.SetMultipartFormData(form)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("document loaded",
		zap.String("document", req.File.Name),
		zap.String("method", req.Config.Method()))
	return unwrapResult(resp.Body(), "loaded_content"), nil
}

func (c *Client) Chunk(ctx context.Context, req port.ChunkRequest) (*domain.ProcessingResult, error) {
	if req.DocID == "" || req.Config.IsZero() {
		return nil, fmt.Errorf("%w: chunk needs a loaded document and a chunking method", domain.ErrMissingSelection)
	}

	body := map[string]any{
		"doc_id":          domain.ArtifactID(req.DocID),
		"chunking_option": req.Config.Method(),
		"params":          req.Config.Wire(),
	}

	resp, err := c.do(ctx, http.MethodPost, "/chunk", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("document chunked",
		zap.String("document", req.DocID),
		zap.String("method", req.Config.Method()))
	return unwrapResult(resp.Body(), ""), nil
}

func (c *Client) Parse(ctx context.Context, req port.ParseRequest) (*domain.ProcessingResult, error) {
	if req.File.Name == "" || req.Config.IsZero() || req.LoadingMethod == "" {
		return nil, fmt.Errorf("%w: parse needs a file, a loading method and a parsing option", domain.ErrMissingSelection)
	}
	fileType := req.FileType
	if fileType == "" {
		fileType = strategy.FileType(req.File.Name)
	}

	resp, err := c.do(ctx, http.MethodPost, "/parse", func(r *resty.Request) {
		attachFile(r, req.File)
		r.SetMultipartFormData(map[string]string{
			"loading_method": req.LoadingMethod,
			"parsing_option": req.Config.Method(),
			"file_type":      fileType,
		})
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("document parsed",
		zap.String("document", req.File.Name),
		zap.String("method", req.Config.Method()))
	return unwrapResult(resp.Body(), "parsed_content"), nil
}

func attachFile(r *resty.Request, f port.Upload) {
	contentType := mimetype.Detect(f.Data).String()
	r.SetMultipartField("file", f.Name, contentType, bytes.NewReader(f.Data))
}

// loadForm builds the method specific fields of a load request from the
// active loading variant.
func loadForm(cfg strategy.Config) (map[string]string, error) {
	form := map[string]string{"loading_method": cfg.Method()}
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}

	var field string
	var payload any
	switch v := variant.(type) {
	case *strategy.TextLoad:
		field, payload = "text_config", v

	case *strategy.CSVLoad:
		csv := map[string]any{
			"delimiter":    "",
			"hasHeader":    "",
			"sourceColumn": v.SourceColumn,
			"encoding":     v.Encoding,
		}
		if !v.AutoDetectDelimiter {
			csv["delimiter"] = v.Delimiter
		}
		if !v.AutoDetectHeader {
			csv["hasHeader"] = v.HasHeader
		}
		field, payload = "csv_config", csv

	case *strategy.UnstructuredLoad:
		form["strategy"] = v.Strategy
		form["chunking_strategy"] = v.ChunkingStrategy
		field, payload = "chunking_options", map[string]any{
			"maxCharacters":       v.MaxCharacters,
			"overlap":             v.Overlap,
			"pdf_image_processor": v.PDFImageProcessor,
			"languages":           cfg.Wire()["languages"],
			"include_page_breaks": v.IncludePageBreaks,
			"include_metadata":    v.IncludeMetadata,
		}
	}

	if field != "" {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		form[field] = string(data)
	}
	return form, nil
}

// unwrapResult decodes a result that may sit under envelope.
func unwrapResult(body []byte, envelope string) *domain.ProcessingResult {
	root := gjson.ParseBytes(body)
	if envelope != "" {
		if inner := root.Get(envelope); inner.IsObject() {
			root = inner
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(root.Raw), "{") {
		return &domain.ProcessingResult{Malformed: true}
	}
	return decodeResult(root)
}
