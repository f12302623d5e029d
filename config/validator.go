package config

import (
	"fmt"
	"net/url"

	"go.uber.org/zap/zapcore"

	"docstage/internal/strategy"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "server.base_url",
			Message: "must be an absolute http(s) URL",
		})
	}

	if c.Server.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.timeout",
			Message: "timeout must not be negative",
		})
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown log level %q", c.Logging.Level),
		})
	}

	if c.Output.Format != "text" && c.Output.Format != "json" {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: "format must be text or json",
		})
	}

	if _, err := strategy.SchemaFor(strategy.StageChunk, c.Chunk.Method); err != nil {
		errors = append(errors, ValidationError{
			Field:   "chunk.method",
			Message: err.Error(),
		})
	}

	if c.Chunk.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunk.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Chunk.ChunkOverlap < 0 || c.Chunk.ChunkOverlap >= c.Chunk.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "chunk.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if !strategy.SupportsLoadMethod("document.pdf", c.Load.PDFMethod) {
		errors = append(errors, ValidationError{
			Field:   "load.pdf_method",
			Message: fmt.Sprintf("unknown PDF loading method %q", c.Load.PDFMethod),
		})
	}

	if _, err := strategy.SchemaFor(strategy.StageParse, c.Parse.Method); err != nil {
		errors = append(errors, ValidationError{
			Field:   "parse.method",
			Message: err.Error(),
		})
	}

	return errors
}
