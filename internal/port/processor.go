package port

import (
	"context"

	"docstage/internal/domain"
	"docstage/internal/strategy"
)

// Upload is a raw file forwarded to the service untouched.
type Upload struct {
	Name string
	Data []byte
}

type LoadRequest struct {
	File   Upload
	Config strategy.Config
}

type ChunkRequest struct {
	// DocID names a loaded artifact, including its ".json" suffix.
	DocID  string
	Config strategy.Config
}

type ParseRequest struct {
	File          Upload
	LoadingMethod string
	Config        strategy.Config
	FileType      string
}

// Processor runs one stage on the processing service.
type Processor interface {
	Load(ctx context.Context, req LoadRequest) (*domain.ProcessingResult, error)

	Chunk(ctx context.Context, req ChunkRequest) (*domain.ProcessingResult, error)

	Parse(ctx context.Context, req ParseRequest) (*domain.ProcessingResult, error)
}
