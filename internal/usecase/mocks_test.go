package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docstage/internal/domain"
	"docstage/internal/port"
)

// MockProcessor implements port.Processor for testing
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Load(ctx context.Context, req port.LoadRequest) (*domain.ProcessingResult, error) {
	args := m.Called(ctx, req)
	return result(args)
}

func (m *MockProcessor) Chunk(ctx context.Context, req port.ChunkRequest) (*domain.ProcessingResult, error) {
	args := m.Called(ctx, req)
	return result(args)
}

func (m *MockProcessor) Parse(ctx context.Context, req port.ParseRequest) (*domain.ProcessingResult, error) {
	args := m.Called(ctx, req)
	return result(args)
}

func result(args mock.Arguments) (*domain.ProcessingResult, error) {
	r, _ := args.Get(0).(*domain.ProcessingResult)
	return r, args.Error(1)
}

// MockRegistry implements port.Registry for testing
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) List(ctx context.Context, kind domain.Kind) ([]domain.DocumentSummary, error) {
	args := m.Called(ctx, kind)
	docs, _ := args.Get(0).([]domain.DocumentSummary)
	return docs, args.Error(1)
}

func (m *MockRegistry) Detail(ctx context.Context, name string, kind domain.Kind) (*domain.Document, error) {
	args := m.Called(ctx, name, kind)
	doc, _ := args.Get(0).(*domain.Document)
	return doc, args.Error(1)
}

func (m *MockRegistry) Delete(ctx context.Context, name string, kind domain.Kind) error {
	args := m.Called(ctx, name, kind)
	return args.Error(0)
}
