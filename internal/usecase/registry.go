package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"docstage/internal/domain"
	"docstage/internal/port"
)

// RegistryView keeps the last fetched document list of every kind. Lists are
// never patched locally; every change is followed by a fresh List.
type RegistryView struct {
	registry port.Registry
	log      *zap.Logger

	mu    sync.RWMutex
	lists map[domain.Kind][]domain.DocumentSummary
}

func NewRegistryView(registry port.Registry, log *zap.Logger) *RegistryView {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistryView{
		registry: registry,
		log:      log,
		lists:    make(map[domain.Kind][]domain.DocumentSummary),
	}
}

// Refresh re-issues List for kind and replaces the kept list.
func (v *RegistryView) Refresh(ctx context.Context, kind domain.Kind) ([]domain.DocumentSummary, error) {
	docs, err := v.registry.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s documents: %w", kind, err)
	}
	v.mu.Lock()
	v.lists[kind] = docs
	v.mu.Unlock()
	return copySummaries(docs), nil
}

// Last returns the list kept from the previous Refresh, nil if there was none.
func (v *RegistryView) Last(kind domain.Kind) []domain.DocumentSummary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return copySummaries(v.lists[kind])
}

func (v *RegistryView) Detail(ctx context.Context, name string, kind domain.Kind) (*domain.Document, error) {
	return v.registry.Detail(ctx, name, kind)
}

// Delete removes an artifact and refreshes the list of its kind. A failed
// refresh is logged; the delete itself already succeeded.
func (v *RegistryView) Delete(ctx context.Context, name string, kind domain.Kind) error {
	if err := v.registry.Delete(ctx, name, kind); err != nil {
		return err
	}
	if _, err := v.Refresh(ctx, kind); err != nil {
		v.log.Warn("registry refresh after delete failed",
			zap.String("kind", string(kind)), zap.Error(err))
	}
	return nil
}

func copySummaries(in []domain.DocumentSummary) []domain.DocumentSummary {
	if in == nil {
		return nil
	}
	out := make([]domain.DocumentSummary, len(in))
	copy(out, in)
	return out
}
