package port

import (
	"context"

	"docstage/internal/domain"
)

// Registry lists, fetches and deletes artifacts of one kind.
type Registry interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.DocumentSummary, error)

	Detail(ctx context.Context, name string, kind domain.Kind) (*domain.Document, error)

	// Delete succeeds when the artifact is already absent.
	Delete(ctx context.Context, name string, kind domain.Kind) error
}

// ArtifactStore persists the raw JSON of produced artifacts on the reference server.
type ArtifactStore interface {
	Put(kind domain.Kind, name string, raw []byte) error

	// Get returns domain.ErrNotFound for unknown names.
	Get(kind domain.Kind, name string) ([]byte, error)

	// Delete reports whether the artifact existed.
	Delete(kind domain.Kind, name string) (bool, error)

	// List returns the names of a kind in insertion order.
	List(kind domain.Kind) ([]string, error)

	Close() error
}
