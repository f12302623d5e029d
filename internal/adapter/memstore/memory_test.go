package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstage/internal/domain"
	"docstage/internal/port"
)

var _ port.ArtifactStore = (*MemoryStore)(nil)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Put(domain.KindLoaded, "b", []byte(`1`)))
	require.NoError(t, s.Put(domain.KindLoaded, "a", []byte(`2`)))
	require.NoError(t, s.Put(domain.KindLoaded, "b", []byte(`3`)))

	names, err := s.List(domain.KindLoaded)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	raw, err := s.Get(domain.KindLoaded, "b")
	require.NoError(t, err)
	assert.Equal(t, "3", string(raw))

	_, err = s.Get(domain.KindChunked, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	existed, err := s.Delete(domain.KindLoaded, "a")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.Delete(domain.KindLoaded, "a")
	require.NoError(t, err)
	assert.False(t, existed)

	first, _ := s.NextChunkID(4)
	second, _ := s.NextChunkID(1)
	assert.Equal(t, 1, first)
	assert.Equal(t, 5, second)
}
