package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstage/internal/domain"
	"docstage/internal/port"
)

var _ port.ArtifactStore = (*BoltStore)(nil)

func openStore(t *testing.T, path string) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_PutGetList(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "artifacts.db"))

	require.NoError(t, s.Put(domain.KindLoaded, "zeta", []byte(`{"filename":"zeta.pdf"}`)))
	require.NoError(t, s.Put(domain.KindLoaded, "alpha", []byte(`{"filename":"alpha.pdf"}`)))
	require.NoError(t, s.Put(domain.KindChunked, "alpha", []byte(`{"chunks":[]}`)))

	names, err := s.List(domain.KindLoaded)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, names, "insertion order, not key order")

	raw, err := s.Get(domain.KindChunked, "alpha")
	require.NoError(t, err)
	assert.JSONEq(t, `{"chunks":[]}`, string(raw))

	// replacing moves the artifact to the end
	require.NoError(t, s.Put(domain.KindLoaded, "zeta", []byte(`{"filename":"zeta.pdf","v":2}`)))
	names, err = s.List(domain.KindLoaded)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestBoltStore_GetMissing(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "artifacts.db"))

	_, err := s.Get(domain.KindParsed, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Get(domain.KindRaw, "nope")
	assert.Error(t, err)
}

func TestBoltStore_Delete(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, s.Put(domain.KindParsed, "guide", []byte(`{}`)))

	existed, err := s.Delete(domain.KindParsed, "guide")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(domain.KindParsed, "guide")
	require.NoError(t, err)
	assert.False(t, existed)

	names, err := s.List(domain.KindParsed)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBoltStore_ChunkIDsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	first, err := s.NextChunkID(3)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	next, err := s.NextChunkID(2)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
	require.NoError(t, s.Close())

	s = openStore(t, path)
	next, err = s.NextChunkID(1)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}

func TestBoltStore_SchemaVersionMismatchResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(domain.KindLoaded, "report", []byte(`{}`)))
	require.NoError(t, s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion + 1}))
	require.NoError(t, s.Close())

	s = openStore(t, path)
	names, err := s.List(domain.KindLoaded)
	require.NoError(t, err)
	assert.Empty(t, names)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
}
