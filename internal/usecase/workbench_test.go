package usecase_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"docstage/internal/adapter/devserver"
	"docstage/internal/adapter/memstore"
	"docstage/internal/adapter/remote"
	"docstage/internal/domain"
	"docstage/internal/port"
	"docstage/internal/strategy"
	"docstage/internal/usecase"
)

func TestWorkbenchAgainstReferenceServer(t *testing.T) {
	log := zaptest.NewLogger(t)
	srv := httptest.NewServer(devserver.New(memstore.NewMemoryStore(), log).Handler())
	defer srv.Close()

	client, err := remote.New(srv.URL, remote.WithLogger(log))
	require.NoError(t, err)

	wb, err := usecase.NewWorkbench(client, client, usecase.Defaults{
		PDFMethod:   strategy.LoadPyMuPDF,
		ChunkMethod: strategy.ChunkFixedSize,
		ChunkParams: map[string]string{"chunk_size": "500", "chunk_overlap": "50"},
		ParseMethod: strategy.ParseAllText,
	}, log)
	require.NoError(t, err)
	ctx := context.Background()

	pdf := port.Upload{Name: "report.pdf", Data: []byte("Intro page.\fSecond page with more words.")}
	require.NoError(t, wb.Load.SelectDocument(pdf))
	require.NoError(t, wb.Load.Submit(ctx))

	loaded := wb.Load.Snapshot()
	assert.Equal(t, usecase.Ready, loaded.State)
	require.Len(t, loaded.Documents, 1)
	assert.Equal(t, "report", loaded.Documents[0].Name)

	docs, err := wb.Chunk.LoadedDocuments(ctx)
	require.NoError(t, err)
	require.NoError(t, wb.Chunk.SelectDocument(docs[0].Name))
	require.NoError(t, wb.Chunk.Submit(ctx))

	chunked := wb.Chunk.Snapshot()
	assert.Equal(t, usecase.Ready, chunked.State)
	require.NoError(t, chunked.Result.Verify())
	require.Len(t, chunked.Documents, 1)
	assert.Equal(t, "report", chunked.Documents[0].Name)

	require.NoError(t, wb.Chunk.Delete(ctx, "report"))
	assert.Equal(t, usecase.Idle, wb.Chunk.Snapshot().State)
	assert.Empty(t, wb.Chunk.Snapshot().Documents)

	err = wb.Chunk.View(ctx, "report")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, usecase.Failed, wb.Chunk.Snapshot().State)

	assert.Len(t, wb.Registry.Last(domain.KindLoaded), 1, "deleting a chunked artifact leaves the loaded one")
}

func TestDottedFileNamesStayDistinct(t *testing.T) {
	log := zaptest.NewLogger(t)
	srv := httptest.NewServer(devserver.New(memstore.NewMemoryStore(), log).Handler())
	defer srv.Close()

	client, err := remote.New(srv.URL, remote.WithLogger(log))
	require.NoError(t, err)
	wb, err := usecase.NewWorkbench(client, client, usecase.Defaults{ChunkMethod: strategy.ChunkFixedSize}, log)
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"q1.summary.txt", "q1.draft.txt"} {
		require.NoError(t, wb.Load.SelectDocument(port.Upload{Name: name, Data: []byte("contents of " + name)}))
		require.NoError(t, wb.Load.Submit(ctx))
	}

	docs := wb.Registry.Last(domain.KindLoaded)
	require.Len(t, docs, 2)
	names := []string{docs[0].Name, docs[1].Name}
	assert.ElementsMatch(t, []string{"q1.summary", "q1.draft"}, names)

	require.NoError(t, wb.Chunk.SelectDocument("q1.summary"))
	require.NoError(t, wb.Chunk.Submit(ctx))
	chunked := wb.Chunk.Snapshot()
	assert.Equal(t, "q1.summary.json", chunked.Document)
	require.NotEmpty(t, chunked.Result.Segments)
	assert.Contains(t, chunked.Result.Segments[0].Content, "q1.summary.txt")
}
