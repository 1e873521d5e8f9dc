package chromemdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-rag/internal/models"
)

const testModel = "test-embed-model"

func testDocs() []models.ChunkEmbedding {
	return []models.ChunkEmbedding{
		{Content: "the mitochondria is the powerhouse of the cell", Embedding: []float32{1, 0, 0}, SourceFilename: "bio.pdf", PageNumber: 1, ChunkID: 1},
		{Content: "photosynthesis happens in the chloroplast", Embedding: []float32{0, 1, 0}, SourceFilename: "bio.pdf", PageNumber: 1, ChunkID: 2},
		{Content: "osmosis moves water across membranes", Embedding: []float32{0, 0, 1}, SourceFilename: "bio.pdf", PageNumber: 2, ChunkID: 1},
	}
}

func TestCreateAddSearch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	store, err := Create(path, testModel)
	require.NoError(t, err)
	require.NoError(t, store.AddDocuments(ctx, testDocs()))

	hits, err := store.Search(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Contains(t, hits[0].Content, "photosynthesis")
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
	assert.Equal(t, "bio.pdf", hits[0].SourceFilename)
	assert.Equal(t, 1, hits[0].PageNumber)
	assert.Equal(t, 2, hits[0].ChunkID)
}

func TestSearchClampsK(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	store, err := Create(path, testModel)
	require.NoError(t, err)
	require.NoError(t, store.AddDocuments(ctx, testDocs()))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	store, err := Create(path, testModel)
	require.NoError(t, err)
	require.NoError(t, store.AddDocuments(ctx, testDocs()))

	reopened, err := Open(path, testModel)
	require.NoError(t, err)

	hits, err := reopened.Search(ctx, []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Content, "osmosis")
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), testModel)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoreNotFound)
}

func TestOpenModelMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	store, err := Create(path, testModel)
	require.NoError(t, err)
	require.NoError(t, store.AddDocuments(ctx, testDocs()))

	_, err = Open(path, "some-other-model")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelMismatch)
}

func TestOpenEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	_, err := Create(path, testModel)
	require.NoError(t, err)

	_, err = Open(path, testModel)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoreNotFound)
}

func TestAddDocumentsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	store, err := Create(path, testModel)
	require.NoError(t, err)
	assert.Error(t, store.AddDocuments(context.Background(), nil))
}
