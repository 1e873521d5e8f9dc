package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-rag/internal/config"
)

func testConfig(size, overlap int) *config.Config {
	return &config.Config{RAG: config.RAGConfig{ChunkSize: size, ChunkOverlap: overlap}}
}

func TestChunkContentShortInput(t *testing.T) {
	chunks := chunkContent("just a short note", 1000, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a short note", chunks[0])
}

func TestChunkContentEmpty(t *testing.T) {
	assert.Nil(t, chunkContent("", 1000, 100))
	assert.Nil(t, chunkContent("   \n\t ", 1000, 100))
	assert.Nil(t, chunkContent("text", 0, 100))
}

func TestChunkContentWindowAndOverlap(t *testing.T) {
	// Digits only: no break characters, so window arithmetic is exact.
	var b strings.Builder
	for i := 0; i < 2500; i++ {
		b.WriteByte(byte('0' + i%10))
	}
	content := b.String()

	chunks := chunkContent(content, 1000, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, content[0:1000], chunks[0])
	assert.Equal(t, content[900:1900], chunks[1])
	assert.Equal(t, content[1800:2500], chunks[2])

	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0][900:], chunks[1][:100])
}

func TestChunkContentBreaksAtWhitespace(t *testing.T) {
	words := strings.Repeat("wordhere ", 300) // 2700 chars
	chunks := chunkContent(words, 1000, 100)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1000)
		// A clean break never splits a word.
		assert.True(t, strings.HasSuffix(chunk, "wordhere"), "chunk ends mid-word: %q", chunk[len(chunk)-12:])
	}
}

func TestChunkContentExcessiveOverlapClamped(t *testing.T) {
	content := strings.Repeat("x", 500)
	chunks := chunkContent(content, 100, 100)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
}

func TestParseText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Photosynthesis converts light into chemical energy."), 0o600))

	chunks, err := New(testConfig(1000, 100)).Parse(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, "Photosynthesis")
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, 1, chunks[0].ChunkID)
}

func TestParseTextMultipleChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("The cell membrane controls transport. ", 100)), 0o600))

	chunks, err := New(testConfig(200, 20)).Parse(path)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i+1, chunk.ChunkID)
		assert.Equal(t, 1, chunk.PageNumber)
	}
}

func TestParseMarkdownStripsMarkup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.md")
	src := "# Photosynthesis\n\nPlants convert *light* into energy.\n\n- chloroplast\n- thylakoid\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	chunks, err := New(testConfig(1000, 100)).Parse(path)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	text := chunks[0].Content
	assert.Contains(t, text, "Photosynthesis")
	assert.Contains(t, text, "light")
	assert.Contains(t, text, "chloroplast")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
}

func TestParseUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))

	_, err := New(nil).Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestParseEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := New(nil).Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text extracted")
}
