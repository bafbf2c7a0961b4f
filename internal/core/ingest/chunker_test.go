package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortTextSingleChunk(t *testing.T) {
	chunks := ChunkText("hello world", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", 1000, 200))
}

func TestChunkTextInvalidSize(t *testing.T) {
	assert.Nil(t, ChunkText("some text", 0, 0))
	assert.Nil(t, ChunkText("some text", -5, 0))
}

func TestChunkTextOverlapWindows(t *testing.T) {
	text := strings.Repeat("a", 950) + strings.Repeat("b", 950)
	chunks := ChunkText(text, 1000, 200)

	require.Len(t, chunks, 3)
	assert.Len(t, []rune(chunks[0]), 1000)
	assert.Len(t, []rune(chunks[1]), 1000)
	// chunk i+1 starts size-overlap runes after chunk i
	assert.Equal(t, chunks[0][800:], chunks[1][:200])
	assert.Equal(t, chunks[1][800:], chunks[2][:200])
}

func TestChunkTextCoversAllRunes(t *testing.T) {
	text := strings.Repeat("x", 2500)
	chunks := ChunkText(text, 1000, 200)

	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(text, last))

	total := 0
	for _, c := range chunks {
		total += len([]rune(c))
	}
	// total coverage = text length + overlap repeated between windows
	assert.GreaterOrEqual(t, total, len([]rune(text)))
}

func TestChunkTextBadOverlapFallsBackToZero(t *testing.T) {
	text := strings.Repeat("y", 30)
	chunks := ChunkText(text, 10, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkTextMultibyteRunes(t *testing.T) {
	text := strings.Repeat("é", 15)
	chunks := ChunkText(text, 10, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("é", 10), chunks[0])
	assert.Equal(t, strings.Repeat("é", 7), chunks[1])
}
