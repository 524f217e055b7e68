package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextPacksParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\n\n\nThird."

	chunks := NewTextChunker().ChunkText(text, 1000, 0)

	assert.Equal(t, []string{"First paragraph.\n\nSecond paragraph.\n\nThird."}, chunks)
}

func TestChunkTextRespectsMaxSize(t *testing.T) {
	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, strings.Repeat("word ", 10)+"end.")
	}

	chunks := NewTextChunker().ChunkText(strings.Join(paras, "\n\n"), 120, 0)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 50) + "\n\n" + strings.Repeat("b", 50)

	chunks := NewTextChunker().ChunkText(text, 60, 10)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[1], strings.Repeat("a", 10)+"\n\n"))
}

func TestChunkTextSplitsLongParagraphBySentence(t *testing.T) {
	text := "Go is fast. Go is simple! Is Go fun? Yes."

	chunks := NewTextChunker().ChunkText(text, 25, 0)

	assert.Equal(t, []string{"Go is fast. Go is simple!", "Is Go fun? Yes."}, chunks)
}

func TestSplitIntoSentencesKeepsDecimals(t *testing.T) {
	assert.Equal(t, []string{"Version 1.25 is out.", "Upgrade now"}, splitIntoSentences("Version 1.25 is out. Upgrade now"))
}
