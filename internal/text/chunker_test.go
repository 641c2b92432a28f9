package text

import (
	"fmt"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(paragraphs, sentencesPerParagraph int) string {
	var b strings.Builder
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			b.WriteString("\n\n")
		}
		for s := 0; s < sentencesPerParagraph; s++ {
			if s > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "Paragraph %d sentence %d talks about topic-%d-%d in some detail.", p, s, p, s)
		}
	}
	return b.String()
}

// spans locates each chunk in text, requiring chunks to appear in order.
func spans(t *testing.T, text string, chunks []string) [][2]int {
	t.Helper()
	out := make([][2]int, 0, len(chunks))
	from := 0
	for i, c := range chunks {
		idx := strings.Index(text[from:], c)
		require.GreaterOrEqual(t, idx, 0, "chunk %d not found in order", i)
		start := from + idx
		out = append(out, [2]int{start, start + len(c)})
		from = start + 1
	}
	return out
}

func TestSplitter_Split(t *testing.T) {
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)

	t.Run("Empty Input", func(t *testing.T) {
		assert.Empty(t, s.Split(""))
		assert.Empty(t, s.Split("  \n\n\t "))
	})

	t.Run("Short Input Is One Chunk", func(t *testing.T) {
		text := "The capital of France is Paris."
		chunks := s.Split(text)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0].Content)
		assert.Equal(t, 1, chunks[0].Position)
	})

	t.Run("Exactly Chunk Size Is One Chunk", func(t *testing.T) {
		text := strings.Repeat("a", 999) + "é"
		require.Equal(t, 1000, utf8.RuneCountInString(text))
		chunks := s.Split(text)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0].Content)
	})

	t.Run("Long Input Properties", func(t *testing.T) {
		text := sampleDocument(6, 30)
		chunks := s.Split(text)
		require.Greater(t, len(chunks), 1)

		contents := make([]string, len(chunks))
		for i, c := range chunks {
			assert.Equal(t, i+1, c.Position, "positions must be contiguous from 1")
			assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), DefaultChunkSize)
			assert.NotEmpty(t, strings.TrimSpace(c.Content))
			contents[i] = c.Content
		}

		sp := spans(t, text, contents)
		for i := 1; i < len(sp); i++ {
			overlap := sp[i-1][1] - sp[i][0]
			assert.LessOrEqual(t, overlap, DefaultChunkOverlap, "chunk %d overlaps too much", i+1)
		}

		covered := make([]bool, len(text))
		for _, r := range sp {
			for j := r[0]; j < r[1]; j++ {
				covered[j] = true
			}
		}
		for j, r := range text {
			if !unicode.IsSpace(r) {
				assert.True(t, covered[j], "byte %d (%q) not covered by any chunk", j, r)
			}
		}
	})

	t.Run("Consecutive Chunks Overlap", func(t *testing.T) {
		text := strings.Repeat("word ", 600)
		chunks := s.Split(text)
		require.Len(t, chunks, 4)
		assert.Equal(t, 999, len(chunks[0].Content))
		assert.Equal(t, 999, len(chunks[1].Content))
		// the second chunk repeats the last 149 characters of the first
		assert.True(t, strings.HasSuffix(chunks[0].Content, chunks[1].Content[:149]))
	})

	t.Run("Prefers Paragraph Boundaries", func(t *testing.T) {
		para := strings.TrimSpace(strings.Repeat("alpha beta gamma. ", 30))
		text := para + "\n\n" + para + "\n\n" + para
		chunks := s.Split(text)
		require.NotEmpty(t, chunks)
		for _, c := range chunks {
			assert.True(t, strings.HasPrefix(c.Content, "alpha"), "chunk should start at a paragraph: %q", c.Content[:20])
		}
	})

	t.Run("Falls Back To Characters", func(t *testing.T) {
		text := strings.Repeat("x", 2500)
		chunks := s.Split(text)
		require.Len(t, chunks, 3)
		assert.Equal(t, 1000, len(chunks[0].Content))
		assert.Equal(t, 1000, len(chunks[1].Content))
		assert.Equal(t, 800, len(chunks[2].Content))
	})
}

func TestSplitKeepingSeparator(t *testing.T) {
	assert.Equal(t, []string{"a", "\n\nb", "\n\nc"}, splitKeepingSeparator("a\n\nb\n\nc", "\n\n"))
	assert.Equal(t, []string{"\n\n", "\n\nx"}, splitKeepingSeparator("\n\n\n\nx", "\n\n"))
	assert.Equal(t, []string{"h", "é", "!"}, splitKeepingSeparator("hé!", ""))
}

func TestNewSplitter_Defaults(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, 0, s.ChunkOverlap)
	assert.Equal(t, DefaultSeparators, s.Separators)
}
