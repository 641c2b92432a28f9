package text

import (
	"strings"
	"unicode/utf8"

	"minirag/internal/rag"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// DefaultSeparators are tried in order: paragraph, line, word, character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into overlapping chunks of at most ChunkSize
// characters, preferring the coarsest separator that occurs in the text.
// Lengths are counted in runes.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{ChunkSize: size, ChunkOverlap: overlap, Separators: DefaultSeparators}
}

// Split returns the chunks of text with 1-based positions in emission order.
// Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []rag.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces := s.split(text, s.Separators)
	chunks := make([]rag.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = rag.Chunk{Content: p, Position: i + 1}
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	var final []string

	separator := ""
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs consecutive pieces into chunks no longer than ChunkSize,
// carrying up to ChunkOverlap characters of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.ChunkSize && len(current) > 0 {
			if doc := join(current); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > s.ChunkOverlap || total+n > s.ChunkSize) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := join(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepingSeparator splits text on sep and glues each separator to the
// start of the piece that follows it. An empty sep splits into runes.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
