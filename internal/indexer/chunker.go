package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// chunkSize is the maximum chunk length in runes.
	chunkSize = 1000
	// chunkOverlap is the target overlap between neighboring chunks in runes.
	chunkOverlap = 100
)

// separators are tried in order when breaking oversized text: paragraph
// boundaries first, then lines, then words, then a hard rune split.
var separators = []string{"\n\n", "\n", " ", ""}

// Splitter splits raw text into overlapping windows of bounded size.
// Splitting is deterministic given identical input and configuration.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a Splitter with the default size and overlap.
func NewSplitter() *Splitter {
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split breaks text into an ordered sequence of chunks. Every chunk inherits
// the source metadata and carries a sequence-scoped id derived from contentID.
func (s *Splitter) Split(text, contentID string, meta SourceMeta) []Chunk {
	fragments := fragment(text, separators, s.chunkSize)
	windows := s.pack(fragments)

	chunks := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		i := len(chunks)
		chunks = append(chunks, Chunk{
			ID:        fmt.Sprintf("%s_%d", contentID, i),
			ContentID: contentID,
			Index:     i,
			Text:      w,
			Meta:      meta,
		})
	}
	return chunks
}

// fragment recursively breaks text into pieces no longer than size runes.
// Separators stay attached to the preceding piece so that concatenating
// consecutive fragments reconstructs the original text exactly.
func fragment(text string, seps []string, size int) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		return runeWindows(text, size)
	}

	pieces := splitAfter(text, sep)
	if len(pieces) == 1 {
		// Separator not present, fall through to the next one
		return fragment(text, seps[1:], size)
	}

	var out []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) <= size {
			out = append(out, piece)
		} else {
			out = append(out, fragment(piece, seps[1:], size)...)
		}
	}
	return out
}

// splitAfter splits text on sep, keeping the separator attached to the
// preceding piece. Empty pieces are dropped.
func splitAfter(text, sep string) []string {
	raw := strings.SplitAfter(text, sep)
	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// runeWindows hard-splits text into consecutive windows of at most size runes.
func runeWindows(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// pack greedily packs consecutive fragments into windows of at most chunkSize
// runes. When a window is emitted the next one starts with the trailing
// fragments of the previous window, up to chunkOverlap runes.
func (s *Splitter) pack(fragments []string) []string {
	var windows []string
	var current []string
	currentLen := 0

	for _, frag := range fragments {
		fragLen := utf8.RuneCountInString(frag)

		if currentLen+fragLen > s.chunkSize && currentLen > 0 {
			windows = append(windows, strings.Join(current, ""))

			// Carry an overlap tail into the next window
			var tail []string
			tailLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				l := utf8.RuneCountInString(current[i])
				if tailLen+l > s.chunkOverlap {
					break
				}
				tail = append([]string{current[i]}, tail...)
				tailLen += l
			}
			current, currentLen = tail, tailLen

			if currentLen+fragLen > s.chunkSize {
				current, currentLen = nil, 0
			}
		}

		current = append(current, frag)
		currentLen += fragLen
	}

	if currentLen > 0 {
		windows = append(windows, strings.Join(current, ""))
	}
	return windows
}
