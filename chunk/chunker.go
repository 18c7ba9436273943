package chunk

import (
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"

	"github.com/poiesic/docvault/core"
)

// Default splitting parameters, tuned for embedding-sized segments.
const (
	DefaultSize    = 400
	DefaultOverlap = 10
)

// DefaultSeparators is the split hierarchy, coarsest first: paragraph break,
// line break, sentence boundary, word boundary. The empty separator means
// "split anywhere" and triggers fixed-stride slicing.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Config holds chunking parameters.
type Config struct {
	// Size is the maximum chunk length in runes.
	Size int
	// Overlap is the number of trailing runes carried from one chunk into the
	// next to preserve local context across boundaries. Must be < Size.
	Overlap int
	// Separators is the split hierarchy. Nil selects DefaultSeparators.
	Separators []string
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{
		Size:       DefaultSize,
		Overlap:    DefaultOverlap,
		Separators: DefaultSeparators,
	}
}

// Validate checks the configuration for degenerate parameter combinations.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return ErrInvalidChunkSize
	}
	if c.Overlap < 0 {
		return ErrInvalidOverlap
	}
	if c.Overlap >= c.Size {
		// An overlap at or beyond the chunk size makes the stride
		// non-positive and the splitter would never advance.
		return ErrOverlapTooLarge
	}
	return nil
}

// Splitter turns document text into ordered, overlapping, bounded-length
// chunks. It is pure: no I/O, safe for concurrent use.
type Splitter struct {
	cfg Config
}

// NewSplitter creates a splitter with the given configuration.
func NewSplitter(cfg Config) (*Splitter, error) {
	if cfg.Separators == nil {
		cfg.Separators = DefaultSeparators
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg}, nil
}

// Split chunks text and tags every chunk with the given page number and source
// file id. Deterministic for identical inputs except for the freshly generated
// chunk ids. Empty or whitespace-only input yields no chunks.
//
// Splitting walks the separator hierarchy: parts are accumulated greedily up
// to the size limit; a flushed chunk seeds the next buffer with its trailing
// overlap runes; an oversized part recurses into the finer separators and
// finally falls back to fixed-stride slicing. Identical chunk texts are
// deduplicated preserving first-seen order.
func (s *Splitter) Split(text string, page int, fileID string) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var raw []string
	s.split([]rune(text), s.cfg.Separators, &raw)

	texts := dedupe(raw)
	if len(texts) == 0 {
		return nil
	}

	chunks := make([]core.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = core.Chunk{
			ID:           uuid.NewString(),
			Text:         t,
			Page:         page,
			SourceFileID: fileID,
		}
	}
	return chunks
}

// split recursively divides t by the separator hierarchy, appending chunk
// candidates to out. Operates on runes so multi-byte text is never cut
// mid-character.
func (s *Splitter) split(t []rune, seps []string, out *[]string) {
	if len(seps) == 0 || seps[0] == "" || len(t) <= s.cfg.Size {
		s.slice(t, out)
		return
	}

	sep := []rune(seps[0])
	rest := seps[1:]
	parts := splitDropEmpty(t, string(sep))

	var current []rune
	for _, part := range parts {
		need := len(part)
		if len(current) > 0 {
			need += len(sep)
		}

		if len(current)+need <= s.cfg.Size {
			if len(current) > 0 {
				current = append(current, sep...)
			}
			current = append(current, part...)
			continue
		}

		// Flush and seed the next buffer with the overlap tail.
		var tail []rune
		if len(current) > 0 {
			*out = append(*out, string(current))
			tail = overlapTail(current, s.cfg.Overlap)
		}

		if len(part) > s.cfg.Size {
			s.split(part, rest, out)
			current = nil
			continue
		}

		// Carry the tail only when the part still fits on top of it;
		// otherwise the part starts a fresh buffer.
		if len(tail) > 0 && len(tail)+len(sep)+len(part) <= s.cfg.Size {
			current = append(append(tail, sep...), part...)
		} else {
			current = append([]rune(nil), part...)
		}
	}

	if strings.TrimSpace(string(current)) != "" {
		*out = append(*out, string(current))
	}
}

// slice is the fixed-stride fallback for spans with no usable separator left.
func (s *Splitter) slice(t []rune, out *[]string) {
	stride := s.cfg.Size - s.cfg.Overlap
	for i := 0; i < len(t); i += stride {
		end := i + s.cfg.Size
		if end > len(t) {
			end = len(t)
		}
		c := strings.TrimSpace(string(t[i:end]))
		if c != "" {
			*out = append(*out, c)
		}
		if end == len(t) {
			break
		}
	}
}

func overlapTail(t []rune, overlap int) []rune {
	start := len(t) - overlap
	if start < 0 {
		start = 0
	}
	return append([]rune(nil), t[start:]...)
}

func splitDropEmpty(t []rune, sep string) [][]rune {
	var parts [][]rune
	for _, p := range strings.Split(string(t), sep) {
		if p != "" {
			parts = append(parts, []rune(p))
		}
	}
	return parts
}

// dedupe trims candidates, drops empty ones and removes exact duplicates
// preserving first-seen order. Keys are content hashes so the seen-set stays
// small even for large documents.
func dedupe(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, c := range raw {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		key := contentKey(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func contentKey(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return string(h.Sum(nil))
}
