package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSplitter(t *testing.T, cfg Config) *Splitter {
	t.Helper()
	s, err := NewSplitter(cfg)
	require.NoError(t, err)
	return s
}

// nonPeriodicText returns n runes of digits with no repeating window, so
// overlapping slices never deduplicate away.
func nonPeriodicText(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		fmt.Fprintf(&sb, "%03d", i)
	}
	return sb.String()[:n]
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	_, err := NewSplitter(Config{Size: 0, Overlap: 0})
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = NewSplitter(Config{Size: 10, Overlap: -1})
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = NewSplitter(Config{Size: 10, Overlap: 10})
	assert.ErrorIs(t, err, ErrOverlapTooLarge)

	_, err = NewSplitter(Config{Size: 10, Overlap: 20})
	assert.ErrorIs(t, err, ErrOverlapTooLarge)
}

func TestSplitEmptyInput(t *testing.T) {
	s := mustSplitter(t, DefaultConfig())

	assert.Nil(t, s.Split("", 1, "f1"))
	assert.Nil(t, s.Split("   \n\t  ", 1, "f1"))
}

func TestSplitSmallInputSingleChunk(t *testing.T) {
	s := mustSplitter(t, DefaultConfig())

	chunks := s.Split("hello world", 3, "f1")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
	assert.Equal(t, 3, chunks[0].Page)
	assert.Equal(t, "f1", chunks[0].SourceFileID)
	assert.NotEmpty(t, chunks[0].ID)
	assert.Nil(t, chunks[0].Vector)
}

func TestSplitSizeBound(t *testing.T) {
	s := mustSplitter(t, Config{Size: 50, Overlap: 10})

	var words []string
	for i := 0; i < 200; i++ {
		words = append(words, fmt.Sprintf("w%03d", i))
	}
	text := strings.Join(words, " ")

	chunks := s.Split(text, 1, "f1")
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 50, "chunk %q exceeds size", c.Text)
	}
}

func TestSplitCoverage(t *testing.T) {
	s := mustSplitter(t, Config{Size: 50, Overlap: 10})

	var words []string
	for i := 0; i < 200; i++ {
		words = append(words, fmt.Sprintf("w%03d", i))
	}
	text := strings.Join(words, " ")

	chunks := s.Split(text, 1, "f1")
	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString(" ")
	}
	for _, w := range words {
		assert.Contains(t, joined.String(), w)
	}
}

func TestSplitOverlapCarriedAcrossChunks(t *testing.T) {
	s := mustSplitter(t, Config{Size: 40, Overlap: 10})

	text := nonPeriodicText(200) // no separators at all
	chunks := s.Split(text, 1, "f1")
	require.Greater(t, len(chunks), 1)

	// Fixed-stride fallback: each chunk starts with the tail of its
	// predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		if len(prev) < 10 {
			continue
		}
		tail := string(prev[len(prev)-10:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d does not start with overlap of chunk %d", i, i-1)
	}
}

func TestSplitParagraphPacking(t *testing.T) {
	s := mustSplitter(t, Config{Size: 100, Overlap: 10})

	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."
	chunks := s.Split(text, 1, "f1")
	require.Len(t, chunks, 1)
	// Small paragraphs are packed back together with their separator.
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplitDeduplicatesIdenticalChunks(t *testing.T) {
	s := mustSplitter(t, Config{Size: 100, Overlap: 0})

	text := "same paragraph\n\nsame paragraph\n\nsame paragraph"
	// All three fit into one buffer, so force small size for distinct chunks.
	s = mustSplitter(t, Config{Size: 15, Overlap: 0})
	chunks := s.Split(text, 1, "f1")
	require.Len(t, chunks, 1)
	assert.Equal(t, "same paragraph", chunks[0].Text)
}

func TestSplit900CharsYieldsThreeChunks(t *testing.T) {
	s := mustSplitter(t, Config{Size: 400, Overlap: 10})

	chunks := s.Split(nonPeriodicText(900), 1, "f1")
	assert.Len(t, chunks, 3)
}

func TestSplitDeterministicTexts(t *testing.T) {
	s := mustSplitter(t, DefaultConfig())

	text := nonPeriodicText(1500)
	a := s.Split(text, 1, "f1")
	b := s.Split(text, 1, "f1")
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
		assert.NotEqual(t, a[i].ID, b[i].ID) // ids are fresh per call
	}
}

func TestSplitOversizedWordFallsBack(t *testing.T) {
	s := mustSplitter(t, Config{Size: 20, Overlap: 5})

	// One giant "word" among normal ones: the finest separators are
	// exhausted and fixed-stride slicing takes over.
	text := "small words " + nonPeriodicText(100) + " more small"
	chunks := s.Split(text, 1, "f1")
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 20)
	}
}
