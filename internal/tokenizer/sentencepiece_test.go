package tokenizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/go-tokenkit/internal/testutil"
)

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewSentencePieceTokenizer_EmptyPath(t *testing.T) {
	_, err := NewSentencePieceTokenizer("")
	if !errors.Is(err, ErrArtifactLoad) {
		t.Errorf("got %v, want ErrArtifactLoad", err)
	}
}

func TestNewSentencePieceTokenizer_MissingFile(t *testing.T) {
	_, err := NewSentencePieceTokenizer("/nonexistent/tokenizer.model")
	if !errors.Is(err, ErrArtifactLoad) {
		t.Errorf("got %v, want ErrArtifactLoad", err)
	}
}

// ---------------------------------------------------------------------------
// pieceAlignment
// ---------------------------------------------------------------------------

func TestPieceAlignment_MetaSymbolBecomesSpace(t *testing.T) {
	text := "hello world"

	substrs, offsets := pieceAlignment(text, []string{"▁hello", "▁world"})

	if !equalStrings(substrs, []string{"hello", " world"}) {
		t.Errorf("substrs = %q, want [hello  world]", substrs)
	}

	if !equalInts(offsets, []int{0, 5}) {
		t.Errorf("offsets = %v, want [0 5]", offsets)
	}
}

func TestPieceAlignment_TrimsSyntheticLeadingSpace(t *testing.T) {
	// The first piece's meta-symbol space is synthetic only when the text
	// itself has no leading space.
	substrs, offsets := pieceAlignment(" hi", []string{"▁hi"})

	if !equalStrings(substrs, []string{" hi"}) || !equalInts(offsets, []int{0}) {
		t.Errorf("leading-space text: substrs = %q offsets = %v", substrs, offsets)
	}

	substrs, offsets = pieceAlignment("hi", []string{"▁hi"})

	if !equalStrings(substrs, []string{"hi"}) || !equalInts(offsets, []int{0}) {
		t.Errorf("plain text: substrs = %q offsets = %v", substrs, offsets)
	}
}

func TestPieceAlignment_SubwordSplit(t *testing.T) {
	substrs, offsets := pieceAlignment("hello", []string{"▁he", "llo"})

	if !equalStrings(substrs, []string{"he", "llo"}) {
		t.Errorf("substrs = %q, want [he llo]", substrs)
	}

	if !equalInts(offsets, []int{0, 2}) {
		t.Errorf("offsets = %v, want [0 2]", offsets)
	}
}

func TestPieceAlignment_RepeatedSurfacesAdvanceCursor(t *testing.T) {
	// Identical surfaces must land at successive occurrences, not all at
	// the first one.
	substrs, offsets := pieceAlignment("ab ab", []string{"▁ab", "▁ab"})

	if !equalStrings(substrs, []string{"ab", " ab"}) {
		t.Errorf("substrs = %q", substrs)
	}

	if !equalInts(offsets, []int{0, 2}) {
		t.Errorf("offsets = %v, want [0 2]", offsets)
	}
}

func TestPieceAlignment_EmptySurfacesYieldNoPairs(t *testing.T) {
	substrs, offsets := pieceAlignment("x", []string{"▁", "x"})

	if !equalStrings(substrs, []string{"x"}) || !equalInts(offsets, []int{0}) {
		t.Errorf("substrs = %q offsets = %v, want [x] [0]", substrs, offsets)
	}
}

func TestPieceAlignment_NormalizedSurfaceFallsBackToCursor(t *testing.T) {
	// A surface the normalizer rewrote is kept at the cursor without
	// advancing past unmatched text.
	substrs, offsets := pieceAlignment("café", []string{"▁cafe"})

	if !equalStrings(substrs, []string{"cafe"}) || !equalInts(offsets, []int{0}) {
		t.Errorf("substrs = %q offsets = %v, want [cafe] [0]", substrs, offsets)
	}
}

// ---------------------------------------------------------------------------
// Against a real piece model (skipped when absent)
// ---------------------------------------------------------------------------

func spTokenizer(t *testing.T) *SentencePieceTokenizer {
	t.Helper()

	path := testutil.RequireSentencePieceModel(t)

	tok, err := NewSentencePieceTokenizer(path)
	if err != nil {
		t.Fatalf("NewSentencePieceTokenizer(%q): %v", path, err)
	}

	return tok
}

func TestSentencePieceEncode_MarkerPlacement(t *testing.T) {
	tok := spTokenizer(t)

	got, err := tok.Encode("hello world", true, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(got) < 2 || got[0] != tok.BOSID() || got[len(got)-1] != tok.EOSID() {
		t.Errorf("Encode = %v, want BOS/EOS at the ends", got)
	}
}

func TestSentencePieceEncode_TokensInRange(t *testing.T) {
	tok := spTokenizer(t)

	ids, err := tok.Encode("The quick brown fox jumps over the lazy dog.", true, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i, id := range ids {
		if id < 0 || id >= tok.VocabSize() {
			t.Errorf("token[%d] = %d out of range [0, %d)", i, id, tok.VocabSize())
		}
	}
}

func TestSentencePieceDecode_DropsMarkers(t *testing.T) {
	tok := spTokenizer(t)

	ids, err := tok.Encode("hello world", true, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := tok.Decode(ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if strings.Contains(got, "<s>") || strings.Contains(got, "</s>") {
		t.Errorf("Decode rendered marker text: %q", got)
	}

	if !strings.Contains(got, "hello") {
		t.Errorf("Decode = %q, want the content text back", got)
	}
}

func TestSentencePieceDecode_OutOfRangeFailsFast(t *testing.T) {
	tok := spTokenizer(t)

	_, err := tok.Decode([]int{tok.VocabSize()})
	if !errors.Is(err, ErrTokenOutOfRange) {
		t.Errorf("got %v, want ErrTokenOutOfRange", err)
	}
}

func TestSentencePieceTokenOffsets_SurfacesMatchText(t *testing.T) {
	tok := spTokenizer(t)

	text := "hello world, this is a test"

	substrs, offsets, err := tok.TokenOffsets(text, nil)
	if err != nil {
		t.Fatalf("TokenOffsets: %v", err)
	}

	if len(substrs) != len(offsets) {
		t.Fatalf("len(substrs)=%d != len(offsets)=%d", len(substrs), len(offsets))
	}

	for i := range substrs {
		if offsets[i] < 0 || offsets[i] >= len(text) {
			t.Errorf("offset[%d] = %d outside text", i, offsets[i])
			continue
		}

		end := offsets[i] + len(substrs[i])
		if end <= len(text) && text[offsets[i]:end] != substrs[i] {
			t.Errorf("substr[%d] = %q does not match text at byte %d", i, substrs[i], offsets[i])
		}
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			t.Errorf("offsets not monotonic: %v", offsets)
		}
	}
}
