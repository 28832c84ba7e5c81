package tokenizer

import (
	"errors"
	"sync"
	"testing"
)

// Compile-time contract checks.
var (
	_ Tokenizer = (*ByteTokenizer)(nil)
	_ Tokenizer = (*AlphabetTokenizer)(nil)
	_ Tokenizer = (*MockTokenizer)(nil)
	_ Tokenizer = (*SentencePieceTokenizer)(nil)
	_ Tokenizer = (*BytePairTokenizer)(nil)
)

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_SelfContainedSchemes(t *testing.T) {
	for _, scheme := range []string{SchemeBytes, SchemeMock, SchemeFixedAlphabet} {
		tok, err := New(scheme, "")
		if err != nil {
			t.Errorf("New(%q): %v", scheme, err)
			continue
		}

		if tok.VocabSize() <= 0 {
			t.Errorf("New(%q): VocabSize = %d", scheme, tok.VocabSize())
		}
	}
}

func TestNew_UnsupportedScheme(t *testing.T) {
	_, err := New("word-level", "")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("got %v, want ErrUnsupportedScheme", err)
	}
}

func TestNew_BytePairMissingArtifact(t *testing.T) {
	_, err := New(SchemeBytePair, "/nonexistent/ranks.tiktoken")
	if !errors.Is(err, ErrArtifactLoad) {
		t.Errorf("got %v, want ErrArtifactLoad", err)
	}
}

func TestNew_SubwordPieceMissingArtifact(t *testing.T) {
	_, err := New(SchemeSubwordPiece, "/nonexistent/tokenizer.model")
	if !errors.Is(err, ErrArtifactLoad) {
		t.Errorf("got %v, want ErrArtifactLoad", err)
	}
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestCodecsAreSafeForConcurrentUse(t *testing.T) {
	tok := NewByteTokenizer()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				ids, err := tok.Encode("héllo wörld", true, true)
				if err != nil {
					t.Errorf("Encode: %v", err)
					return
				}

				if _, err := tok.Decode(ids); err != nil {
					t.Errorf("Decode: %v", err)
					return
				}

				if _, _, err := tok.TokenOffsets("héllo wörld", nil); err != nil {
					t.Errorf("TokenOffsets: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
