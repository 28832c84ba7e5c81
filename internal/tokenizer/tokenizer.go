// Package tokenizer converts text to integer token IDs and back across
// several interchangeable schemes, and maps each emitted token back to the
// substring of the source text it came from.
//
// Every codec is immutable after construction; Encode, Decode and
// TokenOffsets are safe for concurrent use on a shared instance.
package tokenizer

import (
	"errors"
	"fmt"
)

// Scheme names accepted by New.
const (
	SchemeBytes         = "bytes"
	SchemeMock          = "mock"
	SchemeSubwordPiece  = "subword-piece"
	SchemeBytePair      = "byte-pair"
	SchemeFixedAlphabet = "fixed-alphabet"
)

var (
	// ErrUnsupportedScheme is returned by New for an unknown scheme name.
	ErrUnsupportedScheme = errors.New("unsupported tokenizer scheme")

	// ErrArtifactLoad is returned when a vocabulary artifact is missing,
	// unreadable, or structurally invalid.
	ErrArtifactLoad = errors.New("tokenizer artifact load failed")

	// ErrTokenOutOfRange is returned when a token outside [0, VocabSize())
	// is passed to Decode or TokenOffsets. Values inside that range never
	// error; they degrade per the codec's documented policy instead.
	ErrTokenOutOfRange = errors.New("token id out of vocabulary range")
)

// Tokenizer is the contract every codec implements.
//
// Encode never truncates: codecs with a backend size limit chunk the input
// and concatenate the results. Decode is total over [0, VocabSize()):
// special and otherwise non-content tokens are dropped or escaped per the
// codec's policy, never raised.
type Tokenizer interface {
	// Encode returns the content tokens for text, prefixed with BOSID()
	// when addBOS and suffixed with EOSID() when addEOS.
	Encode(text string, addBOS, addEOS bool) ([]int, error)

	// Decode converts tokens back to text.
	Decode(tokens []int) (string, error)

	// TokenOffsets returns, per content token, the decoded text fragment
	// and the offset at which it begins in text. A nil tokens slice means
	// "compute via Encode(text, false, false)". The offset unit is
	// codec-specific (bytes, runes, or ordinal position) and documented on
	// each implementation. Evaluation/attribution only; never feed the
	// result back into a model.
	TokenOffsets(text string, tokens []int) ([]string, []int, error)

	// VocabSize reports the closed vocabulary size n_words; every token
	// the codec emits lies in [0, VocabSize()).
	VocabSize() int

	BOSID() int
	EOSID() int
}

// New constructs the codec for scheme. artifactPath names the vocabulary
// artifact for the subword schemes and is ignored by the self-contained
// ones. For byte-pair an empty path selects the builtin rank table.
func New(scheme, artifactPath string) (Tokenizer, error) {
	switch scheme {
	case SchemeBytes:
		return NewByteTokenizer(), nil
	case SchemeMock:
		return NewMockTokenizer(), nil
	case SchemeSubwordPiece:
		return NewSentencePieceTokenizer(artifactPath)
	case SchemeBytePair:
		return NewBytePairTokenizer(artifactPath)
	case SchemeFixedAlphabet:
		return NewAlphabetTokenizer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// checkRange verifies every token lies in [0, nWords).
func checkRange(tokens []int, nWords int) error {
	for i, tok := range tokens {
		if tok < 0 || tok >= nWords {
			return fmt.Errorf("%w: token[%d] = %d, vocabulary [0, %d)", ErrTokenOutOfRange, i, tok, nWords)
		}
	}
	return nil
}

// isContinuation reports whether b is a UTF-8 continuation byte, i.e. not
// the first byte of its character.
func isContinuation(b byte) bool {
	return b >= 0x80 && b < 0xC0
}
