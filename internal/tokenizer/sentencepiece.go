package tokenizer

import (
	"fmt"
	"os"
	"strings"

	"github.com/eliben/go-sentencepiece"
)

// sentencepiece renders the word-boundary space as this meta symbol in
// piece surfaces.
const spaceMeta = "▁"

// SentencePieceTokenizer wraps a statistical subword-piece engine loaded
// from a sentencepiece model artifact. The codec adds marker insertion and
// offset recovery; all merge/segmentation logic lives in the engine.
//
// Offsets returned by TokenOffsets are byte offsets into the source text.
type SentencePieceTokenizer struct {
	proc *sentencepiece.Processor
	info *sentencepiece.ModelInfo
}

// NewSentencePieceTokenizer loads the piece model at path. A missing or
// structurally invalid artifact fails with ErrArtifactLoad.
func NewSentencePieceTokenizer(path string) (*SentencePieceTokenizer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: subword-piece scheme requires an artifact path", ErrArtifactLoad)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}

	proc, err := sentencepiece.NewProcessorFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: parse sentencepiece model %q: %v", ErrArtifactLoad, path, err)
	}

	return &SentencePieceTokenizer{proc: proc, info: proc.ModelInfo()}, nil
}

func (t *SentencePieceTokenizer) VocabSize() int { return t.info.VocabularySize }
func (t *SentencePieceTokenizer) BOSID() int     { return t.info.BeginningOfSentenceID }
func (t *SentencePieceTokenizer) EOSID() int     { return t.info.EndOfSentenceID }

// PadID reports the padding marker defined by the model.
func (t *SentencePieceTokenizer) PadID() int { return t.info.PadID }

// UnknownID reports the unknown-piece marker defined by the model.
func (t *SentencePieceTokenizer) UnknownID() int { return t.info.UnknownID }

// Encode delegates segmentation to the engine and applies the shared
// marker insertion policy.
func (t *SentencePieceTokenizer) Encode(text string, addBOS, addEOS bool) ([]int, error) {
	pieces := t.proc.Encode(text)

	tokens := make([]int, 0, len(pieces)+2)
	if addBOS {
		tokens = append(tokens, t.BOSID())
	}
	for _, p := range pieces {
		tokens = append(tokens, p.ID)
	}
	if addEOS {
		tokens = append(tokens, t.EOSID())
	}
	return tokens, nil
}

// Decode drops marker tokens and reassembles the remaining pieces.
func (t *SentencePieceTokenizer) Decode(tokens []int) (string, error) {
	if err := checkRange(tokens, t.VocabSize()); err != nil {
		return "", err
	}

	content := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if t.isMarker(tok) {
			continue
		}
		content = append(content, tok)
	}
	return t.proc.Decode(content), nil
}

// TokenOffsets re-segments text and forwards each piece's surface together
// with the byte offset where the surface begins. The tokens argument is
// ignored: the engine's own segmentation is the only source of piece
// surfaces. The synthetic word-boundary space the engine prepends to the
// first piece has no counterpart in the source text and is trimmed.
func (t *SentencePieceTokenizer) TokenOffsets(text string, _ []int) ([]string, []int, error) {
	pieces := t.proc.Encode(text)

	surfaces := make([]string, len(pieces))
	for i, p := range pieces {
		surfaces[i] = p.Text
	}

	substrs, offsets := pieceAlignment(text, surfaces)
	return substrs, offsets, nil
}

// pieceAlignment walks the piece surfaces through text and recovers the
// byte offset where each surface begins. Surfaces carry the engine's
// word-boundary meta symbol, mapped back to a plain space here; the
// synthetic space prepended to the first piece has no counterpart in the
// source text and is trimmed.
func pieceAlignment(text string, surfaces []string) ([]string, []int) {
	var (
		substrs []string
		offsets []int
		cursor  int
	)
	for _, raw := range surfaces {
		surface := strings.ReplaceAll(raw, spaceMeta, " ")
		if cursor == 0 && strings.HasPrefix(surface, " ") && !strings.HasPrefix(text, " ") {
			surface = surface[1:]
		}
		if surface == "" {
			continue
		}

		idx := strings.Index(text[cursor:], surface)
		if idx < 0 {
			// Normalization changed the surface; keep the pair at the
			// cursor without advancing past unmatched text.
			substrs = append(substrs, surface)
			offsets = append(offsets, cursor)
			continue
		}

		substrs = append(substrs, surface)
		offsets = append(offsets, cursor+idx)
		cursor += idx + len(surface)
	}
	return substrs, offsets
}

func (t *SentencePieceTokenizer) isMarker(tok int) bool {
	switch tok {
	case t.info.BeginningOfSentenceID, t.info.EndOfSentenceID, t.info.PadID:
		return true
	default:
		return false
	}
}
