package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Byte-level vocabulary layout: one token per byte value, then the markers.
const (
	byteBOS       = 256
	byteEOS       = 257
	byteVocabSize = 258
)

// ByteTokenizer maps each UTF-8 byte of the input to its own token.
// It is lossless and total: every byte sequence is encodable, and
// Decode(Encode(text)) == text for all text.
//
// Offsets returned by TokenOffsets are byte offsets into the source text.
type ByteTokenizer struct{}

// NewByteTokenizer returns the byte-level codec. It has no external backend.
func NewByteTokenizer() *ByteTokenizer { return &ByteTokenizer{} }

func (t *ByteTokenizer) VocabSize() int { return byteVocabSize }
func (t *ByteTokenizer) BOSID() int     { return byteBOS }
func (t *ByteTokenizer) EOSID() int     { return byteEOS }

// Encode emits one token per byte of text.
func (t *ByteTokenizer) Encode(text string, addBOS, addEOS bool) ([]int, error) {
	tokens := make([]int, 0, len(text)+2)
	if addBOS {
		tokens = append(tokens, byteBOS)
	}
	for i := 0; i < len(text); i++ {
		tokens = append(tokens, int(text[i]))
	}
	if addEOS {
		tokens = append(tokens, byteEOS)
	}
	return tokens, nil
}

// Decode drops marker tokens, reassembles the remaining bytes, and renders
// any byte that is not part of a valid UTF-8 sequence as a visible \xNN
// escape. It never fails for tokens inside [0, 258).
func (t *ByteTokenizer) Decode(tokens []int) (string, error) {
	if err := checkRange(tokens, byteVocabSize); err != nil {
		return "", err
	}

	bs := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		if tok < 256 {
			bs = append(bs, byte(tok))
		}
	}
	return escapeInvalidUTF8(bs), nil
}

// TokenOffsets walks the content tokens as raw bytes and reconstructs
// character boundaries: a token that begins a UTF-8 character yields one
// alignment pair at the current byte cursor, and the cursor advances by the
// character's full encoded width. Continuation bytes and truncated lead
// bytes yield no pair but still advance the cursor by one byte.
func (t *ByteTokenizer) TokenOffsets(text string, tokens []int) ([]string, []int, error) {
	if tokens == nil {
		tokens, _ = t.Encode(text, false, false)
	}
	if err := checkRange(tokens, byteVocabSize); err != nil {
		return nil, nil, err
	}

	bs := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		if tok < 256 {
			bs = append(bs, byte(tok))
		}
	}

	var (
		substrs []string
		offsets []int
		cursor  int
	)
	for i := 0; i < len(bs); {
		b := bs[i]
		switch {
		case b < 0x80:
			substrs = append(substrs, string(rune(b)))
			offsets = append(offsets, cursor)
			cursor++
			i++
		case isContinuation(b):
			// Stray continuation byte: part of the previous character,
			// no pair of its own.
			cursor++
			i++
		default:
			w := leadByteWidth(b)
			if w > 0 && i+w <= len(bs) && utf8.Valid(bs[i:i+w]) {
				substrs = append(substrs, string(bs[i:i+w]))
				offsets = append(offsets, cursor)
				cursor += w
				i += w
			} else {
				// Truncated or malformed sequence decodes to nothing.
				cursor++
				i++
			}
		}
	}
	return substrs, offsets, nil
}

// leadByteWidth returns the encoded length declared by a UTF-8 lead byte,
// or 0 if b cannot start a character.
func leadByteWidth(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// escapeInvalidUTF8 decodes bs as UTF-8, substituting each offending byte
// with a \xNN escape instead of the replacement rune.
func escapeInvalidUTF8(bs []byte) string {
	if utf8.Valid(bs) {
		return string(bs)
	}

	var sb strings.Builder
	sb.Grow(len(bs))
	for i := 0; i < len(bs); {
		r, size := utf8.DecodeRune(bs[i:])
		if r == utf8.RuneError && size <= 1 {
			fmt.Fprintf(&sb, `\x%02x`, bs[i])
			i++
			continue
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}
