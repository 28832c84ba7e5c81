package tokenizer

import (
	"fmt"
	"strconv"
	"strings"
)

const mockVocabSize = 256

// MockTokenizer is an identity codec over already-tokenized input, used to
// exercise higher layers without a real vocabulary. Encode parses text as
// whitespace-separated integer IDs inside the vocabulary and returns them
// unchanged, so Decode(Encode(text)) round trips whenever Encode succeeds.
// It never inserts markers regardless of addBOS/addEOS, a documented
// deviation from the general contract that keeps test fixtures
// deterministic.
//
// TokenOffsets always returns empty results; the mapping is not meaningful
// for pre-tokenized input.
type MockTokenizer struct{}

// NewMockTokenizer returns the pass-through codec.
func NewMockTokenizer() *MockTokenizer { return &MockTokenizer{} }

func (t *MockTokenizer) VocabSize() int { return mockVocabSize }
func (t *MockTokenizer) BOSID() int     { return 0 }
func (t *MockTokenizer) EOSID() int     { return 1 }

// Encode parses whitespace-separated integers and rejects IDs outside the
// vocabulary. The addBOS/addEOS flags are ignored.
func (t *MockTokenizer) Encode(text string, _, _ bool) ([]int, error) {
	fields := strings.Fields(text)
	tokens := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("mock tokenizer input %q is not an integer id: %w", f, err)
		}
		tokens = append(tokens, id)
	}
	if err := checkRange(tokens, mockVocabSize); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Decode renders the IDs back as whitespace-separated integers.
func (t *MockTokenizer) Decode(tokens []int) (string, error) {
	if err := checkRange(tokens, mockVocabSize); err != nil {
		return "", err
	}

	fields := make([]string, len(tokens))
	for i, tok := range tokens {
		fields[i] = strconv.Itoa(tok)
	}
	return strings.Join(fields, " "), nil
}

// TokenOffsets reports no alignment pairs.
func (t *MockTokenizer) TokenOffsets(_ string, tokens []int) ([]string, []int, error) {
	if err := checkRange(tokens, mockVocabSize); err != nil {
		return nil, nil, err
	}
	return []string{}, []int{}, nil
}
