package tokenizer

// Fixed-alphabet vocabulary layout: the four markers, then one ID per
// letter of the twenty-symbol alphabet.
const (
	alphabetLetters = "ARNDCEQGHILKMFPSTWYV"

	alphabetBOS  = 0
	alphabetEOS  = 1
	alphabetUNK  = 2
	alphabetPAD  = 3
	alphabetBase = 4
)

// Shared read-only letter table; every AlphabetTokenizer instance uses it.
var alphabetIDs = func() map[rune]int {
	m := make(map[rune]int, len(alphabetLetters))
	for i, r := range alphabetLetters {
		m[r] = alphabetBase + i
	}
	return m
}()

// AlphabetTokenizer maps each character of a closed twenty-letter alphabet
// to its own token. Characters outside the alphabet encode to the unknown
// marker and decode to nothing, so round trips are lossy by design for
// out-of-alphabet input.
//
// Offsets returned by TokenOffsets are ordinal positions among the content
// tokens, not positions in the original text: the k-th content token is
// paired with offset k.
type AlphabetTokenizer struct{}

// NewAlphabetTokenizer returns the fixed-alphabet codec. It is self
// contained and serves as the correctness reference for alignment tests.
func NewAlphabetTokenizer() *AlphabetTokenizer { return &AlphabetTokenizer{} }

func (t *AlphabetTokenizer) VocabSize() int { return alphabetBase + len(alphabetLetters) }
func (t *AlphabetTokenizer) BOSID() int     { return alphabetBOS }
func (t *AlphabetTokenizer) EOSID() int     { return alphabetEOS }

// PadID reports the padding marker.
func (t *AlphabetTokenizer) PadID() int { return alphabetPAD }

// UnknownID reports the unknown marker.
func (t *AlphabetTokenizer) UnknownID() int { return alphabetUNK }

// Encode maps every character individually; unknown characters become the
// unknown marker, never an error.
func (t *AlphabetTokenizer) Encode(text string, addBOS, addEOS bool) ([]int, error) {
	tokens := make([]int, 0, len(text)+2)
	if addBOS {
		tokens = append(tokens, alphabetBOS)
	}
	for _, r := range text {
		id, ok := alphabetIDs[r]
		if !ok {
			id = alphabetUNK
		}
		tokens = append(tokens, id)
	}
	if addEOS {
		tokens = append(tokens, alphabetEOS)
	}
	return tokens, nil
}

// Decode concatenates the letters for content tokens. Marker tokens,
// including unknown, render nothing.
func (t *AlphabetTokenizer) Decode(tokens []int) (string, error) {
	if err := checkRange(tokens, t.VocabSize()); err != nil {
		return "", err
	}

	out := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		if tok >= alphabetBase {
			out = append(out, alphabetLetters[tok-alphabetBase])
		}
	}
	return string(out), nil
}

// TokenOffsets pairs the k-th content token with offset k, skipping marker
// tokens on both sides.
func (t *AlphabetTokenizer) TokenOffsets(text string, tokens []int) ([]string, []int, error) {
	if tokens == nil {
		tokens, _ = t.Encode(text, false, false)
	}
	if err := checkRange(tokens, t.VocabSize()); err != nil {
		return nil, nil, err
	}

	var (
		substrs []string
		offsets []int
		idx     int
	)
	for _, tok := range tokens {
		if tok < alphabetBase {
			continue
		}
		substrs = append(substrs, string(alphabetLetters[tok-alphabetBase]))
		offsets = append(offsets, idx)
		idx++
	}
	return substrs, offsets, nil
}
