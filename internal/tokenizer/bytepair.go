package tokenizer

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"

	textpkg "github.com/example/go-tokenkit/internal/text"
)

const (
	// Rank count of the builtin cl100k_base table used when no artifact
	// path is given.
	builtinRankCount = 100256

	// Marker IDs live in a reserved block of this size above the rank
	// space, so n_words = ranks + reserved.
	reservedMarkerSlots = 256

	// The engine's pre-tokenizer handles inputs up to 400k characters;
	// stay well under that and only split at whitespace-run boundaries so
	// chunked and unchunked encodes agree.
	maxEncodeChunk = 100_000

	// Pre-tokenizer pattern of the builtin cl100k_base table, reused for
	// custom rank files so splitting does not depend on the artifact.
	bytePairPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
)

// The builtin path goes through the engine's process-global loader hook
// and encoding cache, so it is serialized. Custom artifacts never touch
// that path.
var bpeConstructMu sync.Mutex

// BytePairTokenizer wraps a byte-pair-merge engine with a regex
// pre-tokenizer operating on raw bytes. The codec owns the marker IDs
// (placed in a reserved block above the merge-rank space), chunks oversized
// inputs at whitespace boundaries, and reconstructs token alignment from
// each piece's raw bytes, since pieces need not be valid UTF-8 in
// isolation.
//
// Offsets returned by TokenOffsets are character (rune) indexes into the
// source text.
type BytePairTokenizer struct {
	enc   *tiktoken.Tiktoken
	ranks int
}

// NewBytePairTokenizer builds the codec from the rank table at path, or
// from the builtin cl100k_base table when path is empty. A missing or
// malformed rank file fails with ErrArtifactLoad.
//
// Custom rank files build their engine per instance: the global
// GetEncoding path memoizes the first table it builds under the encoding
// name, which would hand a second codec the first codec's merge rules.
func NewBytePairTokenizer(path string) (*BytePairTokenizer, error) {
	if path == "" {
		bpeConstructMu.Lock()
		defer bpeConstructMu.Unlock()

		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return nil, fmt.Errorf("%w: build byte-pair encoding: %v", ErrArtifactLoad, err)
		}
		return &BytePairTokenizer{enc: enc, ranks: builtinRankCount}, nil
	}

	ranks, err := loadRankFile(path)
	if err != nil {
		return nil, err
	}

	encoding := &tiktoken.Encoding{
		Name:           path,
		PatStr:         bytePairPattern,
		MergeableRanks: ranks,
		SpecialTokens:  map[string]int{},
	}
	core, err := tiktoken.NewCoreBPE(encoding.MergeableRanks, encoding.SpecialTokens, encoding.PatStr)
	if err != nil {
		return nil, fmt.Errorf("%w: build byte-pair encoding from %s: %v", ErrArtifactLoad, path, err)
	}

	return &BytePairTokenizer{
		enc:   tiktoken.NewTiktoken(core, encoding, map[string]any{}),
		ranks: len(ranks),
	}, nil
}

func (t *BytePairTokenizer) VocabSize() int { return t.ranks + reservedMarkerSlots }
func (t *BytePairTokenizer) BOSID() int     { return t.ranks }
func (t *BytePairTokenizer) EOSID() int     { return t.ranks + 1 }

// Encode chunks text at whitespace-run boundaries, delegates each chunk to
// the engine, and concatenates the results in order.
func (t *BytePairTokenizer) Encode(text string, addBOS, addEOS bool) ([]int, error) {
	var tokens []int
	if addBOS {
		tokens = append(tokens, t.BOSID())
	}
	for _, chunk := range textpkg.ChunkByWhitespace(text, maxEncodeChunk) {
		tokens = append(tokens, t.enc.EncodeOrdinary(chunk)...)
	}
	if addEOS {
		tokens = append(tokens, t.EOSID())
	}
	return tokens, nil
}

// Decode drops tokens in the reserved marker block and reassembles the
// remaining pieces.
func (t *BytePairTokenizer) Decode(tokens []int) (string, error) {
	if err := checkRange(tokens, t.VocabSize()); err != nil {
		return "", err
	}

	content := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if tok >= t.ranks {
			continue
		}
		content = append(content, tok)
	}
	return t.enc.Decode(content), nil
}

// TokenOffsets reconstructs alignment from each piece's raw bytes: a piece
// whose first byte is a UTF-8 continuation byte starts mid-character, so
// its offset backs off one position onto the character it continues; the
// running character cursor then advances by the piece's count of
// non-continuation bytes. Substrings are sliced from the source text
// between consecutive offsets rather than decoded from piece bytes, since
// a piece on its own may end inside a character.
func (t *BytePairTokenizer) TokenOffsets(text string, tokens []int) ([]string, []int, error) {
	if tokens == nil {
		var err error
		tokens, err = t.Encode(text, false, false)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := checkRange(tokens, t.VocabSize()); err != nil {
		return nil, nil, err
	}

	var (
		offsets []int
		textLen int
	)
	for _, tok := range tokens {
		if tok >= t.ranks {
			// Markers carry no surface text.
			continue
		}
		piece := []byte(t.enc.Decode([]int{tok}))
		if len(piece) == 0 {
			continue
		}

		off := textLen
		if isContinuation(piece[0]) && off > 0 {
			off--
		}
		offsets = append(offsets, off)

		for _, b := range piece {
			if !isContinuation(b) {
				textLen++
			}
		}
	}

	runes := []rune(text)
	substrs := make([]string, len(offsets))
	for i, off := range offsets {
		end := len(runes)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		substrs[i] = string(runes[clamp(off, len(runes)):clamp(end, len(runes))])
	}
	return substrs, offsets, nil
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// loadRankFile parses a tiktoken-format rank file: one
// "base64(piece) rank" pair per line.
func loadRankFile(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	defer func() { _ = f.Close() }()

	ranks := make(map[string]int)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: malformed rank line %q in %s", ErrArtifactLoad, line, path)
		}

		piece, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: rank piece %q in %s: %v", ErrArtifactLoad, fields[0], path, err)
		}

		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: rank value %q in %s: %v", ErrArtifactLoad, fields[1], path, err)
		}

		ranks[string(piece)] = rank
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrArtifactLoad, path, err)
	}
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: %s contains no ranks", ErrArtifactLoad, path)
	}

	return ranks, nil
}
