// Package doctor provides environment preflight checks for tokenkit.
package doctor

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-tokenkit/internal/config"
	"github.com/example/go-tokenkit/internal/tokenizer"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// BuildFunc constructs the codec under test; injectable for unit tests.
type BuildFunc func() (tokenizer.Tokenizer, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// Scheme is the configured tokenization scheme, pre-normalization.
	Scheme string
	// ArtifactPath is the configured vocabulary artifact, may be empty.
	ArtifactPath string
	// Build constructs the codec. When nil, tokenizer.New is used with the
	// normalized scheme and artifact path.
	Build BuildFunc
	// SampleText is encoded and decoded as a self-test. Empty selects a
	// per-scheme default.
	SampleText string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark. Later checks are
// skipped once an earlier prerequisite fails.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- scheme name ------------------------------------------------------
	scheme, err := config.NormalizeScheme(cfg.Scheme)
	if err != nil {
		res.fail(fmt.Sprintf("scheme: %v", err))
		fmt.Fprintf(w, "%s scheme %q: %v\n", FailMark, cfg.Scheme, err)
		return res
	}
	fmt.Fprintf(w, "%s scheme: %s\n", PassMark, scheme)

	// ---- vocabulary artifact ----------------------------------------------
	switch {
	case cfg.ArtifactPath != "":
		if _, statErr := os.Stat(cfg.ArtifactPath); statErr != nil {
			res.fail(fmt.Sprintf("artifact %q: %v", cfg.ArtifactPath, statErr))
			fmt.Fprintf(w, "%s artifact %s: not readable (%v)\n", FailMark, cfg.ArtifactPath, statErr)
			return res
		}
		fmt.Fprintf(w, "%s artifact: %s\n", PassMark, cfg.ArtifactPath)
	case config.SchemeNeedsArtifact(scheme):
		res.fail(fmt.Sprintf("artifact: scheme %s requires an artifact path", scheme))
		fmt.Fprintf(w, "%s artifact: missing (scheme %s requires one)\n", FailMark, scheme)
		return res
	default:
		fmt.Fprintf(w, "%s artifact: not required\n", PassMark)
	}

	// ---- codec construction -----------------------------------------------
	build := cfg.Build
	if build == nil {
		build = func() (tokenizer.Tokenizer, error) {
			return tokenizer.New(scheme, cfg.ArtifactPath)
		}
	}

	tok, err := build()
	if err != nil {
		res.fail(fmt.Sprintf("construction: %v", err))
		fmt.Fprintf(w, "%s codec construction: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s codec construction: n_words=%d bos=%d eos=%d\n",
		PassMark, tok.VocabSize(), tok.BOSID(), tok.EOSID())

	// ---- encode/decode self-test ------------------------------------------
	sample := cfg.SampleText
	if sample == "" {
		sample = sampleFor(scheme)
	}

	if err := selfTest(tok, sample); err != nil {
		res.fail(fmt.Sprintf("self-test: %v", err))
		fmt.Fprintf(w, "%s self-test: %v\n", FailMark, err)
		return res
	}
	fmt.Fprintf(w, "%s self-test: encode/decode of %q ok\n", PassMark, sample)

	return res
}

// sampleFor picks self-test input the scheme can represent.
func sampleFor(scheme string) string {
	switch scheme {
	case config.SchemeMock:
		return "1 2 3"
	case config.SchemeFixedAlphabet:
		return "ARNDC"
	default:
		return "hello world"
	}
}

// selfTest round-trips sample through the codec and verifies the basic
// contract invariants: marker placement and token range.
func selfTest(tok tokenizer.Tokenizer, sample string) error {
	ids, err := tok.Encode(sample, true, true)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	for i, id := range ids {
		if id < 0 || id >= tok.VocabSize() {
			return fmt.Errorf("token[%d] = %d outside [0, %d)", i, id, tok.VocabSize())
		}
	}

	if _, err := tok.Decode(ids); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if _, _, err := tok.TokenOffsets(sample, nil); err != nil {
		return fmt.Errorf("offsets: %w", err)
	}

	return nil
}
