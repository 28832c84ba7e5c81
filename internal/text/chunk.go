// Package text provides whitespace-aware chunking for tokenizer backends
// with a bounded input size.
package text

import "unicode/utf8"

// ChunkByWhitespace splits text into chunks of at most maxBytes bytes,
// breaking only at the start of a whitespace run. A regex pre-tokenizer
// attaches leading whitespace to the following word, so encoding the chunks
// separately and concatenating the results equals encoding the whole text.
// If maxBytes is 0 or the text fits, no splitting is performed.
//
// Text with a run of more than maxBytes non-whitespace bytes is hard-cut at
// a rune boundary; such a cut can fragment subwords and is unavoidable.
func ChunkByWhitespace(text string, maxBytes int) []string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []string{text}
	}

	var chunks []string
	rest := text
	for len(rest) > maxBytes {
		cut := lastRunStart(rest, maxBytes)
		if cut == 0 {
			cut = hardCut(rest, maxBytes)
		}
		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// lastRunStart returns the largest i <= limit where s[i] begins a
// whitespace run, or 0 when no such boundary exists.
func lastRunStart(s string, limit int) int {
	for i := limit; i > 0; i-- {
		if isSpaceByte(s[i]) && !isSpaceByte(s[i-1]) {
			return i
		}
	}
	return 0
}

// hardCut returns the largest rune-aligned index <= limit, falling back to
// limit itself when the text starts mid-rune.
func hardCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return cut
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
