package config

import (
	"fmt"
	"strings"
)

const (
	SchemeBytes         = "bytes"
	SchemeMock          = "mock"
	SchemeSubwordPiece  = "subword-piece"
	SchemeBytePair      = "byte-pair"
	SchemeFixedAlphabet = "fixed-alphabet"
)

// NormalizeScheme lowercases, trims, and resolves shorthand scheme names.
// An empty value selects the byte-level scheme.
func NormalizeScheme(raw string) (string, error) {
	scheme := strings.ToLower(strings.TrimSpace(raw))
	if scheme == "" {
		scheme = SchemeBytes
	}
	switch scheme {
	case SchemeBytes, SchemeMock, SchemeSubwordPiece, SchemeBytePair, SchemeFixedAlphabet:
		return scheme, nil
	case "sp", "sentencepiece":
		return SchemeSubwordPiece, nil
	case "bpe", "tiktoken":
		return SchemeBytePair, nil
	case "aa", "alphabet":
		return SchemeFixedAlphabet, nil
	default:
		return "", fmt.Errorf(
			"invalid tokenizer scheme %q (expected %s|%s|%s|%s|%s)",
			raw,
			SchemeBytes,
			SchemeMock,
			SchemeSubwordPiece,
			SchemeBytePair,
			SchemeFixedAlphabet,
		)
	}
}

// SchemeNeedsArtifact reports whether scheme requires a vocabulary artifact
// on disk. The byte-pair scheme accepts an empty path (builtin rank table),
// so only subword-piece strictly needs one.
func SchemeNeedsArtifact(scheme string) bool {
	return scheme == SchemeSubwordPiece
}
