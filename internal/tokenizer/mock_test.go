package tokenizer

import (
	"errors"
	"testing"
)

func TestMockEncode_Identity(t *testing.T) {
	tok := NewMockTokenizer()

	got, err := tok.Encode("7 12 0 255", false, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !equalInts(got, []int{7, 12, 0, 255}) {
		t.Errorf("Encode = %v, want [7 12 0 255]", got)
	}
}

func TestMockEncode_NeverInsertsMarkers(t *testing.T) {
	tok := NewMockTokenizer()

	// Documented deviation: the marker flags are ignored.
	got, err := tok.Encode("5 6", true, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !equalInts(got, []int{5, 6}) {
		t.Errorf("Encode with markers requested = %v, want [5 6]", got)
	}
}

func TestMockEncode_RejectsNonInteger(t *testing.T) {
	tok := NewMockTokenizer()

	_, err := tok.Encode("5 banana", false, false)
	if err == nil {
		t.Fatal("expected error for non-integer input")
	}
}

func TestMockEncode_RejectsOutOfRangeIDs(t *testing.T) {
	tok := NewMockTokenizer()

	for _, text := range []string{"999", "-1", "5 256"} {
		_, err := tok.Encode(text, false, false)
		if !errors.Is(err, ErrTokenOutOfRange) {
			t.Errorf("Encode(%q): got %v, want ErrTokenOutOfRange", text, err)
		}
	}
}

func TestMockRoundTrip(t *testing.T) {
	tok := NewMockTokenizer()

	ids, err := tok.Encode("1 2 3", false, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := tok.Decode(ids)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got != "1 2 3" {
		t.Errorf("Decode = %q, want %q", got, "1 2 3")
	}
}

func TestMockTokenOffsets_Empty(t *testing.T) {
	tok := NewMockTokenizer()

	substrs, offsets, err := tok.TokenOffsets("1 2 3", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("TokenOffsets: %v", err)
	}

	if len(substrs) != 0 || len(offsets) != 0 {
		t.Errorf("mock offsets should be empty, got %q %v", substrs, offsets)
	}
}
