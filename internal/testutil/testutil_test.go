package testutil

import (
	"bufio"
	"encoding/base64"
	"os"
	"strings"
	"testing"
)

func TestWriteRankFile_ParsesBackToRanks(t *testing.T) {
	path := WriteRankFile(t, t.TempDir())

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open rank file: %v", err)
	}
	defer func() { _ = f.Close() }()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			t.Fatalf("malformed line %q", sc.Text())
		}

		if _, err := base64.StdEncoding.DecodeString(fields[0]); err != nil {
			t.Errorf("line %q: piece is not base64: %v", sc.Text(), err)
		}

		lines++
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	// 256 single-byte ranks plus three merges.
	if lines != 259 {
		t.Errorf("rank file has %d lines, want 259", lines)
	}
}
