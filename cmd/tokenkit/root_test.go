package main

import (
	"testing"

	"github.com/example/go-tokenkit/internal/config"
)

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"encode", "decode", "offsets", "info", "serve", "doctor"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlag(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag to be registered")
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWhenNotInitialized(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	// Zero-value config has an empty scheme → requireConfig returns error.
	activeCfg = config.Config{}

	_, err := requireConfig()
	if err == nil {
		t.Fatal("expected error when config is not loaded")
	}
}

func TestRequireConfig_SucceedsWhenLoaded(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.Config{
		Tokenizer: config.TokenizerConfig{Scheme: config.SchemeBytes},
	}

	got, err := requireConfig()
	if err != nil {
		t.Fatalf("requireConfig returned unexpected error: %v", err)
	}

	if got.Tokenizer.Scheme != config.SchemeBytes {
		t.Errorf("unexpected Scheme: %q", got.Tokenizer.Scheme)
	}
}

func TestBuildCodec_NormalizesAliases(t *testing.T) {
	cfg := config.Config{
		Tokenizer: config.TokenizerConfig{Scheme: "aa"},
	}

	tok, scheme, err := buildCodec(cfg)
	if err != nil {
		t.Fatalf("buildCodec: %v", err)
	}

	if scheme != config.SchemeFixedAlphabet {
		t.Errorf("scheme = %q, want %q", scheme, config.SchemeFixedAlphabet)
	}

	if tok.VocabSize() != 24 {
		t.Errorf("VocabSize = %d, want 24", tok.VocabSize())
	}
}

func TestBuildCodec_RejectsUnknownScheme(t *testing.T) {
	cfg := config.Config{
		Tokenizer: config.TokenizerConfig{Scheme: "word-level"},
	}

	if _, _, err := buildCodec(cfg); err == nil {
		t.Fatal("expected error for unknown scheme")
	}
}
