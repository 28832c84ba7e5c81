package server

import (
	"context"
	"testing"
	"time"

	"github.com/example/go-tokenkit/internal/config"
	"github.com/example/go-tokenkit/internal/tokenizer"
)

func TestServerStart_RejectsUnknownDefaultScheme(t *testing.T) {
	srv := New(config.DefaultConfig(), map[string]tokenizer.Tokenizer{}, "bytes")

	if err := srv.Start(context.Background()); err == nil {
		t.Fatal("expected error when the default scheme has no codec")
	}
}

func TestServerStart_GracefulShutdown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.ListenAddr = "127.0.0.1:0"

	srv := New(cfg, map[string]tokenizer.Tokenizer{
		tokenizer.SchemeBytes: tokenizer.NewByteTokenizer(),
	}, tokenizer.SchemeBytes).WithShutdownTimeout(time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	// Give the listener a moment to come up, then trigger shutdown.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start returned %v on graceful shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down within 5s")
	}
}
