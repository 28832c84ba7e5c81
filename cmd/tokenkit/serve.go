package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-tokenkit/internal/server"
	"github.com/example/go-tokenkit/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tokenkit HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			primary, scheme, err := buildCodec(cfg)
			if err != nil {
				return err
			}

			// The configured codec plus the artifact-free ones, so clients
			// can select a scheme per request.
			codecs := map[string]tokenizer.Tokenizer{
				tokenizer.SchemeBytes:         tokenizer.NewByteTokenizer(),
				tokenizer.SchemeFixedAlphabet: tokenizer.NewAlphabetTokenizer(),
				tokenizer.SchemeMock:          tokenizer.NewMockTokenizer(),
			}
			codecs[scheme] = primary

			srv := server.New(cfg, codecs, scheme).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
