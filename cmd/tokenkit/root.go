package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-tokenkit/internal/config"
	"github.com/example/go-tokenkit/internal/server"
	"github.com/example/go-tokenkit/internal/tokenizer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "tokenkit",
		Short: "Tokenize text, decode token IDs, and align tokens to source text",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newOffsetsCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Tokenizer.Scheme == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// buildCodec constructs the codec selected by cfg.
func buildCodec(cfg config.Config) (tokenizer.Tokenizer, string, error) {
	scheme, err := config.NormalizeScheme(cfg.Tokenizer.Scheme)
	if err != nil {
		return nil, "", err
	}

	tok, err := tokenizer.New(scheme, cfg.Tokenizer.ArtifactPath)
	if err != nil {
		return nil, "", err
	}

	return tok, scheme, nil
}
