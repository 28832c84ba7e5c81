package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var text string
	var bos bool
	var eos bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Tokenize text into integer token IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, scheme, err := buildCodec(cfg)
			if err != nil {
				return err
			}

			input, err := readTextInput(text, os.Stdin)
			if err != nil {
				return err
			}

			tokens, err := tok.Encode(input, bos, eos)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"scheme": scheme,
					"tokens": tokens,
					"count":  len(tokens),
				})
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatTokens(tokens))
			return err
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode (if empty, read from stdin)")
	cmd.Flags().BoolVar(&bos, "bos", false, "Prefix the beginning-of-sequence marker")
	cmd.Flags().BoolVar(&eos, "eos", false, "Suffix the end-of-sequence marker")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of space-separated IDs")

	return cmd
}

// readTextInput returns text, or the full stdin contents when text is empty.
func readTextInput(text string, stdin io.Reader) (string, error) {
	if text != "" {
		return text, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return strings.TrimRight(string(data), "\n"), nil
}

func formatTokens(tokens []int) string {
	fields := make([]string, len(tokens))
	for i, tok := range tokens {
		fields[i] = strconv.Itoa(tok)
	}
	return strings.Join(fields, " ")
}
