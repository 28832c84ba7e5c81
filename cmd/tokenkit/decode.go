package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [id...]",
		Short: "Convert token IDs back to text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, _, err := buildCodec(cfg)
			if err != nil {
				return err
			}

			tokens, err := readTokenInput(args, os.Stdin)
			if err != nil {
				return err
			}

			text, err := tok.Decode(tokens)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	return cmd
}

// readTokenInput parses token IDs from args, falling back to stdin when no
// args are given.
func readTokenInput(args []string, stdin io.Reader) ([]int, error) {
	fields := args
	if len(fields) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		fields = strings.Fields(string(data))
	}

	tokens := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("token id %q is not an integer: %w", f, err)
		}
		tokens = append(tokens, id)
	}

	return tokens, nil
}
