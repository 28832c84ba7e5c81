package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// offsetUnitFor mirrors the per-scheme unit table served by /v1/info.
func offsetUnitFor(scheme string) string {
	switch scheme {
	case "bytes", "subword-piece":
		return "byte"
	case "byte-pair":
		return "rune"
	case "fixed-alphabet":
		return "ordinal"
	default:
		return "none"
	}
}

func newInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the configured codec's vocabulary metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, scheme, err := buildCodec(cfg)
			if err != nil {
				return err
			}

			out := map[string]any{
				"scheme":      scheme,
				"n_words":     tok.VocabSize(),
				"bos_id":      tok.BOSID(),
				"eos_id":      tok.EOSID(),
				"offset_unit": offsetUnitFor(scheme),
			}
			if p, ok := tok.(interface{ PadID() int }); ok {
				out["pad_id"] = p.PadID()
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scheme:      %s\n", scheme)
			fmt.Fprintf(cmd.OutOrStdout(), "n_words:     %d\n", tok.VocabSize())
			fmt.Fprintf(cmd.OutOrStdout(), "bos_id:      %d\n", tok.BOSID())
			fmt.Fprintf(cmd.OutOrStdout(), "eos_id:      %d\n", tok.EOSID())
			if pad, ok := out["pad_id"]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "pad_id:      %d\n", pad)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "offset_unit: %s\n", offsetUnitFor(scheme))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of key: value lines")

	return cmd
}
