package main

import (
	"fmt"
	"os"

	"github.com/example/go-tokenkit/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run tokenizer configuration and artifact checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result := doctor.Run(doctor.Config{
				Scheme:       cfg.Tokenizer.Scheme,
				ArtifactPath: cfg.Tokenizer.ArtifactPath,
			}, os.Stdout)

			if result.Failed() {
				return fmt.Errorf("doctor found %d problem(s)", len(result.Failures()))
			}

			fmt.Fprintln(os.Stdout, "all checks passed")
			return nil
		},
	}

	return cmd
}
