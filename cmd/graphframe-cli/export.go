package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/extractor"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Extract the full design (§4.6) and write it as RawDesign JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadState()
			if err != nil {
				return err
			}
			raw := extractor.Extract(d)
			data, err := json.MarshalIndent(raw, "", "  ")
			if err != nil {
				return fmt.Errorf("graphframe-cli: encode export: %w", err)
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the export to this path instead of stdout")
	return cmd
}
