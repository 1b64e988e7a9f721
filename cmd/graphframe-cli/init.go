package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/sdmetamodel"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fresh, empty design state file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(statePath); err == nil {
					return fmt.Errorf("graphframe-cli: %s already exists (use --force to overwrite)", statePath)
				}
			}
			d := design.New(sdmetamodel.New())
			if err := saveState(d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty design at %s\n", statePath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing state file")
	return cmd
}
