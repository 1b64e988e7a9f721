package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <ref>",
		Short: "Remove an object and everything structurally dependent on it (cascading)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadState()
			if err != nil {
				return err
			}
			tf := currentTransient(d)
			id, err := resolveRef(tf, args[0])
			if err != nil {
				_ = d.Discard(tf)
				return err
			}
			removed, err := tf.RemoveCascading(id)
			if err != nil {
				_ = d.Discard(tf)
				return fmt.Errorf("graphframe-cli: remove: %w", err)
			}
			if _, err := d.Accept(tf, true); err != nil {
				return fmt.Errorf("graphframe-cli: accept: %w", err)
			}
			if err := saveState(d); err != nil {
				return err
			}
			all := removed.All()
			ids := make([]int, 0, len(all))
			for oid := range all {
				ids = append(ids, int(oid))
			}
			sort.Ints(ids)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d object(s): %v\n", len(ids), ids)
			return nil
		},
	}
	return cmd
}
