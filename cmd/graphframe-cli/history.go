package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/identity"
)

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <frameID>",
		Short: "Move the current frame back to frameID, which must be in the undo list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFrameID(args[0])
			if err != nil {
				return err
			}
			d, err := loadState()
			if err != nil {
				return err
			}
			if err := d.Undo(id); err != nil {
				return fmt.Errorf("graphframe-cli: undo: %w", err)
			}
			if err := saveState(d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current frame is now #%d\n", id)
			return nil
		},
	}
}

func newRedoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo <frameID>",
		Short: "Move the current frame forward to frameID, which must be in the redo list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFrameID(args[0])
			if err != nil {
				return err
			}
			d, err := loadState()
			if err != nil {
				return err
			}
			if err := d.Redo(id); err != nil {
				return fmt.Errorf("graphframe-cli: redo: %w", err)
			}
			if err := saveState(d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current frame is now #%d\n", id)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the design's undo/current/redo history in chronological order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadState()
			if err != nil {
				return err
			}
			cur, hasCur := d.CurrentFrameID()
			out := cmd.OutOrStdout()
			for _, id := range d.UndoList() {
				fmt.Fprintf(out, "  %d\n", id)
			}
			if hasCur {
				fmt.Fprintf(out, "* %d (current)\n", cur)
			}
			for _, id := range d.RedoList() {
				fmt.Fprintf(out, "  %d (redo)\n", id)
			}
			return nil
		},
	}
}

func parseFrameID(s string) (identity.ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("graphframe-cli: invalid frame id %q: %w", s, err)
	}
	return identity.ID(n), nil
}
