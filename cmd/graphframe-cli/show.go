package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/identity"
)

func newShowCmd() *cobra.Command {
	var frameArg string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List every object in a stable frame (the current frame by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadState()
			if err != nil {
				return err
			}
			id, err := resolveFrameArg(d, frameArg)
			if err != nil {
				return err
			}
			f, ok := d.StableFrame(id)
			if !ok {
				return fmt.Errorf("graphframe-cli: no stable frame #%d", id)
			}

			snaps := f.Snapshots()
			sort.Slice(snaps, func(i, j int) bool { return snaps[i].ObjectID() < snaps[j].ObjectID() })
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frame #%d: %d object(s)\n", id, len(snaps))
			for _, s := range snaps {
				fmt.Fprintf(out, "  #%d %s %s", s.ObjectID(), s.TypeName(), s.Structure())
				if origin, ok := s.Origin(); ok {
					target, _ := s.Target()
					fmt.Fprintf(out, "(#%d -> #%d)", origin, target)
				}
				if name, ok := s.Attribute("name"); ok {
					if sv, isStr := name.String0(); isStr {
						fmt.Fprintf(out, " %q", sv)
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&frameArg, "frame", "", "stable frame id to show (defaults to the current frame)")
	return cmd
}

func resolveFrameArg(d *design.Design, frameArg string) (identity.ID, error) {
	if frameArg == "" {
		id, ok := d.CurrentFrameID()
		if !ok {
			return 0, fmt.Errorf("graphframe-cli: design has no current frame yet")
		}
		return id, nil
	}
	return parseFrameID(frameArg)
}
