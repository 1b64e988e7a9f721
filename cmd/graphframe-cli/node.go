package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/sdmetamodel"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage Stock/Flow/Auxiliary/Cloud nodes",
	}
	cmd.AddCommand(newNodeCreateCmd())
	return cmd
}

func newNodeCreateCmd() *cobra.Command {
	var formula string
	var initial float64
	var hasInitial bool
	var x, y float64

	cmd := &cobra.Command{
		Use:   "create <type> [name]",
		Short: "Create a Stock, Flow, Auxiliary, or Cloud node and accept it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeName := args[0]
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			d, err := loadState()
			if err != nil {
				return err
			}
			typ, ok := d.Metamodel().LookupType(typeName)
			if !ok {
				return fmt.Errorf("graphframe-cli: unknown node type %q", typeName)
			}

			attrs := map[string]variant.Variant{}
			if name != "" {
				attrs["name"] = variant.NewString(name)
			}
			if formula != "" {
				attrs["formula"] = variant.NewString(formula)
			}
			if hasInitial {
				if typeName != sdmetamodel.TypeStock {
					return fmt.Errorf("graphframe-cli: --initial only applies to %s nodes", sdmetamodel.TypeStock)
				}
				attrs["initial_value"] = variant.NewDouble(initial)
			}
			attrs["position"] = variant.NewPoint(x, y)

			tf := currentTransient(d)
			s, err := tf.Create(typ, snapshot.NodeStructure(), frame.CreateOptions{Attributes: attrs})
			if err != nil {
				_ = d.Discard(tf)
				return fmt.Errorf("graphframe-cli: create: %w", err)
			}
			if _, err := d.Accept(tf, true); err != nil {
				return fmt.Errorf("graphframe-cli: accept: %w", err)
			}
			if err := saveState(d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s #%d\n", typeName, s.ObjectID())
			return nil
		},
	}
	cmd.Flags().StringVar(&formula, "formula", "", "opaque formula text (not evaluated by the core)")
	cmd.Flags().Float64Var(&initial, "initial", 0, "initial value (Stock only)")
	cmd.Flags().Float64Var(&x, "x", 0, "diagram X position")
	cmd.Flags().Float64Var(&y, "y", 0, "diagram Y position")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasInitial = cmd.Flags().Changed("initial")
	}
	return cmd
}
