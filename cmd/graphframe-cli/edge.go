package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
)

func newEdgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Manage Link/FlowEdge edges",
	}
	cmd.AddCommand(newEdgeCreateCmd())
	return cmd
}

func newEdgeCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <type> <origin> <target>",
		Short: "Create a Link or FlowEdge between two existing nodes and accept it",
		Long: "Create a Link or FlowEdge between two existing nodes and accept it.\n" +
			"origin and target are node names, or \"#<objectID>\" for unnamed nodes such as Cloud.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeName, originRef, targetRef := args[0], args[1], args[2]

			d, err := loadState()
			if err != nil {
				return err
			}
			typ, ok := d.Metamodel().LookupType(typeName)
			if !ok {
				return fmt.Errorf("graphframe-cli: unknown edge type %q", typeName)
			}

			tf := currentTransient(d)
			origin, err := resolveRef(tf, originRef)
			if err != nil {
				_ = d.Discard(tf)
				return err
			}
			target, err := resolveRef(tf, targetRef)
			if err != nil {
				_ = d.Discard(tf)
				return err
			}

			s, err := tf.Create(typ, snapshot.EdgeStructure(origin, target), frame.CreateOptions{})
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
			fmt.Fprintf(cmd.OutOrStdout(), "created %s #%d (%s -> %s)\n", typeName, s.ObjectID(), originRef, targetRef)
			return nil
		},
	}
	return cmd
}
