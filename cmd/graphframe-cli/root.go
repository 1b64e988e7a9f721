package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/extractor"
	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/loader"
	"github.com/openpoiesis/graphframe/pkg/rawdesign"
	"github.com/openpoiesis/graphframe/pkg/sdmetamodel"
)

var statePath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphframe-cli",
		Short:         "Drive a Stock-and-Flow graphframe design from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&statePath, "state", "design.json", "path to the design's persisted RawDesign JSON")

	root.AddCommand(
		newInitCmd(),
		newNodeCmd(),
		newEdgeCmd(),
		newRemoveCmd(),
		newUndoCmd(),
		newRedoCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newExportCmd(),
	)
	return root
}

// loadState reads statePath, if present, and materializes it into a live
// Design bound to the Stock-and-Flow metamodel; an absent file yields a
// fresh empty Design (§3: "created empty").
func loadState() (*design.Design, error) {
	data, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return design.New(sdmetamodel.New()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("graphframe-cli: read state: %w", err)
	}
	var raw rawdesign.RawDesign
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("graphframe-cli: decode state: %w", err)
	}
	d, err := loader.LoadDesign(sdmetamodel.New(), raw, loader.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("graphframe-cli: load state: %w", err)
	}
	return d, nil
}

// saveState extracts d's full current state and writes it back to
// statePath, the same round trip pkg/loader and pkg/extractor guarantee
// losslessly (§4.6, §8 "loader round-trip").
func saveState(d *design.Design) error {
	raw := extractor.Extract(d)
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("graphframe-cli: encode state: %w", err)
	}
	if err := os.WriteFile(statePath, data, 0o644); err != nil {
		return fmt.Errorf("graphframe-cli: write state: %w", err)
	}
	return nil
}

// currentTransient derives an open TransientFrame from d's current stable
// frame (or an empty one if the design has no history yet), the standard
// "derive, mutate, accept" entry point every mutating subcommand uses.
func currentTransient(d *design.Design) *frame.TransientFrame {
	var deriving *frame.StableFrame
	if cur, ok := d.CurrentFrameID(); ok {
		deriving, _ = d.StableFrame(cur)
	}
	return d.CreateFrame(deriving)
}

// resolveRef resolves a command-line object reference: either a literal
// "#<objectID>" or a lookup by the object's "name" attribute (frame.
// ObjectNamed), for types (Stock, Flow, Auxiliary) that carry one.
func resolveRef(tf *frame.TransientFrame, ref string) (identity.ID, error) {
	if strings.HasPrefix(ref, "#") {
		n, err := strconv.ParseUint(ref[1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("graphframe-cli: invalid object reference %q: %w", ref, err)
		}
		id := identity.ID(n)
		if !tf.Contains(id) {
			return 0, fmt.Errorf("graphframe-cli: no object %s in the current frame", ref)
		}
		return id, nil
	}
	s, ok := tf.ObjectNamed(ref)
	if !ok {
		return 0, fmt.Errorf("graphframe-cli: no object named %q in the current frame", ref)
	}
	return s.ObjectID(), nil
}
