// Command graphframe-cli is a thin, scriptable driver over pkg/design: it
// exercises create/mutate/accept/undo/redo/load/export end to end against a
// Stock-and-Flow metamodel (pkg/sdmetamodel), persisting state between
// invocations as a RawDesign JSON document. Nothing in the core packages
// depends on this command; it plays the "file I/O, CLI" role §1 of the
// specification places outside the core.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
