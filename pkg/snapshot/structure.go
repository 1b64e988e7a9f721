package snapshot

import (
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/structkind"
)

// ObjectID identifies an object across every version (snapshot) of it.
// SnapshotID identifies exactly one version. Both are drawn from the same
// identity.ID space; §3 is explicit that the three ID kinds are distinct by
// usage, not by value, so these are plain aliases rather than wrapped types.
type ObjectID = identity.ID
type SnapshotID = identity.ID

// Structure is the tagged shape of a snapshot: unstructured, node, or edge
// with two endpoint ObjectIDs. Origin/Target are only meaningful when
// Kind == structkind.Edge.
type Structure struct {
	Kind   structkind.Kind
	Origin ObjectID
	Target ObjectID
}

func Unstructured() Structure { return Structure{Kind: structkind.Unstructured} }
func NodeStructure() Structure { return Structure{Kind: structkind.Node} }
func EdgeStructure(origin, target ObjectID) Structure {
	return Structure{Kind: structkind.Edge, Origin: origin, Target: target}
}

// Dependencies returns the structural dependencies this structure alone
// contributes (edge endpoints); a snapshot's full structuralDependencies
// additionally includes its parent, see Snapshot.StructuralDependencies.
func (s Structure) Dependencies() []ObjectID {
	if s.Kind == structkind.Edge {
		return []ObjectID{s.Origin, s.Target}
	}
	return nil
}
