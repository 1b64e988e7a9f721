package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func nodeObjectType() *metamodel.ObjectType {
	return metamodel.NewObjectType("Node", structkind.Node, []metamodel.AttributeDescriptor{
		{Name: "label", Type: variant.Atom(variant.KindString)},
	})
}

func edgeObjectType() *metamodel.ObjectType {
	return metamodel.NewObjectType("Edge", structkind.Edge, nil)
}

// TestTwoNodesPlusEdge implements spec scenario 1: create a transient frame,
// create two nodes and an edge between them, accept.
func TestTwoNodesPlusEdge(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)

	a, err := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	require.NoError(t, err)
	b, err := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	require.NoError(t, err)
	e, err := tf.Create(edgeObjectType(), snapshot.EdgeStructure(a.ObjectID(), b.ObjectID()), CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, constraint.CheckReferentialIntegrity(tf))
	tf.Freeze()
	stable := tf.ToStableFrame(ids.Next())

	assert.Len(t, stable.Snapshots(), 3)
	origin, ok := stable.mustSnapshot(t, e.ObjectID()).Origin()
	require.True(t, ok)
	assert.Equal(t, a.ObjectID(), origin)
}

func (f *StableFrame) mustSnapshot(t *testing.T, id ObjectID) *snapshot.Snapshot {
	t.Helper()
	s, ok := f.Snapshot(id)
	require.True(t, ok)
	return s
}

// TestCascadingRemove implements spec scenario 2: removing a node cascades
// to its incident edge but leaves the other node untouched.
func TestCascadingRemove(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)
	a, _ := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	b, _ := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	e, _ := tf.Create(edgeObjectType(), snapshot.EdgeStructure(a.ObjectID(), b.ObjectID()), CreateOptions{})
	tf.Freeze()
	stable := tf.ToStableFrame(ids.Next())

	derived := NewTransientFrame(ids.Next(), ids, stable)
	removed, err := derived.RemoveCascading(a.ObjectID())
	require.NoError(t, err)

	all := removed.All()
	assert.True(t, all[a.ObjectID()])
	assert.True(t, all[e.ObjectID()])
	assert.False(t, derived.Contains(a.ObjectID()))
	assert.False(t, derived.Contains(e.ObjectID()))
	assert.True(t, derived.Contains(b.ObjectID()))
}

func TestCreatedAndRemovedWithinSameFrame(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)
	a, _ := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})

	removed, err := tf.RemoveCascading(a.ObjectID())
	require.NoError(t, err)
	assert.True(t, removed.CreatedAndRemoved[a.ObjectID()])
	assert.Empty(t, removed.FromParent)
}

func TestMutableObjectDerivesSharedSnapshotOnce(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)
	a, _ := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	tf.Freeze()
	stable := tf.ToStableFrame(ids.Next())

	derived := NewTransientFrame(ids.Next(), ids, stable)
	assert.False(t, derived.IsOwned(a.ObjectID()))

	mut, err := derived.MutableObject(a.ObjectID())
	require.NoError(t, err)
	assert.True(t, derived.IsOwned(a.ObjectID()))
	assert.NotEqual(t, a.SnapshotID(), mut.SnapshotID())

	require.NoError(t, derived.SetAttribute(a.ObjectID(), "label", variant.NewString("renamed")))
	v, _ := mut.Attribute("label")
	s, _ := v.String0()
	assert.Equal(t, "renamed", s)

	// the original stable snapshot is untouched
	origAttr, _ := a.Attribute("label")
	origStr, _ := origAttr.String0()
	assert.Equal(t, "", origStr)
}

func TestCannotMutateClosedFrame(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)
	tf.Freeze()

	_, err := tf.Create(nodeObjectType(), snapshot.NodeStructure(), CreateOptions{})
	assert.Error(t, err)
}

func TestSatisfiesGraphView(t *testing.T) {
	ids := identity.NewManager()
	tf := NewTransientFrame(ids.Next(), ids, nil)
	var _ constraint.GraphView = tf

	tf.Freeze()
	stable := tf.ToStableFrame(ids.Next())
	var _ constraint.GraphView = stable
}
