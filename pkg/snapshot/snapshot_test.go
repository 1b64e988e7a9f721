package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/constraint"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func nodeType() *metamodel.ObjectType {
	return metamodel.NewObjectType("Stock", structkind.Node, []metamodel.AttributeDescriptor{
		{Name: "amount", Type: variant.Atom(variant.KindDouble)},
	})
}

func edgeType() *metamodel.ObjectType {
	return metamodel.NewObjectType("Link", structkind.Edge, nil)
}

func TestNewRejectsStructureKindMismatch(t *testing.T) {
	_, err := New(1, 1, nodeType(), Unstructured())
	require.Error(t, err)
}

func TestAttributeDefaultsThenOverride(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)

	v, ok := s.Attribute("amount")
	require.True(t, ok)
	d, _ := v.Double()
	assert.Equal(t, 0.0, d)

	require.NoError(t, s.SetAttribute("amount", variant.NewDouble(42)))
	v, _ = s.Attribute("amount")
	d, _ = v.Double()
	assert.Equal(t, 42.0, d)

	_, ok = s.Attribute("missing")
	assert.False(t, ok)
}

func TestSetAttributeUnknownKeyFails(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)
	err = s.SetAttribute("nope", variant.NewInt(1))
	assert.Error(t, err)
}

func TestFreezeBlocksMutation(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)
	s.Freeze()

	err = s.SetAttribute("amount", variant.NewDouble(1))
	require.Error(t, err)
	assert.True(t, s.IsFrozen())
}

func TestEdgeStructuralDependenciesIncludeParent(t *testing.T) {
	s, err := New(3, 3, edgeType(), EdgeStructure(1, 2))
	require.NoError(t, err)
	require.NoError(t, s.SetParent(idPtr(9)))

	deps := s.StructuralDependencies()
	assert.ElementsMatch(t, []ObjectID{1, 2, 9}, deps)
}

func TestChildrenAppendAndRemovePreservesOrder(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)

	require.NoError(t, s.AppendChild(2))
	require.NoError(t, s.AppendChild(3))
	require.NoError(t, s.AppendChild(2)) // duplicate, no-op
	assert.Equal(t, []ObjectID{2, 3}, s.Children())

	require.NoError(t, s.RemoveChild(2))
	assert.Equal(t, []ObjectID{3}, s.Children())
}

func TestCloneIsIndependent(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)
	require.NoError(t, s.SetAttribute("amount", variant.NewDouble(5)))
	s.Freeze()

	clone := s.Clone(2, nil)
	assert.Equal(t, Unstable, clone.State())
	require.NoError(t, clone.SetAttribute("amount", variant.NewDouble(9)))

	v, _ := s.Attribute("amount")
	d, _ := v.Double()
	assert.Equal(t, 5.0, d)
}

func TestSatisfiesObjectView(t *testing.T) {
	s, err := New(1, 1, nodeType(), NodeStructure())
	require.NoError(t, err)
	var _ constraint.ObjectView = s
}

func idPtr(id ObjectID) *ObjectID { return &id }
