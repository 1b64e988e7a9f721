package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/structkind"
)

// fakeObject and fakeGraph implement ObjectView/GraphView for testing the
// engine in isolation from snapshot/frame.
type fakeObject struct {
	id       identity.ID
	typeName string
	kind     structkind.Kind
	attrs    map[string]bool
	origin   *identity.ID
	target   *identity.ID
	parent   *identity.ID
	children []identity.ID
}

func (o *fakeObject) ObjectID() identity.ID        { return o.id }
func (o *fakeObject) TypeName() string             { return o.typeName }
func (o *fakeObject) Structure() structkind.Kind   { return o.kind }
func (o *fakeObject) HasAttribute(name string) bool { return o.attrs[name] }
func (o *fakeObject) Origin() (identity.ID, bool) {
	if o.origin == nil {
		return 0, false
	}
	return *o.origin, true
}
func (o *fakeObject) Target() (identity.ID, bool) {
	if o.target == nil {
		return 0, false
	}
	return *o.target, true
}
func (o *fakeObject) Parent() (identity.ID, bool) {
	if o.parent == nil {
		return 0, false
	}
	return *o.parent, true
}
func (o *fakeObject) Children() []identity.ID { return o.children }

type fakeGraph struct {
	objs map[identity.ID]*fakeObject
}

func (g *fakeGraph) Objects() []ObjectView {
	out := make([]ObjectView, 0, len(g.objs))
	for _, o := range g.objs {
		out = append(out, o)
	}
	return out
}

func (g *fakeGraph) Object(id identity.ID) (ObjectView, bool) {
	o, ok := g.objs[id]
	return o, ok
}

func ptr(id identity.ID) *identity.ID { return &id }

func TestEdgePredicateConstraint(t *testing.T) {
	stock := &fakeObject{id: 1, typeName: "Stock", kind: structkind.Node}
	flow := &fakeObject{id: 2, typeName: "Flow", kind: structkind.Node}
	goodEdge := &fakeObject{id: 3, typeName: "Link", kind: structkind.Edge, origin: ptr(1), target: ptr(2)}
	badEdge := &fakeObject{id: 4, typeName: "Link", kind: structkind.Edge, origin: ptr(2), target: ptr(1)}

	g := &fakeGraph{objs: map[identity.ID]*fakeObject{1: stock, 2: flow, 3: goodEdge, 4: badEdge}}

	c := Constraint{
		Name:        "edge_shape",
		Match:       IsType("Link"),
		Requirement: EdgePredicate(IsType("Stock"), IsType("Flow")),
	}

	err := Check(g, []Constraint{c})
	require.Error(t, err)
	var cv *ConstraintViolation
	require.True(t, AsConstraintViolation(err, &cv))
	require.Len(t, cv.Violations, 1)
	assert.Equal(t, identity.ID(4), cv.Violations[0].Object)
}

func TestReferentialIntegrityDetectsMissingEdgeEndpoint(t *testing.T) {
	edge := &fakeObject{id: 1, typeName: "Link", kind: structkind.Edge, origin: ptr(99), target: ptr(2)}
	node := &fakeObject{id: 2, typeName: "Node", kind: structkind.Node}
	g := &fakeGraph{objs: map[identity.ID]*fakeObject{1: edge, 2: node}}

	err := CheckReferentialIntegrity(g)
	require.Error(t, err)
}

func TestParentChildCoherenceBothDirections(t *testing.T) {
	parent := &fakeObject{id: 1, typeName: "Folder", children: []identity.ID{2}}
	child := &fakeObject{id: 2, typeName: "Note", parent: ptr(1)}
	g := &fakeGraph{objs: map[identity.ID]*fakeObject{1: parent, 2: child}}
	require.NoError(t, CheckParentChildCoherence(g))

	child.parent = ptr(99)
	require.Error(t, CheckParentChildCoherence(g))
}

func TestAcyclicDetectsCycle(t *testing.T) {
	a := &fakeObject{id: 1, parent: ptr(2)}
	b := &fakeObject{id: 2, parent: ptr(1)}
	g := &fakeGraph{objs: map[identity.ID]*fakeObject{1: a, 2: b}}
	require.Error(t, CheckAcyclic(g))
}

func TestUniqueNeighbour(t *testing.T) {
	stock := &fakeObject{id: 1, typeName: "Stock"}
	inflow := &fakeObject{id: 2, typeName: "Flow", target: ptr(1)}
	g := &fakeGraph{objs: map[identity.ID]*fakeObject{1: stock, 2: inflow}}

	p := UniqueNeighbour(IsType("Flow"), func(GraphView, ObjectView) bool { return true })
	assert.True(t, p(g, stock))

	outflow := &fakeObject{id: 3, typeName: "Flow", origin: ptr(1)}
	g.objs[3] = outflow
	assert.False(t, p(g, stock))
}

func TestCheckAllCollectsFromEveryView(t *testing.T) {
	bad1 := &fakeObject{id: 1, typeName: "Bad"}
	bad2 := &fakeObject{id: 2, typeName: "Bad"}
	g1 := &fakeGraph{objs: map[identity.ID]*fakeObject{1: bad1}}
	g2 := &fakeGraph{objs: map[identity.ID]*fakeObject{2: bad2}}

	c := Constraint{Name: "never_bad", Match: IsType("Bad"), Requirement: func(GraphView, ObjectView) bool { return false }}
	err := CheckAll([]GraphView{g1, g2}, []Constraint{c})
	require.Error(t, err)
	var cv *ConstraintViolation
	require.True(t, AsConstraintViolation(err, &cv))
	assert.Len(t, cv.Violations, 2)
}
