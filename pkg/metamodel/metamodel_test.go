package metamodel

import (
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func TestRegistryLookupAndDefaults(t *testing.T) {
	r := NewRegistry("test", semver.MustParse("1.0.0"))
	r.AddType(NewObjectType("Node", structkind.Node, []AttributeDescriptor{
		{Name: "label", Type: variant.Atom(variant.KindString)},
	}))

	typ, ok := r.LookupType("Node")
	require.True(t, ok)
	attr, ok := typ.Attribute("label")
	require.True(t, ok)
	v := attr.DefaultValue()
	s, ok := v.String0()
	require.True(t, ok)
	assert.Equal(t, "", s)

	_, ok = r.LookupType("Missing")
	assert.False(t, ok)
}

func TestDuplicateTypePanics(t *testing.T) {
	r := NewRegistry("test", semver.MustParse("1.0.0"))
	r.AddType(NewObjectType("Node", structkind.Node, nil))
	assert.Panics(t, func() {
		r.AddType(NewObjectType("Node", structkind.Node, nil))
	})
}
