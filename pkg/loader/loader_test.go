package loader

import (
	"errors"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/identity"
	"github.com/openpoiesis/graphframe/pkg/metamodel"
	"github.com/openpoiesis/graphframe/pkg/rawdesign"
	"github.com/openpoiesis/graphframe/pkg/structkind"
	"github.com/openpoiesis/graphframe/pkg/variant"
)

func nodeMetamodel() *metamodel.Registry {
	r := metamodel.NewRegistry("plain", semver.MustParse("1.0.0"))
	r.AddType(metamodel.NewObjectType("Node", structkind.Node, []metamodel.AttributeDescriptor{
		{Name: "name", Type: variant.Atom(variant.KindString)},
	}))
	r.AddType(metamodel.NewObjectType("Link", structkind.Edge, nil))
	return r
}

func rawInt(v int64) *rawdesign.RawID {
	id := rawdesign.FromInt(v)
	return &id
}

// TestLoaderRequireProvidedDuplicateSnapshotID implements spec scenario 5:
// two snapshots sharing the same snapshot_id are rejected at validation,
// before any identity resolution happens.
func TestLoaderRequireProvidedDuplicateSnapshotID(t *testing.T) {
	mm := nodeMetamodel()
	raw := rawdesign.RawDesign{
		Snapshots: []rawdesign.RawSnapshot{
			{TypeName: "Node", SnapshotID: rawInt(10), ID: rawInt(20)},
			{TypeName: "Node", SnapshotID: rawInt(10), ID: rawInt(21)},
		},
	}

	_, err := LoadDesign(mm, raw, Options{IdentityStrategy: RequireProvided})
	require.Error(t, err)

	var ie *ItemError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, DuplicateForeignID, ie.Kind)
	assert.Equal(t, "snapshots", ie.Collection)
	assert.Equal(t, 1, ie.Index)
	assert.Equal(t, "10", ie.Raw)
}

// TestLoaderPreserveOrCreateReallocatesUsedID implements spec scenario 6:
// loading into a frame of a design where ID 999 is already used reallocates
// a raw id of 999 to a fresh ID while preserving a free raw id of 110.
func TestLoaderPreserveOrCreateReallocatesUsedID(t *testing.T) {
	mm := nodeMetamodel()
	d := design.New(mm)
	require.NoError(t, d.Identities().Use(999))

	tf := d.CreateFrame(nil)
	err := LoadIntoFrame(d, tf, []rawdesign.RawSnapshot{
		{TypeName: "Node", ID: rawInt(110)},
		{TypeName: "Node", ID: rawInt(999)},
	}, Options{IdentityStrategy: PreserveOrCreate})
	require.NoError(t, err)

	snaps := tf.Snapshots()
	require.Len(t, snaps, 2)

	var sawPreserved bool
	var reallocated identity.ID
	for _, s := range snaps {
		if s.ObjectID() == 110 {
			sawPreserved = true
		} else {
			reallocated = s.ObjectID()
		}
	}
	assert.True(t, sawPreserved, "raw id 110 should have been preserved")
	assert.NotZero(t, reallocated)
	assert.NotEqual(t, identity.ID(999), reallocated, "raw id 999 should have been reallocated since it was already used")
}

// TestLoaderRoundTripsTwoNodesAndAnEdge exercises the full four-phase
// pipeline end to end: two Node snapshots, a Link edge between them, one
// frame, and a current_frame system reference.
func TestLoaderRoundTripsTwoNodesAndAnEdge(t *testing.T) {
	mm := nodeMetamodel()
	raw := rawdesign.RawDesign{
		Snapshots: []rawdesign.RawSnapshot{
			{TypeName: "Node", SnapshotID: rawInt(1), ID: rawInt(1)},
			{TypeName: "Node", SnapshotID: rawInt(2), ID: rawInt(2)},
			{
				TypeName:   "Link",
				SnapshotID: rawInt(3),
				ID:         rawInt(3),
				Structure: &rawdesign.RawStructure{
					Kind:       "edge",
					References: []rawdesign.RawID{rawdesign.FromInt(1), rawdesign.FromInt(2)},
				},
			},
		},
		Frames: []rawdesign.RawFrame{
			{ID: rawInt(100), Snapshots: []rawdesign.RawID{rawdesign.FromInt(1), rawdesign.FromInt(2), rawdesign.FromInt(3)}},
		},
		SystemReferences: []rawdesign.RawReference{
			{Name: "current_frame", Type: "frame", ID: rawdesign.FromInt(100)},
		},
	}

	d, err := LoadDesign(mm, raw, Options{IdentityStrategy: RequireProvided})
	require.NoError(t, err)

	cur, ok := d.CurrentFrameID()
	require.True(t, ok)
	assert.Equal(t, identity.ID(100), cur)

	stable, ok := d.StableFrame(cur)
	require.True(t, ok)
	assert.True(t, stable.Contains(1))
	assert.True(t, stable.Contains(2))
	assert.True(t, stable.Contains(3))

	edge, ok := stable.Snapshot(3)
	require.True(t, ok)
	origin, _ := edge.Origin()
	target, _ := edge.Target()
	assert.Equal(t, identity.ID(1), origin)
	assert.Equal(t, identity.ID(2), target)
}

// TestLoaderMissingCurrentFrameWhenFramesPresent verifies the design-level
// post-condition from §4.5: a raw design with frames but no current_frame
// system reference is rejected with a MissingCurrentFrame DesignError.
func TestLoaderMissingCurrentFrameWhenFramesPresent(t *testing.T) {
	mm := nodeMetamodel()
	raw := rawdesign.RawDesign{
		Snapshots: []rawdesign.RawSnapshot{
			{TypeName: "Node", SnapshotID: rawInt(1), ID: rawInt(1)},
		},
		Frames: []rawdesign.RawFrame{
			{ID: rawInt(100), Snapshots: []rawdesign.RawID{rawdesign.FromInt(1)}},
		},
	}

	_, err := LoadDesign(mm, raw, Options{IdentityStrategy: RequireProvided})
	require.Error(t, err)
	var de *DesignError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, MissingCurrentFrame, de.Kind)
}

func TestLoaderUnknownObjectTypeError(t *testing.T) {
	mm := nodeMetamodel()
	raw := rawdesign.RawDesign{
		Snapshots: []rawdesign.RawSnapshot{
			{TypeName: "Ghost", SnapshotID: rawInt(1), ID: rawInt(1)},
		},
	}

	_, err := LoadDesign(mm, raw, DefaultOptions())
	require.Error(t, err)
	var ie *ItemError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, UnknownObjectType, ie.Kind)
	assert.Equal(t, "Ghost", ie.Raw)
}
