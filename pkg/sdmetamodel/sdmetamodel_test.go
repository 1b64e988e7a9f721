package sdmetamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/design"
	"github.com/openpoiesis/graphframe/pkg/frame"
	"github.com/openpoiesis/graphframe/pkg/snapshot"
)

func TestRegistryDeclaresExpectedTypes(t *testing.T) {
	mm := New()
	for _, name := range []string{TypeStock, TypeFlow, TypeAuxiliary, TypeCloud, TypeLink, TypeFlowEdge} {
		_, ok := mm.LookupType(name)
		assert.True(t, ok, "expected type %q to be registered", name)
	}
}

func TestFlowEdgeMustConnectStockOrCloud(t *testing.T) {
	mm := New()
	d := design.New(mm)
	stockType, _ := mm.LookupType(TypeStock)
	flowType, _ := mm.LookupType(TypeFlow)
	flowEdgeType, _ := mm.LookupType(TypeFlowEdge)

	tf := d.CreateFrame(nil)
	stock, err := tf.Create(stockType, snapshot.NodeStructure(), frame.CreateOptions{})
	require.NoError(t, err)
	flow, err := tf.Create(flowType, snapshot.NodeStructure(), frame.CreateOptions{})
	require.NoError(t, err)

	// A flow edge running Stock -> Flow is invalid: Flow is neither a Stock
	// nor a Cloud.
	_, err = tf.Create(flowEdgeType, snapshot.EdgeStructure(stock.ObjectID(), flow.ObjectID()), frame.CreateOptions{})
	require.NoError(t, err)
	_, err = d.Accept(tf, true)
	require.Error(t, err)
}

func TestFlowEdgeBetweenStockAndCloudAccepted(t *testing.T) {
	mm := New()
	d := design.New(mm)
	stockType, _ := mm.LookupType(TypeStock)
	cloudType, _ := mm.LookupType(TypeCloud)
	flowEdgeType, _ := mm.LookupType(TypeFlowEdge)

	tf := d.CreateFrame(nil)
	stock, err := tf.Create(stockType, snapshot.NodeStructure(), frame.CreateOptions{})
	require.NoError(t, err)
	cloud, err := tf.Create(cloudType, snapshot.NodeStructure(), frame.CreateOptions{})
	require.NoError(t, err)
	_, err = tf.Create(flowEdgeType, snapshot.EdgeStructure(cloud.ObjectID(), stock.ObjectID()), frame.CreateOptions{})
	require.NoError(t, err)

	_, err = d.Accept(tf, true)
	require.NoError(t, err)
}
