package rawdesign

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpoiesis/graphframe/pkg/variant"
)

func TestRawIDRoundTripsIntAndString(t *testing.T) {
	data, err := json.Marshal(FromInt(42))
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(data))

	var id RawID
	require.NoError(t, json.Unmarshal([]byte(`"named"`), &id))
	assert.Equal(t, RawIDString, id.Kind)
	assert.Equal(t, "named", id.Str)

	require.NoError(t, json.Unmarshal([]byte(`7`), &id))
	assert.Equal(t, RawIDInt, id.Kind)
	assert.Equal(t, int64(7), id.Int)
}

func TestTaggedValueDecodesIntAndPoint(t *testing.T) {
	var v RawValue
	require.NoError(t, json.Unmarshal([]byte(`{"type":"int","value":10}`), &v))
	dv, err := ToVariant(v)
	require.NoError(t, err)
	i, ok := dv.Int()
	require.True(t, ok)
	assert.Equal(t, int64(10), i)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"point","value":[1.5,2.5]}`), &v))
	dv, err = ToVariant(v)
	require.NoError(t, err)
	p, ok := dv.PointValue()
	require.True(t, ok)
	assert.Equal(t, 1.5, p.X)
	assert.Equal(t, 2.5, p.Y)
}

func TestTaggedValueDecodesArray(t *testing.T) {
	var v RawValue
	require.NoError(t, json.Unmarshal([]byte(`{"type":"int_array","items":[1,2,3]}`), &v))
	dv, err := ToVariant(v)
	require.NoError(t, err)
	arr, ok := dv.IntArray()
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, arr)
}

func TestCoalescedValueInfersType(t *testing.T) {
	var v RawValue
	require.NoError(t, json.Unmarshal([]byte(`true`), &v))
	dv, err := ToVariant(v)
	require.NoError(t, err)
	b, ok := dv.Bool()
	require.True(t, ok)
	assert.True(t, b)

	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &v))
	dv, err = ToVariant(v)
	require.NoError(t, err)
	s, ok := dv.String0()
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	require.NoError(t, json.Unmarshal([]byte(`[1,2,3]`), &v))
	dv, err = ToVariant(v)
	require.NoError(t, err)
	arr, ok := dv.DoubleArray()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, arr)
}

func TestFromVariantRoundTrips(t *testing.T) {
	rv, err := FromVariant(variant.NewDouble(3.5))
	require.NoError(t, err)
	dv, err := ToVariant(rv)
	require.NoError(t, err)
	d, _ := dv.Double()
	assert.Equal(t, 3.5, d)

	rv, err = FromVariant(variant.NewIntArray([]int64{5, 6, 7}))
	require.NoError(t, err)
	dv, err = ToVariant(rv)
	require.NoError(t, err)
	arr, _ := dv.IntArray()
	assert.Equal(t, []int64{5, 6, 7}, arr)
}
