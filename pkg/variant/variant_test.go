package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntDoubleConversionAndEquality(t *testing.T) {
	i := NewInt(10)
	d, err := i.ConvertTo(Atom(KindDouble))
	require.NoError(t, err)
	eq, err := Equal(NewDouble(10.0), d)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = Equal(NewInt(10), NewDouble(10.0))
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestBoolNotConvertibleToDouble(t *testing.T) {
	_, err := NewBool(true).ConvertTo(Atom(KindDouble))
	require.Error(t, err)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, NotConvertible, ve.Kind)
}

func TestPointArrayRoundTrip(t *testing.T) {
	p := NewPoint(1, 2)

	asInts, err := p.ConvertTo(Array(KindInt))
	require.NoError(t, err)
	assert.Equal(t, 2, asInts.Len())

	back, err := asInts.ConvertTo(Atom(KindPoint))
	require.NoError(t, err)
	pv, ok := back.PointValue()
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2}, pv)

	_, err = NewDoubleArray([]float64{1.5, 2}).ConvertTo(Atom(KindPoint))
	require.NoError(t, err)

	_, err = NewIntArray([]int64{1, 2, 3}).ConvertTo(Atom(KindPoint))
	require.Error(t, err)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ConversionFailed, ve.Kind)
}

func TestNonIntegralPointToIntArrayFails(t *testing.T) {
	_, err := NewPoint(1.5, 2).ConvertTo(Array(KindInt))
	require.Error(t, err)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ConversionFailed, ve.Kind)
}

func TestArrayIntArrayNotComparable(t *testing.T) {
	_, err := Equal(NewIntArray([]int64{10}), NewPoint(10, 0))
	require.Error(t, err)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, NotComparable, ve.Kind)
}

func TestArrayEqualityOnly(t *testing.T) {
	a := NewIntArray([]int64{1, 2, 3})
	b := NewIntArray([]int64{1, 2, 3})
	eq, err := Equal(a, b)
	require.NoError(t, err)
	assert.True(t, eq)

	_, err = Compare(a, b)
	require.Error(t, err)
}

func TestStringLexicographicCompare(t *testing.T) {
	c, err := Compare(NewString("abc"), NewString("abd"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestDoubleNotNarrowedToInt(t *testing.T) {
	_, err := NewDouble(3.0).ConvertTo(Atom(KindInt))
	require.Error(t, err)
}

func TestDefaultValues(t *testing.T) {
	assert.Equal(t, 0, Default(Array(KindInt)).Len())
	b, ok := Default(Atom(KindBool)).Bool()
	require.True(t, ok)
	assert.False(t, b)
}
