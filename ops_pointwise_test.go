package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

func mustScalar(t *testing.T, dt dtype.T, v float64) *Expr {
	t.Helper()
	e, err := Scalar(dt, v)
	require.NoError(t, err)
	return e
}

func mustVec(t *testing.T, dt dtype.T, v []float64) *Expr {
	t.Helper()
	e, err := Vec(dt, v)
	require.NoError(t, err)
	return e
}

func TestAddBroadcastsScalarAgainstVector(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	b := mustScalar(t, dtype.FP32, 2)
	b.Shape = shape.FlexScalar() // a closed rank-0 shape does not broadcast
	out, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[3]", out.Shape.String())
	assert.Equal(t, dtype.FP32, out.DType)
}

func TestAddDTypeMismatchErrors(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2})
	b := mustVec(t, dtype.INT32, []float64{1, 2})
	_, err := Add(a, b)
	require.Error(t, err)
}

func TestComparisonResultIsBool(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2})
	b := mustVec(t, dtype.FP32, []float64{2, 2})
	out, err := Less(a, b)
	require.NoError(t, err)
	assert.Equal(t, dtype.BOOL, out.DType)
	assert.Equal(t, a.Shape.String(), out.Shape.String())
}

func TestWhereRequiresBoolCondition(t *testing.T) {
	cond := mustVec(t, dtype.FP32, []float64{1, 0})
	x := mustVec(t, dtype.FP32, []float64{1, 2})
	y := mustVec(t, dtype.FP32, []float64{3, 4})
	_, err := Where(cond, x, y)
	require.Error(t, err)
}

func TestWhereBranchDTypeMismatchErrors(t *testing.T) {
	cond, err := Equal(mustVec(t, dtype.FP32, []float64{1, 2}), mustVec(t, dtype.FP32, []float64{1, 3}))
	require.NoError(t, err)
	x := mustVec(t, dtype.FP32, []float64{1, 2})
	y := mustVec(t, dtype.INT32, []float64{1, 2})
	_, err = Where(cond, x, y)
	require.Error(t, err)
}

func TestUnaryPreservesShapeAndDType(t *testing.T) {
	a := mustVec(t, dtype.FP64, []float64{-1, -2, -3})
	out := Abs(a)
	assert.Equal(t, a.Shape.String(), out.Shape.String())
	assert.Equal(t, dtype.FP64, out.DType)
}
