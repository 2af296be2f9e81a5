package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

func TestScalarConstantEvaluatesWithoutSession(t *testing.T) {
	e, err := Scalar(dtype.FP32, 2.5)
	require.NoError(t, err)
	require.True(t, e.IsConstant())
	tensor, err := Eval(e)
	require.NoError(t, err)
	v, err := ToScalar(tensor)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, v, 1e-6)
}

func TestVecConstantRoundTrips(t *testing.T) {
	e, err := Vec(dtype.FP64, []float64{1, 2, 3})
	require.NoError(t, err)
	tensor, err := Eval(e)
	require.NoError(t, err)
	values, err := ToArray(tensor)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values)
}

func TestMatrixConstantShape(t *testing.T) {
	e, err := Matrix(dtype.FP32, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, "[3, 2]", e.Shape.String())
}

func TestTruncatedNormalRequiresResolvedShape(t *testing.T) {
	open := shape.New(shape.Inferred(), shape.Known(3))
	_, err := TruncatedNormal(dtype.FP32, open)
	require.Error(t, err)
}

func TestTruncatedNormalShapeMatchesRequest(t *testing.T) {
	e, err := TruncatedNormal(dtype.FP32, shape.Of(2, 3))
	require.NoError(t, err)
	assert.Equal(t, "[2, 3]", e.Shape.String())
	assert.False(t, e.IsConstant())
}

func TestBatchStacksExamples(t *testing.T) {
	a, err := Vec(dtype.FP32, []float64{1, 2})
	require.NoError(t, err)
	b, err := Vec(dtype.FP32, []float64{3, 4})
	require.NoError(t, err)
	out, err := Batch([]*Expr{a, b})
	require.NoError(t, err)
	assert.Equal(t, "[2, 2]", out.Shape.String())
}
