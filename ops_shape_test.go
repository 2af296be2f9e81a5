package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

func TestMatMulContractsInnerDimension(t *testing.T) {
	a := mustMatrix(t, dtype.FP32, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := mustMatrix(t, dtype.FP32, [][]float64{{1, 0}, {0, 1}, {1, 1}})
	out, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, "[2, 2]", out.Shape.String())
}

func TestMatMulInnerDimensionMismatchErrors(t *testing.T) {
	a := mustMatrix(t, dtype.FP32, [][]float64{{1, 2, 3}})
	b := mustMatrix(t, dtype.FP32, [][]float64{{1, 2}})
	_, err := MatMul(a, b)
	require.Error(t, err)
}

func TestReshapeRequiresResolvedTarget(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3, 4})
	target := shape.New(shape.Inferred(), shape.Known(2))
	_, err := Reshape(a, target)
	require.Error(t, err)
}

func TestReshapeToResolvedTarget(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3, 4})
	target := shape.Of(2, 2)
	out, err := Reshape(a, target)
	require.NoError(t, err)
	assert.Equal(t, "[2, 2]", out.Shape.String())
}

func TestStackInsertsAxis(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	b := mustVec(t, dtype.FP32, []float64{4, 5, 6})
	out, err := Stack(0, []*Expr{a, b})
	require.NoError(t, err)
	assert.Equal(t, "[2, 3]", out.Shape.String())
}

func TestStackDTypeMismatchErrors(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2})
	b := mustVec(t, dtype.INT32, []float64{1, 2})
	_, err := Stack(0, []*Expr{a, b})
	require.Error(t, err)
}

func TestExpandDimsInsertsSizeOne(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	out, err := ExpandDims(a, 0)
	require.NoError(t, err)
	assert.Equal(t, "[1, 3]", out.Shape.String())
}

func TestSliceOutOfBoundsErrors(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	_, err := Slice(a, []int{0}, []int{5})
	require.Error(t, err)
}

func TestSliceProducesRequestedShape(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3, 4})
	out, err := Slice(a, []int{1}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, "[2]", out.Shape.String())
}

func TestDiagPartRequiresEvenRank(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	_, err := DiagPart(a)
	require.Error(t, err)
}

func TestDiagPartOfSquareMatrix(t *testing.T) {
	a := mustMatrix(t, dtype.FP32, [][]float64{{1, 2}, {3, 4}})
	out, err := DiagPart(a)
	require.NoError(t, err)
	assert.Equal(t, "[2]", out.Shape.String())
}

func TestCastChangesDTypeKeepsShape(t *testing.T) {
	a := mustVec(t, dtype.FP32, []float64{1, 2, 3})
	out, err := Cast(a, dtype.INT32)
	require.NoError(t, err)
	assert.Equal(t, dtype.INT32, out.DType)
	assert.Equal(t, a.Shape.String(), out.Shape.String())
}
