package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelee/gotensor/dtype"
)

func mustMatrix(t *testing.T, dt dtype.T, v [][]float64) *Expr {
	t.Helper()
	e, err := Matrix(dt, v)
	require.NoError(t, err)
	return e
}

func TestSumDropsReducedAxis(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2, 3}, {4, 5, 6}})
	out, err := Sum(m, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, "[2]", out.Shape.String())
}

func TestSumKeepDims(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2, 3}, {4, 5, 6}})
	out, err := Sum(m, []int{1}, true)
	require.NoError(t, err)
	assert.Equal(t, "[2, 1]", out.Shape.String())
}

func TestSumNegativeAxis(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2, 3}, {4, 5, 6}})
	out, err := Sum(m, []int{-1}, false)
	require.NoError(t, err)
	assert.Equal(t, "[2]", out.Shape.String())
}

func TestSumAxisOutOfRangeErrors(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2}, {3, 4}})
	_, err := Sum(m, []int{5}, false)
	require.Error(t, err)
}

func TestMeanPreservesDType(t *testing.T) {
	m := mustMatrix(t, dtype.FP64, [][]float64{{1, 2}, {3, 4}})
	out, err := Mean(m, []int{0}, false)
	require.NoError(t, err)
	assert.Equal(t, dtype.FP64, out.DType)
	assert.Equal(t, "[2]", out.Shape.String())
}

// TestSumNilAxesReducesToScalar mirrors spec §8 scenario S2: with no axes
// given, Sum drops every axis rather than being a no-op.
func TestSumNilAxesReducesToScalar(t *testing.T) {
	v := mustVec(t, dtype.FP32, []float64{1, 2, 3, 4})
	out, err := Sum(v, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", out.Shape.String())

	tensor, err := Eval(out)
	require.NoError(t, err)
	got, err := ToScalar(tensor)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got, 1e-6)
}

func TestSumEmptyAxesSliceBehavesLikeNil(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2}, {3, 4}})
	out, err := Sum(m, []int{}, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", out.Shape.String())
}

func TestMeanNilAxesReducesToScalar(t *testing.T) {
	m := mustMatrix(t, dtype.FP32, [][]float64{{1, 2}, {3, 4}})
	out, err := Mean(m, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", out.Shape.String())
}
