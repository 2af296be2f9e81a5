package gotensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelee/gotensor/dtype"
)

func TestGradientsShapeMatchesEachX(t *testing.T) {
	x := mustScalar(t, dtype.FP32, 2)
	y := Square(x)
	grads, err := Gradients(y, []*Expr{x})
	require.NoError(t, err)
	require.Len(t, grads, 1)
	assert.Equal(t, x.Shape.String(), grads[0].Shape.String())
	assert.Equal(t, x.DType, grads[0].DType)
}

func TestGradientsRejectsEmptyXs(t *testing.T) {
	y := mustScalar(t, dtype.FP32, 1)
	_, err := Gradients(y, nil)
	require.Error(t, err)
}

func TestDiffNChainsDerivatives(t *testing.T) {
	x := mustScalar(t, dtype.FP32, 3)
	y := Square(x)
	out, err := DiffN(y, x, 2)
	require.NoError(t, err)
	assert.Equal(t, x.Shape.String(), out.Shape.String())
}

func TestHessianIsSquareStack(t *testing.T) {
	x0 := mustScalar(t, dtype.FP32, 1)
	x1 := mustScalar(t, dtype.FP32, 2)
	y, err := Add(Square(x0), Square(x1))
	require.NoError(t, err)
	out, err := Hessian(y, []*Expr{x0, x1})
	require.NoError(t, err)
	assert.Equal(t, "[2, 2]", out.Shape.String())
}

func TestLaplacianSumsPureSecondPartials(t *testing.T) {
	x0 := mustScalar(t, dtype.FP32, 1)
	x1 := mustScalar(t, dtype.FP32, 2)
	y, err := Add(Square(x0), Square(x1))
	require.NoError(t, err)
	out, err := Laplacian(y, []*Expr{x0, x1})
	require.NoError(t, err)
	assert.Equal(t, "[]", out.Shape.String())
}

func TestDivergenceRequiresMatchingCounts(t *testing.T) {
	f := []*Expr{mustScalar(t, dtype.FP32, 1)}
	coords := []*Expr{mustScalar(t, dtype.FP32, 1), mustScalar(t, dtype.FP32, 2)}
	_, err := Divergence(f, coords)
	require.Error(t, err)
}
