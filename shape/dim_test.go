package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnown(t *testing.T) {
	v, ok := Resolve(Known(4))
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestResolveInferredOpen(t *testing.T) {
	_, ok := Resolve(Inferred())
	assert.False(t, ok)
}

func TestUnifyDimKnownEqual(t *testing.T) {
	require.NoError(t, UnifyDim("test", Known(3), Known(3)))
}

func TestUnifyDimKnownMismatch(t *testing.T) {
	err := UnifyDim("test", Known(3), Known(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unequal values")
}

func TestUnifyDimSolvesVar(t *testing.T) {
	v := Inferred()
	require.NoError(t, UnifyDim("test", v, Known(7)))
	got, ok := Resolve(v)
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestUnifyDimSamePointerNoop(t *testing.T) {
	v := Inferred()
	require.NoError(t, UnifyDim("test", v, v))
	assert.True(t, IsOpen(v))
}

func TestUnifyDimMulAgainstKnownDivisible(t *testing.T) {
	inner := Inferred()
	mul := Mul(inner, 2)
	require.NoError(t, UnifyDim("test", mul, Known(10)))
	got, ok := Resolve(inner)
	require.True(t, ok)
	assert.Equal(t, 5, got)
}

func TestUnifyDimMulAgainstKnownNotDivisible(t *testing.T) {
	inner := Inferred()
	mul := Mul(inner, 3)
	err := UnifyDim("test", mul, Known(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not divisible")
}

func TestUnifyDimMulVsMulSameMultiplier(t *testing.T) {
	a := Inferred()
	require.NoError(t, UnifyDim("test", Mul(a, 2), Mul(Known(5), 2)))
	got, ok := Resolve(a)
	require.True(t, ok)
	assert.Equal(t, 5, got)
}

func TestUnifyDimMulVsMulDifferentMultiplier(t *testing.T) {
	err := UnifyDim("test", Mul(Inferred(), 2), Mul(Inferred(), 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different multipliers")
}

func TestUnifyDimDivCeiling(t *testing.T) {
	// S6-style scenario: Div is ceiling division (striding semantics).
	a := Inferred()
	require.NoError(t, UnifyDim("test", Div(a, 2), Div(Known(9), 2)))
	got, ok := Resolve(a)
	require.True(t, ok)
	assert.Equal(t, 9, got)
}

func TestUnifyDimVacuousWhenBothOpen(t *testing.T) {
	a, b := Inferred(), Inferred()
	require.NoError(t, UnifyDim("test", Mul(a, 2), Div(b, 3)))
	assert.True(t, IsOpen(a))
	assert.True(t, IsOpen(b))
}

func TestUnifyReflexive(t *testing.T) {
	// §8 property 1: unify(op, s, s) succeeds with no new solutions.
	d := Known(5)
	require.NoError(t, UnifyDim("test", d, d))
	v := Inferred()
	require.NoError(t, UnifyDim("test", v, v))
	assert.True(t, IsOpen(v))
}

func TestSolveOnceNoOpOnMatchingReSolve(t *testing.T) {
	v := Inferred()
	require.NoError(t, UnifyDim("test", v, Known(4)))
	// Unifying the now-solved var against the same value again must not panic.
	require.NoError(t, UnifyDim("test", v, Known(4)))
}
