package shape

import (
	"testing"

	"github.com/flarelee/gotensor/ivar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyReflexiveShape(t *testing.T) {
	s := Of(2, 3, 4)
	_, err := Unify("test", s, s)
	require.NoError(t, err)
}

func TestUnifyExactMatch(t *testing.T) {
	_, err := Unify("test", Of(2, 3), Of(2, 3))
	require.NoError(t, err)
}

func TestUnifyMismatchedKnownDims(t *testing.T) {
	_, err := Unify("test", Of(2, 3), Of(2, 4))
	require.Error(t, err)
}

// TestUnifyFlexScalarBroadcast mirrors spec §8 scenario S4: a flex scalar
// unified against a rank-1 shape solves the scalar's flex tail to match.
func TestUnifyFlexScalarBroadcast(t *testing.T) {
	a := FlexScalar()
	b := Of(3)
	merged, err := EquivShapes("test", a, b)
	require.NoError(t, err)

	resolved, ok := merged.ResolvedInts()
	require.True(t, ok)
	assert.Equal(t, []int{3}, resolved)
}

// TestUnifyMulDimShape mirrors spec §8 scenario S6: unifying
// [Known 4, Inferred] against [Mul(Inferred,2), Known 5] forces the inner
// var to 2 and the second inferred dim to 5.
func TestUnifyMulDimShape(t *testing.T) {
	innerVar := Inferred()
	inferredDim := Inferred()

	a := New(Known(4), inferredDim)
	b := New(Mul(innerVar, 2), Known(5))

	_, err := Unify("test", a, b)
	require.NoError(t, err)

	v, ok := Resolve(innerVar)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = Resolve(inferredDim)
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestUnifyExtendsShorterFlexSide(t *testing.T) {
	a := Shape{Dims: []Dim{Known(2)}, Flex: ivar.New[Shape]()}
	b := Of(2, 3, 4)
	merged, err := Unify("test", a, b)
	require.NoError(t, err)

	resolved, ok := merged.ResolvedInts()
	require.True(t, ok)
	assert.Equal(t, []int{2, 3, 4}, resolved)
}

func TestUnifyFailsWhenShorterSideHasNoFlex(t *testing.T) {
	a := Of(2) // closed, rank 1
	b := Of(2, 3, 4)
	_, err := Unify("test", a, b)
	require.Error(t, err)
}

func TestMinDimensionsExtendsOpenShape(t *testing.T) {
	s := Shape{Flex: ivar.New[Shape]()}
	out, err := MinDimensions("test", s, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rank())
}

func TestMinDimensionsFailsOnClosedShortShape(t *testing.T) {
	s := Of(2)
	_, err := MinDimensions("test", s, 3)
	require.Error(t, err)
}

func TestMinDimensionsNoopWhenAlreadyLongEnough(t *testing.T) {
	s := Of(2, 3, 4)
	out, err := MinDimensions("test", s, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rank())
}
