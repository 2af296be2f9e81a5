package shape

import (
	"strconv"
	"strings"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/ivar"
)

// Shape is an ordered sequence of dimensions with an optional "flex" tail.
// When Flex is non-nil, the shape is logically Dims ++ tail, where tail is
// whatever the flex variable resolves to (possibly another flex shape).
// Rank 0 with Flex == nil denotes a scalar; rank 0 with Flex != nil denotes
// a scalar broadcastable to any rank.
type Shape struct {
	Dims []Dim
	Flex *ivar.IVar[Shape]
}

// New returns a closed shape (no flex tail) over the given dims.
func New(dims ...Dim) Shape {
	return Shape{Dims: dims}
}

// Scalar returns the closed rank-0 shape.
func Scalar() Shape {
	return Shape{}
}

// FlexScalar returns a rank-0 shape broadcastable to any rank: a fresh,
// unsolved flex tail with no explicit leading dims.
func FlexScalar() Shape {
	return Shape{Flex: ivar.New[Shape]()}
}

// Of builds a closed shape from known integer dimensions; a convenience
// for the common case where every dimension is already concrete.
func Of(dims ...int) Shape {
	ds := make([]Dim, len(dims))
	for i, n := range dims {
		ds[i] = Known(n)
	}
	return New(ds...)
}

// Rank returns the length of the explicit dims prefix. This does not
// count dimensions that may later appear through an unsolved flex tail.
func (s Shape) Rank() int {
	return len(s.Dims)
}

// HasFlex reports whether the shape carries a flex tail.
func (s Shape) HasFlex() bool {
	return s.Flex != nil
}

// String renders the shape for diagnostics, e.g. "[4, ?, (?*2)]+flex".
func (s Shape) String() string {
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		parts[i] = d.String()
	}
	out := "[" + strings.Join(parts, ", ") + "]"
	if s.Flex != nil {
		out += "+flex"
	}
	return out
}

// ResolvedInts returns the shape's dimensions as concrete ints, and true
// only if every dimension resolves and the shape carries no open flex
// tail.
func (s Shape) ResolvedInts() ([]int, bool) {
	out := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		v, ok := Resolve(d)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	if s.Flex != nil {
		tail, ok := s.Flex.TryValue()
		if !ok {
			return nil, false
		}
		tailInts, ok := tail.ResolvedInts()
		if !ok {
			return nil, false
		}
		out = append(out, tailInts...)
	}
	return out, true
}

// Unify unifies a and b pairwise from the front, extending either side via
// its flex variable when one side is shorter, per spec §4.2, and returns
// the merged, most-specific shape both sides now denote.
func Unify(op string, a, b Shape) (Shape, error) {
	n := min(len(a.Dims), len(b.Dims))
	dims := make([]Dim, n)
	for i := 0; i < n; i++ {
		if err := UnifyDim(op, a.Dims[i], b.Dims[i]); err != nil {
			return Shape{}, err
		}
		dims[i] = mergeDim(a.Dims[i], b.Dims[i])
	}

	remA := a.Dims[n:]
	remB := b.Dims[n:]

	switch {
	case len(remA) == 0 && len(remB) == 0:
		flex, err := unifyFlexTails(op, a, b)
		if err != nil {
			return Shape{}, err
		}
		return Shape{Dims: dims, Flex: flex}, nil
	case len(remA) > 0:
		if b.Flex == nil {
			return Shape{}, dslerr.NewShapeMismatch(op, a.String(), b.String())
		}
		if err := extendFlex(op, b.Flex, Shape{Dims: remA, Flex: a.Flex}); err != nil {
			return Shape{}, err
		}
		return Shape{Dims: append(dims, remA...), Flex: a.Flex}, nil
	default: // len(remB) > 0
		if a.Flex == nil {
			return Shape{}, dslerr.NewShapeMismatch(op, a.String(), b.String())
		}
		if err := extendFlex(op, a.Flex, Shape{Dims: remB, Flex: b.Flex}); err != nil {
			return Shape{}, err
		}
		return Shape{Dims: append(dims, remB...), Flex: b.Flex}, nil
	}
}

// mergeDim picks the more specific of two already-unified dims (one that
// resolves to a concrete value over one that doesn't); after a successful
// UnifyDim the two denote the same value either way, so this only affects
// which underlying representation the merged shape carries forward.
func mergeDim(a, b Dim) Dim {
	if _, ok := Resolve(a); ok {
		return a
	}
	return b
}

// extendFlex makes flexVar account for the given remainder shape: if
// already solved, it unifies the existing tail against the remainder; if
// unsolved, it allocates a fresh flex shape of inferred dims matching the
// remainder's length (itself carrying a new flex tail) and solves flexVar
// to it, then recurses to bind the fresh dims against the remainder. The
// new tail ends up bound to the remainder's own flex, so it stays open
// only when the remainder is open.
func extendFlex(op string, flexVar *ivar.IVar[Shape], remainder Shape) error {
	if existing, ok := flexVar.TryValue(); ok {
		_, err := Unify(op, existing, remainder)
		return err
	}
	fresh := make([]Dim, len(remainder.Dims))
	for i := range fresh {
		fresh[i] = Inferred()
	}
	tail := Shape{Dims: fresh, Flex: ivar.New[Shape]()}
	flexVar.Solve(tail)
	_, err := Unify(op, tail, remainder)
	return err
}

// unifyFlexTails handles the case where both shapes' explicit dims have
// been fully consumed: both flex tails must denote the same (possibly
// still-open) continuation. It returns the flex variable (possibly nil)
// the merged shape should carry.
func unifyFlexTails(op string, a, b Shape) (*ivar.IVar[Shape], error) {
	if a.Flex == b.Flex {
		return a.Flex, nil // includes both nil
	}
	switch {
	case a.Flex != nil && b.Flex != nil:
		if !a.Flex.IsSolved() {
			a.Flex.Solve(Shape{Flex: b.Flex})
			return b.Flex, nil
		}
		if !b.Flex.IsSolved() {
			b.Flex.Solve(Shape{Flex: a.Flex})
			return a.Flex, nil
		}
		av, _ := a.Flex.TryValue()
		bv, _ := b.Flex.TryValue()
		if _, err := Unify(op, av, bv); err != nil {
			return nil, err
		}
		return a.Flex, nil
	case a.Flex != nil:
		if !a.Flex.IsSolved() {
			a.Flex.Solve(Shape{})
		}
		return nil, nil
	case b.Flex != nil:
		if !b.Flex.IsSolved() {
			b.Flex.Solve(Shape{})
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// EquivShapes unifies a and b under the DSL's broadcasting convention.
// It is only invoked by operators whose contract says "pointwise with
// broadcasting"; strict operators (matmul, reductions) call Unify
// directly. The algorithm is identical to Unify — the flex-extension rule
// already gives a rank-0-flex scalar the ability to broadcast against any
// shape (see §8 scenario S4) — the distinction is purely which operators
// are allowed to invoke it.
func EquivShapes(op string, a, b Shape) (Shape, error) {
	return Unify(op, a, b)
}

// MinDimensions ensures s has rank >= n, solving the flex tail to the
// missing inferred dims if s is shorter and open; the flex tail is then
// closed and the returned shape has exactly n dims. Fails if s is closed
// (no flex) and shorter than n.
func MinDimensions(op string, s Shape, n int) (Shape, error) {
	if len(s.Dims) >= n {
		return s, nil
	}
	need := n - len(s.Dims)
	if s.Flex == nil {
		return Shape{}, dslerr.NewShapeMismatch(op, "rank >= "+strconv.Itoa(n), s.String())
	}
	extra := make([]Dim, need)
	for i := range extra {
		extra[i] = Inferred()
	}
	if err := extendFlex(op, s.Flex, New(extra...)); err != nil {
		return Shape{}, err
	}
	merged := Shape{
		Dims: append(append([]Dim{}, s.Dims...), extra...),
	}
	return merged, nil
}
