package gotensor

import (
	"strconv"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/shape"
)

// reduceShape drops (or, with keepDims, pins to 1) the axes listed in
// axes from sh. Negative axes count from the end, per §4.2's indexing
// convention. sh must be closed (no flex tail); its dims may still be
// open. Reducing a flex-tailed shape by explicit axis numbers is ambiguous
// about which dimensions those numbers name, so it's rejected rather than
// guessed at.
func reduceShape(op string, sh shape.Shape, axes []int, keepDims bool) (shape.Shape, error) {
	rank := sh.Rank()
	if sh.HasFlex() {
		return shape.Shape{}, dslerr.NewBadArgument(op, "cannot reduce a shape with an unresolved flex tail")
	}
	drop := make(map[int]bool, len(axes))
	for _, a := range axes {
		if a < 0 {
			a += rank
		}
		if a < 0 || a >= rank {
			return shape.Shape{}, dslerr.NewBadArgument(op, "axis out of range for rank "+strconv.Itoa(rank))
		}
		drop[a] = true
	}
	var out []shape.Dim
	for i, d := range sh.Dims {
		if drop[i] {
			if keepDims {
				out = append(out, shape.Known(1))
			}
			continue
		}
		out = append(out, d)
	}
	return shape.New(out...), nil
}

// resolveAxes implements the spec default: a nil or empty axes list means
// "reduce every axis", matching scenario S2 (sum(vec) -> scalar). An
// explicit axes list is used as given.
func resolveAxes(rank int, axes []int) []int {
	if len(axes) > 0 {
		return axes
	}
	all := make([]int, rank)
	for i := range all {
		all[i] = i
	}
	return all
}

type reduceLower func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output

func reduceOp(op string, a *Expr, axes []int, keepDims bool, lower reduceLower) (*Expr, error) {
	axes = resolveAxes(a.Shape.Rank(), axes)
	sh, err := reduceShape(op, a.Shape, axes, keepDims)
	if err != nil {
		return nil, err
	}
	axes32 := make([]int32, len(axes))
	for i, v := range axes {
		axes32[i] = int32(v)
	}
	return newExpr(op, sh, a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope(op)
		axisTensor, err := tf.NewTensor(axes32)
		if err != nil {
			return tf.Output{}, err
		}
		axisOut := tfop.Const(s.SubScope("axis"), axisTensor)
		result := lower(s, xa, axisOut, keepDims)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

// Sum reduces a by summing over axes, keeping reduced axes of size 1 when
// keepDims is set. A nil or empty axes reduces every axis to a scalar.
func Sum(a *Expr, axes []int, keepDims bool) (*Expr, error) {
	return reduceOp("Sum", a, axes, keepDims, func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output {
		return tfop.Sum(s, input, axis, tfop.SumKeepDims(keepDims))
	})
}

// Mean reduces a by averaging over axes. A nil or empty axes averages
// every axis to a scalar.
func Mean(a *Expr, axes []int, keepDims bool) (*Expr, error) {
	return reduceOp("Mean", a, axes, keepDims, func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output {
		return tfop.Mean(s, input, axis, tfop.MeanKeepDims(keepDims))
	})
}

// Prod reduces a by multiplying over axes. A nil or empty axes multiplies
// every axis down to a scalar.
func Prod(a *Expr, axes []int, keepDims bool) (*Expr, error) {
	return reduceOp("Prod", a, axes, keepDims, func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output {
		return tfop.Prod(s, input, axis, tfop.ProdKeepDims(keepDims))
	})
}

// ReduceMax reduces a by taking the maximum over axes. A nil or empty
// axes reduces every axis to a scalar.
func ReduceMax(a *Expr, axes []int, keepDims bool) (*Expr, error) {
	return reduceOp("Max", a, axes, keepDims, func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output {
		return tfop.Max(s, input, axis, tfop.MaxKeepDims(keepDims))
	})
}

// ReduceMin reduces a by taking the minimum over axes. A nil or empty
// axes reduces every axis to a scalar.
func ReduceMin(a *Expr, axes []int, keepDims bool) (*Expr, error) {
	return reduceOp("Min", a, axes, keepDims, func(s *tfop.Scope, input, axis tf.Output, keepDims bool) tf.Output {
		return tfop.Min(s, input, axis, tfop.MinKeepDims(keepDims))
	})
}
