package gotensor

import (
	"strconv"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

// MatMul contracts the last axis of a against the second-to-last axis of
// b, batching over any leading axes the two shapes share after
// unification. Both operands need rank >= 2.
func MatMul(a, b *Expr) (*Expr, error) {
	if a.DType != b.DType {
		return nil, dslerr.NewBadArgument("MatMul", "operand dtypes differ: "+a.DType.String()+" vs "+b.DType.String())
	}
	as, err := shape.MinDimensions("MatMul", a.Shape, 2)
	if err != nil {
		return nil, err
	}
	bs, err := shape.MinDimensions("MatMul", b.Shape, 2)
	if err != nil {
		return nil, err
	}
	an, bn := len(as.Dims), len(bs.Dims)
	aBatch := shape.New(as.Dims[:an-2]...)
	bBatch := shape.New(bs.Dims[:bn-2]...)
	batch, err := shape.Unify("MatMul", aBatch, bBatch)
	if err != nil {
		return nil, err
	}
	if err := shape.UnifyDim("MatMul", as.Dims[an-1], bs.Dims[bn-2]); err != nil {
		return nil, err
	}
	m := as.Dims[an-2]
	n := bs.Dims[bn-1]
	out := append(append([]shape.Dim{}, batch.Dims...), m, n)
	return newExpr("MatMul", shape.New(out...), a.DType, a.Cost+b.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		xb, err := ctxt.Lower(b)
		if err != nil {
			return tf.Output{}, err
		}
		if an > 2 || bn > 2 {
			return tfop.BatchMatMul(ctxt.Scope().SubScope("MatMul"), xa, xb), nil
		}
		return tfop.MatMul(ctxt.Scope().SubScope("MatMul"), xa, xb), nil
	}), nil
}

// Reshape reinterprets a's elements under newShape without moving data.
// newShape must be fully resolved; reshaping into an open shape is
// rejected rather than guessed at.
func Reshape(a *Expr, newShape shape.Shape) (*Expr, error) {
	dims, ok := newShape.ResolvedInts()
	if !ok {
		return nil, dslerr.NewBadArgument("Reshape", "target shape must be fully resolved")
	}
	dims32 := make([]int32, len(dims))
	for i, d := range dims {
		dims32[i] = int32(d)
	}
	return newExpr("Reshape", newShape, a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope("Reshape")
		shapeTensor, err := tf.NewTensor(dims32)
		if err != nil {
			return tf.Output{}, err
		}
		shapeOut := tfop.Const(s.SubScope("shape"), shapeTensor)
		result := tfop.Reshape(s, xa, shapeOut)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

// BroadcastTo unifies a's shape with target and materializes the result
// at target's (necessarily at-least-as-specific) shape.
func BroadcastTo(a *Expr, target shape.Shape) (*Expr, error) {
	sh, err := shape.Unify("BroadcastTo", a.Shape, target)
	if err != nil {
		return nil, err
	}
	dims, ok := sh.ResolvedInts()
	if !ok {
		return nil, dslerr.NewBadArgument("BroadcastTo", "target shape must be fully resolved")
	}
	dims32 := make([]int32, len(dims))
	for i, d := range dims {
		dims32[i] = int32(d)
	}
	return newExpr("BroadcastTo", sh, a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope("BroadcastTo")
		shapeTensor, err := tf.NewTensor(dims32)
		if err != nil {
			return tf.Output{}, err
		}
		shapeOut := tfop.Const(s.SubScope("shape"), shapeTensor)
		result := tfop.BroadcastTo(s, xa, shapeOut)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

// Stack joins exprs, which must all share a dtype and a unified shape,
// into a new tensor with an extra axis of length len(exprs) inserted at
// axis.
func Stack(axis int, exprs []*Expr) (*Expr, error) {
	if len(exprs) == 0 {
		return nil, dslerr.NewBadArgument("Stack", "at least one expression required")
	}
	dt := exprs[0].DType
	sh := exprs[0].Shape
	cost := 0
	for _, e := range exprs[1:] {
		if e.DType != dt {
			return nil, dslerr.NewBadArgument("Stack", "dtype mismatch across stacked expressions")
		}
		var err error
		sh, err = shape.Unify("Stack", sh, e.Shape)
		if err != nil {
			return nil, err
		}
	}
	for _, e := range exprs {
		cost += e.Cost
	}
	rank := sh.Rank() + 1
	a := axis
	if a < 0 {
		a += rank
	}
	if a < 0 || a > rank-1 {
		return nil, dslerr.NewBadArgument("Stack", "axis out of range")
	}
	out := append(append([]shape.Dim{}, sh.Dims[:a]...), shape.Known(len(exprs)))
	out = append(out, sh.Dims[a:]...)
	return newExpr("Stack", shape.New(out...), dt, cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		outs := make([]tf.Output, len(exprs))
		for i, e := range exprs {
			xe, err := ctxt.Lower(e)
			if err != nil {
				return tf.Output{}, err
			}
			outs[i] = xe
		}
		return tfop.Pack(ctxt.Scope().SubScope("Stack"), outs, tfop.PackAxis(int64(a))), nil
	}), nil
}

// ExpandDims inserts a length-1 axis at axis.
func ExpandDims(a *Expr, axis int) (*Expr, error) {
	rank := a.Shape.Rank() + 1
	ax := axis
	if ax < 0 {
		ax += rank
	}
	if ax < 0 || ax > rank-1 {
		return nil, dslerr.NewBadArgument("ExpandDims", "axis out of range")
	}
	out := append(append([]shape.Dim{}, a.Shape.Dims[:ax]...), shape.Known(1))
	out = append(out, a.Shape.Dims[ax:]...)
	return newExpr("ExpandDims", shape.New(out...), a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope("ExpandDims")
		axisTensor, err := tf.NewTensor(int32(ax))
		if err != nil {
			return tf.Output{}, err
		}
		axisOut := tfop.Const(s.SubScope("axis"), axisTensor)
		result := tfop.ExpandDims(s, xa, axisOut)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

// Slice extracts a fixed-size sub-tensor of a starting at begin, with
// size[i] elements along axis i. Both begin and size must cover every
// axis of a's (fully resolved) shape.
func Slice(a *Expr, begin, size []int) (*Expr, error) {
	dims, ok := a.Shape.ResolvedInts()
	if !ok {
		return nil, dslerr.NewBadArgument("Slice", "input shape must be fully resolved")
	}
	if len(begin) != len(dims) || len(size) != len(dims) {
		return nil, dslerr.NewBadArgument("Slice", "begin/size rank must match input rank")
	}
	outDims := make([]shape.Dim, len(dims))
	for i := range dims {
		if begin[i] < 0 || size[i] < 0 || begin[i]+size[i] > dims[i] {
			return nil, dslerr.NewBadArgument("Slice", "begin/size out of bounds on axis "+strconv.Itoa(i))
		}
		outDims[i] = shape.Known(size[i])
	}
	begin32 := toInt32Slice(begin)
	size32 := toInt32Slice(size)
	return newExpr("Slice", shape.New(outDims...), a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope("Slice")
		beginTensor, err := tf.NewTensor(begin32)
		if err != nil {
			return tf.Output{}, err
		}
		sizeTensor, err := tf.NewTensor(size32)
		if err != nil {
			return tf.Output{}, err
		}
		beginOut := tfop.Const(s.SubScope("begin"), beginTensor)
		sizeOut := tfop.Const(s.SubScope("size"), sizeTensor)
		result := tfop.Slice(s, xa, beginOut, sizeOut)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

func toInt32Slice(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// DiagPart extracts the diagonal of a square matrix (or batch of square
// matrices): input rank must be even, and the first and second halves of
// its shape must match pairwise.
func DiagPart(a *Expr) (*Expr, error) {
	rank := a.Shape.Rank()
	if rank%2 != 0 || rank == 0 {
		return nil, dslerr.NewBadArgument("DiagPart", "input rank must be even and positive")
	}
	half := rank / 2
	for i := 0; i < half; i++ {
		if err := shape.UnifyDim("DiagPart", a.Shape.Dims[i], a.Shape.Dims[i+half]); err != nil {
			return nil, err
		}
	}
	out := shape.New(a.Shape.Dims[:half]...)
	return newExpr("DiagPart", out, a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		return tfop.DiagPart(ctxt.Scope().SubScope("DiagPart"), xa), nil
	}), nil
}

// Cast reinterprets a's elements as newDType, keeping its shape.
func Cast(a *Expr, newDType dtype.T) (*Expr, error) {
	dstType, err := tfDataType(newDType)
	if err != nil {
		return nil, err
	}
	return newExpr("Cast", a.Shape, newDType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		return tfop.Cast(ctxt.Scope().SubScope("Cast"), xa, dstType), nil
	}), nil
}
