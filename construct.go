package gotensor

import (
	"reflect"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

// constant builds an Expr around a Go value that tf.NewTensor accepts
// directly (a scalar or a typed nested slice), tagging it with dt as
// given, and recording a literal so pure-constant evaluation can skip
// opening a Session entirely.
func constant(dt dtype.T, value any) (*Expr, error) {
	t, err := tf.NewTensor(value)
	if err != nil {
		return nil, dslerr.NewBadArgument("constant", err.Error())
	}
	dims := make([]shape.Dim, len(t.Shape()))
	for i, d := range t.Shape() {
		dims[i] = shape.Known(int(d))
	}
	e := newExpr("Const", shape.New(dims...), dt, 0, func(ctxt *Ctxt) (tf.Output, error) {
		s := ctxt.Scope().SubScope("Const")
		out := tfop.Const(s, t)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return out, nil
	})
	e.literal = func() (*tf.Tensor, error) { return t, nil }
	return e, nil
}

// Scalar returns a rank-0 constant holding v, cast to dt's Go
// representation.
func Scalar(dt dtype.T, v float64) (*Expr, error) {
	switch dt {
	case dtype.FP32:
		return constant(dt, float32(v))
	case dtype.FP64:
		return constant(dt, v)
	case dtype.INT32:
		return constant(dt, int32(v))
	case dtype.INT64:
		return constant(dt, int64(v))
	default:
		return nil, dslerr.NewBadArgument("Scalar", "unsupported dtype "+dt.String())
	}
}

// Vec returns a rank-1 constant from values.
func Vec(dt dtype.T, values []float64) (*Expr, error) {
	return constant(dt, castSlice1D(dt, values))
}

// Matrix returns a rank-2 constant from values (row-major).
func Matrix(dt dtype.T, values [][]float64) (*Expr, error) {
	rowType := reflect.TypeOf(castSlice1D(dt, nil))
	out := reflect.MakeSlice(reflect.SliceOf(rowType), len(values), len(values))
	for i, row := range values {
		out.Index(i).Set(reflect.ValueOf(castSlice1D(dt, row)))
	}
	return constant(dt, out.Interface())
}

// Tensor3 returns a rank-3 constant from values.
func Tensor3(dt dtype.T, values [][][]float64) (*Expr, error) {
	planeType := reflect.SliceOf(reflect.TypeOf(castSlice1D(dt, nil)))
	out := reflect.MakeSlice(reflect.SliceOf(planeType), len(values), len(values))
	for i, plane := range values {
		rows := reflect.MakeSlice(planeType, len(plane), len(plane))
		for j, row := range plane {
			rows.Index(j).Set(reflect.ValueOf(castSlice1D(dt, row)))
		}
		out.Index(i).Set(rows)
	}
	return constant(dt, out.Interface())
}

// Tensor4 returns a rank-4 constant from values.
func Tensor4(dt dtype.T, values [][][][]float64) (*Expr, error) {
	planeType := reflect.SliceOf(reflect.TypeOf(castSlice1D(dt, nil)))
	blockType := reflect.SliceOf(planeType)
	out := reflect.MakeSlice(reflect.SliceOf(blockType), len(values), len(values))
	for i, block := range values {
		planes := reflect.MakeSlice(blockType, len(block), len(block))
		for j, plane := range block {
			rows := reflect.MakeSlice(planeType, len(plane), len(plane))
			for k, row := range plane {
				rows.Index(k).Set(reflect.ValueOf(castSlice1D(dt, row)))
			}
			planes.Index(j).Set(rows)
		}
		out.Index(i).Set(planes)
	}
	return constant(dt, out.Interface())
}

func castSlice1D(dt dtype.T, values []float64) any {
	switch dt {
	case dtype.FP32:
		out := make([]float32, len(values))
		for i, v := range values {
			out[i] = float32(v)
		}
		return out
	case dtype.INT32:
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = int32(v)
		}
		return out
	case dtype.INT64:
		out := make([]int64, len(values))
		for i, v := range values {
			out[i] = int64(v)
		}
		return out
	default:
		return values
	}
}

// TruncatedNormal returns an Expr of the given shape filled with samples
// from a truncated normal distribution (values more than two standard
// deviations from the mean are redrawn), the backend's standard random
// initializer for trainable weights. sh must be fully resolved: the
// distribution has to know how many values to draw.
func TruncatedNormal(dt dtype.T, sh shape.Shape) (*Expr, error) {
	dims, ok := sh.ResolvedInts()
	if !ok {
		return nil, dslerr.NewBadArgument("TruncatedNormal", "shape must be constructible at run: "+sh.String())
	}
	tdt, err := tfDataType(dt)
	if err != nil {
		return nil, err
	}
	shapeDims := make([]int32, len(dims))
	for i, d := range dims {
		shapeDims[i] = int32(d)
	}
	return newExpr("TruncatedNormal", sh, dt, 0, func(ctxt *Ctxt) (tf.Output, error) {
		s := ctxt.Scope().SubScope("TruncatedNormal")
		shapeTensor, err := tf.NewTensor(shapeDims)
		if err != nil {
			return tf.Output{}, dslerr.NewBadArgument("TruncatedNormal", err.Error())
		}
		shapeOut := tfop.Const(s.SubScope("shape"), shapeTensor)
		out := tfop.TruncatedNormal(s, shapeOut, tdt)
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return out, nil
	}), nil
}

// Batch stacks exprs along a new leading axis, for assembling a batch
// dimension out of individually-constructed examples.
func Batch(exprs []*Expr) (*Expr, error) {
	return Stack(0, exprs)
}

// ToScalar extracts a rank-0 float64 value from t.
func ToScalar(t *tf.Tensor) (float64, error) {
	v := t.Value()
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, dslerr.NewBadArgument("ToScalar", "tensor is not rank-0 numeric")
	}
}

// ToArray extracts a rank-1 []float64 from t.
func ToArray(t *tf.Tensor) ([]float64, error) {
	v := t.Value()
	return toFloat64Slice1D(v)
}

// ToArray2D extracts a rank-2 [][]float64 from t.
func ToArray2D(t *tf.Tensor) ([][]float64, error) {
	v, ok := t.Value().([]any)
	if !ok {
		return nil, dslerr.NewBadArgument("ToArray2D", "tensor is not rank-2")
	}
	out := make([][]float64, len(v))
	for i, row := range v {
		r, err := toFloat64Slice1D(row)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// ToArray3D extracts a rank-3 [][][]float64 from t.
func ToArray3D(t *tf.Tensor) ([][][]float64, error) {
	v, ok := t.Value().([]any)
	if !ok {
		return nil, dslerr.NewBadArgument("ToArray3D", "tensor is not rank-3")
	}
	out := make([][][]float64, len(v))
	for i, plane := range v {
		rows, ok := plane.([]any)
		if !ok {
			return nil, dslerr.NewBadArgument("ToArray3D", "tensor is not rank-3")
		}
		out[i] = make([][]float64, len(rows))
		for j, row := range rows {
			r, err := toFloat64Slice1D(row)
			if err != nil {
				return nil, err
			}
			out[i][j] = r
		}
	}
	return out, nil
}

// ToArray4D extracts a rank-4 [][][][]float64 from t.
func ToArray4D(t *tf.Tensor) ([][][][]float64, error) {
	v, ok := t.Value().([]any)
	if !ok {
		return nil, dslerr.NewBadArgument("ToArray4D", "tensor is not rank-4")
	}
	out := make([][][][]float64, len(v))
	for i, block := range v {
		planes, ok := block.([]any)
		if !ok {
			return nil, dslerr.NewBadArgument("ToArray4D", "tensor is not rank-4")
		}
		out[i] = make([][][]float64, len(planes))
		for j, plane := range planes {
			rows, ok := plane.([]any)
			if !ok {
				return nil, dslerr.NewBadArgument("ToArray4D", "tensor is not rank-4")
			}
			out[i][j] = make([][]float64, len(rows))
			for k, row := range rows {
				r, err := toFloat64Slice1D(row)
				if err != nil {
					return nil, err
				}
				out[i][j][k] = r
			}
		}
	}
	return out, nil
}

func toFloat64Slice1D(v any) ([]float64, error) {
	switch s := v.(type) {
	case []float32:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	case []float64:
		return s, nil
	case []int32:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(s))
		for i, x := range s {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, dslerr.NewBadArgument("toFloat64Slice1D", "tensor is not rank-1 numeric")
	}
}

// GetValue returns t's raw Go value, exactly as the backend decodes it
// (float32/float64/int32/int64/string, nested to t's rank). Prefer
// ToScalar/ToArray/ToArray2D when the rank is known statically.
func GetValue(t *tf.Tensor) any {
	return t.Value()
}

// Eval runs e in a throwaway Session and returns its single output
// tensor. Constants short-circuit through their literal payload without
// opening a Session at all.
func Eval(e *Expr) (*tf.Tensor, error) {
	if e.IsConstant() {
		return e.literal()
	}
	sess, err := NewSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	out, err := sess.Run(e)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Eval2 runs a and b in one Session/Run call, preserving any shared
// sub-expression memoization between them.
func Eval2(a, b *Expr) (*tf.Tensor, *tf.Tensor, error) {
	sess, err := NewSession()
	if err != nil {
		return nil, nil, err
	}
	defer sess.Close()
	out, err := sess.Run(a, b)
	if err != nil {
		return nil, nil, err
	}
	return out[0], out[1], nil
}

// Eval3 runs a, b and c in one Session/Run call.
func Eval3(a, b, c *Expr) (*tf.Tensor, *tf.Tensor, *tf.Tensor, error) {
	sess, err := NewSession()
	if err != nil {
		return nil, nil, nil, err
	}
	defer sess.Close()
	out, err := sess.Run(a, b, c)
	if err != nil {
		return nil, nil, nil, err
	}
	return out[0], out[1], out[2], nil
}
