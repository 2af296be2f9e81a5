package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/shape"
)

// Padding selects the spatial padding scheme for the windowed operators
// (Conv2D, MaxPool2D, AvgPool2D).
type Padding string

const (
	PaddingSame  Padding = "SAME"
	PaddingValid Padding = "VALID"
)

// spatialOutputDim computes one output spatial dimension for a windowed
// op. Under SAME padding the result is ceil(in/stride) regardless of
// window size, which is exactly shape.Div's striding semantics, so an
// open (unresolved) in dimension stays open through a SAME-padded
// convolution. VALID padding's output depends on the window size too
// (ceil((in-window+1)/stride)), which shape.Div cannot express
// symbolically, so VALID requires in to already be resolved.
func spatialOutputDim(op string, in shape.Dim, window, stride int) (shape.Dim, error) {
	if stride < 2 {
		if stride == 1 {
			return in, nil
		}
		return nil, dslerr.NewBadArgument(op, "stride must be >= 1")
	}
	return shape.Div(in, stride), nil
}

func spatialOutputDimValid(op string, in shape.Dim, window, stride int) (shape.Dim, error) {
	n, ok := shape.Resolve(in)
	if !ok {
		return nil, dslerr.NewBadArgument(op, "VALID padding requires a resolved spatial dimension")
	}
	if n < window {
		return nil, dslerr.NewBadArgument(op, "window larger than input for VALID padding")
	}
	out := (n-window)/stride + 1
	return shape.Known(out), nil
}

func windowedSpatial(op string, padding Padding, in shape.Dim, window, stride int) (shape.Dim, error) {
	if padding == PaddingSame {
		return spatialOutputDim(op, in, window, stride)
	}
	return spatialOutputDimValid(op, in, window, stride)
}

// Conv2D computes a 2D convolution of input (NHWC) with filter
// (filterHeight, filterWidth, inChannels, outChannels), matching the
// layout TensorFlow's Conv2D op expects.
func Conv2D(input, filter *Expr, strideH, strideW int, padding Padding) (*Expr, error) {
	if input.DType != filter.DType {
		return nil, dslerr.NewBadArgument("Conv2D", "input/filter dtype mismatch")
	}
	in, err := shape.MinDimensions("Conv2D", input.Shape, 4)
	if err != nil {
		return nil, err
	}
	f, err := shape.MinDimensions("Conv2D", filter.Shape, 4)
	if err != nil {
		return nil, err
	}
	fh, ok := shape.Resolve(f.Dims[0])
	if !ok {
		return nil, dslerr.NewBadArgument("Conv2D", "filter height must be resolved")
	}
	fw, ok := shape.Resolve(f.Dims[1])
	if !ok {
		return nil, dslerr.NewBadArgument("Conv2D", "filter width must be resolved")
	}
	if err := shape.UnifyDim("Conv2D", in.Dims[3], f.Dims[2]); err != nil {
		return nil, err
	}
	outH, err := windowedSpatial("Conv2D", padding, in.Dims[1], fh, strideH)
	if err != nil {
		return nil, err
	}
	outW, err := windowedSpatial("Conv2D", padding, in.Dims[2], fw, strideW)
	if err != nil {
		return nil, err
	}
	outShape := shape.New(in.Dims[0], outH, outW, f.Dims[3])
	return newExpr("Conv2D", outShape, input.DType, input.Cost+filter.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xi, err := ctxt.Lower(input)
		if err != nil {
			return tf.Output{}, err
		}
		xf, err := ctxt.Lower(filter)
		if err != nil {
			return tf.Output{}, err
		}
		strides := []int64{1, int64(strideH), int64(strideW), 1}
		return tfop.Conv2D(ctxt.Scope().SubScope("Conv2D"), xi, xf, strides, string(padding)), nil
	}), nil
}

// Conv2DBackpropInput computes the gradient of Conv2D with respect to its
// input, given the filter, the upstream gradient outGrad (shaped like
// Conv2D's output), and the shape the input gradient must take.
func Conv2DBackpropInput(inputShape shape.Shape, filter, outGrad *Expr, strideH, strideW int, padding Padding) (*Expr, error) {
	dims, ok := inputShape.ResolvedInts()
	if !ok {
		return nil, dslerr.NewBadArgument("Conv2DBackpropInput", "input shape must be fully resolved")
	}
	dims32 := toInt32Slice(dims)
	cost := filter.Cost + outGrad.Cost + 1
	return newExpr("Conv2DBackpropInput", inputShape, filter.DType, cost, func(ctxt *Ctxt) (tf.Output, error) {
		xf, err := ctxt.Lower(filter)
		if err != nil {
			return tf.Output{}, err
		}
		xg, err := ctxt.Lower(outGrad)
		if err != nil {
			return tf.Output{}, err
		}
		s := ctxt.Scope().SubScope("Conv2DBackpropInput")
		shapeTensor, err := tf.NewTensor(dims32)
		if err != nil {
			return tf.Output{}, err
		}
		shapeOut := tfop.Const(s.SubScope("input_sizes"), shapeTensor)
		strides := []int64{1, int64(strideH), int64(strideW), 1}
		result := tfop.Conv2DBackpropInput(s, shapeOut, xf, xg, strides, string(padding))
		if err := s.Err(); err != nil {
			return tf.Output{}, err
		}
		return result, nil
	}), nil
}

func pool2D(op string, input *Expr, windowH, windowW, strideH, strideW int, padding Padding, lower func(s *tfop.Scope, in tf.Output, ksize, strides []int64, padding string) tf.Output) (*Expr, error) {
	in, err := shape.MinDimensions(op, input.Shape, 4)
	if err != nil {
		return nil, err
	}
	outH, err := windowedSpatial(op, padding, in.Dims[1], windowH, strideH)
	if err != nil {
		return nil, err
	}
	outW, err := windowedSpatial(op, padding, in.Dims[2], windowW, strideW)
	if err != nil {
		return nil, err
	}
	outShape := shape.New(in.Dims[0], outH, outW, in.Dims[3])
	return newExpr(op, outShape, input.DType, input.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xi, err := ctxt.Lower(input)
		if err != nil {
			return tf.Output{}, err
		}
		ksize := []int64{1, int64(windowH), int64(windowW), 1}
		strides := []int64{1, int64(strideH), int64(strideW), 1}
		return lower(ctxt.Scope().SubScope(op), xi, ksize, strides, string(padding)), nil
	}), nil
}

// MaxPool2D applies NHWC max pooling with the given window and stride.
func MaxPool2D(input *Expr, windowH, windowW, strideH, strideW int, padding Padding) (*Expr, error) {
	return pool2D("MaxPool2D", input, windowH, windowW, strideH, strideW, padding, func(s *tfop.Scope, in tf.Output, ksize, strides []int64, padding string) tf.Output {
		return tfop.MaxPool(s, in, ksize, strides, padding)
	})
}

// AvgPool2D applies NHWC average pooling with the given window and
// stride.
func AvgPool2D(input *Expr, windowH, windowW, strideH, strideW int, padding Padding) (*Expr, error) {
	return pool2D("AvgPool2D", input, windowH, windowW, strideH, strideW, padding, func(s *tfop.Scope, in tf.Output, ksize, strides []int64, padding string) tf.Output {
		return tfop.AvgPool(s, in, ksize, strides, padding)
	})
}

// Normalize applies a fused batch/layer-style normalization: (x - mean) /
// sqrt(variance + epsilon) * scale + offset, where mean/variance are
// reduced over axes and scale/offset broadcast against x. It covers both
// batch norm (axes = all but the channel axis) and layer norm (axes = all
// but the batch axis) depending on which axes the caller reduces over.
func Normalize(x *Expr, axes []int, scale, offset *Expr, epsilon float64) (*Expr, error) {
	mean, err := Mean(x, axes, true)
	if err != nil {
		return nil, err
	}
	centered, err := Sub(x, mean)
	if err != nil {
		return nil, err
	}
	sq := Square(centered)
	variance, err := Mean(sq, axes, true)
	if err != nil {
		return nil, err
	}
	eps, err := Scalar(x.DType, epsilon)
	if err != nil {
		return nil, err
	}
	denomSq, err := Add(variance, eps)
	if err != nil {
		return nil, err
	}
	denom := Sqrt(denomSq)
	normalized, err := Div(centered, denom)
	if err != nil {
		return nil, err
	}
	scaled, err := Mul(normalized, scale)
	if err != nil {
		return nil, err
	}
	return Add(scaled, offset)
}
