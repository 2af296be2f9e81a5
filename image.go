package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"
	"gocv.io/x/gocv"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

// Pixel returns a rank-1 [3]float32 constant holding an RGB triple.
func Pixel(r, g, b float64) (*Expr, error) {
	return Vec(dtype.FP32, []float64{r, g, b})
}

// Image converts a decoded gocv.Mat (8-bit, 3-channel) into a rank-3
// [height, width, channels] float32 constant, matching the layout
// DecodeJpeg's output uses.
func Image(mat gocv.Mat) (*Expr, error) {
	if mat.Empty() {
		return nil, dslerr.NewBadArgument("Image", "input Mat is empty")
	}
	rows, cols := mat.Rows(), mat.Cols()
	channels := mat.Channels()
	values := make([][][]float64, rows)
	for y := 0; y < rows; y++ {
		values[y] = make([][]float64, cols)
		for x := 0; x < cols; x++ {
			pixel := make([]float64, channels)
			for c := 0; c < channels; c++ {
				pixel[c] = float64(mat.GetUCharAt(y, x*channels+c))
			}
			values[y][x] = pixel
		}
	}
	return Tensor3(dtype.FP32, values)
}

// DecodeJpeg decodes a scalar STR tensor of raw JPEG bytes into a rank-3
// [height, width, channels] tensor. The spatial dimensions are content
// dependent and therefore left as inference variables rather than
// claimed to be known.
func DecodeJpeg(data *Expr) (*Expr, error) {
	if data.DType != dtype.STR {
		return nil, dslerr.NewBadArgument("DecodeJpeg", "input must be STR-typed")
	}
	outShape := shape.New(shape.Inferred(), shape.Inferred(), shape.Known(3))
	return newExpr("DecodeJpeg", outShape, dtype.FP32, data.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xd, err := ctxt.Lower(data)
		if err != nil {
			return tf.Output{}, err
		}
		decoded := tfop.DecodeJpeg(ctxt.Scope().SubScope("DecodeJpeg"), xd, tfop.DecodeJpegChannels(3))
		return tfop.Cast(ctxt.Scope().SubScope("DecodeJpegCast"), decoded, tf.Float), nil
	}), nil
}

// Video is a thin sequential reader over a gocv.VideoCapture, yielding
// each frame as an Image Expr.
type Video struct {
	cap *gocv.VideoCapture
}

// OpenVideo opens path (file or device index string) for frame-by-frame
// reading.
func OpenVideo(path string) (*Video, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, err
	}
	return &Video{cap: vc}, nil
}

// NextFrame reads and converts the next frame, returning (nil, nil, io.EOF)-like
// ok=false at end of stream.
func (v *Video) NextFrame() (*Expr, bool, error) {
	mat := gocv.NewMat()
	defer mat.Close()
	if ok := v.cap.Read(&mat); !ok || mat.Empty() {
		return nil, false, nil
	}
	e, err := Image(mat)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Close releases the underlying capture device.
func (v *Video) Close() error {
	return v.cap.Close()
}
