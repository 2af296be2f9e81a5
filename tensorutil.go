package gotensor

import (
	"fmt"
	"reflect"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"

	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/dslerr"
)

// zeroTensor allocates a zero-filled *tf.Tensor of the given dtype and
// shape, used by the live-check placeholders.
func zeroTensor(dt dtype.T, dims []int) (*tf.Tensor, error) {
	switch dt {
	case dtype.FP32:
		return tf.NewTensor(zeroedNested(dims, func() any { return float32(0) }))
	case dtype.FP64:
		return tf.NewTensor(zeroedNested(dims, func() any { return float64(0) }))
	case dtype.INT32:
		return tf.NewTensor(zeroedNested(dims, func() any { return int32(0) }))
	case dtype.INT64:
		return tf.NewTensor(zeroedNested(dims, func() any { return int64(0) }))
	case dtype.STR:
		return tf.NewTensor(zeroedNested(dims, func() any { return "" }))
	case dtype.BOOL:
		return tf.NewTensor(zeroedNested(dims, func() any { return false }))
	default:
		return nil, dslerr.NewBadArgument("zeroTensor", fmt.Sprintf("unsupported dtype %v", dt))
	}
}

// zeroedNested builds a (possibly scalar) nested slice matching dims,
// filled with the zero value elem() produces. tf.NewTensor needs every
// level typed ([][]float32, not []any), so each level is built as a slice
// of its children's concrete type.
func zeroedNested(dims []int, elem func() any) any {
	if len(dims) == 0 {
		return elem()
	}
	return buildLevel(dims, 0, elem)
}

func buildLevel(dims []int, depth int, elem func() any) any {
	n := dims[depth]
	if depth == len(dims)-1 {
		switch v := elem().(type) {
		case float32:
			out := make([]float32, n)
			for i := range out {
				out[i] = v
			}
			return out
		case float64:
			out := make([]float64, n)
			for i := range out {
				out[i] = v
			}
			return out
		case int32:
			out := make([]int32, n)
			for i := range out {
				out[i] = v
			}
			return out
		case int64:
			out := make([]int64, n)
			for i := range out {
				out[i] = v
			}
			return out
		case string:
			out := make([]string, n)
			for i := range out {
				out[i] = v
			}
			return out
		case bool:
			out := make([]bool, n)
			for i := range out {
				out[i] = v
			}
			return out
		default:
			return nil
		}
	}
	childType := reflect.TypeOf(buildLevel(dims, depth+1, elem))
	out := reflect.MakeSlice(reflect.SliceOf(childType), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).Set(reflect.ValueOf(buildLevel(dims, depth+1, elem)))
	}
	return out.Interface()
}
