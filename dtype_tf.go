package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/dtype"
)

// tfDataType maps the DSL's closed dtype enum onto the backend's runtime
// DataType codes. Kept as a single small switch so adding a dtype variant
// only ever touches this one place plus package dtype itself.
func tfDataType(dt dtype.T) (tf.DataType, error) {
	switch dt {
	case dtype.FP32:
		return tf.Float, nil
	case dtype.FP64:
		return tf.Double, nil
	case dtype.INT32:
		return tf.Int32, nil
	case dtype.INT64:
		return tf.Int64, nil
	case dtype.STR:
		return tf.String, nil
	case dtype.BOOL:
		return tf.Bool, nil
	default:
		return 0, dslerr.NewBadArgument("dtype", "unrecognized dtype tag")
	}
}
