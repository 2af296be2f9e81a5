// Package dtype enumerates the element types an Expr may carry.
package dtype

// T tags the element type of a tensor expression. The DSL treats this as a
// closed set: FP32, FP64, INT32, INT64, STR (UTF-8 byte strings used by
// DecodeJpeg and friends) and BOOL (the result type of comparison
// operators and Where's predicate argument).
type T uint8

const (
	FP32 T = iota
	FP64
	INT32
	INT64
	STR
	BOOL
)

func (t T) String() string {
	switch t {
	case FP32:
		return "float32"
	case FP64:
		return "float64"
	case INT32:
		return "int32"
	case INT64:
		return "int64"
	case STR:
		return "string"
	case BOOL:
		return "bool"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether t supports arithmetic operators.
func (t T) IsNumeric() bool {
	return t != STR && t != BOOL
}

// IsFloat reports whether t is a floating point type.
func (t T) IsFloat() bool {
	return t == FP32 || t == FP64
}

// FromData infers a T from a Go value's underlying element type. The
// literal constructors (Scalar, Vec, Matrix, ...) do not call it; they take
// their T as an argument.
func FromData(data any) T {
	switch data.(type) {
	case float32, []float32:
		return FP32
	case float64, []float64:
		return FP64
	case int32, []int32:
		return INT32
	case int, int64, []int, []int64:
		return INT64
	case string, []byte:
		return STR
	default:
		return FP32
	}
}
