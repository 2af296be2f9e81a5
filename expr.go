package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"

	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/internal/envconfig"
	"github.com/flarelee/gotensor/shape"
)

// Expr is a node in the lazy expression graph. It carries everything
// needed to type-check a computation before anything is ever run: a
// (possibly partially inferred) Shape, an element DType, and an estimated
// evaluation Cost. Actual backend construction is deferred to build,
// which Ctxt.Lower invokes at most once per node per run.
//
// Identity matters more than structure here: two Exprs built the same way
// from the same inputs are still distinct nodes, and the DSL's
// memoization (Ctxt.nodes) keys on the *Expr pointer itself, not on any
// value derived from its fields. Callers should treat Expr as an opaque
// handle and always pass it around by pointer, the same way the teacher
// repository's GraphTensor values are only ever handed out as pointers.
type Expr struct {
	Shape shape.Shape
	DType dtype.T
	Cost  int

	// Op names the operator that produced this node; the live-check
	// notice logs it.
	Op string

	build func(ctxt *Ctxt) (tf.Output, error)

	// literal is non-nil for constant nodes that can be materialized
	// without a graph at all (construct.go's scalar/vec/matrix/... and
	// friends). It lets to_array/eval-style helpers short-circuit a
	// live-check run instead of failing for want of a backend.
	literal func() (*tf.Tensor, error)
}

func newExpr(op string, sh shape.Shape, dt dtype.T, cost int, build func(ctxt *Ctxt) (tf.Output, error)) *Expr {
	return &Expr{Op: op, Shape: sh, DType: dt, Cost: cost, build: build}
}

// IsConstant reports whether e carries a literal payload.
func (e *Expr) IsConstant() bool {
	return e.literal != nil
}

// livePlaceholder builds the zero-filled stand-in Session.Run returns for
// each requested output while envconfig.LiveCheck is enabled: dtype and
// rank are real, every dim is real when the shape is resolved and 0
// otherwise, and the backend is never invoked.
func (e *Expr) livePlaceholder() (*tf.Tensor, error) {
	envconfig.LogLiveCheckNotice(e.Op)
	dims, ok := e.Shape.ResolvedInts()
	if !ok {
		dims = make([]int, e.Shape.Rank())
	}
	return zeroTensor(e.DType, dims)
}
