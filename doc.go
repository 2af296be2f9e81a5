// Package gotensor is a statically shape-checked, embedded DSL for
// building differentiable tensor computations.
//
// Callers compose Expr values through the operator constructors in this
// package (Add, MatMul, Sum, Conv2D, ...); each constructor infers an
// output Shape by unifying input shapes (package shape) and defers any
// backend work behind a closure. Running an Expr (via Session.Run or the
// top-level Eval helpers) lowers the recorded graph into TensorFlow graph
// nodes exactly once per run, memoized by expression identity, and
// executes them.
//
// The backend collaborator is TensorFlow's Graph/Session C-API bindings
// (github.com/tensorflow/tensorflow/tensorflow/go and its op subpackage);
// see DESIGN.md for why this binding was chosen over the gorgonia engine
// the teacher repository itself shipped.
package gotensor
