package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/dtype"
	"github.com/flarelee/gotensor/shape"
)

// binaryPointwise unifies a's and b's shapes (broadcasting per §4.2),
// requires matching dtype, and defers to lower for the actual backend
// node. It is the constructor every arithmetic and comparison binary
// operator in this file is built from.
func binaryPointwise(op string, a, b *Expr, resultDType dtype.T, lower func(s *tfop.Scope, x, y tf.Output) (tf.Output, error)) (*Expr, error) {
	if a.DType != b.DType {
		return nil, dslerr.NewBadArgument(op, "operand dtypes differ: "+a.DType.String()+" vs "+b.DType.String())
	}
	sh, err := shape.EquivShapes(op, a.Shape, b.Shape)
	if err != nil {
		return nil, err
	}
	cost := a.Cost + b.Cost + 1
	return newExpr(op, sh, resultDType, cost, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		xb, err := ctxt.Lower(b)
		if err != nil {
			return tf.Output{}, err
		}
		return lower(ctxt.Scope().SubScope(op), xa, xb)
	}), nil
}

func unaryPointwise(op string, a *Expr, lower func(s *tfop.Scope, x tf.Output) tf.Output) *Expr {
	return newExpr(op, a.Shape, a.DType, a.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		xa, err := ctxt.Lower(a)
		if err != nil {
			return tf.Output{}, err
		}
		return lower(ctxt.Scope().SubScope(op), xa), nil
	})
}

// Add returns the elementwise sum of a and b.
func Add(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Add", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Add(s, x, y), nil
	})
}

// Sub returns the elementwise difference a - b.
func Sub(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Sub", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Sub(s, x, y), nil
	})
}

// Mul returns the elementwise product of a and b. Not to be confused with
// shape.Mul, which scales a dimension rather than a tensor.
func Mul(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Mul", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Mul(s, x, y), nil
	})
}

// Div returns the elementwise quotient a / b.
func Div(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Div", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Div(s, x, y), nil
	})
}

// Pow returns the elementwise power a ** b.
func Pow(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Pow", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Pow(s, x, y), nil
	})
}

// Maximum returns the elementwise max of a and b.
func Maximum(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Maximum", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Maximum(s, x, y), nil
	})
}

// Minimum returns the elementwise min of a and b.
func Minimum(a, b *Expr) (*Expr, error) {
	return binaryPointwise("Minimum", a, b, a.DType, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Minimum(s, x, y), nil
	})
}

// comparison builds a binary operator whose result dtype is always BOOL
// regardless of the operand dtype, e.g. Less, Equal.
func comparison(op string, a, b *Expr, lower func(s *tfop.Scope, x, y tf.Output) (tf.Output, error)) (*Expr, error) {
	return binaryPointwise(op, a, b, dtype.BOOL, lower)
}

func Equal(a, b *Expr) (*Expr, error) {
	return comparison("Equal", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Equal(s, x, y), nil
	})
}

func NotEqual(a, b *Expr) (*Expr, error) {
	return comparison("NotEqual", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.NotEqual(s, x, y), nil
	})
}

func Less(a, b *Expr) (*Expr, error) {
	return comparison("Less", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Less(s, x, y), nil
	})
}

func LessEqual(a, b *Expr) (*Expr, error) {
	return comparison("LessEqual", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.LessEqual(s, x, y), nil
	})
}

func Greater(a, b *Expr) (*Expr, error) {
	return comparison("Greater", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.Greater(s, x, y), nil
	})
}

func GreaterEqual(a, b *Expr) (*Expr, error) {
	return comparison("GreaterEqual", a, b, func(s *tfop.Scope, x, y tf.Output) (tf.Output, error) {
		return tfop.GreaterEqual(s, x, y), nil
	})
}

// Neg returns the elementwise negation of a.
func Neg(a *Expr) *Expr { return unaryPointwise("Neg", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Neg(s, x) }) }

// Abs returns the elementwise absolute value of a.
func Abs(a *Expr) *Expr { return unaryPointwise("Abs", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Abs(s, x) }) }

// Sqrt returns the elementwise square root of a.
func Sqrt(a *Expr) *Expr {
	return unaryPointwise("Sqrt", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Sqrt(s, x) })
}

// Square returns the elementwise square of a.
func Square(a *Expr) *Expr {
	return unaryPointwise("Square", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Square(s, x) })
}

// Exp returns the elementwise natural exponential of a.
func Exp(a *Expr) *Expr { return unaryPointwise("Exp", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Exp(s, x) }) }

// Log returns the elementwise natural logarithm of a.
func Log(a *Expr) *Expr { return unaryPointwise("Log", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Log(s, x) }) }

// Sin returns the elementwise sine of a.
func Sin(a *Expr) *Expr { return unaryPointwise("Sin", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Sin(s, x) }) }

// Cos returns the elementwise cosine of a.
func Cos(a *Expr) *Expr { return unaryPointwise("Cos", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Cos(s, x) }) }

// Tanh returns the elementwise hyperbolic tangent of a.
func Tanh(a *Expr) *Expr {
	return unaryPointwise("Tanh", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Tanh(s, x) })
}

// Sigmoid returns the elementwise logistic sigmoid of a.
func Sigmoid(a *Expr) *Expr {
	return unaryPointwise("Sigmoid", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Sigmoid(s, x) })
}

// Relu returns the elementwise rectified linear unit of a.
func Relu(a *Expr) *Expr {
	return unaryPointwise("Relu", a, func(s *tfop.Scope, x tf.Output) tf.Output { return tfop.Relu(s, x) })
}

// Where selects elementwise between x and y according to cond, which must
// be BOOL-typed and whose shape unifies with both branches. x and y must
// share a dtype, which becomes the result dtype.
func Where(cond, x, y *Expr) (*Expr, error) {
	if cond.DType != dtype.BOOL {
		return nil, dslerr.NewBadArgument("Where", "condition must be BOOL, got "+cond.DType.String())
	}
	if x.DType != y.DType {
		return nil, dslerr.NewBadArgument("Where", "branch dtypes differ: "+x.DType.String()+" vs "+y.DType.String())
	}
	sh, err := shape.Unify("Where", cond.Shape, x.Shape)
	if err != nil {
		return nil, err
	}
	sh, err = shape.Unify("Where", sh, y.Shape)
	if err != nil {
		return nil, err
	}
	cost := cond.Cost + x.Cost + y.Cost + 1
	return newExpr("Where", sh, x.DType, cost, func(ctxt *Ctxt) (tf.Output, error) {
		xc, err := ctxt.Lower(cond)
		if err != nil {
			return tf.Output{}, err
		}
		xx, err := ctxt.Lower(x)
		if err != nil {
			return tf.Output{}, err
		}
		xy, err := ctxt.Lower(y)
		if err != nil {
			return tf.Output{}, err
		}
		return tfop.Select(ctxt.Scope().SubScope("Where"), xc, xx, xy), nil
	}), nil
}
