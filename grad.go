package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
)

// Gradients builds dy/dx for every x in xs, given a scalar (or
// broadcast-compatible) y. The result Exprs memoize on the structural key
// (y, dy, xs) via Ctxt.gradNodes: building the same gradient twice within
// one materialization reuses the backend subgraph instead of duplicating
// it, mirroring how the teacher's moment-node cache avoids rebuilding
// optimizer accumulators.
func Gradients(y *Expr, xs []*Expr) ([]*Expr, error) {
	return gradientsOf(y, xs, nil)
}

// GradientsWithSeed is Gradients with an explicit upstream gradient dy
// seeding the chain rule. DiffN, Hessian and Jacobian do not use it; they
// build on Diff and Gradients.
func GradientsWithSeed(y *Expr, xs []*Expr, dy *Expr) ([]*Expr, error) {
	return gradientsOf(y, xs, dy)
}

func gradientsOf(y *Expr, xs []*Expr, dy *Expr) ([]*Expr, error) {
	if len(xs) == 0 {
		return nil, dslerr.NewBadArgument("Gradients", "at least one x required")
	}
	key := gradKey{y: y, dy: dy, xsKey: makeXsKey(xs)}
	cost := y.Cost
	for _, x := range xs {
		cost += x.Cost
	}
	out := make([]*Expr, len(xs))
	for i, x := range xs {
		i, x := i, x
		out[i] = newExpr("Gradient", x.Shape, x.DType, cost+1, func(ctxt *Ctxt) (tf.Output, error) {
			if cached, ok := ctxt.gradNodes[key]; ok {
				return cached[i], nil
			}
			yOut, err := ctxt.Lower(y)
			if err != nil {
				return tf.Output{}, err
			}
			xOuts := make([]tf.Output, len(xs))
			for j, xe := range xs {
				xo, err := ctxt.Lower(xe)
				if err != nil {
					return tf.Output{}, err
				}
				xOuts[j] = xo
			}
			s := ctxt.Scope().SubScope("Gradients")
			var dyOut []tf.Output
			if dy != nil {
				d, err := ctxt.Lower(dy)
				if err != nil {
					return tf.Output{}, err
				}
				dyOut = []tf.Output{d}
			}
			grads := tfop.Gradients(s, []tf.Output{yOut}, xOuts, dyOut...)
			if err := s.Err(); err != nil {
				return tf.Output{}, err
			}
			ctxt.gradNodes[key] = grads
			return grads[i], nil
		})
	}
	return out, nil
}

// Diff returns the first derivative of y with respect to the single
// variable x.
func Diff(y, x *Expr) (*Expr, error) {
	grads, err := Gradients(y, []*Expr{x})
	if err != nil {
		return nil, err
	}
	return grads[0], nil
}

// DiffN returns the n-th derivative of y with respect to x, built by
// repeated application of Diff.
func DiffN(y, x *Expr, n int) (*Expr, error) {
	if n < 1 {
		return nil, dslerr.NewBadArgument("DiffN", "n must be >= 1")
	}
	cur := y
	for i := 0; i < n; i++ {
		next, err := Diff(cur, x)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Hessian returns the full second-derivative matrix of scalar y with
// respect to xs, stacked as a rank-2 tensor.
func Hessian(y *Expr, xs []*Expr) (*Expr, error) {
	firstOrder, err := Gradients(y, xs)
	if err != nil {
		return nil, err
	}
	rows := make([]*Expr, len(xs))
	for i, gi := range firstOrder {
		row, err := Gradients(gi, xs)
		if err != nil {
			return nil, err
		}
		stacked, err := Stack(0, row)
		if err != nil {
			return nil, err
		}
		rows[i] = stacked
	}
	return Stack(0, rows)
}

// Jacobian returns d(y_i)/d(x_j) for a vector-valued y and vector x,
// stacked as a rank-2 tensor whose rows correspond to y's components.
func Jacobian(y *Expr, x *Expr) (*Expr, error) {
	n, ok := y.Shape.ResolvedInts()
	if !ok || len(n) != 1 {
		return nil, dslerr.NewBadArgument("Jacobian", "y must be a resolved rank-1 tensor")
	}
	rows := make([]*Expr, n[0])
	for i := 0; i < n[0]; i++ {
		yi, err := Slice(y, []int{i}, []int{1})
		if err != nil {
			return nil, err
		}
		grad, err := Diff(yi, x)
		if err != nil {
			return nil, err
		}
		rows[i] = grad
	}
	return Stack(0, rows)
}

// Laplacian returns the sum of pure second partials of scalar y with
// respect to each of xs: sum_i d2y/dxi2.
func Laplacian(y *Expr, xs []*Expr) (*Expr, error) {
	var acc *Expr
	for _, x := range xs {
		d2, err := DiffN(y, x, 2)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = d2
			continue
		}
		acc, err = Add(acc, d2)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Curl returns the curl of a 3-component vector field f = (fx, fy, fz)
// with respect to coordinates (x, y, z): (dfz/dy - dfy/dz, dfx/dz -
// dfz/dx, dfy/dx - dfx/dy).
func Curl(f [3]*Expr, coords [3]*Expr) (*Expr, error) {
	fx, fy, fz := f[0], f[1], f[2]
	x, y, z := coords[0], coords[1], coords[2]

	dfzdy, err := Diff(fz, y)
	if err != nil {
		return nil, err
	}
	dfydz, err := Diff(fy, z)
	if err != nil {
		return nil, err
	}
	cx, err := Sub(dfzdy, dfydz)
	if err != nil {
		return nil, err
	}

	dfxdz, err := Diff(fx, z)
	if err != nil {
		return nil, err
	}
	dfzdx, err := Diff(fz, x)
	if err != nil {
		return nil, err
	}
	cy, err := Sub(dfxdz, dfzdx)
	if err != nil {
		return nil, err
	}

	dfydx, err := Diff(fy, x)
	if err != nil {
		return nil, err
	}
	dfxdy, err := Diff(fx, y)
	if err != nil {
		return nil, err
	}
	cz, err := Sub(dfydx, dfxdy)
	if err != nil {
		return nil, err
	}

	return Stack(0, []*Expr{cx, cy, cz})
}

// Divergence returns the divergence of a vector field f with respect to
// matching coordinates: sum_i df_i/dcoord_i.
func Divergence(f []*Expr, coords []*Expr) (*Expr, error) {
	if len(f) != len(coords) {
		return nil, dslerr.NewBadArgument("Divergence", "field and coordinate counts must match")
	}
	var acc *Expr
	for i := range f {
		d, err := Diff(f[i], coords[i])
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = d
			continue
		}
		acc, err = Add(acc, d)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
