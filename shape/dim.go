// Package shape implements the dimension and shape algebra: symbolic
// integers and symbolic sequences of integers, unified via inference
// variables (package ivar).
//
// Dim is modeled as a closed sum type expressed as an interface with four
// unexported implementing structs, per the "tagged union via interface"
// option in the design notes: the operator set that dispatches on Dim's
// shape (unify, Resolve, String) is closed and small, so there is no
// benefit to making Dim an open trait.
package shape

import (
	"fmt"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/ivar"
)

// Dim is a symbolic tensor dimension: a known non-negative integer, an
// unsolved inference variable, or a multiple-of/divisor-of relation over
// another Dim.
type Dim interface {
	fmt.Stringer
	dimNode()
}

type knownDim struct{ n int }

func (knownDim) dimNode() {}

func (d knownDim) String() string { return fmt.Sprintf("%d", d.n) }

type varDim struct{ v *ivar.IVar[Dim] }

func (varDim) dimNode() {}

func (d varDim) String() string {
	if val, ok := d.v.TryValue(); ok {
		return val.String()
	}
	return "?"
}

type mulDim struct {
	d Dim
	k int
}

func (mulDim) dimNode() {}

func (d mulDim) String() string { return fmt.Sprintf("(%s*%d)", d.d, d.k) }

type divDim struct {
	d Dim
	k int
}

func (divDim) dimNode() {}

func (d divDim) String() string { return fmt.Sprintf("ceil(%s/%d)", d.d, d.k) }

// Known returns a Dim with a concrete, already-resolved value. Panics if n
// is negative.
func Known(n int) Dim {
	if n < 0 {
		panic(fmt.Sprintf("shape: Known dimension must be >= 0, got %d", n))
	}
	return knownDim{n: n}
}

// Inferred returns a fresh, unsolved Dim.
func Inferred() Dim {
	return varDim{v: ivar.New[Dim]()}
}

// Mul returns a Dim whose logical value is d*k. Panics if k < 2.
func Mul(d Dim, k int) Dim {
	if k < 2 {
		panic(fmt.Sprintf("shape: Mul multiplier must be >= 2, got %d", k))
	}
	return mulDim{d: d, k: k}
}

// Div returns a Dim whose logical value is ceil(d/k) (striding semantics).
// Panics if k < 2.
func Div(d Dim, k int) Dim {
	if k < 2 {
		panic(fmt.Sprintf("shape: Div divisor must be >= 2, got %d", k))
	}
	return divDim{d: d, k: k}
}

func ceilDiv(n, k int) int {
	return (n + k - 1) / k
}

// strip follows solved variables transitively and returns the canonical
// representative of d. Known/Mul/Div nodes are returned as-is (their own
// sub-dimensions are stripped lazily, as unify recurses into them).
func strip(d Dim) Dim {
	for {
		vd, ok := d.(varDim)
		if !ok {
			return d
		}
		val, ok := vd.v.TryValue()
		if !ok {
			return d
		}
		d = val
	}
}

// Resolve computes the concrete logical value of d, if fully determined.
// A Dim is "resolved" when its logical value yields a concrete
// non-negative integer through recursive Var lookup; otherwise it is
// "open" and Resolve returns (0, false).
func Resolve(d Dim) (int, bool) {
	switch t := d.(type) {
	case knownDim:
		return t.n, true
	case varDim:
		if val, ok := t.v.TryValue(); ok {
			return Resolve(val)
		}
		return 0, false
	case mulDim:
		if v, ok := Resolve(t.d); ok {
			return v * t.k, true
		}
		return 0, false
	case divDim:
		if v, ok := Resolve(t.d); ok {
			return ceilDiv(v, t.k), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsOpen reports whether d is not yet fully resolved.
func IsOpen(d Dim) bool {
	_, ok := Resolve(d)
	return !ok
}

// UnifyDim makes a and b denote the same value, possibly by solving
// inference variables, per spec §4.1. op names the calling operator, used
// only for diagnostics.
func UnifyDim(op string, a, b Dim) error {
	// 1. If both sides have concrete values, require equality.
	av, aok := Resolve(a)
	bv, bok := Resolve(b)
	if aok && bok {
		if av != bv {
			return dslerr.NewDimMismatch(op, dslerr.ReasonUnequal, a, b)
		}
		return nil
	}

	// 2. Strip solved variables from both.
	a = strip(a)
	b = strip(b)

	// 3. If both are the same Var (pointer equality), succeed.
	if av, ok := a.(varDim); ok {
		if bv, ok2 := b.(varDim); ok2 && av.v == bv.v {
			return nil
		}
	}

	// 4. If one side is an unsolved Var, solve it to the other side.
	if av, ok := a.(varDim); ok && !av.v.IsSolved() {
		av.v.Solve(b)
		return nil
	}
	if bv, ok := b.(varDim); ok && !bv.v.IsSolved() {
		bv.v.Solve(a)
		return nil
	}

	// 5. Mul(d,k) vs Known(n): fail unless n%k==0, else recurse d vs Known(n/k).
	if am, ok := a.(mulDim); ok {
		if bk, ok2 := b.(knownDim); ok2 {
			if bk.n%am.k != 0 {
				return dslerr.NewDimMismatch(op, dslerr.ReasonNotDivisible, a, b)
			}
			return UnifyDim(op, am.d, knownDim{n: bk.n / am.k})
		}
	}
	if bm, ok := b.(mulDim); ok {
		if ak, ok2 := a.(knownDim); ok2 {
			if ak.n%bm.k != 0 {
				return dslerr.NewDimMismatch(op, dslerr.ReasonNotDivisible, a, b)
			}
			return UnifyDim(op, knownDim{n: ak.n / bm.k}, bm.d)
		}
	}

	// 6. Mul(d1,k) vs Mul(d2,k'): require k=k', recurse on d1,d2.
	if am, ok := a.(mulDim); ok {
		if bm, ok2 := b.(mulDim); ok2 {
			if am.k != bm.k {
				return dslerr.NewDimMismatch(op, dslerr.ReasonMultiplier, a, b)
			}
			return UnifyDim(op, am.d, bm.d)
		}
	}

	// 7. Div(d1,k) vs Div(d2,k'): require k=k', recurse on d1,d2.
	if ad, ok := a.(divDim); ok {
		if bd, ok2 := b.(divDim); ok2 {
			if ad.k != bd.k {
				return dslerr.NewDimMismatch(op, dslerr.ReasonMultiplier, a, b)
			}
			return UnifyDim(op, ad.d, bd.d)
		}
	}

	// 8. Otherwise if neither side is resolvable, succeed vacuously (stay
	// open); else mismatch.
	if !aok && !bok {
		return nil
	}
	return dslerr.NewDimMismatch(op, dslerr.ReasonIncomplete, a, b)
}
