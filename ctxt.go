package gotensor

import (
	"fmt"
	"strings"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/internal/tflog"
)

// Ctxt is the materialization context threaded through a single lowering
// pass: it owns the backend Scope operators build into and the memo
// tables that make repeated Lower calls on the same Expr idempotent.
//
// A Ctxt is not safe for concurrent use. A Session creates one Ctxt when
// it opens and reuses it for every Session.Run, so its memo tables (and
// weight overrides) persist across the runs of that Session; it is not
// reset between runs. Runner addresses the graph by operation name and
// does not use a Ctxt.
type Ctxt struct {
	scope *tfop.Scope

	nodes       map[*Expr]tf.Output
	momentNodes map[*Expr][2]tf.Output
	gradNodes   map[gradKey][]tf.Output
	weights     map[string]*Expr
}

type gradKey struct {
	y     *Expr
	dy    *Expr
	xsKey string
}

func makeXsKey(xs []*Expr) string {
	var b strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&b, "%p,", x)
	}
	return b.String()
}

// newCtxt opens a fresh materialization context rooted at scope.
func newCtxt(scope *tfop.Scope) *Ctxt {
	return &Ctxt{
		scope:       scope,
		nodes:       make(map[*Expr]tf.Output),
		momentNodes: make(map[*Expr][2]tf.Output),
		gradNodes:   make(map[gradKey][]tf.Output),
		weights:     make(map[string]*Expr),
	}
}

// Scope returns the backend Scope operator constructors should build
// into. Most operator constructors in this package call ctxt.Scope().SubScope(e.Op)
// so that graph node names stay unique and legible across repeated calls
// to the same constructor.
func (ctxt *Ctxt) Scope() *tfop.Scope {
	return ctxt.scope
}

// Lower materializes e into a backend Output, memoized by e's identity:
// calling Lower twice on the same *Expr within one Ctxt returns the same
// Output both times without re-invoking e.build. Operator build closures
// must call ctxt.Lower on their child expressions rather than invoking
// child.build directly, or memoization silently stops applying to them.
func (ctxt *Ctxt) Lower(e *Expr) (tf.Output, error) {
	if out, ok := ctxt.nodes[e]; ok {
		return out, nil
	}
	out, err := e.build(ctxt)
	if err != nil {
		return tf.Output{}, err
	}
	ctxt.nodes[e] = out
	return out, nil
}

// WithScope runs thunk against a Ctxt rooted at a named child scope,
// giving the operators it builds graph names nested under name. The
// child Ctxt shares this Ctxt's memo tables, so a node lowered inside the
// sub-scope is still recognized if the same *Expr is looked up from the
// parent afterward.
func WithScope(ctxt *Ctxt, name string, thunk func(*Ctxt) error) error {
	child := &Ctxt{
		scope:       ctxt.scope.SubScope(name),
		nodes:       ctxt.nodes,
		momentNodes: ctxt.momentNodes,
		gradNodes:   ctxt.gradNodes,
		weights:     ctxt.weights,
	}
	return thunk(child)
}

// variableNode looks up name in ctxt's weight map, logging a diagnostic
// and falling back to def's own lowering when no override is registered.
// Session.SetWeight populates ctxt.weights; everything else falls through
// to def.
func variableNode(ctxt *Ctxt, name string, def *Expr) (tf.Output, error) {
	if w, ok := ctxt.weights[name]; ok {
		if w.DType != def.DType {
			tflog.Log.Warn().Str("variable", name).Msg("weight override dtype mismatch, using declared default instead")
		} else {
			return ctxt.Lower(w)
		}
	}
	tflog.Log.Debug().Str("variable", name).Msg("no weight override registered, lowering default initializer")
	return ctxt.Lower(def)
}
