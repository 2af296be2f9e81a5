package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
)

// Variable wraps def as a named weight node: lowering it first consults
// the materializing Ctxt's weight map for an override registered under
// name (registered with Session.SetWeight) and otherwise falls back to
// lowering def itself, logging a diagnostic when it falls back.
func Variable(name string, def *Expr) *Expr {
	return newExpr("Variable:"+name, def.Shape, def.DType, def.Cost+1, func(ctxt *Ctxt) (tf.Output, error) {
		return variableNode(ctxt, name, def)
	})
}

// SetWeight registers value as the weight-map override the Variable named
// name will resolve to the next time it is lowered in a run against this
// Session. It must be called before the Session.Run call that needs it;
// it does not itself trigger materialization. A Variable already lowered
// by an earlier Run of this Session keeps the node it was lowered to then.
func (s *Session) SetWeight(name string, value *Expr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctxt == nil {
		return
	}
	s.ctxt.weights[name] = value
}
