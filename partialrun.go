package gotensor

import (
	"sync"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"

	"github.com/flarelee/gotensor/dslerr"
)

// PartialRunToken is the handle returned by Session.PartialRunSetup. It
// must be released exactly once, via Close, once the caller is done
// feeding the partial run.
//
// The original design's equivalent handle could be copied by value,
// which meant a caller holding a second copy could out-live Close having
// already run against the first, silently resurrecting a "released"
// token. This type is always handed out as a pointer and owns its own
// mutex precisely to close that hole: every caller shares one underlying
// release flag, so Close from any copy of the pointer is visible to all
// of them.
type PartialRunToken struct {
	mu       sync.Mutex
	pr       *tf.PartialRun
	released bool

	// feedOutputs/fetchOutputs record the Outputs declared to
	// PartialRunSetup, keyed by the same name strings, so that Run can
	// translate a caller's name-based feeds/fetches into the Outputs the
	// backend handle was actually opened with.
	feedOutputs  map[string]tf.Output
	fetchOutputs map[string]tf.Output
}

// PartialRunSetup opens a partial run against the session's graph. inputs,
// outputs, and targets name operations the same way Runner does ("op" or
// "op:idx").
func (s *Session) PartialRunSetup(inputs, outputs, targets []string) (*PartialRunToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("PartialRunSetup"); err != nil {
		return nil, err
	}
	feedOuts, feedByName, err := s.resolveNamed(inputs)
	if err != nil {
		return nil, err
	}
	fetchOuts, fetchByName, err := s.resolveNamed(outputs)
	if err != nil {
		return nil, err
	}
	targetOps, err := s.resolveTargets(targets)
	if err != nil {
		return nil, err
	}
	pr, err := s.tfSess.PartialRunSetup(feedOuts, fetchOuts, targetOps)
	if err != nil {
		return nil, err
	}
	return &PartialRunToken{pr: pr, feedOutputs: feedByName, fetchOutputs: fetchByName}, nil
}

// resolveNamed resolves names to Outputs, returning both the plain slice
// (for the backend's positional setup call) and a name-keyed map (so
// later Run calls can address the same Outputs by the names the caller
// already knows).
func (s *Session) resolveNamed(names []string) ([]tf.Output, map[string]tf.Output, error) {
	outs := make([]tf.Output, len(names))
	byName := make(map[string]tf.Output, len(names))
	for i, n := range names {
		opName, idx, err := parseFetch(n)
		if err != nil {
			return nil, nil, err
		}
		op := s.graph.Operation(opName)
		if op == nil {
			return nil, nil, dslerr.NewBadArgument("PartialRunSetup", "no such operation: "+opName)
		}
		out := op.Output(idx)
		outs[i] = out
		byName[n] = out
	}
	return outs, byName, nil
}

func (s *Session) resolveTargets(names []string) ([]*tf.Operation, error) {
	ops := make([]*tf.Operation, len(names))
	for i, n := range names {
		opName, _, err := parseFetch(n)
		if err != nil {
			return nil, err
		}
		op := s.graph.Operation(opName)
		if op == nil {
			return nil, dslerr.NewBadArgument("PartialRunSetup", "no such operation: "+opName)
		}
		ops[i] = op
	}
	return ops, nil
}

// Run feeds the named outputs for this step of the partial run and fetches
// the named outputs back. Calling Run after Close returns a
// DisposedHandleError.
func (t *PartialRunToken) Run(feeds map[string]*tf.Tensor, fetches []string) ([]*tf.Tensor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return nil, dslerr.NewDisposedHandle("PartialRunToken")
	}
	feedMap := make(map[tf.Output]*tf.Tensor, len(feeds))
	for name, tensor := range feeds {
		out, ok := t.feedOutputs[name]
		if !ok {
			return nil, dslerr.NewBadArgument("PartialRunToken.Run", "name was not declared as a feed to PartialRunSetup: "+name)
		}
		feedMap[out] = tensor
	}
	fetchOuts := make([]tf.Output, len(fetches))
	for i, f := range fetches {
		out, ok := t.fetchOutputs[f]
		if !ok {
			return nil, dslerr.NewBadArgument("PartialRunToken.Run", "name was not declared as a fetch to PartialRunSetup: "+f)
		}
		fetchOuts[i] = out
	}
	return t.pr.Run(feedMap, fetchOuts)
}

// Close releases the partial run. Idempotent: a second Close is a no-op
// that returns nil, while a Run after Close returns a DisposedHandleError.
// The mutex-guarded released flag makes that state shared by every holder
// of the pointer instead of letting the backend handle be copied around
// by value.
func (t *PartialRunToken) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return nil
	}
	t.released = true
	return nil
}
