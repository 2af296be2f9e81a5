package gotensor

import (
	"strconv"
	"strings"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/flarelee/gotensor/dslerr"
)

// parseFetch splits a fetch/feed/target string of the form "op" or
// "op:idx" into an operation name and an output index. A missing index
// defaults to 0; a present-but-non-integer suffix is a ParseError.
//
// This is the one place the REDESIGN note about AddInput applies: the
// original bug resolved the *value* eagerly but deferred resolving the
// *port* until Run time, so a typo in the name only surfaced once the
// whole graph ran. AddInput below calls this (via resolve) before ever
// touching r.feeds, so a bad name fails at the call site instead.
func parseFetch(name string) (opName string, idx int, err error) {
	i := strings.LastIndexByte(name, ':')
	if i < 0 {
		return name, 0, nil
	}
	suffix := name[i+1:]
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil {
		return "", 0, dslerr.NewParseError(name, "output index must be an integer")
	}
	return name[:i], n, nil
}

// Runner is a fluent builder over Session.Run, mirroring the real
// TensorFlow Go binding's Session.Runner: feeds and fetches are named by
// graph operation name rather than by Expr, so it can drive any graph
// the Session holds, including one loaded via LoadSavedModel.
//
// Like the backend's own Runner, errors are deferred: AddInput/AddTarget/
// Fetch record the first error they hit and every later call becomes a
// no-op, so callers can chain calls and check the error once, at Run.
type Runner struct {
	session *Session
	err     error

	feeds        map[tf.Output]*tf.Tensor
	fetchOutputs []tf.Output
	targets      []*tf.Operation

	// runOptions/runMetadata are opaque per-call buffers. The Go binding's
	// Session.Run doesn't accept or populate a RunOptions/RunMetadata
	// proto, so these never reach the backend — they exist so a caller
	// that serialized one against the full TensorFlow wire protocol
	// (tracing level, timeout, trace dumps) has somewhere to stash and
	// retrieve it across a Run call without the DSL inventing its own
	// envelope type.
	runOptions  *anypb.Any
	runMetadata *anypb.Any
}

func (r *Runner) resolve(name string) (tf.Output, error) {
	opName, idx, err := parseFetch(name)
	if err != nil {
		return tf.Output{}, err
	}
	op := r.session.graph.Operation(opName)
	if op == nil {
		return tf.Output{}, dslerr.NewBadArgument("Runner", "no such operation: "+opName)
	}
	return op.Output(idx), nil
}

// AddInput feeds value into the named output. The name is resolved to a
// concrete tf.Output immediately, before value is ever recorded.
func (r *Runner) AddInput(name string, value *tf.Tensor) *Runner {
	if r.err != nil {
		return r
	}
	out, err := r.resolve(name)
	if err != nil {
		r.err = err
		return r
	}
	if r.feeds == nil {
		r.feeds = make(map[tf.Output]*tf.Tensor)
	}
	r.feeds[out] = value
	return r
}

// AddTarget marks an operation to be run for its side effects, without
// fetching any of its outputs.
func (r *Runner) AddTarget(name string) *Runner {
	if r.err != nil {
		return r
	}
	opName, _, err := parseFetch(name)
	if err != nil {
		r.err = err
		return r
	}
	op := r.session.graph.Operation(opName)
	if op == nil {
		r.err = dslerr.NewBadArgument("Runner", "no such operation: "+opName)
		return r
	}
	r.targets = append(r.targets, op)
	return r
}

// Fetch requests the named output be returned from Run, in the order
// Fetch was called.
func (r *Runner) Fetch(name string) *Runner {
	if r.err != nil {
		return r
	}
	out, err := r.resolve(name)
	if err != nil {
		r.err = err
		return r
	}
	r.fetchOutputs = append(r.fetchOutputs, out)
	return r
}

// WithRunOptions attaches an opaque RunOptions buffer to this call. It is
// stored on the Runner but not interpreted or sent to the backend; see the
// runOptions field comment.
func (r *Runner) WithRunOptions(opts *anypb.Any) *Runner {
	r.runOptions = opts
	return r
}

// RunMetadata returns the Runner's RunMetadata buffer. Neither Run nor any
// other method of Runner sets it, so it is nil.
func (r *Runner) RunMetadata() *anypb.Any {
	return r.runMetadata
}

// Run executes the accumulated feeds/fetches/targets against the
// session's graph.
func (r *Runner) Run() ([]*tf.Tensor, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.session.mu.Lock()
	defer r.session.mu.Unlock()
	if err := r.session.checkOpen("Runner.Run"); err != nil {
		return nil, err
	}
	return r.session.tfSess.Run(r.feeds, r.fetchOutputs, r.targets)
}

// RunOp is a convenience for the common single-fetch case: it replaces
// any previously accumulated fetches with name and returns that one
// tensor.
func (r *Runner) RunOp(name string) (*tf.Tensor, error) {
	if r.err != nil {
		return nil, r.err
	}
	out, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	r.fetchOutputs = []tf.Output{out}
	results, err := r.Run()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, dslerr.NewBadArgument("Runner", "backend returned no result for "+name)
	}
	return results[0], nil
}
