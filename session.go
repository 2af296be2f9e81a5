package gotensor

import (
	"sync"

	tf "github.com/tensorflow/tensorflow/tensorflow/go"
	tfop "github.com/tensorflow/tensorflow/tensorflow/go/op"

	"github.com/flarelee/gotensor/dslerr"
	"github.com/flarelee/gotensor/internal/envconfig"
	"github.com/flarelee/gotensor/internal/tflog"
	"github.com/flarelee/gotensor/sessionopt"
)

// SessionOption configures a Session's SessionDefaults before it opens the
// backend session. Built on sessionopt's generic Option type rather than a
// one-off Session-specific closure type.
type SessionOption = sessionopt.Option[envconfig.SessionDefaults]

// WithTarget overrides the backend target address (e.g. a grpc:// address
// of a remote TensorFlow server). Empty leaves the process-local default.
func WithTarget(target string) SessionOption {
	return func(cfg *envconfig.SessionDefaults) { cfg.Target = target }
}

// WithIntraOpThreads overrides the intra-op parallelism hint.
func WithIntraOpThreads(n int) SessionOption {
	return func(cfg *envconfig.SessionDefaults) { cfg.IntraOpThreads = n }
}

// WithInterOpThreads overrides the inter-op parallelism hint.
func WithInterOpThreads(n int) SessionOption {
	return func(cfg *envconfig.SessionDefaults) { cfg.InterOpThreads = n }
}

// WithAllowSoftPlacement toggles whether the backend may fall back to a
// different device when the one an op was pinned to isn't available.
func WithAllowSoftPlacement(allow bool) SessionOption {
	return func(cfg *envconfig.SessionDefaults) { cfg.AllowSoftPlacement = allow }
}

// Session owns a backend graph and the single live TensorFlow session
// bound to it, plus the persistent Ctxt that every Run call lowers Exprs
// into. Building is cumulative: an Expr lowered once during an
// earlier Run stays in the graph and is simply looked up (not rebuilt)
// by a later one, the same way a real TensorFlow graph accumulates
// operations over the lifetime of a long-running process.
type Session struct {
	mu     sync.Mutex
	scope  *tfop.Scope
	ctxt   *Ctxt
	graph  *tf.Graph
	tfSess *tf.Session
	closed bool
}

// NewSession opens a Session with default SessionOptions.
func NewSession() (*Session, error) {
	return NewSessionWithDefaults(envconfig.SessionDefaults{})
}

// NewSessionWithOptions opens a Session starting from envconfig's defaults
// and layering opts on top, in order.
func NewSessionWithOptions(opts ...SessionOption) (*Session, error) {
	defaults := envconfig.SessionDefaults{}
	sessionopt.Apply(&defaults, opts...)
	return NewSessionWithDefaults(defaults)
}

// NewSessionWithDefaults opens a Session, applying defaults (typically
// loaded via envconfig.LoadSessionDefaults) to the backend's
// SessionOptions. Only Target is applied; IntraOpThreads, InterOpThreads
// and AllowSoftPlacement are not passed to the backend.
func NewSessionWithDefaults(defaults envconfig.SessionDefaults) (*Session, error) {
	scope := tfop.NewScope()
	graph, err := scope.Finalize()
	if err != nil {
		return nil, err
	}
	opts := &tf.SessionOptions{}
	if defaults.Target != "" {
		opts.Target = defaults.Target
	}
	tfSess, err := tf.NewSession(graph, opts)
	if err != nil {
		return nil, err
	}
	return &Session{
		scope:  scope,
		ctxt:   newCtxt(scope),
		graph:  graph,
		tfSess: tfSess,
	}, nil
}

// Close releases the underlying backend session. Calling Close more than
// once is a no-op, matching the teacher's disposed-handle guard on its
// own long-lived resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.tfSess.Close()
}

func (s *Session) checkOpen(op string) error {
	if s.closed {
		return dslerr.NewDisposedHandle("Session")
	}
	return nil
}

// Run lowers each of outputs into the Session's graph (if not already
// present) and executes a full run with no feeds or targets, returning
// one tensor per requested output in order.
func (s *Session) Run(outputs ...*Expr) ([]*tf.Tensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen("Run"); err != nil {
		return nil, err
	}
	if s.ctxt == nil {
		return nil, dslerr.NewBadArgument("Run", "this Session was opened from a saved model; address it through NewRunner by signature output name instead")
	}
	if envconfig.LiveCheck {
		tflog.Log.Debug().Msg("livecheck: Session.Run returning placeholders without invoking backend")
		tensors := make([]*tf.Tensor, len(outputs))
		for i, e := range outputs {
			t, err := e.livePlaceholder()
			if err != nil {
				return nil, err
			}
			tensors[i] = t
		}
		return tensors, nil
	}
	fetches := make([]tf.Output, len(outputs))
	for i, e := range outputs {
		out, err := s.ctxt.Lower(e)
		if err != nil {
			return nil, err
		}
		fetches[i] = out
	}
	return s.tfSess.Run(nil, fetches, nil)
}

// NewRunner starts a fluent Run builder against this Session.
func (s *Session) NewRunner() *Runner {
	return &Runner{session: s}
}
