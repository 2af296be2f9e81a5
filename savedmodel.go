package gotensor

import (
	tf "github.com/tensorflow/tensorflow/tensorflow/go"

	"github.com/flarelee/gotensor/internal/envconfig"
)

// LoadSavedModel opens a session against a previously exported
// SavedModel directory under the given tags, applying defaults the same
// way NewSessionWithDefaults does. The returned Session's Runner can
// address the model's signature outputs by name exactly as it would
// address a graph built in-process.
func LoadSavedModel(exportDir string, tags []string, defaults envconfig.SessionDefaults) (*Session, error) {
	opts := &tf.SessionOptions{}
	if defaults.Target != "" {
		opts.Target = defaults.Target
	}
	model, err := tf.LoadSavedModel(exportDir, tags, opts)
	if err != nil {
		return nil, err
	}
	return &Session{
		graph:  model.Graph,
		tfSess: model.Session,
		ctxt:   nil,
	}, nil
}
