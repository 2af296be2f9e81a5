// Package envconfig holds the DSL's process-wide state: the live-check
// flag (read once from the environment) and optional YAML-loaded session
// defaults. Per the design notes, this is deliberately kept to the two
// pieces of global state the spec allows — everything else is threaded
// explicitly through Session/Runner/Ctxt values.
package envconfig

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flarelee/gotensor/internal/tflog"
)

// LiveCheck mirrors the LIVECHECK environment variable: any value other
// than unset, empty, or "0" enables live-check mode. Read once at package
// init, matching §6's "read once from env var" contract.
var LiveCheck = computeLiveCheck(os.Getenv("LIVECHECK"))

func computeLiveCheck(v string) bool {
	return v != "" && v != "0"
}

// SessionDefaults are optional defaults loadable from a YAML file,
// governing how Sessions are opened when the caller doesn't override them
// explicitly (device target, intra/inter-op parallelism hints, soft
// placement). Session construction forwards only Target to the backend.
type SessionDefaults struct {
	Target            string `yaml:"target"`
	IntraOpThreads    int    `yaml:"intra_op_threads"`
	InterOpThreads    int    `yaml:"inter_op_threads"`
	AllowSoftPlacement bool  `yaml:"allow_soft_placement"`
}

// LoadSessionDefaults reads session defaults from a YAML file. A missing
// file is not an error — it yields the zero-value defaults, which the
// backend interprets as "let the runtime decide."
func LoadSessionDefaults(path string) (SessionDefaults, error) {
	var cfg SessionDefaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LogLiveCheckNotice emits a diagnostic, once per call, when live-check
// mode suppresses materialization, so a caller staring at placeholder
// output has a clue why.
func LogLiveCheckNotice(op string) {
	tflog.Log.Info().Str("op", op).Msg("livecheck: returning placeholder, backend not invoked")
}

// normalize applies the LiveCheck parsing rule after trimming surrounding
// whitespace; the package-level LiveCheck var does not trim.
func normalize(v string) bool {
	return computeLiveCheck(strings.TrimSpace(v))
}
