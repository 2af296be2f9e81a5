package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLiveCheck(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"1":     true,
		"true":  true,
		"yes":   true,
	}
	for in, want := range cases {
		assert.Equal(t, want, computeLiveCheck(in), "input %q", in)
	}
}

func TestLoadSessionDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadSessionDefaults("/nonexistent/path/gotensor.yaml")
	assert.NoError(t, err)
	assert.Equal(t, SessionDefaults{}, cfg)
}
