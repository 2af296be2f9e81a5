package gotensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartialRunTokenCloseIsIdempotent(t *testing.T) {
	tok := &PartialRunToken{}
	require.NoError(t, tok.Close())
	require.NoError(t, tok.Close())
}

func TestPartialRunTokenRunAfterCloseErrors(t *testing.T) {
	tok := &PartialRunToken{}
	require.NoError(t, tok.Close())
	_, err := tok.Run(nil, nil)
	require.Error(t, err)
}
