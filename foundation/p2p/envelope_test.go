package p2p

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DecodeEnvelope(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		env, err := decodeEnvelope([]byte(`{"kind":"request","sender":"peer-1"}`))
		require.NoError(t, err)
		require.Equal(t, KindRequest, env.Kind)
		require.Equal(t, "peer-1", env.Sender)
		require.Empty(t, env.Receiver)
		require.Empty(t, env.Chain)
	})

	t.Run("valid response with chain", func(t *testing.T) {
		data := `{"kind":"response","sender":"peer-1","receiver":"peer-2","chain":[{"id":0,"hash":"h","previous_hash":"genesis","timestamp":1,"payload":"genesis!","nonce":2836}]}`
		env, err := decodeEnvelope([]byte(data))
		require.NoError(t, err)
		require.Equal(t, KindResponse, env.Kind)
		require.Equal(t, "peer-2", env.Receiver)
		require.Len(t, env.Chain, 1)
		require.Equal(t, uint64(2836), env.Chain[0].Nonce)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"kind":"gossip","sender":"peer-1"}`))
		require.Error(t, err)
	})

	t.Run("missing sender rejected", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"kind":"request"}`))
		require.Error(t, err)
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"kind":`))
		require.Error(t, err)
	})
}
