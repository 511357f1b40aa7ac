package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestTaggedRoundTrip(t *testing.T) {
	type body struct {
		Name string `msgpack:"name"`
	}

	payload, err := encodeTagged("app_info", &body{Name: "bridging-app"})
	require.NoError(t, err)

	var decoded body
	require.NoError(t, decodeTaggedInto(payload, "app_info", &decoded))
	assert.Equal(t, "bridging-app", decoded.Name)
}

func TestDecodeTaggedInto_KindMismatch(t *testing.T) {
	payload, err := encodeTagged("app_info", nil)
	require.NoError(t, err)

	err = decodeTaggedInto(payload, "zome_called", nil)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestDecodeTaggedInto_NilOutSkipsBody(t *testing.T) {
	payload, err := encodeTagged("app_authentication_token_issued", map[string]string{"token": "abc"})
	require.NoError(t, err)

	assert.NoError(t, decodeTaggedInto(payload, "app_authentication_token_issued", nil))
}

func TestDecodeTagged_ErrorPayload(t *testing.T) {
	inner, err := msgpack.Marshal(map[string]string{
		"type": "internal_error",
		"data": "source chain head moved",
	})
	require.NoError(t, err)

	payload, err := msgpack.Marshal(taggedMessage{Type: "error", Data: inner})
	require.NoError(t, err)

	err = decodeTaggedInto(payload, "zome_called", nil)
	require.ErrorIs(t, err, ErrConductorError)
	assert.Contains(t, err.Error(), "internal_error")
	assert.Contains(t, err.Error(), "source chain head moved")
}
