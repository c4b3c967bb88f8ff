package signal

import (
	"fmt"
	"testing"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCodec_Message(t *testing.T) {
	frame, err := Codec{}.Message(domain.NewChatMessage("alice", "hi"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"message","data":{"sender":"alice","text":"hi"}}`, string(frame))
}

func TestEncode_Error_Event(t *testing.T) {
	frame, err := encode(EventErrorMessage, errorText(domain.ErrNotRegistered))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"errorMessage","data":"User not registered"}`, string(frame))
}

func TestErrorText(t *testing.T) {
	cases := map[error]string{
		domain.ErrNotRegistered:                             "User not registered",
		domain.ErrNoActiveSession:                           "No active session found",
		fmt.Errorf("wrapped: %w", domain.ErrMessageTooLong): "Message too long",
		errRateLimited:                                      "Rate limit exceeded",
		fmt.Errorf("boom"):                                  "Internal error",
	}
	for err, want := range cases {
		require.Equal(t, want, errorText(err), err.Error())
	}
}
