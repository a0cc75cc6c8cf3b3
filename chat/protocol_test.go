package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEncodeParse(t *testing.T) {
	m := NewMessage("alice", "hello over the air")
	require.Equal(t, TypeChat, m.Type)
	require.Len(t, m.ID, 8)
	require.NotZero(t, m.Timestamp)

	raw, err := m.Encode()
	require.NoError(t, err)

	got, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, m.ID, got.ID)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "hello over the air", got.Content)
}

func TestAckReferencesMessage(t *testing.T) {
	m := NewMessage("alice", "hi")
	a := NewAck(m.ID, "bob")
	require.Equal(t, TypeAck, a.Type)
	require.Equal(t, m.ID, a.AckID)
	require.Empty(t, a.Content)

	raw, err := a.Encode()
	require.NoError(t, err)
	got, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, m.ID, got.AckID)
}

func TestParseRejectsForeignTraffic(t *testing.T) {
	for _, raw := range []string{
		"",
		"plain text payload",
		`{"type":"telemetry","rssi":-90}`,
		`["not","an","object"]`,
	} {
		_, err := Parse(raw)
		require.ErrorIs(t, err, ErrInvalid, "payload %q", raw)
	}
}

func TestMessageIDsUnique(t *testing.T) {
	a := NewMessage("alice", "x")
	b := NewMessage("alice", "x")
	require.NotEqual(t, a.ID, b.ID)
}
