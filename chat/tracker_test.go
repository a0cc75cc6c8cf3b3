package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerAckFlow(t *testing.T) {
	tr := NewTracker()
	tr.Track("msg-1")
	tr.Track("msg-2")
	require.Equal(t, 2, tr.PendingCount())

	require.True(t, tr.Ack("msg-1"))
	require.Equal(t, 1, tr.PendingCount())

	// duplicate and unknown acks resolve nothing
	require.False(t, tr.Ack("msg-1"))
	require.False(t, tr.Ack("never-sent"))
	require.Equal(t, 1, tr.PendingCount())
}

func TestTrackerDedup(t *testing.T) {
	tr := NewTracker()
	require.True(t, tr.MarkSeen("abc"))
	require.False(t, tr.MarkSeen("abc"))
	require.True(t, tr.MarkSeen("def"))
}
