package lora

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeliveryQueue_FIFO(t *testing.T) {
	q := newDeliveryQueue()
	defer q.close()

	q.push("a")
	q.push("b")
	q.push("c")

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-q.out:
			require.Equal(t, want, got)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

func TestDeliveryQueue_WakesBlockedConsumer(t *testing.T) {
	q := newDeliveryQueue()
	defer q.close()

	got := make(chan string, 1)
	go func() { got <- <-q.out }()

	// let the consumer block on an empty queue first
	time.Sleep(20 * time.Millisecond)
	q.push("wake")

	select {
	case msg := <-got:
		require.Equal(t, "wake", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for blocked consumer to wake")
	}
}

func TestDeliveryQueue_CloseDiscardsAndEndsStream(t *testing.T) {
	q := newDeliveryQueue()
	q.push("pending")
	q.close()

	// pushes after close are dropped
	q.push("late")

	// the channel eventually closes; "pending" may or may not have
	// made it into the pump before close, but the stream must end.
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case _, ok := <-q.out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for output channel to close")
		}
	}
}

func TestDeliveryQueue_CloseIdempotent(t *testing.T) {
	q := newDeliveryQueue()
	q.close()
	q.close()
}
