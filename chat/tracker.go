package chat

import "sync"

// Tracker keeps the delivery bookkeeping for one chat session: which
// of our messages still await an ack, and which inbound message ids we
// have already handled. The radio may duplicate frames, so dedup by
// message id is done here rather than in the modem client. Safe for
// concurrent use.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
	seen    map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[string]struct{}),
		seen:    make(map[string]struct{}),
	}
}

// Track registers an outgoing message id as awaiting acknowledgment.
func (t *Tracker) Track(msgID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[msgID] = struct{}{}
}

// Ack resolves a pending message. Reports whether the id was actually
// outstanding, so duplicate acks read as false.
func (t *Tracker) Ack(msgID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[msgID]; !ok {
		return false
	}
	delete(t.pending, msgID)
	return true
}

// PendingCount returns how many sent messages still await an ack.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// MarkSeen records an inbound message id and reports whether it was
// new. A false return means a duplicate that should not be displayed
// or re-acked beyond courtesy.
func (t *Tracker) MarkSeen(msgID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[msgID]; ok {
		return false
	}
	t.seen[msgID] = struct{}{}
	return true
}
