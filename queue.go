package lora

import "sync"

// deliveryQueue is the unbounded FIFO handoff between the reader
// goroutine and the consumer of Messages(). push never blocks the
// reader; the pump goroutine moves items to the output channel as the
// consumer drains it. Closing the queue closes the output channel and
// discards anything still pending.
type deliveryQueue struct {
	mu     sync.Mutex
	items  []string
	closed bool

	wake chan struct{} // 1-buffered, coalesced enqueue signal
	done chan struct{}
	out  chan string
}

func newDeliveryQueue() *deliveryQueue {
	q := &deliveryQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan string),
	}
	go q.pump()
	return q
}

// push appends one payload. Safe to call concurrently with the pump
// and close; a push after close is dropped.
func (q *deliveryQueue) push(s string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, s)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *deliveryQueue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-q.wake:
			case <-q.done:
			}
			q.mu.Lock()
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- item:
		case <-q.done:
			return
		}
	}
}

// close tears the queue down. Undelivered items are discarded and the
// output channel is closed so consumers observe end-of-stream. Safe to
// call more than once.
func (q *deliveryQueue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	q.mu.Unlock()
	close(q.done)
}
