package trigger

import "sync"

// mailbox is a single-slot buffer where the latest dump request wins. It is
// NOT a queue: a burst of deliveries coalesces into one pending request,
// which matches how repeated deliveries of the same signal behave at the OS
// level.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	req    *request
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// put stores a request, replacing any pending one. It never blocks.
func (m *mailbox) put(r request) {
	m.mu.Lock()
	if !m.closed {
		m.req = &r
	}
	m.mu.Unlock()
	m.cond.Signal()
}

// take blocks until a request is available, then returns it and clears the
// slot. ok is false once the mailbox is closed and drained.
func (m *mailbox) take() (request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.req == nil && !m.closed {
		m.cond.Wait()
	}
	if m.req == nil {
		return request{}, false
	}

	r := *m.req
	m.req = nil
	return r, true
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}
