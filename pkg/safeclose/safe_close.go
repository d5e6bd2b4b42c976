// Package safeclose coordinates the shutdown of long-running components.
// Components attach a routine that receives a close signal; the owner sends
// the signal once and waits until every attached routine reports done.
package safeclose

import (
	"sync"
)

// SafeClose fans one close signal out to every attached routine.
type SafeClose struct {
	mu       sync.Mutex
	closed   bool
	closeErr error
	signal   chan struct{}
	wg       sync.WaitGroup
}

// NewSafeClose creates a SafeClose ready to accept attachments.
func NewSafeClose() *SafeClose {
	return &SafeClose{
		signal: make(chan struct{}),
	}
}

// Attach starts fn in its own goroutine. fn must call done() when it has
// finished shutting down and should return promptly after closeSignal fires.
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go fn(done, s.signal)
}

// SendCloseSignal asks every attached routine to stop. The first non-nil err
// is retained and returned by WaitClosed. Safe to call more than once.
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	close(s.signal)
}

// WaitClosed blocks until all attached routines have called done, then
// returns the error passed to SendCloseSignal, if any.
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}
