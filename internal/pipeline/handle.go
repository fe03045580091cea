// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline

import "sync/atomic"

// Handle is returned immediately by RunExtractionPipeline. It lets the
// caller request cancellation and later wait for the run to settle.
type Handle struct {
	token *CancelToken
	done  chan struct{}
	err   error
	state atomic.Int32
}

func newHandle(token *CancelToken) *Handle {
	return &Handle{token: token, done: make(chan struct{})}
}

// RequestCancel asks the run to stop as soon as it safely can. It never
// blocks and may be called from any goroutine, any number of times.
func (h *Handle) RequestCancel() {
	h.token.RequestCancel()
}

// Join blocks until the run has ended and returns its final error: nil on
// success, CancelledError if RequestCancel took effect, or the fatal error
// otherwise.
func (h *Handle) Join() error {
	<-h.done
	return h.err
}

// State reports the run's current lifecycle stage.
func (h *Handle) State() State {
	return State(h.state.Load())
}

func (h *Handle) setState(s State) {
	h.state.Store(int32(s))
}

func (h *Handle) finish(err error) {
	h.err = err
	h.setState(StateEnded)
	close(h.done)
}
