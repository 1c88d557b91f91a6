// SPDX-License-Identifier: AGPL-3.0-or-later
// opensand-dataplane - A DVB-S2/DVB-RCS2 satellite dataplane emulator
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/opensand-go/opensand-dataplane>

// Package fifo implements the bounded, blocking message queue that
// carries opaque messages between channels, and the event loop that
// multiplexes a channel's FIFOs, timers, and file descriptors.
package fifo

import (
	"context"
	"errors"
	"sync"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
)

// Message is the opaque envelope carried by a FIFO: a typed payload with
// no further structure imposed by the queue itself.
type Message struct {
	Type    dvbconst.MessageType
	Payload []byte
}

// ErrClosed is returned by Push/Pop once the FIFO has been closed.
var ErrClosed = errors.New("fifo: closed")

// FIFO is a bounded single-producer/single-consumer-safe queue of
// Message. Push blocks while full; Pop blocks while empty. Both respect
// ctx cancellation.
type FIFO struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	buf      []Message
	cap      int
	closed   bool

	readable chan struct{}
}

// New creates a FIFO with room for capacity messages.
func New(capacity int) *FIFO {
	f := &FIFO{
		buf:      make([]Message, 0, capacity),
		cap:      capacity,
		readable: make(chan struct{}, 1),
	}
	f.notFull = sync.NewCond(&f.mu)
	f.notEmpty = sync.NewCond(&f.mu)
	return f
}

// Push appends m, blocking while the queue is full. It returns ctx.Err()
// if ctx is cancelled before room becomes available, or ErrClosed if the
// FIFO is closed.
func (f *FIFO) Push(ctx context.Context, m Message) error {
	done := f.watchCancel(ctx)
	defer done()

	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.buf) >= f.cap && !f.closed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.notFull.Wait()
	}
	if f.closed {
		return ErrClosed
	}
	f.buf = append(f.buf, m)
	f.notEmpty.Signal()
	f.signalReadable()
	return nil
}

// Pop removes and returns the head message, blocking while the queue is
// empty. It returns ctx.Err() if ctx is cancelled first, or ErrClosed
// once the FIFO is closed and drained.
func (f *FIFO) Pop(ctx context.Context) (Message, error) {
	done := f.watchCancel(ctx)
	defer done()

	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.buf) == 0 && !f.closed {
		if ctx.Err() != nil {
			return Message{}, ctx.Err()
		}
		f.notEmpty.Wait()
	}
	if len(f.buf) == 0 {
		return Message{}, ErrClosed
	}
	m := f.buf[0]
	f.buf = f.buf[1:]
	f.notFull.Signal()
	return m, nil
}

// TryPop removes and returns the head message without blocking. The
// second return is false if the queue is currently empty.
func (f *FIFO) TryPop() (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.buf) == 0 {
		return Message{}, false
	}
	m := f.buf[0]
	f.buf = f.buf[1:]
	f.notFull.Signal()
	return m, true
}

// Readable returns a channel a reader can select on: it carries a value
// whenever the FIFO has become non-empty. It is the Go analogue of an
// eventfd/epoll-registrable readiness descriptor.
func (f *FIFO) Readable() <-chan struct{} {
	return f.readable
}

func (f *FIFO) signalReadable() {
	select {
	case f.readable <- struct{}{}:
	default:
	}
}

// Close marks the FIFO closed, waking any blocked Push/Pop. Pending
// messages remain poppable until drained; subsequent Pop calls on an
// empty, closed FIFO return ErrClosed.
func (f *FIFO) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.notFull.Broadcast()
	f.notEmpty.Broadcast()
}

// Len reports the number of messages currently enqueued.
func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf)
}

// watchCancel wakes any waiter blocked in Wait() when ctx is cancelled,
// since sync.Cond has no native context support.
func (f *FIFO) watchCancel(ctx context.Context) func() {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			f.mu.Lock()
			f.notFull.Broadcast()
			f.notEmpty.Broadcast()
			f.mu.Unlock()
		case <-stop:
		}
	}()
	return func() { close(stop) }
}
