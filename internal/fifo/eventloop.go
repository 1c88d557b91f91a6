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

package fifo

import (
	"context"
	"sort"
	"time"
)

// SourceKind distinguishes the three wakeup sources an EventLoop
// multiplexes. On a tie within one Run iteration, FIFO sources fire
// before timers, and timers fire before file sources.
type SourceKind int

const (
	SourceFIFO SourceKind = iota
	SourceTimer
	SourceFile
)

// Source is one thing an EventLoop waits on. Ready must return a channel
// that becomes readable when the source has work, and Handle is called
// once per firing. A Source with equal priority to another breaks ties
// by Kind, then by registration order.
type Source struct {
	Name     string
	Kind     SourceKind
	Priority int
	Ready    func() <-chan struct{}
	Handle   func(ctx context.Context) error
}

// EventLoop multiplexes a fixed set of Sources, dispatching whichever is
// ready in priority order (lower Priority first, FIFO before Timer
// before File on a tie) each time it wakes.
type EventLoop struct {
	sources []Source
}

// NewEventLoop builds an EventLoop over sources, sorted once up front so
// Run's dispatch order is deterministic.
func NewEventLoop(sources ...Source) *EventLoop {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Kind < sorted[j].Kind
	})
	return &EventLoop{sources: sorted}
}

// Run waits for any registered source to become ready and dispatches it,
// repeating until ctx is cancelled. Every wakeup polls readiness in
// priority order and dispatches the first ready source, so of several
// ready sources the earliest in that order always goes first; a source
// that stays ready continuously keeps precedence over every source after
// it, and those later sources wait until it is no longer ready.
func (l *EventLoop) Run(ctx context.Context) error {
	if len(l.sources) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		if err := l.tick(ctx); err != nil {
			return err
		}
	}
}

func (l *EventLoop) tick(ctx context.Context) error {
	cases := make([]<-chan struct{}, len(l.sources))
	for i, s := range l.sources {
		cases[i] = s.Ready()
	}

	// Fast path: dispatch the highest-priority source that is already
	// readable without blocking, so concurrently-ready sources resolve
	// in priority order rather than goroutine-scheduling order.
	for i, c := range cases {
		select {
		case <-c:
			return l.sources[i].Handle(ctx)
		default:
		}
	}

	idx, err := waitAny(ctx, cases)
	if err != nil {
		return err
	}
	return l.sources[idx].Handle(ctx)
}

// waitAny blocks until ctx is done or one of cases becomes readable,
// returning the lowest index among those that fired so the caller can
// still prefer priority order when several fire at once.
func waitAny(ctx context.Context, cases []<-chan struct{}) (int, error) {
	fired := make(chan int, len(cases))
	stop := make(chan struct{})
	defer close(stop)
	for i, c := range cases {
		i, c := i, c
		go func() {
			select {
			case <-c:
				select {
				case fired <- i:
				case <-stop:
				}
			case <-stop:
			}
		}()
	}
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case i := <-fired:
		// Drain any other sources that fired in the same instant so a
		// burst doesn't leave goroutines blocked on a closed stop path;
		// collect the lowest index to honor priority order.
		best := i
	drain:
		for {
			select {
			case j := <-fired:
				if j < best {
					best = j
				}
			default:
				break drain
			}
		}
		return best, nil
	}
}

// TickerSource builds a timer Source that fires every d.
func TickerSource(name string, priority int, d time.Duration, handle func(ctx context.Context) error) (Source, func()) {
	t := time.NewTicker(d)
	ch := make(chan struct{}, 1)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				select {
				case ch <- struct{}{}:
				default:
				}
			case <-stop:
				return
			}
		}
	}()
	src := Source{
		Name:     name,
		Kind:     SourceTimer,
		Priority: priority,
		Ready:    func() <-chan struct{} { return ch },
		Handle:   handle,
	}
	return src, func() { t.Stop(); close(stop) }
}

// FIFOSource builds a Source that fires when f has data, popping and
// passing it to handle. Ready re-arms f's readiness token while messages
// remain queued, so a burst of pushes is dispatched one message at a time.
func FIFOSource(name string, priority int, f *FIFO, handle func(ctx context.Context, m Message) error) Source {
	return Source{
		Name:     name,
		Kind:     SourceFIFO,
		Priority: priority,
		Ready: func() <-chan struct{} {
			if f.Len() > 0 {
				f.signalReadable()
			}
			return f.Readable()
		},
		Handle: func(ctx context.Context) error {
			m, ok := f.TryPop()
			if !ok {
				return nil
			}
			return handle(ctx, m)
		},
	}
}
