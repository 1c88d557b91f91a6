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

package dvbfifo_test

import (
	"testing"
	"time"

	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
)

func TestPushAndPopOrder(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	now := time.Now()

	if err := f.Push([]byte("a"), 0, now); err != nil {
		t.Fatalf("Unexpected error on Push: %v", err)
	}
	if err := f.Push([]byte("b"), 0, now); err != nil {
		t.Fatalf("Unexpected error on Push: %v", err)
	}

	e, ok := f.Pop()
	if !ok || string(e.Payload) != "a" {
		t.Fatalf("Expected first popped element to be 'a', got %q, ok=%v", e.Payload, ok)
	}
	e, ok = f.Pop()
	if !ok || string(e.Payload) != "b" {
		t.Fatalf("Expected second popped element to be 'b', got %q, ok=%v", e.Payload, ok)
	}
}

func TestPopEmptyReturnsFalse(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	if _, ok := f.Pop(); ok {
		t.Error("Expected Pop on an empty FIFO to report false")
	}
}

func TestPushOverflowReturnsError(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 1)
	now := time.Now()
	if err := f.Push([]byte("a"), 0, now); err != nil {
		t.Fatalf("Unexpected error on first Push: %v", err)
	}
	if err := f.Push([]byte("b"), 0, now); err != dvbfifo.ErrFull {
		t.Fatalf("Expected ErrFull, got %v", err)
	}
	if f.Len() != 1 {
		t.Errorf("Expected overflow Push to be rejected without enqueuing, got len %d", f.Len())
	}
}

func TestPushFrontPrependsAndDecrementsNewBytes(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	now := time.Now()

	if err := f.Push([]byte("tail"), 0, now); err != nil {
		t.Fatalf("Unexpected error on Push: %v", err)
	}
	statsBefore := f.GetStatsContext()
	if statsBefore.InPktNbr != 1 || statsBefore.InLengthByte != 4 {
		t.Fatalf("Expected in counters {1,4} after one push, got {%d,%d}", statsBefore.InPktNbr, statsBefore.InLengthByte)
	}

	if err := f.PushFront([]byte("head"), 0, now); err != nil {
		t.Fatalf("Unexpected error on PushFront: %v", err)
	}

	e, ok := f.Pop()
	if !ok || string(e.Payload) != "head" {
		t.Fatalf("Expected PushFront to prepend, got %q, ok=%v", e.Payload, ok)
	}

	stats := f.GetStatsContext()
	if stats.InPktNbr != -1 || stats.InLengthByte != -4 {
		t.Fatalf("Expected PushFront to decrement the new-traffic counters, got {%d,%d}", stats.InPktNbr, stats.InLengthByte)
	}
}

func TestGetStatsContextResetsInOutButNotCurrent(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 8)
	now := time.Now()

	for _, payload := range [][]byte{[]byte("500bytes!"), []byte("another"), []byte("third!!")} {
		if err := f.Push(payload, 0, now); err != nil {
			t.Fatalf("Unexpected error on Push: %v", err)
		}
	}
	if _, ok := f.Pop(); !ok {
		t.Fatal("Expected a poppable element")
	}

	stats := f.GetStatsContext()
	if stats.InPktNbr != 3 {
		t.Errorf("Expected 3 packets in, got %d", stats.InPktNbr)
	}
	if stats.OutPktNbr != 1 {
		t.Errorf("Expected 1 packet out, got %d", stats.OutPktNbr)
	}
	if stats.CurrentPktNbr != f.Len() {
		t.Errorf("Expected CurrentPktNbr to equal live queue length, got %d vs %d", stats.CurrentPktNbr, f.Len())
	}

	statsAfter := f.GetStatsContext()
	if statsAfter.InPktNbr != 0 || statsAfter.OutPktNbr != 0 {
		t.Errorf("Expected in/out counters reset to zero after a snapshot, got {%d,%d}", statsAfter.InPktNbr, statsAfter.OutPktNbr)
	}
	if statsAfter.CurrentPktNbr != stats.CurrentPktNbr {
		t.Errorf("Expected CurrentPktNbr to stay live across snapshots, got %d vs %d", statsAfter.CurrentPktNbr, stats.CurrentPktNbr)
	}
}

func TestFlushDropsQueueAndResetsStats(t *testing.T) {
	t.Parallel()
	f := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	now := time.Now()
	_ = f.Push([]byte("a"), 0, now)
	_ = f.Push([]byte("b"), 0, now)

	f.Flush()

	if f.Len() != 0 {
		t.Errorf("Expected Flush to empty the queue, got len %d", f.Len())
	}
	stats := f.GetStatsContext()
	if stats.CurrentPktNbr != 0 || stats.InPktNbr != 0 || stats.OutPktNbr != 0 {
		t.Errorf("Expected all counters zero after Flush, got %+v", stats)
	}
}

func TestPriorityFIFOsOrdersByPriority(t *testing.T) {
	t.Parallel()
	low := dvbfifo.New(5, 1, dvbfifo.AccessDama, 6, 4)
	high := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	mid := dvbfifo.New(2, 1, dvbfifo.AccessDama, 6, 4)

	p := dvbfifo.NewPriorityFIFOs(low, high, mid)
	all := p.All()
	if len(all) != 3 || all[0] != high || all[1] != mid || all[2] != low {
		t.Fatalf("Expected priority order [high, mid, low], got %v", all)
	}
}

func TestPriorityFIFOsDamaOnlyExcludesSaloha(t *testing.T) {
	t.Parallel()
	dama := dvbfifo.New(0, 1, dvbfifo.AccessDama, 6, 4)
	saloha := dvbfifo.New(1, 1, dvbfifo.AccessSaloha, 6, 4)

	p := dvbfifo.NewPriorityFIFOs(dama, saloha)
	damaOnly := p.DamaOnly()
	if len(damaOnly) != 1 || damaOnly[0] != dama {
		t.Fatalf("Expected DamaOnly to exclude the saloha FIFO, got %v", damaOnly)
	}
}
