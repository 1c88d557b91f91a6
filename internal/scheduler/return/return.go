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

// Package return_ implements the DVB-RCS2 return-link scheduler: a
// single-pass state machine that drains DAMA-eligible MAC FIFOs into
// fixed-budget bursts until the terminal's allocation is spent.
package return_

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
)

var tracer = otel.Tracer("github.com/opensand-go/opensand-dataplane/internal/scheduler/return")

// state is the scheduler's tagged state, mirroring the original
// enum+switch design rather than hiding it behind nested branches.
type state int

const (
	stateGetFifo state = iota
	stateNextEncapPkt
	stateGetChunk
	stateAddData
	stateFinalizeFrame
	stateDone
	stateError
)

// Result holds one pass's output: completed frames and the updated
// remaining allocation.
type Result struct {
	Frames      []packet.DvbRcsFrame
	RemainingKb int
}

// machine carries the state a single Schedule pass threads between
// steps; it exists only for the duration of one call.
type machine struct {
	fifos        []*dvbfifo.DvbFifo
	handler      packet.PacketHandler
	maxBurstBits int
	remainingKb  int

	fifoIdx   int
	cur       *dvbfifo.DvbFifo
	pkt       *packet.NetPacket
	pktDst    uint16
	chunk     *packet.NetPacket
	tail      *packet.NetPacket
	frame     packet.DvbRcsFrame
	frameBits int

	frames []packet.DvbRcsFrame
	err    error
}

// Schedule drains fifos into fixed-size DVB-RCS2 bursts until
// remainingKb is spent or every FIFO is empty. Slotted-Aloha FIFOs in
// fifos are skipped and left untouched.
func Schedule(ctx context.Context, fifos []*dvbfifo.DvbFifo, handler packet.PacketHandler, maxBurstBits, remainingKb int) (Result, error) {
	_, span := tracer.Start(ctx, "ReturnScheduler.Schedule")
	defer span.End()

	m := &machine{
		fifos:        filterDama(fifos),
		handler:      handler,
		maxBurstBits: maxBurstBits,
		remainingKb:  remainingKb,
	}

	st := stateGetFifo
	for st != stateDone && st != stateError {
		st = m.step(st)
	}
	if st == stateError {
		return Result{Frames: m.frames, RemainingKb: m.remainingKb}, m.err
	}
	return Result{Frames: m.frames, RemainingKb: m.remainingKb}, nil
}

func filterDama(fifos []*dvbfifo.DvbFifo) []*dvbfifo.DvbFifo {
	out := make([]*dvbfifo.DvbFifo, 0, len(fifos))
	for _, f := range fifos {
		if f.AccessType != dvbfifo.AccessSaloha {
			out = append(out, f)
		}
	}
	return out
}

func (m *machine) step(cur state) state {
	switch cur {
	case stateGetFifo:
		return m.getFifo()
	case stateNextEncapPkt:
		return m.nextEncapPkt()
	case stateGetChunk:
		return m.getChunk()
	case stateAddData:
		return m.addData()
	case stateFinalizeFrame:
		return m.finalizeFrame()
	default:
		m.err = fmt.Errorf("%w: return scheduler reached an unknown state", dvbconst.ErrInvariant)
		return stateError
	}
}

// getFifo advances to the next eligible FIFO with queued data, or ends
// the pass once the allocation is spent or every FIFO is exhausted.
func (m *machine) getFifo() state {
	if m.remainingKb <= 0 {
		return stateDone
	}
	for m.fifoIdx < len(m.fifos) {
		f := m.fifos[m.fifoIdx]
		if f.Len() > 0 {
			m.cur = f
			m.frame = newFrame(m.maxBurstBits / 8)
			m.frameBits = 0
			return stateNextEncapPkt
		}
		m.fifoIdx++
	}
	return stateDone
}

func newFrame(maxSizeBytes int) packet.DvbRcsFrame {
	return packet.DvbRcsFrame{
		DvbFrame: packet.DvbFrame{
			Header:  packet.FrameHeader{MsgType: dvbconst.FrameMsgEncapData},
			Payload: packet.NewBuffer(nil),
		},
		MaxSizeBytes: maxSizeBytes,
	}
}

// nextEncapPkt pops the current FIFO's head packet, or finalizes the
// in-progress frame and moves to the next FIFO once this one is empty.
func (m *machine) nextEncapPkt() state {
	elem, ok := m.cur.Pop()
	if !ok {
		m.fifoIdx++
		return stateFinalizeFrame
	}
	pkt, err := m.handler.Build(elem.Payload, 0, 0, elem.Dst)
	if err != nil {
		m.err = fmt.Errorf("build packet: %w", err)
		return stateError
	}
	m.pkt = &pkt
	m.pktDst = elem.Dst
	return stateGetChunk
}

// getChunk fragments the current packet against the frame's remaining
// free space.
func (m *machine) getChunk() state {
	free := m.frame.FreeSpace(m.frame.MaxSizeBytes)
	chunk, tail, err := m.handler.GetChunk(*m.pkt, free)
	if err != nil {
		m.err = fmt.Errorf("get chunk: %w", err)
		return stateError
	}
	if chunk == nil && tail == nil {
		m.err = fmt.Errorf("%w: get_chunk returned neither a chunk nor a tail", dvbconst.ErrInvariant)
		return stateError
	}
	m.chunk = chunk
	m.tail = tail
	return stateAddData
}

// addData appends the chunk to the current frame, pushes back any tail
// (never re-counted as new input), and decides whether the frame is
// full or the pass should keep draining this FIFO.
func (m *machine) addData() state {
	now := time.Now()
	if m.chunk == nil {
		// Nothing fit and the packet can't be fragmented further: put it
		// back whole and close out this FIFO's frame.
		if err := m.cur.PushFront(m.pkt.Data.Bytes(), m.pktDst, now); err != nil {
			m.err = fmt.Errorf("push back unfit packet: %w", err)
			return stateError
		}
		return stateFinalizeFrame
	}

	m.frame.Payload = packet.NewBuffer(append(m.frame.Payload.Bytes(), m.chunk.Data.Bytes()...))
	m.frameBits += m.chunk.Len() * 8

	if m.tail != nil {
		if err := m.cur.PushFront(m.tail.Data.Bytes(), m.pktDst, now); err != nil {
			m.err = fmt.Errorf("push back fragment tail: %w", err)
			return stateError
		}
		return stateFinalizeFrame
	}

	if m.frame.FreeSpace(m.frame.MaxSizeBytes) <= 0 || m.frameBits >= m.remainingKb*1000 {
		return stateFinalizeFrame
	}
	return stateNextEncapPkt
}

// finalizeFrame closes out the in-progress frame. An empty frame is
// rejected as an internal error per the state machine's own contract:
// getFifo only opens a frame once it has confirmed the FIFO holds at
// least one packet, so ending up with nothing placed means get_chunk
// or the allocation bookkeeping misbehaved.
func (m *machine) finalizeFrame() state {
	if m.frame.Payload.Len() == 0 {
		m.err = fmt.Errorf("%w: finalized an empty return-link frame", dvbconst.ErrInvariant)
		return stateError
	}
	m.frame.Header.Length = uint16(m.frame.Payload.Len())
	m.frames = append(m.frames, m.frame)
	m.remainingKb -= (m.frameBits + 999) / 1000
	return stateGetFifo
}
