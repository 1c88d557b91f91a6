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

// Package forward implements the DVB-S2 forward-link scheduler: it
// bin-packs each carrier's queued packets into BBFrames, one MODCOD per
// frame, stopping once the allocation for the superframe is spent.
package forward

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/dvbfifo"
	"github.com/opensand-go/opensand-dataplane/internal/packet"
)

var tracer = otel.Tracer("github.com/opensand-go/opensand-dataplane/internal/scheduler/forward")

// TalID identifies a terminal for MODCOD lookup purposes.
type TalID uint16

// CarrierID identifies an output carrier.
type CarrierID uint8

// Carrier describes one forward-link carrier: its allocated symbol
// rate-derived frame budget in bits, and the terminals it may carry.
// MaxModcod caps which terminals the carrier admits at all: a
// terminal whose assigned MODCOD id is above MaxModcod never gets a
// packet scheduled on this carrier, regardless of which MODCOD a
// given frame ends up opened at. Zero means no ceiling.
type Carrier struct {
	ID            CarrierID
	FrameSizeBits int
	MaxModcod     uint8
}

// admits reports whether carrier accepts a terminal assigned modcod at
// all, independent of any frame already open.
func (c Carrier) admits(modcod uint8) bool {
	return c.MaxModcod == 0 || modcod <= c.MaxModcod
}

// ModcodTable maps a MODCOD id to the fraction of a frame's bits it can
// actually carry (efficiency), used to size a frame's effective
// payload budget once a MODCOD has been chosen for it.
type ModcodTable map[uint8]float64

// PayloadBits returns carrier's frame payload budget once modcod has
// been selected for it.
func (t ModcodTable) PayloadBits(carrier Carrier, modcod uint8) int {
	eff, ok := t[modcod]
	if !ok || eff <= 0 {
		return 0
	}
	return int(float64(carrier.FrameSizeBits) * eff)
}

// Schedule drains fifos for each carrier in declared order, bin-packing
// BBFrames until remainingKb is spent or every FIFO is empty. It
// mutates *remainingKb in place and returns the frames produced.
func Schedule(
	ctx context.Context,
	superframe uint32,
	carriers []Carrier,
	fifos map[CarrierID]*dvbfifo.PriorityFIFOs,
	modcods ModcodTable,
	modcodOf func(TalID) uint8,
	handler packet.PacketHandler,
	remainingKb *int,
) ([]packet.BBFrame, error) {
	ctx, span := tracer.Start(ctx, "ForwardScheduler.Schedule")
	defer span.End()
	_ = ctx

	var frames []packet.BBFrame

	for _, carrier := range carriers {
		pf, ok := fifos[carrier.ID]
		if !ok {
			continue
		}

		for *remainingKb > 0 {
			frame, fifoModcod, built, err := buildFrame(carrier, pf, modcods, modcodOf, handler)
			if err != nil {
				if built {
					frames = append(frames, frame)
					*remainingKb -= frameCostKb(frame, carrier.FrameSizeBits)
				}
				return frames, fmt.Errorf("forward scheduler: superframe %d carrier %d: %w", superframe, carrier.ID, err)
			}
			if !built {
				// Every FIFO for this carrier is empty or nothing fits;
				// move on to the next carrier.
				break
			}
			frame.ModcodID = fifoModcod
			frame.Header.ModcodID = fifoModcod
			frames = append(frames, frame)
			*remainingKb -= frameCostKb(frame, carrier.FrameSizeBits)
		}
	}

	return frames, nil
}

// buildFrame opens one BBFrame for carrier and drains pf's FIFOs into
// it in priority order. built is false (and frame the zero value) if no
// packet could be placed, per the "discard zero-packet frames" rule.
func buildFrame(
	carrier Carrier,
	pf *dvbfifo.PriorityFIFOs,
	modcods ModcodTable,
	modcodOf func(TalID) uint8,
	handler packet.PacketHandler,
) (frame packet.BBFrame, modcod uint8, built bool, err error) {
	fifoList := pf.DamaOnly()

	// Choose the lowest (most robust) MODCOD among terminals whose
	// destination currently heads an eligible FIFO, so the frame we open
	// is guaranteed deliverable to every terminal it ends up carrying.
	// Terminals the carrier doesn't admit at all are excluded up front.
	modcod = lowestModcodAmongHeads(carrier, fifoList, modcodOf)
	if modcod == 0 {
		return packet.BBFrame{}, 0, false, nil
	}

	budget := modcods.PayloadBits(carrier, modcod) / 8
	if budget <= 0 {
		return packet.BBFrame{}, 0, false, nil
	}

	frame = packet.BBFrame{
		DvbFrame: packet.DvbFrame{
			Header: packet.FrameHeader{
				MsgType:   dvbconst.FrameMsgEncapData,
				CarrierID: uint8(carrier.ID),
			},
			Payload: packet.NewBuffer(nil),
		},
		ModcodID: modcod,
	}

	now := time.Now()
	placed := 0
	for _, f := range fifoList {
		for {
			free := frame.FreeSpace(budget)
			if free <= 0 {
				break
			}
			dst, ok := f.PeekDst()
			if !ok {
				break
			}
			destModcod := modcodOf(TalID(dst))
			if !carrier.admits(destModcod) || !modcodFitsClass(destModcod, modcod) {
				// Either the carrier doesn't serve this terminal's MODCOD at
				// all, or it doesn't fit this frame's MODCOD class: leave it
				// queued and move to the next FIFO rather than stalling this one.
				break
			}

			elem, ok := f.Pop()
			if !ok {
				break
			}
			pkt, perr := handler.Build(elem.Payload, 0, 0, elem.Dst)
			if perr != nil {
				return frame, modcod, placed > 0, fmt.Errorf("build packet: %w", perr)
			}

			chunk, tail, gerr := handler.GetChunk(pkt, free)
			if gerr != nil {
				return frame, modcod, placed > 0, fmt.Errorf("get chunk: %w", gerr)
			}
			if chunk == nil {
				// Doesn't fit and can't be fragmented: push back whole and
				// stop draining this FIFO for this frame.
				if pushErr := f.PushFront(elem.Payload, elem.Dst, now); pushErr != nil {
					return frame, modcod, placed > 0, fmt.Errorf("push back oversized packet: %w", pushErr)
				}
				break
			}

			frame.Payload = packet.NewBuffer(append(frame.Payload.Bytes(), chunk.Data.Bytes()...))
			placed++

			if tail != nil {
				if pushErr := f.PushFront(tail.Data.Bytes(), elem.Dst, now); pushErr != nil {
					return frame, modcod, placed > 0, fmt.Errorf("push back fragment tail: %w", pushErr)
				}
				break
			}
		}
	}

	if placed == 0 {
		return packet.BBFrame{}, 0, false, nil
	}
	frame.Header.Length = uint16(frame.Payload.Len())
	return frame, modcod, true, nil
}

// lowestModcodAmongHeads inspects the head element of every eligible
// FIFO and returns the lowest (most robust) MODCOD among the
// destinations carrier actually admits, or 0 if none qualify.
func lowestModcodAmongHeads(carrier Carrier, fifoList []*dvbfifo.DvbFifo, modcodOf func(TalID) uint8) uint8 {
	var lowest uint8
	found := false
	for _, f := range fifoList {
		dst, ok := f.PeekDst()
		if !ok {
			continue
		}
		m := modcodOf(TalID(dst))
		if !carrier.admits(m) {
			continue
		}
		if !found || m < lowest {
			lowest = m
			found = true
		}
	}
	if !found {
		return 0
	}
	return lowest
}

// modcodFitsClass reports whether a packet destined to a terminal with
// MODCOD destModcod can be safely carried by a frame built at
// frameModcod: a frame's MODCOD is a robustness floor, so only
// terminals whose own MODCOD id is the frame's or higher (no more
// robust than the frame) fit.
func modcodFitsClass(destModcod, frameModcod uint8) bool {
	return destModcod >= frameModcod
}

// frameCostKb returns the kilobit cost to charge against the remaining
// allocation for one emitted frame, rounding up to the next whole kb as
// the return scheduler does for its own frames.
func frameCostKb(frame packet.BBFrame, frameSizeBits int) int {
	bits := frameSizeBits
	if bits <= 0 {
		bits = (packet.FrameHeaderLen + frame.Payload.Len()) * 8
	}
	return (bits + 999) / 1000
}
