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

// Package block implements the directed graph of blocks and channels
// that form the dataplane: each block owns an upward and a downward
// channel, channels connect to their neighbor's same-direction
// channel, and messages flow in one of four shapes (one-to-one, mux,
// demux, mux-demux) depending on how many peers a channel talks to.
package block

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opensand-go/opensand-dataplane/internal/dvbconst"
	"github.com/opensand-go/opensand-dataplane/internal/fifo"
)

// Kind is the direction a Channel runs in within its Block.
type Kind int

const (
	Upward Kind = iota
	Downward
)

func (k Kind) String() string {
	if k == Upward {
		return "upward"
	}
	return "downward"
}

// Channel is one directed half of a Block. Enqueue hands it a message
// from a connected peer or from the block's opposite channel; Run
// drives its event loop until ctx is cancelled.
type Channel interface {
	Kind() Kind
	Enqueue(msg fifo.Message) error
	Run(ctx context.Context) error
	Close()
}

// OneToOne is a Channel with exactly one upstream and one downstream
// FIFO: the common case of a block in the middle of a chain.
type OneToOne struct {
	kind   Kind
	name   string
	in     *fifo.FIFO
	out    *fifo.FIFO
	handle func(ctx context.Context, msg fifo.Message) error
	log    *slog.Logger
}

// NewOneToOne builds a OneToOne channel. handle is called once per
// inbound message; it is expected to push zero or more messages to out
// itself via the closure it was built with.
func NewOneToOne(name string, kind Kind, capacity int, log *slog.Logger, handle func(ctx context.Context, msg fifo.Message) error) *OneToOne {
	return &OneToOne{
		kind:   kind,
		name:   name,
		in:     fifo.New(capacity),
		out:    fifo.New(capacity),
		handle: handle,
		log:    log,
	}
}

func (c *OneToOne) Kind() Kind { return c.kind }

// In returns the FIFO a connected peer (or the block's opposite
// channel) pushes inbound messages into.
func (c *OneToOne) In() *fifo.FIFO { return c.in }

// Out returns the FIFO this channel pushes outbound messages into.
func (c *OneToOne) Out() *fifo.FIFO { return c.out }

func (c *OneToOne) Enqueue(msg fifo.Message) error {
	return c.in.Push(context.Background(), msg)
}

func (c *OneToOne) Close() {
	c.in.Close()
	c.out.Close()
}

func (c *OneToOne) Run(ctx context.Context) error {
	loop := fifo.NewEventLoop(fifo.FIFOSource(c.name, 0, c.in, func(ctx context.Context, msg fifo.Message) error {
		if err := c.handle(ctx, msg); err != nil {
			c.log.Error("channel handler failed", "channel", c.name, "kind", c.kind, "error", err)
			if !errors.Is(err, dvbconst.ErrProtocolError) {
				return err
			}
		}
		return nil
	}))
	return loop.Run(ctx)
}

// Mux is a Channel with several upstream FIFOs feeding a single
// downstream FIFO: many peers converge on one handler.
type Mux struct {
	kind    Kind
	name    string
	inputs  map[string]*fifo.FIFO
	out     *fifo.FIFO
	handle  func(ctx context.Context, from string, msg fifo.Message) error
	log     *slog.Logger
}

// NewMux builds a Mux over the named inputs.
func NewMux(name string, kind Kind, capacity int, log *slog.Logger, inputNames []string, handle func(ctx context.Context, from string, msg fifo.Message) error) *Mux {
	inputs := make(map[string]*fifo.FIFO, len(inputNames))
	for _, n := range inputNames {
		inputs[n] = fifo.New(capacity)
	}
	return &Mux{
		kind:   kind,
		name:   name,
		inputs: inputs,
		out:    fifo.New(capacity),
		handle: handle,
		log:    log,
	}
}

func (m *Mux) Kind() Kind { return m.kind }

func (m *Mux) Out() *fifo.FIFO { return m.out }

// In returns the named peer's inbound FIFO, or nil if no such peer was
// registered at construction.
func (m *Mux) In(peer string) *fifo.FIFO { return m.inputs[peer] }

func (m *Mux) Enqueue(msg fifo.Message) error {
	return fmt.Errorf("block: Mux.Enqueue requires a peer name, use In(peer).Push directly")
}

func (m *Mux) Close() {
	for _, in := range m.inputs {
		in.Close()
	}
	m.out.Close()
}

func (m *Mux) Run(ctx context.Context) error {
	sources := make([]fifo.Source, 0, len(m.inputs))
	for name, in := range m.inputs {
		name, in := name, in
		sources = append(sources, fifo.FIFOSource(name, 0, in, func(ctx context.Context, msg fifo.Message) error {
			if err := m.handle(ctx, name, msg); err != nil {
				m.log.Error("mux handler failed", "channel", m.name, "from", name, "error", err)
				if !errors.Is(err, dvbconst.ErrProtocolError) {
					return err
				}
			}
			return nil
		}))
	}
	return fifo.NewEventLoop(sources...).Run(ctx)
}

// Demux is a Channel with a single upstream FIFO whose handler routes
// each message to one of several keyed downstream FIFOs: one source,
// many destinations, selected per message by K.
type Demux[K comparable] struct {
	kind    Kind
	name    string
	in      *fifo.FIFO
	outputs map[K]*fifo.FIFO
	route   func(msg fifo.Message) (K, error)
	log     *slog.Logger
}

// NewDemux builds a Demux over the given output keys.
func NewDemux[K comparable](name string, kind Kind, capacity int, log *slog.Logger, outputKeys []K, route func(msg fifo.Message) (K, error)) *Demux[K] {
	outputs := make(map[K]*fifo.FIFO, len(outputKeys))
	for _, k := range outputKeys {
		outputs[k] = fifo.New(capacity)
	}
	return &Demux[K]{
		kind:    kind,
		name:    name,
		in:      fifo.New(capacity),
		outputs: outputs,
		route:   route,
		log:     log,
	}
}

func (d *Demux[K]) Kind() Kind { return d.kind }

func (d *Demux[K]) In() *fifo.FIFO { return d.in }

// Out returns the FIFO registered under key, or nil if unmapped.
func (d *Demux[K]) Out(key K) *fifo.FIFO { return d.outputs[key] }

func (d *Demux[K]) Enqueue(msg fifo.Message) error {
	return d.in.Push(context.Background(), msg)
}

func (d *Demux[K]) Close() {
	d.in.Close()
	for _, out := range d.outputs {
		out.Close()
	}
}

func (d *Demux[K]) Run(ctx context.Context) error {
	loop := fifo.NewEventLoop(fifo.FIFOSource(d.name, 0, d.in, func(ctx context.Context, msg fifo.Message) error {
		key, err := d.route(msg)
		if err != nil {
			d.log.Error("demux route failed", "channel", d.name, "error", err)
			return nil
		}
		out, ok := d.outputs[key]
		if !ok {
			d.log.Warn("demux dropped message for unmapped key", "channel", d.name, "key", key)
			return nil
		}
		return out.Push(ctx, msg)
	}))
	return loop.Run(ctx)
}

// MuxDemux combines Mux and Demux: several keyed inputs, and a router
// that picks one of several keyed outputs per message. Spot-aware
// relaying is the canonical use: inputs keyed by source entity, outputs
// keyed by destination entity.
type MuxDemux[K comparable] struct {
	kind    Kind
	name    string
	inputs  map[K]*fifo.FIFO
	outputs map[K]*fifo.FIFO
	route   func(from K, msg fifo.Message) (K, error)
	log     *slog.Logger
}

// NewMuxDemux builds a MuxDemux over the given input and output keys.
func NewMuxDemux[K comparable](name string, kind Kind, capacity int, log *slog.Logger, inputKeys, outputKeys []K, route func(from K, msg fifo.Message) (K, error)) *MuxDemux[K] {
	inputs := make(map[K]*fifo.FIFO, len(inputKeys))
	for _, k := range inputKeys {
		inputs[k] = fifo.New(capacity)
	}
	outputs := make(map[K]*fifo.FIFO, len(outputKeys))
	for _, k := range outputKeys {
		outputs[k] = fifo.New(capacity)
	}
	return &MuxDemux[K]{
		kind:    kind,
		name:    name,
		inputs:  inputs,
		outputs: outputs,
		route:   route,
		log:     log,
	}
}

func (m *MuxDemux[K]) Kind() Kind { return m.kind }

func (m *MuxDemux[K]) In(key K) *fifo.FIFO { return m.inputs[key] }

func (m *MuxDemux[K]) Out(key K) *fifo.FIFO { return m.outputs[key] }

func (m *MuxDemux[K]) Enqueue(msg fifo.Message) error {
	return fmt.Errorf("block: MuxDemux.Enqueue requires a key, use In(key).Push directly")
}

func (m *MuxDemux[K]) Close() {
	for _, in := range m.inputs {
		in.Close()
	}
	for _, out := range m.outputs {
		out.Close()
	}
}

func (m *MuxDemux[K]) Run(ctx context.Context) error {
	sources := make([]fifo.Source, 0, len(m.inputs))
	for key, in := range m.inputs {
		key, in := key, in
		sources = append(sources, fifo.FIFOSource(fmt.Sprintf("%s/%v", m.name, key), 0, in, func(ctx context.Context, msg fifo.Message) error {
			dest, err := m.route(key, msg)
			if err != nil {
				m.log.Error("mux-demux route failed", "channel", m.name, "from", key, "error", err)
				return nil
			}
			out, ok := m.outputs[dest]
			if !ok {
				m.log.Warn("mux-demux dropped message for unmapped destination", "channel", m.name, "from", key, "to", dest)
				return nil
			}
			return out.Push(ctx, msg)
		}))
	}
	return fifo.NewEventLoop(sources...).Run(ctx)
}
