/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package board drives a data acquisition board: it opens the connection,
// programs registers and keeps the last known register values in a State.
package board

import (
	"context"

	"naluscientific.com/go-nalu/pkg/endpoint"
	"naluscientific.com/go-nalu/pkg/layers"
	"naluscientific.com/go-nalu/pkg/log"
	"naluscientific.com/go-nalu/pkg/models"
)

const (
	LogName = "naludaq.board"
)

type Board struct {
	Model *models.Model
	log   *log.Logger
	state *State
	conn  Connection
	ep    endpoint.Endpoint
}

// New creates a disconnected board. state may be nil.
func New(model *models.Model, logger *log.Logger, state *State) *Board {
	return &Board{
		Model: model,
		log:   logger.Named(LogName),
		state: state,
	}
}

// ConnectUDP opens a UDP connection to boardEP from hostEP.
func (b *Board) ConnectUDP(ctx context.Context, boardEP, hostEP endpoint.Endpoint) error {
	if b.conn != nil {
		return ErrAlreadyConnected{Board: b.ep.String()}
	}
	b.log.Info("Connecting to %s board at %s from %s", b.Model.Name, boardEP, hostEP)
	link, err := DialUDP(ctx, boardEP, hostEP, b.log, b.regReadBack(boardEP.String()))
	if err != nil {
		return err
	}
	b.Attach(link, boardEP)
	return nil
}

// Attach uses an already open connection to the board at ep.
func (b *Board) Attach(conn Connection, ep endpoint.Endpoint) {
	b.conn = conn
	b.ep = ep
}

func (b *Board) regReadBack(key string) func(reg *layers.Reg) {
	if b.state == nil {
		return nil
	}
	return func(reg *layers.Reg) {
		if err := b.state.SetRegs(key, []*layers.Reg{reg}); err != nil {
			b.log.Warning("Could not store register 0x%04x: %s", reg.Addr, err)
		}
	}
}

func (b *Board) Connected() bool {
	return b.conn != nil
}

func (b *Board) Endpoint() endpoint.Endpoint {
	return b.ep
}

// Disconnect closes the connection. It is a no-op on a disconnected board.
func (b *Board) Disconnect() error {
	if b.conn == nil {
		return nil
	}
	b.log.Info("Disconnecting from %s", b.ep)
	err := b.conn.Close()
	b.conn = nil
	return err
}

// WriteRegs sends register writes in a single frame and records them in the state.
func (b *Board) WriteRegs(regs ...*layers.Reg) error {
	if b.conn == nil {
		return ErrNotConnected{}
	}
	ops := make([]*layers.RegOp, 0, len(regs))
	for _, reg := range regs {
		b.log.Debug("Write register 0x%04x = 0x%04x", reg.Addr, reg.Value)
		ops = append(ops, &layers.RegOp{Reg: reg})
	}
	if err := b.conn.Send(ops); err != nil {
		return err
	}
	if b.state != nil {
		return b.state.SetRegs(b.ep.String(), regs)
	}
	return nil
}

// RequestRegs asks the board for the current value of registers.
// Values arrive asynchronously and end up in the state.
func (b *Board) RequestRegs(addrs ...uint16) error {
	if b.conn == nil {
		return ErrNotConnected{}
	}
	ops := make([]*layers.RegOp, 0, len(addrs))
	for _, addr := range addrs {
		ops = append(ops, &layers.RegOp{Read: true, Reg: &layers.Reg{Addr: addr}})
	}
	return b.conn.Send(ops)
}
