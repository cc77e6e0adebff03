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

package board

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"
	"golang.org/x/sync/errgroup"

	"naluscientific.com/go-nalu/pkg/endpoint"
	"naluscientific.com/go-nalu/pkg/layers"
	"naluscientific.com/go-nalu/pkg/log"
)

const (
	UDPLogName = "naludaq.UDP"
)

// Connection carries register operations to a board.
type Connection interface {
	Send(ops []*layers.RegOp) error
	Close() error
}

type inPacket struct {
	Data []byte
	gopacket.CaptureInfo
}

// UDPLink is a board connection over a UDP socket bound to the host endpoint.
type UDPLink struct {
	conn  *net.UDPConn
	board *net.UDPAddr
	log   *log.Logger
	onReg func(reg *layers.Reg)

	mu  sync.Mutex
	seq uint16

	chIn   chan inPacket
	cancel context.CancelFunc
	grp    *errgroup.Group
	once   sync.Once
}

var _ Connection = &UDPLink{}

// DialUDP binds hostEP and starts the receive loop for frames coming from boardEP.
// Registers carried by response frames are passed to onReg, which may be nil.
func DialUDP(ctx context.Context, boardEP, hostEP endpoint.Endpoint, logger *log.Logger, onReg func(reg *layers.Reg)) (*UDPLink, error) {
	boardAddr, err := boardEP.UDPAddr()
	if err != nil {
		return nil, err
	}
	hostAddr, err := hostEP.UDPAddr()
	if err != nil {
		return nil, err
	}
	logger = logger.Named(UDPLogName)
	logger.Debug("Binding host endpoint %s for board %s", hostAddr, boardAddr)

	conn, err := net.ListenUDP("udp", hostAddr)
	if err != nil {
		return nil, ErrConnect{Board: boardEP.String(), Host: hostEP.String(), Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	grp, ctx := errgroup.WithContext(ctx)
	l := &UDPLink{
		conn:   conn,
		board:  boardAddr,
		log:    logger,
		onReg:  onReg,
		chIn:   make(chan inPacket),
		cancel: cancel,
		grp:    grp,
	}

	grp.Go(func() error {
		<-ctx.Done()
		// unblocks the reader
		return l.conn.Close()
	})
	grp.Go(func() error { return l.readLoop(ctx) })
	grp.Go(l.decodeLoop)
	return l, nil
}

// LocalAddr returns the bound host address.
func (l *UDPLink) LocalAddr() *net.UDPAddr {
	return l.conn.LocalAddr().(*net.UDPAddr)
}

func (l *UDPLink) nextSeq() uint16 {
	seq := l.seq
	l.seq++
	return seq
}

// Send writes one register request frame to the board.
func (l *UDPLink) Send(ops []*layers.RegOp) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	frame, err := layers.NewRegFrame(layers.LinkTypeRegRequest, l.nextSeq(), ops)
	if err != nil {
		return err
	}
	l.log.Debug("Sending %d register ops (%d bytes) to %s", len(ops), len(frame), l.board)
	if _, err := l.conn.WriteToUDP(frame, l.board); err != nil {
		l.log.Error("Error while sending data to %s", l.board)
		return err
	}
	return nil
}

// ReadPacketData feeds the gopacket packet source with datagrams from the board.
func (l *UDPLink) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	p, ok := <-l.chIn
	if !ok {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	return p.Data, p.CaptureInfo, nil
}

// Read datagrams from the socket and put the ones sent by the board to the input queue
func (l *UDPLink) readLoop(ctx context.Context) error {
	defer close(l.chIn)
	buffer := make([]byte, 65536)
	for {
		length, addr, err := l.conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if !addr.IP.Equal(l.board.IP) {
			l.log.Debug("Drop packet from unknown peer %s", addr)
			continue
		}
		data := make([]byte, length)
		copy(data, buffer[:length])
		p := inPacket{
			Data: data,
			CaptureInfo: gopacket.CaptureInfo{
				Timestamp:     time.Now(),
				Length:        length,
				CaptureLength: length,
				AncillaryData: []interface{}{addr},
			},
		}
		select {
		case l.chIn <- p:
		case <-ctx.Done():
			return nil
		}
	}
}

// Parse captured frames and pass register responses on
func (l *UDPLink) decodeLoop() error {
	source := gopacket.NewPacketSource(l, layers.LinkLayerType)
	for packet := range source.Packets() {
		if errLayer := packet.ErrorLayer(); errLayer != nil {
			l.log.Warning("Drop frame: %s", errLayer.Error())
			continue
		}
		link, ok := packet.Layer(layers.LinkLayerType).(*layers.LinkLayer)
		if !ok || link.Type != layers.LinkTypeRegResponse {
			continue
		}
		reg, ok := packet.Layer(layers.RegLayerType).(*layers.RegLayer)
		if !ok {
			continue
		}
		l.log.Debug("Register response seq %d with %d ops", link.Seq, len(reg.RegOps))
		if l.onReg == nil {
			continue
		}
		for _, op := range reg.RegOps {
			l.onReg(op.Reg)
		}
	}
	return nil
}

// Close stops the receive loop and releases the socket.
func (l *UDPLink) Close() error {
	var err error
	l.once.Do(func() {
		l.cancel()
		err = l.grp.Wait()
	})
	return err
}
