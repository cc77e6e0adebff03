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

package layers

import (
	"encoding/binary"
	"testing"

	"github.com/google/gopacket"
)

func TestRegFrame(t *testing.T) {
	ops := []*RegOp{
		{Reg: &Reg{Addr: 0x0a0, Value: 0x0001}},
		{Reg: &Reg{Addr: 0x0b0, Value: 0x0020}},
		{Read: true, Reg: &Reg{Addr: 0x0b1}},
	}
	data, err := NewRegFrame(LinkTypeRegRequest, 7, ops)
	if err != nil {
		t.Fatalf("could not serialize frame: %+v", err)
	}
	if got, want := len(data), LinkHeaderSize+len(ops)*RegOpSize+LinkTailSize; got != want {
		t.Fatalf("invalid frame size: got=%d, want=%d", got, want)
	}
	if got := binary.LittleEndian.Uint16(data[6:8]); int(got) != len(data)/4 {
		t.Fatalf("invalid length field: %d", got)
	}
	if got := binary.LittleEndian.Uint32(data[LinkHeaderSize:]); got != 0x00a00001 {
		t.Fatalf("invalid first op: 0x%08x", got)
	}

	packet := gopacket.NewPacket(data, LinkLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		t.Fatalf("could not decode frame: %+v", errLayer.Error())
	}
	link, ok := packet.Layer(LinkLayerType).(*LinkLayer)
	if !ok {
		t.Fatalf("link layer missing")
	}
	if link.Seq != 7 || link.Type != LinkTypeRegRequest || link.Src != LinkHostAddr || link.Dst != LinkBoardAddr {
		t.Fatalf("invalid link header: %+v", link.LinkHeader)
	}
	reg, ok := packet.Layer(RegLayerType).(*RegLayer)
	if !ok {
		t.Fatalf("reg layer missing")
	}
	if len(reg.RegOps) != len(ops) {
		t.Fatalf("invalid number of ops: %d", len(reg.RegOps))
	}
	for i, op := range reg.RegOps {
		want := ops[i]
		if op.Read != want.Read || op.Addr != want.Addr || op.Value != want.Value {
			t.Fatalf("op %d: got=%+v, want=%+v", i, *op.Reg, *want.Reg)
		}
	}
}

func TestFrameErrors(t *testing.T) {
	good, err := NewRegFrame(LinkTypeRegResponse, 1, []*RegOp{{Reg: &Reg{Addr: 1, Value: 2}}})
	if err != nil {
		t.Fatalf("%+v", err)
	}

	corrupt := func(f func([]byte)) []byte {
		data := append([]byte(nil), good...)
		f(data)
		return data
	}

	for _, tc := range []struct {
		name string
		data []byte
	}{
		{name: "short", data: good[:8]},
		{name: "sync", data: corrupt(func(b []byte) { b[2] = 0 })},
		{name: "crc", data: corrupt(func(b []byte) { b[LinkHeaderSize] ^= 0xff })},
		{name: "length", data: corrupt(func(b []byte) { b[6] = 9 })},
		{name: "type", data: corrupt(func(b []byte) { b[0] = 0x77 })},
	} {
		t.Run(tc.name, func(t *testing.T) {
			packet := gopacket.NewPacket(tc.data, LinkLayerType, gopacket.Default)
			if packet.ErrorLayer() == nil {
				t.Fatalf("expected a decoding error")
			}
			if packet.Layer(RegLayerType) != nil {
				t.Fatalf("unexpected reg layer")
			}
		})
	}

	if _, err := NewRegFrame(LinkTypeRegRequest, 0, nil); err == nil {
		t.Fatalf("expected an error for an empty frame")
	}
	many := make([]*RegOp, LinkMaxFrameSize/RegOpSize)
	for i := range many {
		many[i] = &RegOp{Reg: &Reg{Addr: uint16(i)}}
	}
	if _, err := NewRegFrame(LinkTypeRegRequest, 0, many); err == nil {
		t.Fatalf("expected an error for an oversized frame")
	}
}

func TestRegHex(t *testing.T) {
	reg, err := NewRegFromHex("0x00a1", "0xff")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if reg.Addr != 0xa1 || reg.Value != 0xff {
		t.Fatalf("invalid reg: %+v", reg)
	}
	addr, value := reg.Hex()
	if addr != "0x00a1" || value != "0x00ff" {
		t.Fatalf("invalid hex: %s %s", addr, value)
	}
	if _, err := NewRegFromHex("0x10000", "0"); err == nil {
		t.Fatalf("expected an out of range error")
	}
}

func TestRegOpEncode(t *testing.T) {
	op := &RegOp{Read: true, Reg: &Reg{Addr: 0xffff, Value: 0x1234}}
	if got := op.Encode(); got != 0xffff0000 {
		t.Fatalf("invalid read word: 0x%08x", got)
	}
	back := DecodeRegOp(0x7fff1234)
	if back.Read || back.Addr != 0x7fff || back.Value != 0x1234 {
		t.Fatalf("invalid op: %+v", back.Reg)
	}
}
