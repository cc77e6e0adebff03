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
	"fmt"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// RegLayerNum identifies the layer
	RegLayerNum = 2097
	// RegOpSize is the size of one register operation in bytes
	RegOpSize = 4
	// RegAddrMask keeps the 15 address bits of a register operation
	RegAddrMask = 0x7fff
)

type Reg struct {
	Addr  uint16
	Value uint16
}

// Hex returns the address and the value as 0x prefixed hexadecimal strings
func (r *Reg) Hex() (string, string) {
	return fmt.Sprintf("0x%04x", r.Addr), fmt.Sprintf("0x%04x", r.Value)
}

func NewRegFromHex(addr, value string) (*Reg, error) {
	a, err := strconv.ParseUint(addr, 0, 16)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return nil, err
	}
	return &Reg{Addr: uint16(a), Value: uint16(v)}, nil
}

type RegOp struct {
	Read bool
	*Reg
}

// Encode packs the operation into one 32 bit word:
// bit 31 read flag, bits 30..16 address, bits 15..0 value.
func (op *RegOp) Encode() uint32 {
	word := (uint32(op.Addr) & RegAddrMask) << 16
	if op.Read {
		return 0x80000000 | word
	}
	return word | uint32(op.Value)
}

func DecodeRegOp(word uint32) *RegOp {
	return &RegOp{
		Read: word&0x80000000 != 0,
		Reg: &Reg{
			Addr:  uint16((word >> 16) & RegAddrMask),
			Value: uint16(word & 0xffff),
		},
	}
}

// RegLayer carries a list of register operations
type RegLayer struct {
	layers.BaseLayer
	RegOps []*RegOp
}

var RegLayerType = gopacket.RegisterLayerType(RegLayerNum,
	gopacket.LayerTypeMetadata{Name: "RegLayerType", Decoder: gopacket.DecodeFunc(DecodeRegLayer)})

func (reg *RegLayer) LayerType() gopacket.LayerType {
	return RegLayerType
}

func (reg *RegLayer) Serialize(buf []byte) {
	for i, op := range reg.RegOps {
		binary.LittleEndian.PutUint32(buf[i*RegOpSize:(i+1)*RegOpSize], op.Encode())
	}
}

// SerializeTo serializes the register operations into bytes and writes the bytes to the SerializeBuffer
func (reg *RegLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(len(reg.RegOps) * RegOpSize)
	if err != nil {
		return err
	}
	reg.Serialize(bytes)
	return nil
}

func (reg *RegLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data)%RegOpSize != 0 {
		df.SetTruncated()
		return ErrFrame{What: fmt.Sprintf("register payload of %d bytes is not word aligned", len(data))}
	}
	reg.BaseLayer = layers.BaseLayer{
		Contents: data,
		Payload:  []byte{},
	}
	reg.RegOps = reg.RegOps[:0]
	for i := 0; i < len(data); i += RegOpSize {
		reg.RegOps = append(reg.RegOps, DecodeRegOp(binary.LittleEndian.Uint32(data[i:i+RegOpSize])))
	}
	return nil
}

func (reg *RegLayer) CanDecode() gopacket.LayerClass {
	return RegLayerType
}

func (reg *RegLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func DecodeRegLayer(data []byte, p gopacket.PacketBuilder) error {
	reg := &RegLayer{}
	err := reg.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(reg)
	return nil
}
