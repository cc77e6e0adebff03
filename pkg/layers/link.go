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
	"hash/crc32"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	LinkHostAddr  = 0x0001
	LinkBoardAddr = 0xfefe
)

func init() {
	initUnknownLinkTypes()
	initActualLinkTypes()
}

const (
	// LinkLayerNum identifies the layer
	LinkLayerNum = 2099
	// LinkSync is a magic number that appears in the beginning of each frame
	LinkSync = 0x4e4c
	// LinkHeaderSize is the size of the frame header in bytes
	LinkHeaderSize = 12
	// LinkTailSize is the size of the crc32 tail in bytes
	LinkTailSize = 4
	// LinkMaxFrameSize is the max size of a frame including header and tail
	LinkMaxFrameSize = 1400
)

type LinkType uint16

const (
	LinkTypeRegRequest  LinkType = 0x0101
	LinkTypeRegResponse LinkType = 0x0102
)

type errorDecoderForLinkType int

func (e *errorDecoderForLinkType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return e
}

func (e *errorDecoderForLinkType) Error() string {
	return fmt.Sprintf("Unable to decode link type %d", int(*e))
}

var errorDecodersForLinkType [65536]errorDecoderForLinkType
var LinkMetadata [65536]layers.EnumMetadata

func initUnknownLinkTypes() {
	for i := 0; i < 65536; i++ {
		errorDecodersForLinkType[i] = errorDecoderForLinkType(i)
		LinkMetadata[i] = layers.EnumMetadata{
			DecodeWith: &errorDecodersForLinkType[i],
			Name:       "UnknownLinkType",
		}
	}
}

func initActualLinkTypes() {
	LinkMetadata[LinkTypeRegRequest] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeRegLayer), Name: "RegRequest", LayerType: RegLayerType}
	LinkMetadata[LinkTypeRegResponse] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeRegLayer), Name: "RegResponse", LayerType: RegLayerType}
}

// LayerType returns LinkMetadata.LayerType
func (t LinkType) LayerType() gopacket.LayerType {
	return LinkMetadata[t].LayerType
}

// Decode calls LinkMetadata.DecodeWith's decoder
func (t LinkType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return LinkMetadata[t].DecodeWith.Decode(data, p)
}

// String returns LinkMetadata.Name
func (t LinkType) String() string {
	return LinkMetadata[t].Name
}

type LinkHeader struct {
	Type LinkType
	Sync uint16
	Seq  uint16
	Len  uint16 // frame length including header, payload and tail in 4-byte words
	Src  uint16
	Dst  uint16
}

// LinkLayer frames register traffic between the host and a board.
type LinkLayer struct {
	layers.BaseLayer
	LinkHeader
	Crc uint32
}

var LinkLayerType = gopacket.RegisterLayerType(LinkLayerNum,
	gopacket.LayerTypeMetadata{Name: "LinkLayerType", Decoder: gopacket.DecodeFunc(decodeLinkLayer)})

func (l *LinkLayer) LayerType() gopacket.LayerType {
	return LinkLayerType
}

// SerializeHeader serializes only the header to a buffer.
// The crc covers the header, so it is computed from these bytes before the
// whole frame is serialized.
func (l *LinkLayer) SerializeHeader(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(l.Type))
	binary.LittleEndian.PutUint16(buf[2:4], l.Sync)
	binary.LittleEndian.PutUint16(buf[4:6], l.Seq)
	binary.LittleEndian.PutUint16(buf[6:8], l.Len)
	binary.LittleEndian.PutUint16(buf[8:10], l.Src)
	binary.LittleEndian.PutUint16(buf[10:12], l.Dst)
}

// SerializeTo prepends the header and appends the crc tail
func (l *LinkLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	payload := b.Bytes()
	if opts.FixLengths {
		l.Len = uint16((LinkHeaderSize + len(payload) + LinkTailSize) / 4)
	}
	headerBytes, err := b.PrependBytes(LinkHeaderSize)
	if err != nil {
		return err
	}
	l.SerializeHeader(headerBytes)

	if opts.ComputeChecksums {
		l.Crc = crc32.ChecksumIEEE(b.Bytes())
	}

	tailBytes, err := b.AppendBytes(LinkTailSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(tailBytes, l.Crc)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a link frame
func (l *LinkLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < LinkHeaderSize+LinkTailSize {
		df.SetTruncated()
		return ErrFrame{What: fmt.Sprintf("frame too short: %d bytes", len(data))}
	}

	if sync := binary.LittleEndian.Uint16(data[2:4]); sync != LinkSync {
		return ErrFrame{What: fmt.Sprintf("wrong sync 0x%04x, must be 0x%04x", sync, LinkSync)}
	}

	l.BaseLayer = layers.BaseLayer{
		Contents: data[:LinkHeaderSize],
		Payload:  data[LinkHeaderSize : len(data)-LinkTailSize],
	}

	l.Type = LinkType(binary.LittleEndian.Uint16(data[0:2]))
	l.Sync = binary.LittleEndian.Uint16(data[2:4])
	l.Seq = binary.LittleEndian.Uint16(data[4:6])
	l.Len = binary.LittleEndian.Uint16(data[6:8])
	l.Src = binary.LittleEndian.Uint16(data[8:10])
	l.Dst = binary.LittleEndian.Uint16(data[10:12])
	l.Crc = binary.LittleEndian.Uint32(data[len(data)-LinkTailSize:])

	if int(l.Len)*4 != len(data) {
		return ErrFrame{What: fmt.Sprintf("length field %d words does not match %d bytes", l.Len, len(data))}
	}
	if crc := crc32.ChecksumIEEE(data[:len(data)-LinkTailSize]); crc != l.Crc {
		return ErrFrame{What: fmt.Sprintf("crc mismatch: got 0x%08x, computed 0x%08x", l.Crc, crc)}
	}
	return nil
}

func (l *LinkLayer) CanDecode() gopacket.LayerClass {
	return LinkLayerType
}

func (l *LinkLayer) NextLayerType() gopacket.LayerType {
	return l.Type.LayerType()
}

func decodeLinkLayer(data []byte, p gopacket.PacketBuilder) error {
	l := &LinkLayer{}
	err := l.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(l)
	return p.NextDecoder(l.Type)
}

// NewRegFrame serializes register operations into a complete frame.
func NewRegFrame(typ LinkType, seq uint16, ops []*RegOp) ([]byte, error) {
	if len(ops) == 0 {
		return nil, ErrFrame{What: "no register operations"}
	}
	if LinkHeaderSize+len(ops)*RegOpSize+LinkTailSize > LinkMaxFrameSize {
		return nil, ErrFrame{What: fmt.Sprintf("too many register operations: %d", len(ops))}
	}
	link := &LinkLayer{
		LinkHeader: LinkHeader{
			Type: typ,
			Sync: LinkSync,
			Seq:  seq,
			Src:  LinkHostAddr,
			Dst:  LinkBoardAddr,
		},
	}
	if typ == LinkTypeRegResponse {
		link.Src, link.Dst = LinkBoardAddr, LinkHostAddr
	}
	reg := &RegLayer{RegOps: ops}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, link, reg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type ErrFrame struct {
	What string
}

func (e ErrFrame) Error() string {
	return fmt.Sprintf("Invalid frame: %s", e.What)
}
