// ABOUTME: MeshTime sync message definitions and binary codec
// ABOUTME: Encodes/decodes the 21-byte little-endian header plus payload
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MessageType identifies the kind of sync message on the wire.
type MessageType uint8

const (
	// SyncRequest carries the sender's corrected time to the broadcast domain
	SyncRequest MessageType = 0x01
	// SyncResponse is an addressed reply carrying the sender's corrected time
	SyncResponse MessageType = 0x02
)

// HeaderSize is the fixed wire header length in bytes.
const HeaderSize = 21

// BroadcastNodeID is the target ID addressing every node in the domain.
const BroadcastNodeID uint32 = 0

// ErrMalformedMessage indicates a frame too short to hold a header or with
// an unrecognized type byte. Such frames are dropped, never fatal.
var ErrMalformedMessage = errors.New("malformed sync message")

// SyncMessage is one time-synchronization message. Little-endian on the wire
// for cross-architecture consistency.
type SyncMessage struct {
	Type            MessageType
	SourceNodeID    uint32
	TargetNodeID    uint32 // 0 = broadcast
	TimestampMicros uint64 // sender's corrected time at transmit
	Sequence        uint32
	Payload         []byte // currently always empty
}

// NewSyncRequest builds a broadcast sync request.
func NewSyncRequest(source uint32, timestampMicros uint64, sequence uint32) *SyncMessage {
	return &SyncMessage{
		Type:            SyncRequest,
		SourceNodeID:    source,
		TargetNodeID:    BroadcastNodeID,
		TimestampMicros: timestampMicros,
		Sequence:        sequence,
	}
}

// NewSyncResponse builds an addressed sync response.
func NewSyncResponse(source, target uint32, timestampMicros uint64, sequence uint32) *SyncMessage {
	return &SyncMessage{
		Type:            SyncResponse,
		SourceNodeID:    source,
		TargetNodeID:    target,
		TimestampMicros: timestampMicros,
		Sequence:        sequence,
	}
}

// Encode serializes the message into a wire frame.
func (m *SyncMessage) Encode() []byte {
	frame := make([]byte, HeaderSize+len(m.Payload))
	frame[0] = byte(m.Type)
	binary.LittleEndian.PutUint32(frame[1:5], m.SourceNodeID)
	binary.LittleEndian.PutUint32(frame[5:9], m.TargetNodeID)
	binary.LittleEndian.PutUint64(frame[9:17], m.TimestampMicros)
	binary.LittleEndian.PutUint32(frame[17:21], m.Sequence)
	copy(frame[HeaderSize:], m.Payload)
	return frame
}

// Decode parses a received frame. The payload is whatever follows the header;
// there is no length field.
func Decode(frame []byte) (*SyncMessage, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedMessage, len(frame), HeaderSize)
	}

	msgType := MessageType(frame[0])
	if msgType != SyncRequest && msgType != SyncResponse {
		return nil, fmt.Errorf("%w: unknown type 0x%02x", ErrMalformedMessage, frame[0])
	}

	msg := &SyncMessage{
		Type:            msgType,
		SourceNodeID:    binary.LittleEndian.Uint32(frame[1:5]),
		TargetNodeID:    binary.LittleEndian.Uint32(frame[5:9]),
		TimestampMicros: binary.LittleEndian.Uint64(frame[9:17]),
		Sequence:        binary.LittleEndian.Uint32(frame[17:21]),
	}

	if len(frame) > HeaderSize {
		msg.Payload = append([]byte(nil), frame[HeaderSize:]...)
	}

	return msg, nil
}
