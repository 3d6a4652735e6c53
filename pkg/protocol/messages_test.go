// ABOUTME: Tests for the sync message binary codec
// ABOUTME: Covers round-trip encoding, header layout, and malformed frames
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeHeaderLayout(t *testing.T) {
	msg := NewSyncRequest(0x11223344, 0x0102030405060708, 42)
	frame := msg.Encode()

	if len(frame) != HeaderSize {
		t.Fatalf("expected %d-byte frame, got %d", HeaderSize, len(frame))
	}

	if frame[0] != 0x01 {
		t.Errorf("expected type byte 0x01, got 0x%02x", frame[0])
	}

	// All multi-byte fields are little-endian
	if got := binary.LittleEndian.Uint32(frame[1:5]); got != 0x11223344 {
		t.Errorf("source: expected 0x11223344, got 0x%08x", got)
	}
	if got := binary.LittleEndian.Uint32(frame[5:9]); got != BroadcastNodeID {
		t.Errorf("target: expected broadcast (0), got 0x%08x", got)
	}
	if got := binary.LittleEndian.Uint64(frame[9:17]); got != 0x0102030405060708 {
		t.Errorf("timestamp: expected 0x0102030405060708, got 0x%016x", got)
	}
	if got := binary.LittleEndian.Uint32(frame[17:21]); got != 42 {
		t.Errorf("sequence: expected 42, got %d", got)
	}
}

func TestRoundTrip(t *testing.T) {
	original := &SyncMessage{
		Type:            SyncResponse,
		SourceNodeID:    0xDEADBEEF,
		TargetNodeID:    0x00000017,
		TimestampMicros: 987654321012345,
		Sequence:        0xFFFFFFFF,
		Payload:         []byte{0xAA, 0xBB, 0xCC},
	}

	decoded, err := Decode(original.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Type != original.Type {
		t.Errorf("type mismatch: %v != %v", decoded.Type, original.Type)
	}
	if decoded.SourceNodeID != original.SourceNodeID {
		t.Errorf("source mismatch: %x != %x", decoded.SourceNodeID, original.SourceNodeID)
	}
	if decoded.TargetNodeID != original.TargetNodeID {
		t.Errorf("target mismatch: %x != %x", decoded.TargetNodeID, original.TargetNodeID)
	}
	if decoded.TimestampMicros != original.TimestampMicros {
		t.Errorf("timestamp mismatch: %d != %d", decoded.TimestampMicros, original.TimestampMicros)
	}
	if decoded.Sequence != original.Sequence {
		t.Errorf("sequence mismatch: %d != %d", decoded.Sequence, original.Sequence)
	}
	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("payload mismatch: %v != %v", decoded.Payload, original.Payload)
	}
}

func TestRoundTripEmptyPayload(t *testing.T) {
	msg := NewSyncResponse(1, 2, 3, 4)
	decoded, err := Decode(msg.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Payload) != 0 {
		t.Errorf("expected empty payload, got %v", decoded.Payload)
	}
}

func TestDecodeShortFrame(t *testing.T) {
	for _, n := range []int{0, 1, 10, HeaderSize - 1} {
		_, err := Decode(make([]byte, n))
		if !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("%d-byte frame: expected ErrMalformedMessage, got %v", n, err)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	frame := NewSyncRequest(1, 2, 3).Encode()
	frame[0] = 0x7F

	_, err := Decode(frame)
	if !errors.Is(err, ErrMalformedMessage) {
		t.Errorf("expected ErrMalformedMessage for unknown type, got %v", err)
	}
}

func TestDecodePayloadIsCopied(t *testing.T) {
	frame := append(NewSyncRequest(1, 2, 3).Encode(), 0x01, 0x02)
	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	frame[HeaderSize] = 0xFF
	if decoded.Payload[0] != 0x01 {
		t.Error("decoded payload aliases the input frame")
	}
}
