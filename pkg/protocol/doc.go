// ABOUTME: Package doc for the MeshTime wire protocol
// ABOUTME: Documents the fixed binary header format and message types

// Package protocol defines MeshTime synchronization messages and their wire
// encoding: a fixed 21-byte little-endian header followed by an opaque
// payload whose length is implied by the underlying frame.
//
// Header layout:
//
//	offset 0   type      uint8  (0x01 request, 0x02 response)
//	offset 1   source    uint32 LE
//	offset 5   target    uint32 LE (0 = broadcast)
//	offset 9   timestamp uint64 LE (sender corrected time, microseconds)
//	offset 17  sequence  uint32 LE
package protocol
