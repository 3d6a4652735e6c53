// ABOUTME: Broadcast transport capability interface
// ABOUTME: Defines the contract shared by the UDP, websocket, and simulated media
package transport

import "errors"

// ErrTransmit indicates a broadcast send failure. Callers log it and retry at
// the next interval; it is never fatal.
var ErrTransmit = errors.New("transmit failed")

// Transport moves fixed-format binary frames across a single broadcast
// domain. It knows nothing about synchronization semantics.
//
// PollReceive is non-blocking and returns at most one pending frame per call,
// with the link-level address of its sender. Implementations that receive in
// a separate goroutine buffer frames in a bounded inbox; on overflow the
// oldest unread frame is dropped in favor of the newest.
type Transport interface {
	SendBroadcast(frame []byte) error
	PollReceive() (frame []byte, linkAddr string, ok bool)
	LocalAddr() string
	Close() error
}
