// ABOUTME: WebSocket relay client transport
// ABOUTME: Broadcast adapter for networks where multicast is unavailable
package transport

import (
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WSTransport reaches the broadcast domain through a meshtime-relay hub: every
// binary frame written is fanned out by the relay to all other connected
// nodes. A read pump feeds the inbox so PollReceive stays non-blocking.
type WSTransport struct {
	conn  *websocket.Conn
	inbox *Inbox
	local string
	relay string

	writeMu sync.Mutex
	done    chan struct{}
}

// NewWSTransport dials the relay at host:port and starts the read pump.
func NewWSTransport(relayAddr string, inboxCapacity int) (*WSTransport, error) {
	u := url.URL{Scheme: "ws", Host: relayAddr, Path: "/meshtime"}
	log.Printf("Connecting to relay %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("relay dial failed: %w", err)
	}

	t := &WSTransport{
		conn:  conn,
		inbox: NewInbox(inboxCapacity),
		local: conn.LocalAddr().String(),
		relay: conn.RemoteAddr().String(),
		done:  make(chan struct{}),
	}

	go t.readPump()

	return t, nil
}

// SendBroadcast hands one frame to the relay for fan-out.
func (t *WSTransport) SendBroadcast(frame []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("%w: %v", ErrTransmit, err)
	}
	return nil
}

// PollReceive returns the oldest buffered frame, non-blocking. The link
// address is the relay's, since the hub hides the original sender's socket.
func (t *WSTransport) PollReceive() ([]byte, string, bool) {
	return t.inbox.Pop()
}

// LocalAddr returns the local socket address of the relay connection.
func (t *WSTransport) LocalAddr() string {
	return t.local
}

// DroppedFrames reports inbox overflow drops.
func (t *WSTransport) DroppedFrames() uint64 {
	return t.inbox.Dropped()
}

// Close tears down the relay connection.
func (t *WSTransport) Close() error {
	close(t.done)
	return t.conn.Close()
}

func (t *WSTransport) readPump() {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
			default:
				log.Printf("relay connection lost: %v", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		t.inbox.Push(data, t.relay)
	}
}
