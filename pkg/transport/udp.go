// ABOUTME: IPv4 multicast broadcast transport
// ABOUTME: Radio-style adapter over a UDP multicast group with a reader goroutine
package transport

import (
	"fmt"
	"log"
	"net"
	"strings"

	"golang.org/x/net/ipv4"
)

// DefaultGroup is the multicast group and port MeshTime nodes share.
const DefaultGroup = "239.84.77.83:47700"

// maxFrameSize bounds a received datagram; sync frames are far smaller.
const maxFrameSize = 1500

// UDPConfig configures the multicast transport.
type UDPConfig struct {
	Group         string // "host:port" multicast group, default DefaultGroup
	Interface     string // interface name to bind multicast to, "" = system default
	InboxCapacity int
}

// UDPTransport broadcasts frames over an IPv4 multicast group. A single
// reader goroutine feeds the inbox; PollReceive never touches the socket.
type UDPTransport struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	group *net.UDPAddr
	inbox *Inbox
	done  chan struct{}
}

// NewUDPTransport joins the multicast group and starts receiving.
func NewUDPTransport(cfg UDPConfig) (*UDPTransport, error) {
	groupAddr := cfg.Group
	if groupAddr == "" {
		groupAddr = DefaultGroup
	}

	group, err := net.ResolveUDPAddr("udp4", groupAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q: %w", groupAddr, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: group.Port})
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}

	var iface *net.Interface
	if cfg.Interface != "" {
		iface, err = net.InterfaceByName(cfg.Interface)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("interface %q: %w", cfg.Interface, err)
		}
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.JoinGroup(iface, &net.UDPAddr{IP: group.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join group %s: %w", group.IP, err)
	}

	// Single-hop domain, and our own frames are filtered by node ID anyway
	if err := pconn.SetMulticastTTL(1); err != nil {
		log.Printf("set multicast TTL: %v", err)
	}
	if err := pconn.SetMulticastLoopback(false); err != nil {
		log.Printf("set multicast loopback: %v", err)
	}
	if iface != nil {
		if err := pconn.SetMulticastInterface(iface); err != nil {
			log.Printf("set multicast interface: %v", err)
		}
	}

	t := &UDPTransport{
		conn:  conn,
		pconn: pconn,
		group: group,
		inbox: NewInbox(cfg.InboxCapacity),
		done:  make(chan struct{}),
	}

	go t.readLoop()

	return t, nil
}

// SendBroadcast writes one frame to the multicast group.
func (t *UDPTransport) SendBroadcast(frame []byte) error {
	if _, err := t.conn.WriteToUDP(frame, t.group); err != nil {
		return fmt.Errorf("%w: %v", ErrTransmit, err)
	}
	return nil
}

// PollReceive returns the oldest buffered frame, non-blocking.
func (t *UDPTransport) PollReceive() ([]byte, string, bool) {
	return t.inbox.Pop()
}

// LocalAddr returns the bound socket address.
func (t *UDPTransport) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

// DroppedFrames reports inbox overflow drops.
func (t *UDPTransport) DroppedFrames() uint64 {
	return t.inbox.Dropped()
}

// Close leaves the group and stops the reader.
func (t *UDPTransport) Close() error {
	close(t.done)
	t.pconn.LeaveGroup(nil, &net.UDPAddr{IP: t.group.IP})
	return t.conn.Close()
}

func (t *UDPTransport) readLoop() {
	buf := make([]byte, maxFrameSize)
	for {
		n, src, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			log.Printf("multicast read: %v", err)
			continue
		}
		t.inbox.Push(buf[:n], src.String())
	}
}
