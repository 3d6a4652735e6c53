// ABOUTME: WebSocket relay hub for nodes without multicast connectivity
// ABOUTME: Fans every binary frame out to all other connected nodes
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MeshTime-Protocol/meshtime-go/internal/discovery"
	"github.com/MeshTime-Protocol/meshtime-go/internal/version"
)

var (
	port   = flag.Int("port", 47701, "Relay listen port")
	name   = flag.String("name", "", "Relay instance name (default: hostname)")
	noMDNS = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// hub tracks connected nodes and rebroadcasts their frames
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("Node connected from %s (%d total)", c.conn.RemoteAddr(), count)
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("Node disconnected (%d remaining)", count)
}

// fanOut queues data for every client except the sender. Slow clients
// get dropped rather than stalling the rest of the mesh.
func (h *hub) fanOut(senderID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		if id == senderID {
			continue
		}
		select {
		case c.send <- data:
		default:
			delete(h.clients, id)
			close(c.send)
			log.Printf("Dropping slow client %s", id)
		}
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed: %v", err)
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.add(c)

	go c.writePump()
	c.readPump(h)
}

func (c *client) readPump(h *hub) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		h.fanOut(c.id, data)
	}
}

func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return
		}
	}
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	instanceName := *name
	if instanceName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "meshtime-relay"
		}
		instanceName = hostname
	}

	log.Printf("Starting %s relay %s on port %d", version.Product, version.Version, *port)

	h := newHub()
	http.HandleFunc("/meshtime", h.handleWS)

	var disco *discovery.Manager
	if !*noMDNS {
		disco = discovery.NewManager(discovery.Config{
			InstanceName: instanceName,
			Port:         *port,
			RelayMode:    true,
		})
		if err := disco.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutting down...")
		if disco != nil {
			disco.Stop()
		}
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Relay error: %v", err)
	}
}
