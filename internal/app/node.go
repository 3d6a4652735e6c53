// ABOUTME: Main node application orchestration
// ABOUTME: Coordinates transport, discovery, the sync cycle loop, and the TUI
package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MeshTime-Protocol/meshtime-go/internal/discovery"
	"github.com/MeshTime-Protocol/meshtime-go/internal/ui"
	"github.com/MeshTime-Protocol/meshtime-go/pkg/timesync"
	"github.com/MeshTime-Protocol/meshtime-go/pkg/transport"
)

// Config holds node configuration
type Config struct {
	NodeID    uint32 // 0 = derive from a fresh UUID
	Transport string // "udp" or "ws"
	Group     string // multicast group for udp
	Interface string // interface name for udp
	RelayAddr string // relay host:port for ws; empty = discover via mDNS

	SyncInterval  time.Duration
	CycleInterval time.Duration // scheduler cadence, distinct from SyncInterval
	MaxPeers      int

	UseTUI     bool
	EnableMDNS bool
}

// Node represents the running sync node
type Node struct {
	config    Config
	manager   *timesync.SyncManager
	transport transport.Transport
	discovery *discovery.Manager
	tuiProg   *tea.Program
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new node
func New(config Config) *Node {
	ctx, cancel := context.WithCancel(context.Background())

	if config.CycleInterval <= 0 {
		config.CycleInterval = 100 * time.Millisecond
	}

	return &Node{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start brings up the transport and runs the sync loop until Stop
func (n *Node) Start() error {
	tr, err := n.buildTransport()
	if err != nil {
		return err
	}
	n.transport = tr

	cfg := timesync.DefaultConfig()
	cfg.NodeID = n.config.NodeID
	if n.config.SyncInterval > 0 {
		cfg.SyncInterval = n.config.SyncInterval
	}
	if n.config.MaxPeers > 0 {
		cfg.MaxPeers = n.config.MaxPeers
	}

	manager, err := timesync.NewSyncManager(cfg, timesync.NewMonotonicClock(), tr)
	if err != nil {
		tr.Close()
		return fmt.Errorf("sync manager: %w", err)
	}
	n.manager = manager

	log.Printf("Node 0x%08X on %s (%s)", manager.NodeID(), n.config.Transport, tr.LocalAddr())

	if n.config.EnableMDNS && n.config.Transport == "udp" {
		n.discovery = discovery.NewManager(discovery.Config{
			InstanceName: fmt.Sprintf("meshtime-%08x", manager.NodeID()),
			Port:         groupPort(n.config.Group),
		})
		if err := n.discovery.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	var quitChan chan ui.QuitMsg
	if n.config.UseTUI {
		prog, quit, err := ui.Run()
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		n.tuiProg = prog
		quitChan = quit

		go n.tuiProg.Run()
		go n.statusLoop()
	}

	manager.EnableSync()
	go n.cycleLoop()

	if quitChan != nil {
		go func() {
			select {
			case <-quitChan:
				n.cancel()
			case <-n.ctx.Done():
			}
		}()
	}

	<-n.ctx.Done()
	return nil
}

// Stop shuts the node down
func (n *Node) Stop() {
	n.cancel()

	if n.manager != nil {
		n.manager.DisableSync()
	}
	if n.discovery != nil {
		n.discovery.Stop()
	}
	if n.tuiProg != nil {
		n.tuiProg.Quit()
	}
	if n.transport != nil {
		n.transport.Close()
	}
}

// Manager exposes the sync manager for diagnostics
func (n *Node) Manager() *timesync.SyncManager {
	return n.manager
}

// cycleLoop drives the sync cycle at the scheduler cadence. The manager
// self-throttles its broadcasts, so the cadence only bounds drain latency.
func (n *Node) cycleLoop() {
	ticker := time.NewTicker(n.config.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.manager.ProcessSyncCycle()
		case <-n.ctx.Done():
			return
		}
	}
}

// statusLoop pumps snapshots into the TUI
func (n *Node) statusLoop() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.tuiProg.Send(ui.StatusMsg{
				NodeID:          n.manager.NodeID(),
				Transport:       n.config.Transport,
				CorrectedMicros: n.manager.CorrectedTimeMicros(),
				OffsetMicros:    n.manager.TimeOffsetMicros(),
				Quality:         n.manager.SyncQuality(),
				Peers:           n.manager.Peers(),
				Stats:           n.manager.Stats(),
			})
		case <-n.ctx.Done():
			return
		}
	}
}

// buildTransport selects the broadcast medium
func (n *Node) buildTransport() (transport.Transport, error) {
	switch n.config.Transport {
	case "", "udp":
		n.config.Transport = "udp"
		tr, err := transport.NewUDPTransport(transport.UDPConfig{
			Group:     n.config.Group,
			Interface: n.config.Interface,
		})
		if err != nil {
			return nil, fmt.Errorf("udp transport: %w", err)
		}
		return tr, nil

	case "ws":
		relayAddr := n.config.RelayAddr
		if relayAddr == "" {
			addr, err := n.discoverRelay()
			if err != nil {
				return nil, err
			}
			relayAddr = addr
		}
		tr, err := transport.NewWSTransport(relayAddr, 0)
		if err != nil {
			return nil, fmt.Errorf("ws transport: %w", err)
		}
		return tr, nil

	default:
		return nil, fmt.Errorf("unknown transport %q", n.config.Transport)
	}
}

// discoverRelay browses mDNS for a relay hub
func (n *Node) discoverRelay() (string, error) {
	mgr := discovery.NewManager(discovery.Config{InstanceName: "meshtime-node"})
	defer mgr.Stop()

	if err := mgr.Browse(); err != nil {
		return "", fmt.Errorf("relay discovery: %w", err)
	}

	log.Printf("Browsing for a relay hub...")

	select {
	case entry := <-mgr.Entries():
		return fmt.Sprintf("%s:%d", entry.Host, entry.Port), nil
	case <-time.After(10 * time.Second):
		return "", fmt.Errorf("no relay hub found")
	case <-n.ctx.Done():
		return "", n.ctx.Err()
	}
}

// groupPort extracts the port from a host:port group spec
func groupPort(group string) int {
	if group == "" {
		group = transport.DefaultGroup
	}
	if i := strings.LastIndex(group, ":"); i >= 0 {
		if port, err := strconv.Atoi(group[i+1:]); err == nil {
			return port
		}
	}
	return 0
}
