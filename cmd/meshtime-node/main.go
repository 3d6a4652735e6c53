// ABOUTME: Entry point for a MeshTime sync node
// ABOUTME: Parses CLI flags and starts the node application
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeshTime-Protocol/meshtime-go/internal/app"
	"github.com/MeshTime-Protocol/meshtime-go/internal/version"
	"github.com/MeshTime-Protocol/meshtime-go/pkg/transport"
)

var (
	nodeID       = flag.Uint("node", 0, "Node ID (default: derived from a random UUID)")
	transportArg = flag.String("transport", "udp", "Broadcast medium: udp or ws")
	group        = flag.String("group", transport.DefaultGroup, "Multicast group (udp transport)")
	iface        = flag.String("iface", "", "Network interface for multicast (default: system choice)")
	relayAddr    = flag.String("relay", "", "Relay host:port (ws transport; default: discover via mDNS)")
	interval     = flag.Duration("interval", 2*time.Second, "Broadcast interval")
	cycle        = flag.Duration("cycle", 100*time.Millisecond, "Sync cycle cadence")
	maxPeers     = flag.Int("max-peers", 10, "Peer table capacity")
	logFile      = flag.String("log-file", "meshtime-node.log", "Log file path")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	noMDNS       = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// TUI mode logs only to file; streaming mode logs to both
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	log.Printf("Starting %s node %s", version.Product, version.Version)

	node := app.New(app.Config{
		NodeID:        uint32(*nodeID),
		Transport:     *transportArg,
		Group:         *group,
		Interface:     *iface,
		RelayAddr:     *relayAddr,
		SyncInterval:  *interval,
		CycleInterval: *cycle,
		MaxPeers:      *maxPeers,
		UseTUI:        useTUI,
		EnableMDNS:    !*noMDNS,
	})

	// Clean shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Shutting down...")
		node.Stop()
	}()

	if err := node.Start(); err != nil {
		log.Fatalf("Node error: %v", err)
	}
}
