// ABOUTME: Package doc for broadcast transports
// ABOUTME: Lists the available media and the inbox buffering model

// Package transport provides broadcast media for MeshTime frames: an IPv4
// multicast adapter for real networks, a websocket relay client for networks
// without multicast, and an in-process simulated mesh for deterministic
// multi-node tests. All of them buffer inbound frames in a fixed-capacity
// inbox drained by non-blocking polls.
package transport
