// ABOUTME: Bubbletea model for the node monitor TUI
// ABOUTME: Renders the peer table, virtual offset, and convergence state
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MeshTime-Protocol/meshtime-go/pkg/timesync"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	convergedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	divergedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// StatusMsg carries a snapshot from the node loop into the TUI
type StatusMsg struct {
	NodeID          uint32
	Transport       string
	CorrectedMicros uint64
	OffsetMicros    int64
	Quality         float64
	Peers           []timesync.SyncPeer
	Stats           timesync.SyncStats
}

// QuitMsg signals the node to shut down
type QuitMsg struct{}

// Model represents the TUI state
type Model struct {
	nodeID    uint32
	transport string
	corrected uint64
	offset    int64
	quality   float64
	peers     []timesync.SyncPeer
	stats     timesync.SyncStats

	quitChan chan QuitMsg

	showDebug bool
	width     int
	height    int
}

// NewModel creates a new TUI model
func NewModel(quitChan chan QuitMsg) Model {
	return Model{quitChan: quitChan}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("MeshTime node 0x%08X", m.nodeID)))
	b.WriteString("\n\n")

	state := divergedStyle.Render("● diverged")
	if m.stats.Converged {
		state = convergedStyle.Render("● converged")
	}

	b.WriteString(fmt.Sprintf("%s %s    %s %s\n",
		labelStyle.Render("Transport:"), m.transport,
		labelStyle.Render("State:"), state))
	b.WriteString(fmt.Sprintf("%s %d µs    %s %+d µs    %s %.2f\n\n",
		labelStyle.Render("Corrected:"), m.corrected,
		labelStyle.Render("Offset:"), m.offset,
		labelStyle.Render("Quality:"), m.quality))

	b.WriteString(m.renderPeers())
	b.WriteString(m.renderStats())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(helpStyle.Render("\nd:Debug  q:Quit\n"))

	return b.String()
}

// renderPeers renders the peer table
func (m Model) renderPeers() string {
	if len(m.peers) == 0 {
		return "No peers observed yet\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s %-10s %-12s %-8s %s\n",
		"Peer", "Quality", "Diff (µs)", "Count", "Link"))
	for _, peer := range m.peers {
		b.WriteString(fmt.Sprintf("0x%08X   %-10.2f %-12d %-8d %s\n",
			peer.NodeID, peer.QualityScore, peer.TimeDiffMicros, peer.SyncCount, peer.LinkAddr))
	}
	return b.String()
}

// renderStats renders cycle statistics
func (m Model) renderStats() string {
	return fmt.Sprintf("\n%s sent %d  recv %d  malformed %d  dropped %d\n",
		labelStyle.Render("Frames:"),
		m.stats.MessagesSent, m.stats.MessagesReceived,
		m.stats.MalformedFrames, m.stats.DroppedObservations)
}

// renderDebug renders extended diagnostics
func (m Model) renderDebug() string {
	return fmt.Sprintf("\nDEBUG:\n  weighted diff: %+.1f µs\n  last correction: %+d µs\n  diff range: [%d, %d] µs avg %.1f\n",
		m.stats.LastWeightedDiffMicros,
		m.stats.LastCorrectionMicros,
		m.stats.MinTimeDiffMicros, m.stats.MaxTimeDiffMicros, m.stats.AvgTimeDiffMicros)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.quitChan != nil {
			select {
			case m.quitChan <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	m.nodeID = msg.NodeID
	if msg.Transport != "" {
		m.transport = msg.Transport
	}
	m.corrected = msg.CorrectedMicros
	m.offset = msg.OffsetMicros
	m.quality = msg.Quality
	m.peers = msg.Peers
	m.stats = msg.Stats
}
