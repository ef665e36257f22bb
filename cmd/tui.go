// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/exbus"
	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live bus monitor with channel table and statistics",
	Long: `Full-screen live view of the EX-Bus: servo channel values in a table,
the latest telemetry values seen on the bus, running statistics and an
event log. Press 'q' to quit.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Latest telemetry value seen on the bus, keyed for display
type telemetryValue struct {
	fieldID  uint8
	display  string
	received time.Time
}

// TUI model
type tuiModel struct {
	connInfo     string
	stats        *exbus.Statistics
	channelTable table.Model
	telemetry    map[uint8]telemetryValue
	eventLog     []eventLogEntry
	maxLog       int
	synchronized bool
	invalidBytes int
	width        int
	height       int
	quitting     bool
}

// Messages
type tuiTickMsg time.Time
type tuiFrameMsg struct {
	frame *exbus.Frame
}
type tuiErrorMsg struct {
	err error
}
type tuiSyncMsg struct {
	invalidBytes int
}
type tuiConnClosedMsg struct{}

func initialTUIModel(connInfo string) tuiModel {
	columns := []table.Column{
		{Title: "Ch", Width: 4},
		{Title: "Pulse (ms)", Width: 12},
		{Title: "Raw", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(18),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)

	return tuiModel{
		connInfo:     connInfo,
		stats:        exbus.NewStatistics(),
		channelTable: t,
		telemetry:    make(map[uint8]telemetryValue),
		eventLog:     make([]eventLogEntry, 0),
		maxLog:       100,
		width:        80,
		height:       24,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(
		tuiTickCmd(),
		tea.EnterAltScreen,
	)
}

func tuiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tuiTickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tuiTickMsg:
		m.stats.CalculateRates()
		return m, tuiTickCmd()

	case tuiSyncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case tuiErrorMsg:
		if m.synchronized {
			m.stats.CountError(msg.err)
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.err), true)
		}

	case tuiFrameMsg:
		m.stats.CountFrame(msg.frame)
		m.handleFrame(msg.frame)

	case tuiConnClosedMsg:
		m.addLogEntry("Connection closed", true)
	}

	return m, nil
}

func (m *tuiModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLog {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLog:]
	}
}

// handleFrame updates the channel table and telemetry map from a frame.
func (m *tuiModel) handleFrame(frame *exbus.Frame) {
	switch frame.Kind() {
	case exbus.KindChannelData:
		channels, err := exbus.ParseChannels(frame)
		if err != nil {
			m.addLogEntry(fmt.Sprintf("channel data: %v", err), true)
			return
		}
		rows := make([]table.Row, len(channels))
		for i, ch := range channels {
			rows[i] = table.Row{
				fmt.Sprintf("%d", i+1),
				fmt.Sprintf("%.3f", ch.Milliseconds()),
				fmt.Sprintf("%d", uint16(ch)),
			}
		}
		m.channelTable.SetRows(rows)

	case exbus.KindTelemetryReply:
		m.parseTelemetryReply(frame.Payload())
	}
}

// parseTelemetryReply extracts data values from telemetry replies seen on
// the bus, e.g. from another sensor when monitoring passively.
func (m *tuiModel) parseTelemetryReply(payload []byte) {
	packet, err := jetiex.Decode(payload)
	if err != nil || !packet.CRCValid() || packet.Type() != jetiex.TypeData {
		return
	}
	values, err := jetiex.ParseDataBody(packet.Body())
	if err != nil {
		return
	}
	for _, v := range values {
		var display string
		switch v.DataType {
		case jetiex.DataTypeCoords:
			deg, lon, err := jetiex.DecodeCoordinate(v.Raw)
			if err != nil {
				continue
			}
			axis := "lat"
			if lon {
				axis = "lon"
			}
			display = fmt.Sprintf("%.5f° %s", deg, axis)
		case jetiex.DataTypeDate:
			display = fmt.Sprintf("% X", v.Raw)
		default:
			value, precision, err := jetiex.DecodeValue(v.Raw, v.DataType)
			if err != nil {
				continue
			}
			display = fmt.Sprintf("%.*f", int(precision), value)
		}
		m.telemetry[v.FieldID] = telemetryValue{
			fieldID:  v.FieldID,
			display:  display,
			received: time.Now(),
		}
	}
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("JETIBRIDGE - EX-BUS MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | Press 'q' to quit, 'r' to reset stats", m.connInfo)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for bus synchronization..."))
		s.WriteString("\n\n")
	}

	// Statistics line
	m.stats.CalculateRates()
	statsContent := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		labelStyle.Render("Channels:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.ChannelData)),
		labelStyle.Render("Telem Req:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TelemetryReq)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.CRCErrors+m.stats.FramingErrors)),
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f f/s", m.stats.FrameRate)),
	)
	s.WriteString(boxStyle.Render(statsContent))
	s.WriteString("\n\n")

	// Channel table next to telemetry values
	left := boxStyle.Render(m.channelTable.View())

	telemetryContent := strings.Builder{}
	telemetryContent.WriteString(labelStyle.Render("Telemetry"))
	telemetryContent.WriteString("\n")
	if len(m.telemetry) == 0 {
		telemetryContent.WriteString(headerStyle.Render("(no telemetry replies seen)"))
	} else {
		for id := uint8(0); id < 16; id++ {
			v, ok := m.telemetry[id]
			if !ok {
				continue
			}
			age := time.Since(v.received)
			line := fmt.Sprintf("%s %s",
				labelStyle.Render(fmt.Sprintf("Field %2d:", id)),
				valueStyle.Render(v.display),
			)
			if age > 3*time.Second {
				line += headerStyle.Render(fmt.Sprintf(" (%.0fs ago)", age.Seconds()))
			}
			telemetryContent.WriteString(line)
			telemetryContent.WriteString("\n")
		}
	}
	right := boxStyle.Render(telemetryContent.String())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 30
	if logHeight < 3 {
		logHeight = 3
	}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	logContent := strings.Builder{}
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

func runTUI(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	m := initialTUIModel(connInfo)
	p := tea.NewProgram(m)

	// Bus reader goroutine
	go func() {
		decoder := exbus.NewDecoder()
		decoder.AcceptReplies = true
		synchronized := false
		invalidBytesBeforeSync := 0
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				p.Send(tuiConnClosedMsg{})
				return
			}

			for i := 0; i < n; i++ {
				frame, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					if synchronized {
						p.Send(tuiErrorMsg{err: decodeErr})
					} else {
						invalidBytesBeforeSync++
					}
				} else if frame != nil {
					if !synchronized {
						synchronized = true
						p.Send(tuiSyncMsg{invalidBytes: invalidBytesBeforeSync})
					}
					p.Send(tuiFrameMsg{frame: frame})
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
