package render

import "github.com/charmbracelet/lipgloss"

// Token classifies a piece of dump output for styling.
type Token uint8

const (
	TokenName Token = iota
	TokenType
	TokenAddr
	TokenValue
	TokenNote
)

// Styler decorates a token before it is written.
type Styler func(tok Token, s string) string

func plain(_ Token, s string) string {
	return s
}

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	typeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	addrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// ColorStyler renders tokens with terminal colours.
func ColorStyler(tok Token, s string) string {
	switch tok {
	case TokenName:
		return nameStyle.Render(s)
	case TokenType:
		return typeStyle.Render(s)
	case TokenAddr:
		return addrStyle.Render(s)
	case TokenValue:
		return valueStyle.Render(s)
	case TokenNote:
		return noteStyle.Render(s)
	default:
		return s
	}
}
