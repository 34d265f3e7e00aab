package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header        lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	NodeID        lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// newStyles builds styles bound to a lipgloss renderer so colour output
// follows the destination writer rather than stdout.
func newStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:        lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lr.NewStyle().Bold(true),
		Bold:          lr.NewStyle().Bold(true),
		Muted:         lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lr.NewStyle().Foreground(lipgloss.Color("14")),
		NodeID:        lr.NewStyle().Foreground(lipgloss.Color("13")),
		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}
