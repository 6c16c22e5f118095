package cli

import "github.com/charmbracelet/lipgloss"

// ANSI-256 palette shared across the transcript.
var (
	colorHeader     = lipgloss.Color("99")
	colorDim        = lipgloss.Color("241")
	colorError      = lipgloss.Color("160")
	colorQuestion   = lipgloss.Color("39")
	colorThought    = lipgloss.Color("245")
	colorTitle      = lipgloss.Color("35")
	colorUser       = lipgloss.Color("214")
	colorSuggestion = lipgloss.Color("178")
)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
	questionStyle   = lipgloss.NewStyle().Foreground(colorQuestion)
	thoughtStyle    = lipgloss.NewStyle().Foreground(colorThought).Italic(true)
	titleStyle      = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	userStyle       = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	suggestionStyle = lipgloss.NewStyle().Foreground(colorSuggestion)
	commentStyle    = lipgloss.NewStyle().Foreground(colorSuggestion).Italic(true)
)
