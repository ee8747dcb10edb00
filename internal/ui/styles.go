package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: success, connected
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, warning
	ColorError     = lipgloss.Color("#FF4444") // red: error, rejected
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: principals, txids
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray: labels
	ColorBorder    = lipgloss.Color("#2D2A6E") // indigo: UI chrome
	ColorBrand     = lipgloss.Color("#5546FF") // Stacks purple
	ColorHighlight = lipgloss.Color("#FC6432") // Stacks orange: selection
	ColorInfo      = lipgloss.Color("#7FB3FF")
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleBrand   = lipgloss.NewStyle().Foreground(ColorBrand).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleDanger = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorBrand).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the stxtoken banner.
func Banner() string {
	art := `
  ┌─┐┌┬┐─┐ ┬┌┬┐┌─┐┬┌─┌─┐┌┐┌
  └─┐ │ ┌┴┬┘ │ │ │├┴┐├┤ │││
  └─┘ ┴ ┴ └─ ┴ └─┘┴ ┴└─┘┘└┘`
	tagline := StyleMeta.Render("  SIP-010 token dashboard for Stacks")
	return StyleBrand.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggested next step.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// NetworkName formats a network name; mainnet is highlighted so it is hard
// to miss.
func NetworkName(n string) string {
	if n == "mainnet" {
		return StyleWarning.Render(n)
	}
	return StyleBrand.Render(n)
}

// DangerBox wraps content in a red border.
func DangerBox(content string) string { return StyleDanger.Render(content) }

// TruncateAddr shortens an address for display: ST1PQH…PGZGM.
func TruncateAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-5:]
}
