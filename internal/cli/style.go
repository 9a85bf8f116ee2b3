package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors that work in both light and dark terminals.
// First value is for dark terminals, second for light terminals.
var (
	ColorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"} // green
	ColorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"} // red
	ColorWarning = lipgloss.AdaptiveColor{Dark: "#f59e0b", Light: "#d97706"} // amber
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#6b7280", Light: "#9ca3af"} // gray
	ColorAccent  = lipgloss.AdaptiveColor{Dark: "#a78bfa", Light: "#7c3aed"} // purple for IDs
	ColorURL     = lipgloss.AdaptiveColor{Dark: "#38bdf8", Light: "#0284c7"} // cyan for URLs
)

// Reusable text styles
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleID      = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleURL     = lipgloss.NewStyle().Foreground(ColorURL)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

// Icons for status messages
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "→"
)

// PrintSuccess prints a success message with a green checkmark.
func PrintSuccess(format string, args ...any) {
	FprintSuccess(os.Stdout, format, args...)
}

// PrintError prints an error message with a red X to stderr.
func PrintError(format string, args ...any) {
	icon := StyleError.Render(IconError)
	fmt.Fprintf(os.Stderr, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message with an amber icon to stderr.
func PrintWarning(format string, args ...any) {
	FprintWarning(os.Stderr, format, args...)
}

// PrintInfo prints an info message with a muted arrow.
func PrintInfo(format string, args ...any) {
	FprintInfo(os.Stdout, format, args...)
}

// FprintSuccess is PrintSuccess to an arbitrary writer.
func FprintSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", StyleSuccess.Render(IconSuccess), fmt.Sprintf(format, args...))
}

// FprintWarning is PrintWarning to an arbitrary writer.
func FprintWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", StyleWarning.Render(IconWarning), fmt.Sprintf(format, args...))
}

// FprintInfo is PrintInfo to an arbitrary writer.
func FprintInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", StyleMuted.Render(IconInfo), fmt.Sprintf(format, args...))
}

// RenderID renders a card/button ID in accent color.
func RenderID(id string) string {
	return StyleID.Render(id)
}

// RenderURL renders a URL in the URL color.
func RenderURL(url string) string {
	return StyleURL.Render(url)
}

// RenderMuted renders text in muted color.
func RenderMuted(text string) string {
	return StyleMuted.Render(text)
}

// RenderBold renders text in bold.
func RenderBold(text string) string {
	return StyleBold.Render(text)
}

// RenderScans renders a scan count, e.g. "3 scans".
func RenderScans(n int) string {
	if n == 1 {
		return StyleMuted.Render("1 scan")
	}
	return StyleMuted.Render(fmt.Sprintf("%d scans", n))
}

// Box renders content in a bordered box.
func Box(content string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1)
	return style.Render(content)
}

// TitleBox renders a title in a prominent bordered box.
func TitleBox(title string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 2).
		Bold(true)
	return style.Render(title)
}

// LabelValue formats a label-value pair with right-aligned label.
func LabelValue(label, value string, labelWidth int) string {
	labelStyle := lipgloss.NewStyle().
		Width(labelWidth).
		Align(lipgloss.Right).
		Foreground(ColorMuted)
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), value)
}
