// Package view renders the mint session as a terminal status card.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mvcm/internal/mint"
	"mvcm/internal/notify"
	"mvcm/internal/solana"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	muted       = lipgloss.Color("#7a8599")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(muted)
	errorStyle  = lipgloss.NewStyle().Foreground(destructive)
	buttonStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Card renders the session state.
func Card(st mint.State, walletAddress string) string {
	var lines []string

	title := "candy machine"
	if st.CandyMachine != nil {
		title += " " + st.CandyMachine.Version.String()
	}
	lines = append(lines, titleStyle.Render(title)+"  "+labelStyle.Render(st.Network))

	wallet := "not connected"
	if st.Connected && walletAddress != "" {
		wallet = solana.TruncateAddress(walletAddress)
	}
	lines = append(lines, row("wallet", wallet))

	if st.Identifier != "" {
		lines = append(lines, row("id", solana.TruncateAddress(st.Identifier)))
	}
	if st.ValidationError != "" {
		lines = append(lines, errorStyle.Render(st.ValidationError))
	}

	if cm := st.CandyMachine; cm != nil {
		lines = append(lines,
			row("available", fmt.Sprintf("%d", cm.ItemsRemaining())),
			row("version", cm.Version.String()),
			row("total", fmt.Sprintf("%d", cm.ItemsAvailable)),
		)
		price := "free"
		if st.Price != "" && st.Price != "0" {
			price = st.Price + " " + st.Ticker
		}
		lines = append(lines, row("price", price))
		if len(st.Unhandled) > 0 {
			lines = append(lines, row("guards", strings.Join(st.Unhandled, ", ")+" (not checked)"))
		}
		lines = append(lines, "", Button(st.Button))
	}

	if m := st.LastMint; m != nil {
		status := string(m.Status)
		if m.Error != nil {
			status += ": " + *m.Error
		}
		lines = append(lines, row("last mint", solana.TruncateAddress(m.NFTMint)+" "+status))
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// Button renders the mint button, dimmed when disabled.
func Button(b mint.ButtonState) string {
	label := "[ " + b.Label + " ]"
	if b.Disabled {
		return dimStyle.Render(label)
	}
	return buttonStyle.Render(label)
}

// Notifications renders notifications one per line, newest first.
func Notifications(items []notify.Notification) string {
	var b strings.Builder
	for _, n := range items {
		style := labelStyle
		if n.Level == notify.LevelError {
			style = errorStyle
		} else if n.Level == notify.LevelSuccess {
			style = buttonStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-7s", n.Level)))
		b.WriteString(" ")
		b.WriteString(n.Title)
		if n.Description != "" {
			b.WriteString(" - " + n.Description)
		}
		if n.Link != "" {
			b.WriteString("\n        " + n.Link)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + value
}
