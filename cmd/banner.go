package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/liveserve/liveserve/internal/config"
	"github.com/liveserve/liveserve/internal/server"
	"github.com/liveserve/liveserve/internal/version"
)

var (
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	primaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// printStartupSummary renders the banner shown once the server is
// bound: the resolved address, serving root, and operating mode.
func printStartupSummary(cfg *config.Config, srv *server.Server) {
	title := "LIVESERVE " + version.GetShortVersion()
	border := strings.Repeat("=", len(title)+8)

	fmt.Println(borderStyle.Render(border))
	fmt.Println("  " + titleStyle.Render(title))
	fmt.Println(borderStyle.Render(border))

	diffValue, diffStyle := "disabled", dangerStyle
	watching := "Full page reloads"
	if srv.DiffMode() {
		diffValue, diffStyle = "ENABLED", successStyle
		watching = "Diff HTML/CSS updates"
	}
	browser := "Auto-open on start"
	if cfg.Server.NoOpen {
		browser = "Manual (--no-open)"
	}

	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Address", srv.PrimaryURL(), primaryStyle},
		{"Alt", fmt.Sprintf("http://localhost:%d", srv.Port()), mutedStyle},
		{"Base Dir", srv.BaseDir(), accentStyle},
		{"Diff Mode", diffValue, diffStyle},
		{"Watching", watching, warningStyle},
		{"Browser", browser, accentStyle},
		{"Exit", "Press Ctrl+C to stop", accentStyle},
	}

	labelWidth := 0
	for _, row := range rows {
		if len(row.label) > labelWidth {
			labelWidth = len(row.label)
		}
	}
	labelWidth++

	for _, row := range rows {
		label := fmt.Sprintf("%-*s:", labelWidth, row.label)
		fmt.Printf("  %s %s\n", labelStyle.Render(label), row.style.Render(row.value))
	}

	fmt.Println()
	fmt.Println("  " + mutedStyle.Render("Serving "+srv.BaseDir()))
	if cfg.Server.NoOpen {
		fmt.Println("  " + hintStyle.Render("Browser launch disabled (--no-open)."))
	} else {
		fmt.Println("  " + hintStyle.Render("Copy the address above if your browser did not open automatically."))
	}
	fmt.Println("  " + hintStyle.Render("Leave this terminal open to keep the live server running."))
	fmt.Println()
}
