package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorGreen     = lipgloss.Color("#00FF00")
	colorYellow    = lipgloss.Color("#FFFF00")
	colorRed       = lipgloss.Color("#FF0000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	timerStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)

	badgeActive = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	badgePaused = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	badgeEnded = lipgloss.NewStyle().
			Foreground(colorGray).
			Bold(true)

	badgeError = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

const logo = `
   █████╗ ██╗      ██████╗  ██████╗ ██████╗  █████╗ ████████╗
  ██╔══██╗██║     ██╔════╝ ██╔═══██╗██╔══██╗██╔══██╗╚══██╔══╝
  ███████║██║     ██║  ███╗██║   ██║██████╔╝███████║   ██║
  ██╔══██║██║     ██║   ██║██║   ██║██╔═══╝ ██╔══██║   ██║
  ██║  ██║███████╗╚██████╔╝╚██████╔╝██║     ██║  ██║   ██║
  ╚═╝  ╚═╝╚══════╝ ╚═════╝  ╚═════╝ ╚═╝     ╚═╝  ╚═╝   ╚═╝
`
