package ui

import "github.com/charmbracelet/lipgloss"

// Styles contains shared style definitions for the estimator views.
var Styles = struct {
	Title      lipgloss.Style
	Header     lipgloss.Style
	Status     lipgloss.Style
	StatusErr  lipgloss.Style
	Help       lipgloss.Style
	Estimate   lipgloss.Style
	Room       lipgloss.Style
	Product    lipgloss.Style
	Selected   lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")),
	Header: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")),
	StatusErr: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),
	Estimate: lipgloss.NewStyle().
		Bold(true),
	Room: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),
	Product: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true),
}

// ModalStyles contains shared style definitions for modals.
var ModalStyles = struct {
	BoxDefault   lipgloss.Style // Standard modal box
	BoxWarning   lipgloss.Style // Warning/error modal box (red border)
	BoxCompact   lipgloss.Style // Compact box with less padding (for lists)
	Title        lipgloss.Style
	TitleWarning lipgloss.Style
	Label        lipgloss.Style
	Help         lipgloss.Style
	Details      lipgloss.Style
}{
	BoxDefault: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Margin(1),
	BoxWarning: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Margin(1),
	BoxCompact: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 1).
		Margin(1),
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),
	Label: lipgloss.NewStyle(),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color("208")),
}
