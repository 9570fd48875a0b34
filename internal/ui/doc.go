// Package ui provides theme and color support for the command-line output.
// It maps a small set of semantic roles (accent, success, warning, error,
// dim) to lipgloss styles so that presenters never hard-code colors.
package ui
