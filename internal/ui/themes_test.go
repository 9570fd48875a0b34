package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSetTheme(t *testing.T) {
	original := GetCurrentTheme()
	defer SetCurrentTheme(original)

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"unknown", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) selected %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme(t *testing.T) {
	original := GetCurrentTheme()
	defer SetCurrentTheme(original)

	InitTheme(true)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("InitTheme(true) should disable colors, got %q", GetCurrentTheme().Name)
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Errorf("NO_COLOR should disable colors, got %q", GetCurrentTheme().Name)
	}
}

func TestNoColorStylesRenderPlain(t *testing.T) {
	t.Parallel()
	s := NoColorTheme.Styles()
	for _, style := range []lipgloss.Style{s.Heading, s.Label, s.Value, s.Success, s.Warning, s.Error, s.Dim} {
		if got := style.Render("path 0"); got != "path 0" {
			t.Errorf("no-color style rendered %q, want plain text", got)
		}
	}
}
