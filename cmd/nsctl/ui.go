package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 16

// styles renders for one writer; a pipe or buffer gets plain text.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		good:    r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s styles) labelValue(label string, value any) string {
	label += ":"
	pad := max(labelWidth-len(label), 1)
	return s.label.Render(label) + strings.Repeat(" ", pad) + fmt.Sprint(value)
}
