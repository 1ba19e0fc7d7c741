package render

import (
	"strings"

	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/style"
)

// Legend kinds.
const (
	LegendNone    = "none"
	LegendClasses = "classes"
	LegendTargets = "targets"
)

// Legend is a titled list of color patches.
type Legend struct {
	Title   string
	Entries []LegendEntry
}

// LegendEntry is one patch of the legend.
type LegendEntry struct {
	Color string
	Label string
}

// BuildLegend derives the legend content for a map from its palette and the focus targets.
func BuildLegend(m config.Map, p style.Palette, targets []config.Target) Legend {
	switch m.Legend {
	case LegendClasses:
		short := make([]string, 0, len(targets))
		for _, t := range targets {
			if t.Short != "" {
				short = append(short, t.Short)
			} else {
				short = append(short, t.Name)
			}
		}
		return Legend{
			Title: m.LegendTitle,
			Entries: []LegendEntry{
				{Color: p.Highlight, Label: strings.Join(short, ", ")},
				{Color: p.Neutral, Label: "Other Sub-Saharan Countries"},
			},
		}

	case LegendTargets:
		entries := make([]LegendEntry, 0, len(targets))
		for _, t := range targets {
			entries = append(entries, LegendEntry{Color: p.TargetFill(t.ISO), Label: t.Name})
		}
		return Legend{Title: m.LegendTitle, Entries: entries}

	default:
		return Legend{}
	}
}

// IsEmpty reports whether there is nothing to draw.
func (l Legend) IsEmpty() bool { return len(l.Entries) == 0 }
