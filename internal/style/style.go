// Package style derives presentation attributes from a classification outcome.
package style

import "strings"

// Style is the derived presentation of one country.
type Style struct {
	Fill        string  `json:"fill"`
	Border      string  `json:"border"`
	BorderWidth float64 `json:"border_width"`
}

// Palette is a fixed color lookup. The zero value draws nothing visible,
// use one of the built-in palettes or load one from config.
type Palette struct {
	// PerTarget holds distinguishing fills for highlighted countries keyed by ISO-3 code.
	PerTarget map[string]string `yaml:"per_target,omitempty"`

	Highlight       string  `yaml:"highlight"`
	Neutral         string  `yaml:"neutral"`
	Outside         string  `yaml:"outside,omitempty"`
	HighlightBorder string  `yaml:"highlight_border"`
	NeutralBorder   string  `yaml:"neutral_border"`
	HighlightWidth  float64 `yaml:"highlight_width"`
	NeutralWidth    float64 `yaml:"neutral_width"`
}

// Style returns the presentation for a classification outcome.
// It depends on nothing but its arguments and the palette.
func (p Palette) Style(isSubSaharan, isHighlighted bool, iso string) Style {
	if isHighlighted {
		fill := p.Highlight
		if c, ok := p.PerTarget[strings.ToUpper(iso)]; ok {
			fill = c
		}
		return Style{Fill: fill, Border: p.HighlightBorder, BorderWidth: p.HighlightWidth}
	}

	fill := p.Neutral
	if !isSubSaharan && p.Outside != "" {
		fill = p.Outside
	}

	return Style{Fill: fill, Border: p.NeutralBorder, BorderWidth: p.NeutralWidth}
}

// TargetFill returns the fill used for a highlighted target in legends.
func (p Palette) TargetFill(iso string) string {
	return p.Style(true, true, iso).Fill
}

// Built-in palette names.
const (
	Academic = "academic"
	Focus    = "focus"
	Base     = "base"
)

// Builtin returns the palettes shipped with the tool.
func Builtin() map[string]Palette {
	return map[string]Palette{
		Academic: {
			Highlight:       "#3a86ff",
			Neutral:         "#fffcf2",
			HighlightBorder: "#053861",
			NeutralBorder:   "#495057",
			HighlightWidth:  1.5,
			NeutralWidth:    0.5,
		},
		Focus: {
			PerTarget: map[string]string{
				"COD": "#1e3799",
				"SOM": "#3867d6",
				"KEN": "#4b7bec",
				"ZAF": "#0abde3",
			},
			Highlight:       "#1e3799",
			Neutral:         "#f2f2f2",
			HighlightBorder: "#333333",
			NeutralBorder:   "#999999",
			HighlightWidth:  1.0,
			NeutralWidth:    0.5,
		},
		Base: {
			Highlight:       "#f2f2f2",
			Neutral:         "#f2f2f2",
			HighlightBorder: "#999999",
			NeutralBorder:   "#999999",
			HighlightWidth:  0.5,
			NeutralWidth:    0.5,
		},
	}
}
