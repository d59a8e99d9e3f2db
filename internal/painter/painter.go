// Package painter renders colored and styled text for the shell
// prompt. It supports path coloring with optional bold formatting and
// applies pre-defined themes from config.Prompt.
package painter

import (
	"strings"

	"ebash/internal/config"
)

const (
	reset    = "\033[0m"
	makeBold = "\033[1m"
)

// Painter holds styling information for the shell prompt.
type Painter struct {
	PathColour string
	PathBold   bool
}

// NewPainter builds a Painter from cfg. A recognized named theme
// ("ebash", "monokai", "ohmybash") overrides the PathColour and
// PathColourBold fields in cfg; with an empty, "none" or unrecognized
// theme those fields are used as given.
func NewPainter(cfg config.Prompt) Painter {
	theme := strings.ToLower(strings.TrimSpace(cfg.Theme))
	if theme != "" && theme != "none" {
		resolveTheme(&cfg)
	}
	return Painter{
		PathColour: resolveColor(cfg.PathColour),
		PathBold:   cfg.PathColourBold,
	}
}

func resolveTheme(cfg *config.Prompt) {
	switch strings.ToLower(strings.TrimSpace(cfg.Theme)) {
	case "ebash":
		cfg.PathColour = "green"
		cfg.PathColourBold = false
	case "monokai":
		cfg.PathColour = "\033[38;2;249;38;114m"
		cfg.PathColourBold = true
	case "ohmybash":
		cfg.PathColour = "blue"
		cfg.PathColourBold = true
	}
}

func resolveColor(colour string) string {
	colour = strings.TrimSpace(colour)
	if colour == "" {
		return ""
	}
	switch strings.ToLower(colour) {
	case "default":
		return "\033[39m"
	case "black":
		return "\033[30m"
	case "red":
		return "\033[31m"
	case "green":
		return "\033[32m"
	case "yellow":
		return "\033[33m"
	case "blue":
		return "\033[94m"
	case "magenta":
		return "\033[35m"
	case "cyan":
		return "\033[36m"
	case "white":
		return "\033[37m"
	default:
		return colour
	}
}

// Paint wraps text in ANSI escapes for colour and, if bold is set, the
// bold attribute, resetting after.
func (p Painter) Paint(bold bool, colour, text string) string {
	style := ""
	if bold {
		style = makeBold
	}
	return style + colour + text + reset
}
