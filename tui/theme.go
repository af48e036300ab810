package tui

import (
	"strconv"

	"pkt.systems/tchat/schema"
)

type rgb struct {
	r int
	g int
	b int
}

type tuiTheme struct {
	Name     schema.ThemeName
	TitleBG  rgb
	TitleFG  rgb
	SystemFG rgb
	StatusFG rgb
	ErrorFG  rgb
	HintFG   rgb
	PromptFG rgb
	// Plain disables every escape sequence.
	Plain bool
}

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
)

var tuiThemes = map[schema.ThemeName]tuiTheme{
	"outrun": {
		Name:     "outrun",
		TitleBG:  rgb{r: 32, g: 8, b: 56},
		TitleFG:  rgb{r: 0, g: 229, b: 255},
		SystemFG: rgb{r: 154, g: 163, b: 178},
		StatusFG: rgb{r: 110, g: 136, b: 255},
		ErrorFG:  rgb{r: 255, g: 107, b: 107},
		HintFG:   rgb{r: 255, g: 91, b: 189},
		PromptFG: rgb{r: 255, g: 255, b: 255},
	},
	"gruvbox": {
		Name:     "gruvbox",
		TitleBG:  rgb{r: 60, g: 56, b: 54},
		TitleFG:  rgb{r: 250, g: 189, b: 47},
		SystemFG: rgb{r: 146, g: 131, b: 116},
		StatusFG: rgb{r: 131, g: 165, b: 152},
		ErrorFG:  rgb{r: 251, g: 73, b: 52},
		HintFG:   rgb{r: 211, g: 134, b: 155},
		PromptFG: rgb{r: 255, g: 255, b: 255},
	},
	"tokyo-midnight": {
		Name:     "tokyo-midnight",
		TitleBG:  rgb{r: 26, g: 27, b: 38},
		TitleFG:  rgb{r: 122, g: 162, b: 247},
		SystemFG: rgb{r: 127, g: 133, b: 163},
		StatusFG: rgb{r: 158, g: 206, b: 106},
		ErrorFG:  rgb{r: 247, g: 118, b: 142},
		HintFG:   rgb{r: 187, g: 154, b: 247},
		PromptFG: rgb{r: 255, g: 255, b: 255},
	},
	"mono": {Name: "mono", Plain: true},
}

func themeForName(name schema.ThemeName, color bool) tuiTheme {
	if name == "" {
		name = schema.DefaultTheme
	}
	theme, ok := tuiThemes[name]
	if !ok {
		theme = tuiThemes[schema.DefaultTheme]
	}
	theme.Plain = theme.Plain || !color
	return theme
}

func (t tuiTheme) fg(c rgb, text string) string {
	if t.Plain || text == "" {
		return text
	}
	return ansiFgRGB(c) + text + ansiReset
}

func (t tuiTheme) bar(text string) string {
	if t.Plain {
		return text
	}
	return ansiBold + ansiBgRGB(t.TitleBG) + ansiFgRGB(t.TitleFG) + text + ansiReset
}

func ansiFgRGB(c rgb) string {
	return "\x1b[38;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}

func ansiBgRGB(c rgb) string {
	return "\x1b[48;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}
