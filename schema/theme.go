package schema

import "strings"

// DefaultTheme is the theme used when none is configured.
const DefaultTheme ThemeName = "outrun"

// Themes in the order they are listed to users. "mono" renders without any
// color even on capable terminals.
var themeNames = []ThemeName{"outrun", "gruvbox", "tokyo-midnight", "mono"}

var themeAliases = map[string]ThemeName{
	"outrun-electric": "outrun",
	"tokyo":           "tokyo-midnight",
	"plain":           "mono",
	"none":            "mono",
}

// AvailableThemes returns the supported theme names.
func AvailableThemes() []ThemeName {
	return append([]ThemeName(nil), themeNames...)
}

// NormalizeThemeName resolves name, case-insensitively and with '_' read as
// '-', to a supported theme or one of its aliases.
func NormalizeThemeName(name string) (ThemeName, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if alias, ok := themeAliases[key]; ok {
		return alias, true
	}
	for _, theme := range themeNames {
		if string(theme) == key {
			return theme, true
		}
	}
	return "", false
}
