package schema

// Nick is the display name attached to outgoing messages.
type Nick string

// ThemeName identifies a UI theme.
type ThemeName string

// Size is a terminal size in cells.
type Size struct {
	Width  int
	Height int
}
