package core

// KeyKind identifies a decoded terminal key.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyTab
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyCtrlC
	// KeyPaste carries a bracketed paste in Text.
	KeyPaste
)

// Key is one decoded key press. Rune is set for KeyRune, Text for KeyPaste.
type Key struct {
	Kind KeyKind
	Rune rune
	Text string
}
