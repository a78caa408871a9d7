package session

// Keysyms understood by the session. Values are X11 keysyms, which is what
// IBus-style hosts deliver as the key value.
const (
	KeySpace      uint32 = 0x0020
	KeyAsciiTilde uint32 = 0x007e
	KeyBackSpace  uint32 = 0xff08
	KeyReturn     uint32 = 0xff0d
	KeyEscape     uint32 = 0xff1b
	KeyUp         uint32 = 0xff52
	KeyDown       uint32 = 0xff54
	KeyPageUp     uint32 = 0xff55
	KeyPageDown   uint32 = 0xff56
	KeyKPEnter    uint32 = 0xff8d
)

// Modifier is a modifier state bit mask.
type Modifier uint32

const (
	ShiftMask   Modifier = 1 << 0
	LockMask    Modifier = 1 << 1
	ControlMask Modifier = 1 << 2
	Mod1Mask    Modifier = 1 << 3
	Mod4Mask    Modifier = 1 << 6
	SuperMask   Modifier = 1 << 26
	ReleaseMask Modifier = 1 << 30
)

// Bindings are the keys that, held with Control, switch modes.
type Bindings struct {
	SymbolMode uint32
	WordMode   uint32
}

// DefaultBindings is Control+e for symbols and Control+w for words.
func DefaultBindings() Bindings {
	return Bindings{SymbolMode: 'e', WordMode: 'w'}
}

func isPrintable(keyval uint32) bool {
	return keyval >= KeySpace && keyval <= KeyAsciiTilde
}

func foldASCII(keyval uint32) uint32 {
	if keyval >= 'A' && keyval <= 'Z' {
		return keyval + 'a' - 'A'
	}
	return keyval
}
