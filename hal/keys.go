package hal

// chordRune maps a key name, as ebiten spells it, to the character a Ctrl or
// Alt chord on that key carries.
func chordRune(name string) (rune, bool) {
	switch {
	case len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z':
		return rune(name[0] - 'A' + 'a'), true
	case len(name) == 6 && name[:5] == "Digit" && name[5] >= '0' && name[5] <= '9':
		return rune(name[5]), true
	case name == "Backquote":
		return '`', true
	}
	return 0, false
}

// printable reports whether r is text the machine's character set can show.
func printable(r rune) bool { return r >= 0x20 && r < 0x7f }
