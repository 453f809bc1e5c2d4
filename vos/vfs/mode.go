package vfs

// Mode is the canonical open mode of a handle. Only the leading intent (read, write,
// append) changes behavior; the "+" variants may also read.
type Mode uint8

const (
	ModeRead Mode = iota + 1
	ModeWrite
	ModeAppend
	ModeReadPlus
	ModeWritePlus
	ModeAppendPlus
)

var modes = map[string]Mode{
	"r": ModeRead, "rb": ModeRead,
	"w": ModeWrite, "wb": ModeWrite,
	"a": ModeAppend, "ab": ModeAppend,
	"r+": ModeReadPlus, "rb+": ModeReadPlus, "r+b": ModeReadPlus,
	"w+": ModeWritePlus, "wb+": ModeWritePlus, "w+b": ModeWritePlus,
	"a+": ModeAppendPlus, "ab+": ModeAppendPlus, "a+b": ModeAppendPlus,
}

// ParseMode canonicalises a mode string. The empty string means "r".
func ParseMode(s string) (Mode, bool) {
	if s == "" {
		return ModeRead, true
	}
	m, ok := modes[s]
	return m, ok
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeAppend:
		return "a"
	case ModeReadPlus:
		return "r+"
	case ModeWritePlus:
		return "w+"
	case ModeAppendPlus:
		return "a+"
	default:
		return "?"
	}
}

// Intent returns 'r', 'w' or 'a'.
func (m Mode) Intent() byte {
	switch m {
	case ModeWrite, ModeWritePlus:
		return 'w'
	case ModeAppend, ModeAppendPlus:
		return 'a'
	default:
		return 'r'
	}
}

func (m Mode) canRead() bool  { return m != ModeWrite && m != ModeAppend }
func (m Mode) canWrite() bool { return m != ModeRead }
