package vfs

import (
	"strconv"
)

type formatKind uint8

const (
	formatLine formatKind = iota
	formatLineKeep
	formatAll
	formatNumber
	formatCount
	formatBad
)

// Format selects what File.Read returns. The zero value reads one line without its
// terminator.
type Format struct {
	kind formatKind
	n    int
}

var (
	FormatLine     = Format{kind: formatLine}
	FormatLineKeep = Format{kind: formatLineKeep}
	FormatAll      = Format{kind: formatAll}
	FormatNumber   = Format{kind: formatNumber}
)

// FormatCount reads the next n bytes. A negative n counts back from the end of
// the contents: -2 reads everything but the last two bytes.
func FormatCount(n int) Format {
	return Format{kind: formatCount, n: n}
}

// ParseFormat maps "l", "L", "a", "n" and decimal counts onto a Format. The empty
// string is "l". Anything else yields a format that fails with ErrBadFormat when read.
func ParseFormat(s string) Format {
	switch s {
	case "", "l":
		return FormatLine
	case "L":
		return FormatLineKeep
	case "a":
		return FormatAll
	case "n":
		return FormatNumber
	}
	if n, err := strconv.Atoi(s); err == nil {
		return FormatCount(n)
	}
	return Format{kind: formatBad}
}

func (f Format) String() string {
	switch f.kind {
	case formatLine:
		return "l"
	case formatLineKeep:
		return "L"
	case formatAll:
		return "a"
	case formatNumber:
		return "n"
	case formatCount:
		return strconv.Itoa(f.n)
	default:
		return "?"
	}
}

// Kind tags a Value.
type Kind uint8

const (
	// Undefined is returned alongside format and mode errors.
	Undefined Kind = iota
	// Nil marks end of stream, or a failed number parse.
	Nil
	String
	Number
)

// Value is the result of a read.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

func StringValue(s string) Value  { return Value{Kind: String, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: Number, Num: n} }

// IsNil reports the end-of-stream sentinel.
func (v Value) IsNil() bool { return v.Kind == Nil }

// IsUndefined reports the error sentinel.
func (v Value) IsUndefined() bool { return v.Kind == Undefined }

func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case Nil:
		return "nil"
	default:
		return "undefined"
	}
}
