package vfs

import (
	"errors"
	"strconv"
)

// Whence selects the origin of a Seek.
type Whence uint8

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// ParseWhence maps "set", "cur" and "end".
func ParseWhence(s string) (Whence, bool) {
	switch s {
	case "set":
		return SeekSet, true
	case "cur":
		return SeekCur, true
	case "end":
		return SeekEnd, true
	}
	return 0, false
}

// File is a cursor over one inode's bytes.
//
// Offsets are not clamped. A negative offset counts back from the end of the contents
// when reading or writing, and a read or write that lands past the end behaves as if
// the contents were zero-padded up to the offset.
type File struct {
	fs     *FS
	ino    Ino
	mode   Mode
	offset int64
}

func (f *File) Ino() Ino { return f.ino }
func (f *File) Mode() Mode { return f.mode }
func (f *File) Offset() int64 { return f.offset }
func (f *File) Close() error { return nil }

// Read returns the next value in format fm and advances the offset past it.
func (f *File) Read(fm Format) (Value, error) {
	if !f.mode.canRead() {
		if f.mode.Intent() == 'a' {
			return Value{}, errReadOnAppendMode
		}
		return Value{}, ErrReadOnWriteMode
	}

	b, _ := f.fs.contents(f.ino)
	s := b[clampIndex(f.offset, int64(len(b))):]

	if fm.kind == formatAll {
		f.offset += int64(len(s))
		return StringValue(string(s)), nil
	}
	if len(s) == 0 {
		return Value{Kind: Nil}, nil
	}

	switch fm.kind {
	case formatLine, formatLineKeep:
		for i, c := range s {
			if c != '\n' {
				continue
			}
			if fm.kind == formatLineKeep {
				i++
			} else {
				f.offset++
			}
			s = s[:i]
			break
		}
		f.offset += int64(len(s))
		return StringValue(string(s)), nil

	case formatNumber:
		ws := 0
		for ws < len(s) && (s[ws] == ' ' || s[ws] == '\n') {
			ws++
		}
		f.offset += int64(ws)
		s = s[ws:]

		n := scanNumber(s)
		if n == 0 {
			return Value{Kind: Nil}, ErrNotANumber
		}
		// Overlong digit runs overflow to ±Inf and still count as read.
		v, err := strconv.ParseFloat(string(s[:n]), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Value{Kind: Nil}, ErrNotANumber
		}
		f.offset += int64(n)
		return NumberValue(v), nil

	case formatCount:
		end := fm.n
		if end < 0 {
			end = max(len(s)+end, 0)
		}
		if end < len(s) {
			s = s[:end]
		}
		f.offset += int64(len(s))
		return StringValue(string(s)), nil
	}

	return Value{}, ErrBadFormat
}

// scanNumber returns the length of the numeric token at the start of s:
// -?[0-9]+(\.[0-9]+)? or -?\.[0-9]+, or 0 when there is none.
func scanNumber(s []byte) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := func(at int) int {
		j := at
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		return j - at
	}

	if n := digits(i); n > 0 {
		i += n
		if i < len(s) && s[i] == '.' {
			if m := digits(i + 1); m > 0 {
				i += 1 + m
			}
		}
		return i
	}
	if i < len(s) && s[i] == '.' {
		if m := digits(i + 1); m > 0 {
			return i + 1 + m
		}
	}
	return 0
}

// Write concatenates chunks and writes them at the offset (end of contents in append
// mode), zero-filling any gap. It returns the number of bytes written.
func (f *File) Write(chunks ...[]byte) (int, error) {
	if !f.mode.canWrite() {
		return 0, ErrWriteOnReadMode
	}

	cur, ok := f.fs.contents(f.ino)
	if !ok {
		return 0, ErrNotFound
	}
	if f.mode.Intent() == 'a' {
		f.offset = int64(len(cur))
	}

	var written []byte
	for _, c := range chunks {
		written = append(written, c...)
	}

	n := int64(len(cur))
	head := cur[:clampIndex(f.offset, n)]
	gap := f.offset - n
	if gap < 0 {
		gap = 0
	}
	tail := cur[clampIndex(f.offset+int64(len(written)), n):]

	next := make([]byte, 0, int64(len(head))+gap+int64(len(written))+int64(len(tail)))
	next = append(next, head...)
	next = append(next, make([]byte, gap)...)
	next = append(next, written...)
	next = append(next, tail...)

	if err := f.fs.setContents(f.ino, next); err != nil {
		return 0, err
	}
	f.offset += int64(len(written))
	return len(written), nil
}

// WriteString is Write for string chunks.
func (f *File) WriteString(chunks ...string) (int, error) {
	bs := make([][]byte, len(chunks))
	for i, c := range chunks {
		bs[i] = []byte(c)
	}
	return f.Write(bs...)
}

// Seek moves the offset and returns it. Results are not range checked.
func (f *File) Seek(offset int64, whence Whence) int64 {
	switch whence {
	case SeekSet:
		f.offset = offset
	case SeekCur:
		f.offset += offset
	case SeekEnd:
		b, _ := f.fs.contents(f.ino)
		f.offset = int64(len(b)) + offset
	}
	return f.offset
}

// clampIndex resolves i against a length n the way slice bounds are resolved for
// file offsets: negative indexes count back from n, and results are clamped to [0, n].
func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}
