package vfs

// Code classifies a filesystem failure.
type Code uint8

const (
	CodeUnknown Code = iota
	CodeNotFound
	CodeBadMode
	CodeBadName
	CodeReadOnWriteMode
	CodeWriteOnReadMode
	CodeBadFormat
	CodeNotANumber
	CodeIO
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not_found"
	case CodeBadMode:
		return "bad_mode"
	case CodeBadName:
		return "bad_name"
	case CodeReadOnWriteMode:
		return "read_on_write_mode"
	case CodeWriteOnReadMode:
		return "write_on_read_mode"
	case CodeBadFormat:
		return "bad_format"
	case CodeNotANumber:
		return "not_a_number"
	case CodeIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error carries a Code and the message programs see in the error register.
// errors.Is matches on Code, so both read-only-mode messages match ErrReadOnWriteMode.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound        = &Error{Code: CodeNotFound, Msg: "no such file"}
	ErrBadMode         = &Error{Code: CodeBadMode, Msg: "bad arg #2 to 'open' (invalid mode)"}
	ErrBadName         = &Error{Code: CodeBadName, Msg: "bad arg #1 to open (invalid name)"}
	ErrReadOnWriteMode = &Error{Code: CodeReadOnWriteMode, Msg: "can't read in write-only mode"}
	ErrWriteOnReadMode = &Error{Code: CodeWriteOnReadMode, Msg: "can't write in read-only mode"}
	ErrBadFormat       = &Error{Code: CodeBadFormat, Msg: "bad format specifier"}
	ErrNotANumber      = &Error{Code: CodeNotANumber, Msg: "not a number"}

	errReadOnAppendMode = &Error{Code: CodeReadOnWriteMode, Msg: "can't read in append-only mode"}
)

func ioError(err error) error {
	return &Error{Code: CodeIO, Msg: "i/o error", Err: err}
}
