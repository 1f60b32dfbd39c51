package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a codec failure.
type Kind uint8

const (
	KindDecode Kind = iota + 1
	KindValidation
	KindUnknownOpcode
	KindUnsupported
	KindDestinationExists
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode error"
	case KindValidation:
		return "validation error"
	case KindUnknownOpcode:
		return "unknown opcode"
	case KindUnsupported:
		return "unsupported feature"
	case KindDestinationExists:
		return "destination exists"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is returned by every decode, validate, encode and save operation.
// Op names the record or field involved and Offset is the byte offset within
// the buffer being processed, or -1 when it does not apply.
type Error struct {
	Kind   Kind
	Op     string
	Offset int
	Err    error
}

// Sentinel errors for use with errors.Is. They match any *Error of the same kind.
var (
	ErrDecode            = &Error{Kind: KindDecode, Offset: -1}
	ErrValidation        = &Error{Kind: KindValidation, Offset: -1}
	ErrUnknownOpcode     = &Error{Kind: KindUnknownOpcode, Offset: -1}
	ErrUnsupported       = &Error{Kind: KindUnsupported, Offset: -1}
	ErrDestinationExists = &Error{Kind: KindDestinationExists, Offset: -1}
	ErrIO                = &Error{Kind: KindIO, Offset: -1}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op string, offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Offset: offset, Err: errors.Newf(format, args...)}
}

// DecodeErrorf reports malformed or truncated input.
func DecodeErrorf(op string, offset int, format string, args ...interface{}) error {
	return newError(KindDecode, op, offset, format, args...)
}

// ValidationErrorf reports a broken length, count or address invariant.
func ValidationErrorf(op string, format string, args ...interface{}) error {
	return newError(KindValidation, op, -1, format, args...)
}

// UnknownOpcodeErrorf reports an unmapped navigation command triple.
func UnknownOpcodeErrorf(op string, format string, args ...interface{}) error {
	return newError(KindUnknownOpcode, op, -1, format, args...)
}

// UnsupportedErrorf reports a recognised structure whose payload is not implemented.
func UnsupportedErrorf(op string, format string, args ...interface{}) error {
	return newError(KindUnsupported, op, -1, format, args...)
}

// DestinationExistsError reports a refused save onto an existing path.
func DestinationExistsError(path string) error {
	return &Error{Kind: KindDestinationExists, Op: "save", Offset: -1, Err: errors.Newf("%s already exists", path)}
}

// IOError wraps a file system failure or an out-of-range byte access.
func IOError(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Offset: -1, Err: err}
}

// Wrap prefixes err with the enclosing record name, keeping its kind.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, op)
}
