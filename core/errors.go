package core

import "errors"

// Error kinds shared by every driver in the firmware.
// Callers match them with errors.Is; the underlying cause stays reachable through errors.Unwrap.
var (
	ErrBusWrite            = errors.New("bus write failed")
	ErrBusRead             = errors.New("bus read failed")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrSetupFailure        = errors.New("setup failure")
	ErrOutOfBounds         = errors.New("out of bounds")
)

// Error tags an underlying failure with one of the error kinds above
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Error kind codes as reported over the control link
const (
	CodeUnknown uint8 = iota
	CodeBusWrite
	CodeBusRead
	CodeResourceUnavailable
	CodeSetupFailure
	CodeOutOfBounds
)

var kindCodes = []struct {
	kind error
	code uint8
}{
	{ErrBusWrite, CodeBusWrite},
	{ErrBusRead, CodeBusRead},
	{ErrResourceUnavailable, CodeResourceUnavailable},
	{ErrSetupFailure, CodeSetupFailure},
	{ErrOutOfBounds, CodeOutOfBounds},
}

// KindCode maps an error to its link code. Errors outside the taxonomy map to CodeUnknown.
func KindCode(err error) uint8 {
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			return kc.code
		}
	}
	return CodeUnknown
}

// KindFromCode is the inverse of KindCode. It returns nil for CodeUnknown and unassigned codes.
func KindFromCode(code uint8) error {
	for _, kc := range kindCodes {
		if kc.code == code {
			return kc.kind
		}
	}
	return nil
}
