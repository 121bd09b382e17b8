package models

import "errors"

var (
	// ErrInvalidRule is returned for malformed or nonsensical rules: empty
	// choices, empty cyclic source with a positive length, a name rule that
	// cannot produce text.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrAlreadyExists is returned when the target entry already exists.
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrDuplicateName is returned when two siblings resolve to the same name.
	ErrDuplicateName = errors.New("duplicate sibling name")

	// ErrEncoding is returned when generated bytes are not valid UTF-8 where
	// a string is required.
	ErrEncoding = errors.New("invalid UTF-8")

	// ErrIO is returned when a filesystem operation fails for reasons
	// outside the generator's control.
	ErrIO = errors.New("i/o failure")
)

// ErrorKind classifies an error returned by the generator or materializer.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidRule
	KindAlreadyExists
	KindDuplicateName
	KindEncoding
	KindIO
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRule:
		return "InvalidRule"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindDuplicateName:
		return "DuplicateName"
	case KindEncoding:
		return "EncodingError"
	case KindIO:
		return "IoFailure"
	default:
		return "Unknown"
	}
}

// KindOf maps an error back to its kind. Errors that match none of the
// sentinels are KindUnknown.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidRule):
		return KindInvalidRule
	case errors.Is(err, ErrDuplicateName):
		return KindDuplicateName
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrEncoding):
		return KindEncoding
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindUnknown
	}
}
