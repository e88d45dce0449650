package scenario

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that it can be carried unchanged from the
// content API through the store to the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindMalformedDocument
	KindInvalidRequest
	KindUnauthorized
	KindConfiguration
	KindUpstreamUnavailable
	KindMethodNotAllowed
)

var kindCodes = map[Kind]string{
	KindInternal:            "internal",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
	KindMalformedDocument:   "malformed_document",
	KindInvalidRequest:      "invalid_request",
	KindUnauthorized:        "unauthorized",
	KindConfiguration:       "configuration_error",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindMethodNotAllowed:    "method_not_allowed",
}

// Kinds lists every failure kind. Callers that map kinds to another
// representation iterate it to stay exhaustive.
func Kinds() []Kind {
	return []Kind{
		KindInternal,
		KindNotFound,
		KindConflict,
		KindMalformedDocument,
		KindInvalidRequest,
		KindUnauthorized,
		KindConfiguration,
		KindUpstreamUnavailable,
		KindMethodNotAllowed,
	}
}

// String returns the wire code of the kind (e.g. "not_found").
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInternal]
}

// ParseKind is the inverse of Kind.String. Unknown codes map to KindInternal.
func ParseKind(code string) Kind {
	for k, c := range kindCodes {
		if c == code {
			return k
		}
	}
	return KindInternal
}

// Error is a tagged failure. Op names the operation ("get", "put", ...)
// and Key the storage key involved, when there is one.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Key != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Key, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works regardless of Op, Key or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrMalformedDocument   = &Error{Kind: KindMalformedDocument}
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrMethodNotAllowed    = &Error{Kind: KindMethodNotAllowed}
)

// Errorf builds a tagged error with a formatted cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with op and key. If err is already tagged its kind is kept,
// otherwise kind is used.
func Wrap(kind Kind, op, key string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		kind = tagged.Kind
	}
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

// KindOf returns the kind of the outermost tagged error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindInternal
}
