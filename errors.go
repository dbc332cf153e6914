package textbelt

import (
	"errors"
	"fmt"
)

// Kind classifies a client failure by the layer it originated in.
type Kind string

const (
	// KindValidation marks a request record that failed structural checks
	// before any network call was made.
	KindValidation Kind = "validation"
	// KindNetwork marks connection, DNS and timeout failures where no HTTP
	// response was obtained.
	KindNetwork Kind = "network"
	// KindHTTP marks a non-2xx status returned by the API.
	KindHTTP Kind = "http"
	// KindParse marks a response body (or authenticated webhook payload)
	// that could not be decoded into the expected shape.
	KindParse Kind = "parse"
	// KindAPI marks a 2xx response whose own success flag reported a logical
	// failure. Client operations return these as response data; the kind is
	// only produced by the Err helpers on response types.
	KindAPI Kind = "api"
)

// Error is the normalized failure shape returned by every client operation.
// The wrapped cause is kept for diagnostics only; callers branch on Kind.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int   // HTTP status, set for KindHTTP
	Err        error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("textbelt: %s: %v", e.Message, e.Err)
	}
	return "textbelt: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf extracts the Kind from err. The second return is false when err is
// not (and does not wrap) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
