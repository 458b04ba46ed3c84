package places

import "errors"

// Error classes of the client. They never travel over the wire;
// API-level failures are reported as Response values instead.
var (
	// ErrBadRequest marks invalid input detected before any network activity.
	ErrBadRequest = errors.New("bad request")
	// ErrUnknown marks transport failures and undecodable responses.
	ErrUnknown = errors.New("unknown error")
)

// Error is returned by lookups. Kind is ErrBadRequest or ErrUnknown,
// Err is the underlying cause if there is one.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "places: " + e.Kind.Error()
	}

	return "places: " + e.Kind.Error() + ": " + e.Message
}

// Unwrap lets errors.Is match both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func badRequest(msg string) *Error {
	return &Error{Kind: ErrBadRequest, Message: msg}
}

// unknown keeps the diagnostic text of err as the message.
func unknown(err error) *Error {
	return &Error{Kind: ErrUnknown, Message: err.Error(), Err: err}
}
