package usecase

import "fmt"

type ErrorCode string

const (
	// ErrorRouting means no candidate matched the request.
	ErrorRouting ErrorCode = "ROUTING_FAILURE"
	// ErrorHandler means the selected candidate's action failed or panicked.
	ErrorHandler ErrorCode = "HANDLER_FAILURE"
	// ErrorDataSource means the glucose reading could not be fetched or decoded.
	ErrorDataSource ErrorCode = "DATA_SOURCE_FAILURE"
)

// Error is a skill failure. Handler names the candidate that was running,
// empty when none was selected.
type Error struct {
	Code    ErrorCode
	Reason  string
	Handler string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	where := ""
	if e.Handler != "" {
		where = " in " + e.Handler
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s%s (%s)", e.Code, where, e.Reason)
	}
	return fmt.Sprintf("usecase: %s%s (%s): %v", e.Code, where, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

func newHandlerError(handler, reason string, err error) *Error {
	return &Error{Code: ErrorHandler, Reason: reason, Handler: handler, Err: err}
}
