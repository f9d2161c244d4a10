package api

import (
	"errors"
	"net/http"

	repository "github.com/okian/pelada/internal/adapters/repository"
	"github.com/okian/pelada/internal/domain/roster"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Envelope codes written in error responses.
const (
	codeBadRequest         = "bad_request"
	codeInvalidName        = "invalid_name"
	codeInvalidAmount      = "invalid_amount"
	codeNotFound           = "not_found"
	codeConflict           = "conflict"
	codeGoalkeeperLimit    = "goalkeeper_limit"
	codeNotEnoughConfirmed = "not_enough_confirmed"
	codeInternal           = "internal_error"
)

// Error records the handler operation, the error kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both kind and cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err, classifying it by the domain error it carries.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	_, _, kind := classify(err)
	return &Error{Op: op, Kind: kind, Err: err}
}

// WrapKind attaches op and an explicit kind to err.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps a domain error to a status code, an envelope code and a kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, roster.ErrGoalkeeperLimit):
		return http.StatusConflict, codeGoalkeeperLimit, ErrConflict
	case errors.Is(err, roster.ErrNotEnoughConfirmed):
		return http.StatusConflict, codeNotEnoughConfirmed, ErrConflict
	case errors.Is(err, roster.ErrInvalidAmount):
		return http.StatusBadRequest, codeInvalidAmount, ErrBadRequest
	case errors.Is(err, roster.ErrEmptyName):
		return http.StatusBadRequest, codeInvalidName, ErrBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, codeNotFound, ErrNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest, ErrBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, codeConflict, ErrConflict
	default:
		return http.StatusInternalServerError, codeInternal, ErrInternal
	}
}
