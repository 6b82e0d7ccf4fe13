package classification

import (
	"errors"
	"net/http"
)

// Kind names one of the terminal failure outcomes of a classification.
type Kind string

// Failure kinds.
const (
	KindInvalidInput     Kind = "invalid_input"
	KindCommunication    Kind = "communication"
	KindEmptyModelOutput Kind = "empty_model_output"
	KindSchemaViolation  Kind = "schema_violation"
)

// Error tags a classification failure with its Kind. Two Errors match under
// errors.Is when their kinds are equal, so the sentinels below can be used
// to test any wrapped failure.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinel errors, one per Kind.
var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrCommunication    = &Error{Kind: KindCommunication}
	ErrEmptyModelOutput = &Error{Kind: KindEmptyModelOutput}
	ErrSchemaViolation  = &Error{Kind: KindSchemaViolation}
)

// Domain errors outside the classification pipeline.
var (
	ErrInvalidQuestion = errors.New("question is required")
	ErrInvalidRecord   = errors.New("record requires an id and a primary domain")
)

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidQuestion) {
		return http.StatusBadRequest
	}

	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindCommunication, KindEmptyModelOutput:
		return http.StatusBadGateway
	case KindSchemaViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
