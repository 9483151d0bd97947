package apperror

import (
	"errors"
	"net/http"
)

// Kind identifies the failure class independently of the HTTP code, so
// callers can branch on it without matching message strings.
type Kind string

const (
	KindValidation             Kind = "VALIDATION"
	KindForbidden              Kind = "FORBIDDEN"
	KindForbiddenTransition    Kind = "FORBIDDEN_TRANSITION"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindNotReviewable          Kind = "NOT_REVIEWABLE"
	KindOutOfOrder             Kind = "OUT_OF_ORDER"
	KindAlreadyAttempted       Kind = "ALREADY_ATTEMPTED"
	KindExpired                Kind = "EXPIRED"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindNotFound               Kind = "NOT_FOUND"
	KindInternal               Kind = "INTERNAL"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// KindOf reports the Kind of err, or KindInternal for non-AppError values.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindForbidden, message, nil)
}

// ForbiddenTransition reports a lifecycle event requested by the wrong actor.
func ForbiddenTransition(message string) *AppError {
	return New(http.StatusForbidden, KindForbiddenTransition, message, nil)
}

// InvalidStateTransition reports a lifecycle event that is not valid from the
// posting's current status.
func InvalidStateTransition(message string) *AppError {
	return New(http.StatusConflict, KindInvalidStateTransition, message, nil)
}

// NotReviewable reports a reviewer decision applied outside the review stage.
func NotReviewable(message string) *AppError {
	return New(http.StatusConflict, KindNotReviewable, message, nil)
}

func OutOfOrder(message string) *AppError {
	return New(http.StatusConflict, KindOutOfOrder, message, nil)
}

func AlreadyAttempted(message string) *AppError {
	return New(http.StatusConflict, KindAlreadyAttempted, message, nil)
}

func Expired(message string) *AppError {
	return New(http.StatusConflict, KindExpired, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}
