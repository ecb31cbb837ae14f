package domain

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies a DomainError for the HTTP layer.
type ErrorCode struct {
	Name       string
	StatusCode int
}

var (
	// 400
	ErrorCodeParameterInvalid = ErrorCode{Name: "PARAMETER_INVALID", StatusCode: http.StatusBadRequest}

	// 401/403
	ErrorCodeAuthNotAuthenticated = ErrorCode{Name: "AUTH_NOT_AUTHENTICATED", StatusCode: http.StatusUnauthorized}
	ErrorCodeAuthPermissionDenied = ErrorCode{Name: "AUTH_PERMISSION_DENIED", StatusCode: http.StatusForbidden}

	// 404
	ErrorCodeResourceNotFound = ErrorCode{Name: "RESOURCE_NOT_FOUND", StatusCode: http.StatusNotFound}

	// 422
	ErrorCodeNameUnresolved = ErrorCode{Name: "NAME_UNRESOLVED", StatusCode: http.StatusUnprocessableEntity}

	// 500
	ErrorCodeInternalProcess = ErrorCode{Name: "INTERNAL_PROCESS", StatusCode: http.StatusInternalServerError}

	// 502
	ErrorCodeRemoteProcess = ErrorCode{Name: "REMOTE_PROCESS_ERROR", StatusCode: http.StatusBadGateway}
)

// DomainError carries an error together with what the client is allowed to
// see about it.
type DomainError struct {
	code      ErrorCode
	err       error
	clientMsg string
	detail    map[string]interface{}
}

type ErrorOption func(*DomainError)

// WithMsg sets the message returned to the client.
func WithMsg(msg string) ErrorOption {
	return func(e *DomainError) {
		e.clientMsg = msg
	}
}

// WithDetail attaches structured detail returned to the client.
func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) {
		e.detail = detail
	}
}

func NewError(code ErrorCode, err error, opts ...ErrorOption) error {
	e := DomainError{code: code, err: err}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	if e.err == nil {
		return e.code.Name
	}
	if e.code.Name == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.code.Name, e.err.Error())
}

func (e DomainError) Unwrap() error {
	return e.err
}

func (e DomainError) Name() string {
	return e.code.Name
}

func (e DomainError) ClientMsg() string {
	return e.clientMsg
}

func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

// HTTPStatus returns the status code of e, 500 for an unclassified error.
func (e DomainError) HTTPStatus() int {
	if e.code.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.code.StatusCode
}
