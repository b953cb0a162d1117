package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidPin       = fmt.Errorf("pin must be exactly %d digits", PinLength)
	ErrPinAlreadySet    = errors.New("pin is already configured")
	ErrPinNotSet        = errors.New("pin is not configured")
	ErrWrongPin         = errors.New("wrong pin")
	ErrCorruptData      = errors.New("stored memory could not be decoded")
	ErrNotAuthenticated = errors.New("no authenticated session")
	ErrMemoryFull       = fmt.Errorf("memory is full (%d facts)", MaxFacts)
	ErrDecode           = errors.New("decode obfuscated payload")
	ErrBusy             = errors.New("another message is still in flight")
	ErrQuotaExceeded    = errors.New("daily message limit reached")
	ErrEmptyMessage     = errors.New("message is empty")
)

type BackendErrorKind string

const (
	BackendNetworkFailure BackendErrorKind = "network_failure"
	BackendBadResponse    BackendErrorKind = "bad_response"
	BackendServerError    BackendErrorKind = "server_error"
)

// BackendError is returned by every ModelBackend implementation so the
// orchestrator can log the failure class without parsing messages.
type BackendError struct {
	Kind   BackendErrorKind
	Detail string
	Err    error
}

func NewBackendError(kind BackendErrorKind, detail string, err error) *BackendError {
	return &BackendError{Kind: kind, Detail: detail, Err: err}
}

func (e *BackendError) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("backend %s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("backend %s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("backend %s", e.Kind)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// BackendErrorKindOf reports the failure class of err, defaulting to a
// network failure for errors that did not come from a backend adapter.
func BackendErrorKindOf(err error) BackendErrorKind {
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Kind
	}
	return BackendNetworkFailure
}
