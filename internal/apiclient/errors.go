package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call to the training API.
type Kind int

const (
	// KindNetwork means no usable response arrived.
	KindNetwork Kind = iota + 1
	// KindHTTP is a non-2xx status.
	KindHTTP
	// KindAPI is a 2xx response carrying {"success": false}.
	KindAPI
	// KindInvalid is a response that did not match its schema.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindAPI:
		return "api"
	case KindInvalid:
		return "invalid"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Status > 0:
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error (status %d)", e.Op, e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsNetwork(err error) bool {
	apiErr, ok := asError(err)
	return ok && apiErr.Kind == KindNetwork
}

// StatusOf returns the upstream HTTP status, or 0 when there was none.
func StatusOf(err error) int {
	if apiErr, ok := asError(err); ok {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the message the training API attached to err, or fallback.
func MessageOf(err error, fallback string) string {
	apiErr, ok := asError(err)
	if !ok {
		return fallback
	}
	if (apiErr.Kind == KindAPI || apiErr.Kind == KindHTTP) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Describe renders err as the inline message a view shows: networkMsg for
// transport failures, the server's own message when it sent one, fallback otherwise.
func Describe(err error, networkMsg, fallback string) string {
	if err == nil {
		return ""
	}
	if IsNetwork(err) {
		return networkMsg
	}
	return MessageOf(err, fallback)
}
