package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a successful response does not carry
// a numeric predicted_price
var ErrMalformedResponse = errors.New("malformed response from prediction service")

// TransportError means the request to the prediction service could not complete
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("prediction service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError means the prediction service answered with a non-success status.
// Message is the response body as sent by the service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	return fmt.Sprintf("prediction failed with status %d", e.StatusCode)
}
