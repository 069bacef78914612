package types

import (
	"errors"
	"fmt"
)

// ErrNoResponse marks a request that never produced an HTTP response
// (connection refused, DNS failure, timeout)
var ErrNoResponse = errors.New("no response from server")

// TransportError is a non-success HTTP status returned by the server
type TransportError struct {
	Endpoint   string
	StatusCode int
	Status     string // status text, e.g. "Internal Server Error"
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.Endpoint, e.StatusCode, e.Status)
}

// ParseError is a malformed push frame, snapshot or response body
type ParseError struct {
	Subject string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s: %s: %v", e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s: %s", e.Subject, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is missing or invalid user input, detected before any request
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// DomainFailure is a server response with success=false
type DomainFailure struct {
	Message string
}

func (e *DomainFailure) Error() string {
	return e.Message
}

// IsTransportError returns true if err wraps a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsParseError returns true if err wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError returns true if err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDomainFailure returns true if err wraps a *DomainFailure
func IsDomainFailure(err error) bool {
	var df *DomainFailure
	return errors.As(err, &df)
}
