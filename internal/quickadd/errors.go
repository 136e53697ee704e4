package quickadd

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedOutput     = errors.New("malformed model output")
)

// ParseError is the only error type the pipeline returns. Kind is one of the
// sentinels above; Raw holds the offending model text for MalformedOutput.
type ParseError struct {
	Kind error
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code is the stable machine-readable name of the kind.
func (e *ParseError) Code() string {
	switch e.Kind {
	case ErrInvalidRequest:
		return "invalid_request"
	case ErrUpstreamUnavailable:
		return "upstream_unavailable"
	case ErrMalformedOutput:
		return "malformed_output"
	}
	return "internal"
}

func invalidRequest(msg string) *ParseError {
	return &ParseError{Kind: ErrInvalidRequest, Err: errors.New(msg)}
}

func upstreamUnavailable(err error) *ParseError {
	return &ParseError{Kind: ErrUpstreamUnavailable, Err: err}
}

func malformedOutput(raw string, err error) *ParseError {
	return &ParseError{Kind: ErrMalformedOutput, Raw: raw, Err: err}
}
