package api

import "fmt"

// StatusError is an application-level failure reported by the backend.
// The server responded with a decodable body whose status field is "error";
// Message carries the server-provided text and may be empty.
type StatusError struct {
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "server reported an error"
	}
	return e.Message
}

// TransportError is a network or decode failure. The request never produced
// an interpretable application response.
type TransportError struct {
	Op  string // endpoint path or logical operation
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
