package crawler

import "fmt"

// TransportError reports a failed exchange with an upstream provider, either
// a network error or a non-2xx response.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports an upstream payload that could not be interpreted at
// all. Individually malformed entries inside an otherwise readable payload
// are dropped instead.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse failed: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
