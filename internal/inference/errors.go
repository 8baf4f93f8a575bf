package inference

import "fmt"

// ParseError reports model output that did not follow the expected text
// contract. It carries the raw response for operator debugging.
type ParseError struct {
	Raw    string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable model output: %s", e.Reason)
}
