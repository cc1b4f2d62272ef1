// Package parse turns free-text model output into structured records.
// Both parsers are narrow, fully specified grammars: they tolerate exactly
// the shape the prompts ask for and fail with a typed error on anything
// else rather than guessing.
package parse

import "fmt"

// MalformedResponseError reports model output that did not match the
// expected shape.
type MalformedResponseError struct {
	Reason string
	Input  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}
