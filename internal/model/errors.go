package model

import "fmt"

// MalformedInputError reports input that cannot be normalized: unbalanced
// block comments or bytes that are not valid UTF-8. It is fatal for the
// comparison it belongs to.
type MalformedInputError struct {
	File   string
	Line   int // 0-based; -1 when the whole file is affected
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("malformed input in %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("malformed input in %s, line %d: %s", e.File, e.Line+1, e.Reason)
}

// TimeoutError reports that the caller's time budget ran out. The comparison
// can be retried with a larger budget; nothing was mutated.
type TimeoutError struct {
	Stage string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("comparison timed out during %s", e.Stage)
}
