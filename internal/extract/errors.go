package extract

import "fmt"

// ExtractionError reports that a document could not be fetched. It aborts
// session creation; no fallback text is produced for unreachable sources.
type ExtractionError struct {
	Location string
	// StatusCode is set for HTTP responses with an error status.
	StatusCode int
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
