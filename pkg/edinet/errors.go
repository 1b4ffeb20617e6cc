package edinet

import "fmt"

// TransportError is returned when the EDINET API could not be reached or
// answered with a failing HTTP status. It is surfaced to the immediate
// caller and never retried beyond the HTTP client's own policy; scan loops
// decide whether to skip or abort.
type TransportError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("edinet: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("edinet: %s %s: unexpected status %d", e.Op, e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DownloadError is returned when the transport succeeded but the payload is
// unusable: an empty body, or a JSON error envelope instead of archive bytes.
type DownloadError struct {
	DocID  string
	Reason string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("edinet: download %s: %s", e.DocID, e.Reason)
}
