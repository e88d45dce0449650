package trace

import "time"

// OutcomeOK is the Outcome of an operation that succeeded. Failed
// operations carry the wire code of their error kind instead.
const OutcomeOK = "ok"

// Entry records one catalog operation and how it ended.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Key       string        `json:"key,omitempty"`
	Outcome   string        `json:"outcome"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Failed reports whether the entry records a failure.
func (e Entry) Failed() bool {
	return e.Outcome != OutcomeOK
}
