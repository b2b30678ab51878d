package collection

import "time"

// Outcomes reported to Metrics
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
)

// Metrics receives view-level measurements
type Metrics interface {
	ObserveFetch(resource, outcome string, d time.Duration)
	ObserveMutation(resource, op, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFetch(string, string, time.Duration) {}
func (nopMetrics) ObserveMutation(string, string, string)     {}
