package service

import "time"

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Clock returns the current time
type Clock func() time.Time

// Metrics receives service-level measurements
type Metrics interface {
	ObserveExtraction(provider, outcome string, d time.Duration)
	ObserveRender(docType, outcome string, d time.Duration)
	IncDocumentsIssued(docType string)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) ObserveExtraction(string, string, time.Duration) {}
func (NopMetrics) ObserveRender(string, string, time.Duration)     {}
func (NopMetrics) IncDocumentsIssued(string)                       {}

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
