package metrics

import "time"

// NoopRecorder discards everything.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTenantResolution(string)                            {}
func (n *NoopRecorder) IncTenantRegistered()                                  {}
func (n *NoopRecorder) IncLogin(string)                                       {}
func (n *NoopRecorder) IncNoteCreated()                                       {}
func (n *NoopRecorder) IncNoteUpdated()                                       {}
func (n *NoopRecorder) IncNoteDeleted()                                       {}
func (n *NoopRecorder) IncActivityPublished(string)                           {}
func (n *NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
