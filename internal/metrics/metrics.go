// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Tenant resolution outcomes.
const (
	ResolutionHit     = "hit"
	ResolutionMiss    = "miss"
	ResolutionCentral = "central_rejected"
	ResolutionError   = "error"
)

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Activity publish outcomes.
const (
	PublishSuccess = "success"
	PublishDropped = "dropped"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Tenancy
	IncTenantResolution(outcome string)
	IncTenantRegistered()

	// Auth
	IncLogin(outcome string)

	// Notes
	IncNoteCreated()
	IncNoteUpdated()
	IncNoteDeleted()

	// Activity stream
	IncActivityPublished(status string)

	// HTTP
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
