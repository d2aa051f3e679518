package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TenantResolutions map[string]uint64
	TenantsRegistered uint64
	Logins            map[string]uint64
	NotesCreated      uint64
	NotesUpdated      uint64
	NotesDeleted      uint64
	ActivityPublished map[string]uint64
	HTTPRequests      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	tenantsRegistered uint64
	notesCreated      uint64
	notesUpdated      uint64
	notesDeleted      uint64
	httpRequests      uint64

	mu          sync.Mutex
	resolutions map[string]uint64
	logins      map[string]uint64
	activity    map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		resolutions: map[string]uint64{},
		logins:      map[string]uint64{},
		activity:    map[string]uint64{},
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		TenantResolutions: copyCounts(m.resolutions),
		TenantsRegistered: atomic.LoadUint64(&m.tenantsRegistered),
		Logins:            copyCounts(m.logins),
		NotesCreated:      atomic.LoadUint64(&m.notesCreated),
		NotesUpdated:      atomic.LoadUint64(&m.notesUpdated),
		NotesDeleted:      atomic.LoadUint64(&m.notesDeleted),
		ActivityPublished: copyCounts(m.activity),
		HTTPRequests:      atomic.LoadUint64(&m.httpRequests),
	}
}

func (m *InMemoryRecorder) IncTenantResolution(outcome string) { m.inc(m.resolutions, outcome) }

func (m *InMemoryRecorder) IncTenantRegistered() { atomic.AddUint64(&m.tenantsRegistered, 1) }

func (m *InMemoryRecorder) IncLogin(outcome string) { m.inc(m.logins, outcome) }

func (m *InMemoryRecorder) IncNoteCreated() { atomic.AddUint64(&m.notesCreated, 1) }

func (m *InMemoryRecorder) IncNoteUpdated() { atomic.AddUint64(&m.notesUpdated, 1) }

func (m *InMemoryRecorder) IncNoteDeleted() { atomic.AddUint64(&m.notesDeleted, 1) }

func (m *InMemoryRecorder) IncActivityPublished(status string) { m.inc(m.activity, status) }

func (m *InMemoryRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
