package indexer

import (
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// State is one node of the indexer's state machine:
//
//	Standby --start--> Indexing --finish--> Indexed --armWatch--> Watching
//	   ^                   |                                       |
//	   |                   v                                       |
//	   +----stop---- Error <----any-stage-fatal-error--------------+
type State string

const (
	StateStandby  State = "Standby"
	StateIndexing State = "Indexing"
	StateIndexed  State = "Indexed"
	StateWatching State = "Watching"
	StateError    State = "Error"
)

// Progress carries the {processedItems, totalItems, message} triple the
// spec attaches to every state.
type Progress struct {
	ProcessedItems int
	TotalItems     int
	Message        string
}

// Status is the value returned by GetCurrentStatus: the current state,
// its progress, and the last fatal error recorded, if any.
type Status struct {
	State    State
	Progress Progress
	LastErr  error
}

// StateMachine tracks the indexer's current state and progress, and
// fans progress/state changes out to registered observers. It never
// panics or crashes the process on a fatal run error: the error is
// recorded and surfaced through GetCurrentStatus/the callback instead
//.
type StateMachine struct {
	mu       sync.RWMutex
	state    State
	progress Progress
	lastErr  error

	current atomic.Value // holds Status, for lock-free reads

	obsMu     sync.Mutex
	observers []func(Status)
}

// NewStateMachine creates a machine starting in Standby.
func NewStateMachine() *StateMachine {
	sm := &StateMachine{state: StateStandby}
	sm.current.Store(Status{State: StateStandby})
	return sm
}

// OnProgressUpdate registers a callback invoked on every state or
// progress change. Callbacks are invoked
// synchronously in registration order; callers wanting off-thread
// delivery should hop to their own goroutine inside cb.
func (sm *StateMachine) OnProgressUpdate(cb func(Status)) {
	sm.obsMu.Lock()
	defer sm.obsMu.Unlock()
	sm.observers = append(sm.observers, cb)
}

// GetCurrentStatus returns the current state, progress and last error
// without blocking on the state mutex.
func (sm *StateMachine) GetCurrentStatus() Status {
	return sm.current.Load().(Status)
}

// Start transitions Standby -> Indexing. Rejected from any other state:
// a start already in flight, or a run that must go through Standby
// first after a restart-requiring config change.
func (sm *StateMachine) Start() bool {
	return sm.transition(StateStandby, StateIndexing, Progress{Message: "starting"})
}

// Finish transitions Indexing -> Indexed.
func (sm *StateMachine) Finish(p Progress) bool {
	return sm.transition(StateIndexing, StateIndexed, p)
}

// ArmWatch transitions Indexed -> Watching.
func (sm *StateMachine) ArmWatch() bool {
	return sm.transition(StateIndexed, StateWatching, Progress{Message: "watching"})
}

// ReportProgress updates progress without changing state, used while
// Indexing or while Watching processes an incremental delta.
func (sm *StateMachine) ReportProgress(p Progress) {
	sm.mu.Lock()
	sm.progress = p
	status := Status{State: sm.state, Progress: p, LastErr: sm.lastErr}
	sm.mu.Unlock()
	sm.publish(status)
}

// Fail transitions any state to Error, recording err for inspection
// and reporting it to Sentry as a captured (not panicking) error.
func (sm *StateMachine) Fail(err error) {
	sm.mu.Lock()
	sm.state = StateError
	sm.lastErr = err
	status := Status{State: StateError, Progress: sm.progress, LastErr: err}
	sm.mu.Unlock()

	if err != nil {
		sentry.CaptureException(err)
	}
	sm.publish(status)
}

// Stop transitions any state back to Standby, clearing the last error.
// It does not touch the watcher or pipeline; the caller disposes those
// separately.
func (sm *StateMachine) Stop() {
	sm.mu.Lock()
	sm.state = StateStandby
	sm.lastErr = nil
	status := Status{State: StateStandby, Progress: sm.progress}
	sm.mu.Unlock()
	sm.publish(status)
}

// Reset forces the machine back to Standby regardless of current state,
// used when a config change requires a restart.
func (sm *StateMachine) Reset() {
	sm.Stop()
}

func (sm *StateMachine) transition(from, to State, p Progress) bool {
	sm.mu.Lock()
	if sm.state != from {
		sm.mu.Unlock()
		return false
	}
	sm.state = to
	sm.progress = p
	status := Status{State: to, Progress: p, LastErr: sm.lastErr}
	sm.mu.Unlock()

	sm.publish(status)
	return true
}

func (sm *StateMachine) publish(status Status) {
	sm.current.Store(status)

	sm.obsMu.Lock()
	observers := make([]func(Status), len(sm.observers))
	copy(observers, sm.observers)
	sm.obsMu.Unlock()

	for _, obs := range observers {
		obs(status)
	}
}

// Current returns the state alone, for callers that don't need full
// Status (e.g. the watcher coordinator deciding whether a run is safe
// to start).
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}
