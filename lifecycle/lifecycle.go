// Package lifecycle manages shared engine initialization.
//
// Several participants (processes or in-process components) may use
// the engine concurrently against one shared resource, such as a
// datastore directory. A Manager coordinates their startup and
// shutdown: the first participant to Init learns it must create the
// shared state, later participants join it, and the last one out may
// tear it down. System-wide teardown is only honored once no other
// participants remain.
package lifecycle

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ncforge/ncengine/nclog"
)

// Flags selects the optional engine subsystems a participant uses
type Flags struct {
	// Notifications enables the notification subsystem
	Notifications bool
	// AccessControl enables operation access control
	AccessControl bool
}

// InitResult is the outcome of a successful Init
type InitResult int

const (
	// InitUnknown indicates initialization did not complete
	InitUnknown InitResult = iota
	// FirstInit indicates this participant is the first; it must
	// create any shared state
	FirstInit
	// AlreadyInit indicates other participants are active and shared
	// state already exists
	AlreadyInit
)

func (r InitResult) String() string {
	switch r {
	case FirstInit:
		return "first-init"
	case AlreadyInit:
		return "already-init"
	default:
		return "unknown"
	}
}

// CloseResult is the outcome of a successful Close
type CloseResult int

const (
	// CloseUnknown indicates the close did not complete
	CloseUnknown CloseResult = iota
	// CloseSuccess indicates this participant released the shared
	// resource; if it was the last one, shared state was torn down
	CloseSuccess
	// CloseDeferred indicates a system-wide close was requested but
	// other participants remain active; only this participant's
	// membership was released
	CloseDeferred
)

func (r CloseResult) String() string {
	switch r {
	case CloseSuccess:
		return "success"
	case CloseDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// SharedResource is the participant registry shared by all engine
// users. Implementations serialize Acquire and Release across
// participants with their own lock.
type SharedResource interface {
	// Acquire registers a participant, reporting whether it is the
	// first
	Acquire() (first bool, err error)
	// Release deregisters a participant, reporting whether it was the
	// last. A system release additionally requests teardown of shared
	// state once the last participant is gone.
	Release(system bool) (last bool, err error)
}

// Manager coordinates one participant's use of the shared engine
// resources. A Manager is used by a single participant; its methods
// are safe for concurrent use.
type Manager struct {
	resource SharedResource
	log      zerolog.Logger

	mu          sync.Mutex
	flags       Flags
	initialized bool
	closed      bool
	recoveryUID int
	hasRecovery bool
}

// NewManager returns a Manager over the given shared resource
func NewManager(resource SharedResource) *Manager {
	return &Manager{resource: resource, log: nclog.New("lifecycle")}
}

// Init initializes this participant's use of the engine. The first
// participant receives FirstInit and must create shared state; others
// receive AlreadyInit. Init may be called once per Manager.
func (m *Manager) Init(flags Flags) (InitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return InitUnknown, errors.New("already initialized")
	}
	first, err := m.resource.Acquire()
	if err != nil {
		return InitUnknown, errors.Wrap(err, "acquiring shared resource")
	}
	m.initialized, m.flags = true, flags

	result := AlreadyInit
	if first {
		result = FirstInit
	}
	m.log.Debug().
		Stringer("result", result).
		Bool("notifications", flags.Notifications).
		Bool("access-control", flags.AccessControl).
		Msg("initialized")
	return result, nil
}

// Flags returns the subsystem flags supplied at Init
func (m *Manager) Flags() Flags {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags
}

// SetRecoveryUID sets the user id permitted to perform recovery
// operations regardless of access control rules. It requires an
// initialized Manager with access control enabled.
func (m *Manager) SetRecoveryUID(uid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !m.initialized || m.closed:
		return errors.New("not initialized")
	case !m.flags.AccessControl:
		return errors.New("access control is not enabled")
	}
	m.recoveryUID, m.hasRecovery = uid, true
	return nil
}

// RecoveryUID returns the configured recovery user id, if set
func (m *Manager) RecoveryUID() (uid int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recoveryUID, m.hasRecovery
}

// Close releases this participant's use of the engine. With system
// set, shared state is also torn down, but only once no other
// participants remain: if any are still active the close is deferred
// and CloseDeferred returned. Close may be called once, after Init.
func (m *Manager) Close(system bool) (CloseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized || m.closed {
		return CloseUnknown, errors.New("not initialized")
	}
	last, err := m.resource.Release(system)
	if err != nil {
		return CloseUnknown, errors.Wrap(err, "releasing shared resource")
	}
	m.closed = true

	result := CloseSuccess
	if system && !last {
		result = CloseDeferred
	}
	m.log.Debug().Stringer("result", result).Bool("system", system).Msg("closed")
	return result, nil
}
