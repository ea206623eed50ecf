package session

import (
	"github.com/pkg/errors"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/message"
	"github.com/ncforge/ncengine/ncerr"
)

// Status is a session's present state
type Status int

const (
	// StatusStartup is the initial state, before the <hello>
	// exchange completes
	StatusStartup Status = iota
	// StatusWorking indicates the session is established and
	// exchanging messages
	StatusWorking
	// StatusClosing indicates a close or kill of the session is in
	// flight
	StatusClosing
	// StatusClosed is the normal terminal state
	StatusClosed
	// StatusError is the abnormal terminal state, reached only on
	// internal invariant violation
	StatusError
	// StatusDummy marks a session holding metadata only; it never
	// transports messages and accepts no transitions
	StatusDummy
)

func (s Status) String() string {
	switch s {
	case StatusStartup:
		return "startup"
	case StatusWorking:
		return "working"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	case StatusError:
		return "error"
	case StatusDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool { return s == StatusClosed || s == StatusError }

// TermReason records why a session reached a terminal state,
// following RFC6470's session termination reasons.
type TermReason int

const (
	// TermNone indicates the session has not terminated
	TermNone TermReason = iota
	// TermClosed is a normal close by <close-session>
	TermClosed
	// TermKilled is a termination by <kill-session>
	TermKilled
	// TermDropped is an unexpected transport disconnect
	TermDropped
	// TermTimeout is an inactivity timeout
	TermTimeout
	// TermBadHello is an invalid <hello> exchange
	TermBadHello
	// TermOther covers any other termination cause
	TermOther
)

func (r TermReason) String() string {
	switch r {
	case TermClosed:
		return "closed"
	case TermKilled:
		return "killed"
	case TermDropped:
		return "dropped"
	case TermTimeout:
		return "timeout"
	case TermBadHello:
		return "bad-hello"
	case TermOther:
		return "other"
	default:
		return "none"
	}
}

// ErrUnmatchedReply reports a reply whose message-id matches no
// outstanding request. Correlation is advisory: the condition is
// reported to the caller, never rejected by the state machine.
var ErrUnmatchedReply = errors.New("reply does not match an outstanding request")

// Machine is one session's state machine.
//
// A Machine is manipulated by a single logical flow of control;
// concurrent sessions each own an independent Machine. All methods
// are synchronous and non-blocking.
type Machine struct {
	status Status
	reason TermReason

	// outstanding request message-ids, for advisory correlation
	outstanding map[string]struct{}
	// closeAckID is the message-id of the in-flight close request;
	// its reply is the only message accepted while Closing
	closeAckID string
	killed     bool
}

// NewMachine returns a Machine in the Startup state
func NewMachine() *Machine {
	return &Machine{outstanding: map[string]struct{}{}}
}

// NewDummy returns a Machine for a metadata-only session. It is
// already terminal for all practical purposes: it accepts no messages
// and no transitions.
func NewDummy() *Machine {
	return &Machine{status: StatusDummy, outstanding: map[string]struct{}{}}
}

// Status returns the present session state
func (m *Machine) Status() Status { return m.status }

// Reason returns the termination reason, TermNone before terminal
func (m *Machine) Reason() TermReason { return m.reason }

// HelloDone completes the hello exchange with the session's effective
// capability set. The session establishes only if the effective set
// retains a base protocol capability; otherwise it terminates with
// reason BadHello.
func (m *Machine) HelloDone(effective capability.Set) error {
	if m.status != StatusStartup {
		return m.fail("hello exchange completed in state %s", m.status)
	}
	if !effective.HasBase() {
		m.status, m.reason = StatusClosed, TermBadHello
		return errors.New("no common base protocol capability")
	}
	m.status = StatusWorking
	return nil
}

// HelloFailed terminates a Startup session with reason BadHello
func (m *Machine) HelloFailed() error {
	if m.status != StatusStartup {
		return m.fail("hello failure reported in state %s", m.status)
	}
	m.status, m.reason = StatusClosed, TermBadHello
	return nil
}

// Accept validates that msg is legal in the session's current state.
//
// A state violation is returned as a protocol-layer error record for
// the peer and, except for a hello received after establishment
// (which terminates with BadHello), never changes session state.
func (m *Machine) Accept(msg *message.Message) *ncerr.Error {
	switch m.status {
	case StatusWorking:
		switch msg.Type {
		case message.TypeRPC, message.TypeReply, message.TypeNotification:
			return nil
		case message.TypeHello:
			// a second hello is fatal to the session
			m.status, m.reason = StatusClosed, TermBadHello
			return ncerr.New(ncerr.TypeProtocol, "malformed-message",
				ncerr.WithMessage("unexpected <hello> on an established session"))
		}
		return ncerr.New(ncerr.TypeProtocol, "malformed-message",
			ncerr.WithMessage("unclassifiable message"))

	case StatusClosing:
		// only the in-flight close acknowledgment is accepted
		if msg.Type == message.TypeReply && msg.Reply != nil &&
			m.closeAckID != "" && msg.Reply.MessageID == m.closeAckID {
			return nil
		}
		return m.rejectf("message received while session is closing")

	case StatusStartup:
		if msg.Type == message.TypeHello {
			return nil
		}
		return m.rejectf("message received before hello exchange completed")

	case StatusDummy:
		return m.rejectf("dummy session accepts no messages")

	default:
		return m.rejectf("message received on a %s session", m.status)
	}
}

// rejectf builds the protocol error for a state violation without
// changing state
func (m *Machine) rejectf(format string, args ...interface{}) *ncerr.Error {
	return ncerr.New(ncerr.TypeProtocol, "operation-failed",
		ncerr.WithMessage(errors.Errorf(format, args...).Error()))
}

// RequestSent records an outgoing request message-id for advisory
// reply correlation
func (m *Machine) RequestSent(messageID string) {
	m.outstanding[messageID] = struct{}{}
}

// ReplyReceived correlates an incoming reply against outstanding
// requests. An unknown message-id returns ErrUnmatchedReply; the
// reply itself remains accepted.
func (m *Machine) ReplyReceived(messageID string) error {
	if _, ok := m.outstanding[messageID]; !ok {
		return errors.Wrap(ErrUnmatchedReply, messageID)
	}
	delete(m.outstanding, messageID)
	return nil
}

// CloseRequested moves a Working session to Closing on receipt or
// issuance of <close-session>, or of a <kill-session> targeting this
// session. ackID is the close request's message-id, whose reply is
// the only message accepted while Closing.
func (m *Machine) CloseRequested(ackID string, killed bool) error {
	if m.status != StatusWorking {
		return m.fail("close requested in state %s", m.status)
	}
	m.status, m.closeAckID, m.killed = StatusClosing, ackID, killed
	return nil
}

// CloseDone completes a close once the acknowledgment exchange
// finishes or the transport is torn down
func (m *Machine) CloseDone() error {
	if m.status != StatusClosing {
		return m.fail("close completed in state %s", m.status)
	}
	m.status, m.reason = StatusClosed, TermClosed
	if m.killed {
		m.reason = TermKilled
	}
	return nil
}

// Dropped records an externally signaled transport disconnect
func (m *Machine) Dropped() error {
	if m.status != StatusWorking && m.status != StatusClosing {
		return m.fail("transport drop in state %s", m.status)
	}
	m.status, m.reason = StatusClosed, TermDropped
	return nil
}

// TimedOut records an externally signaled inactivity timeout. The
// engine exposes this hook only; timers belong to the transport or
// runtime.
func (m *Machine) TimedOut() error {
	if m.status != StatusWorking && m.status != StatusClosing {
		return m.fail("timeout in state %s", m.status)
	}
	m.status, m.reason = StatusClosed, TermTimeout
	return nil
}

// Fail moves the session to the Error state, fatal and never
// recovered. Used for internal invariant violations.
func (m *Machine) Fail() {
	if m.status != StatusDummy {
		m.status, m.reason = StatusError, TermOther
	}
}

// fail marks the machine failed and returns the invariant violation
func (m *Machine) fail(format string, args ...interface{}) error {
	if m.status == StatusDummy {
		return errors.New("dummy session accepts no transitions")
	}
	m.Fail()
	return errors.Errorf(format, args...)
}
