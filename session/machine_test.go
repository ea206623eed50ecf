package session

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/message"
)

func msgOf(t message.Type) *message.Message {
	m := &message.Message{Type: t}
	switch t {
	case message.TypeHello:
		m.Hello = &message.Hello{Capabilities: []string{capability.Base10}}
	case message.TypeRPC:
		m.RPC = &message.RPC{MessageID: "100"}
	case message.TypeReply:
		m.Reply = &message.Reply{MessageID: "100", Ok: true}
	case message.TypeNotification:
		m.Notification = &message.Notification{}
	}
	return m
}

func working(t *testing.T) *Machine {
	m := NewMachine()
	assert.NoError(t, m.HelloDone(capability.Parse([]string{capability.Base10})))
	return m
}

func TestMachineHelloExchange(t *testing.T) {
	for _, tc := range []struct {
		name       string
		effective  []string
		wantStatus Status
		wantReason TermReason
		wantErr    bool
	}{
		{
			name:       "base 1.0 retained",
			effective:  []string{capability.Base10},
			wantStatus: StatusWorking,
		},
		{
			name:       "base 1.1 retained",
			effective:  []string{capability.Base11, capability.Candidate},
			wantStatus: StatusWorking,
		},
		{
			name:       "no base capability",
			effective:  []string{capability.Candidate},
			wantStatus: StatusClosed,
			wantReason: TermBadHello,
			wantErr:    true,
		},
		{
			name:       "empty effective set",
			wantStatus: StatusClosed,
			wantReason: TermBadHello,
			wantErr:    true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			m := NewMachine()
			err := m.HelloDone(capability.Parse(tc.effective))
			check.Equal(tc.wantErr, err != nil)
			check.Equal(tc.wantStatus, m.Status())
			check.Equal(tc.wantReason, m.Reason())
		})
	}
}

func TestMachineHelloFailed(t *testing.T) {
	check := assert.New(t)
	m := NewMachine()
	check.NoError(m.HelloFailed())
	check.Equal(StatusClosed, m.Status())
	check.Equal(TermBadHello, m.Reason())
	check.True(m.Status().Terminal())
}

func TestMachineAccept(t *testing.T) {
	closing := func(t *testing.T) *Machine {
		m := working(t)
		assert.NoError(t, m.CloseRequested("100", false))
		return m
	}
	for _, tc := range []struct {
		name    string
		machine func(*testing.T) *Machine
		msg     *message.Message
		wantOK  bool
	}{
		{
			name:    "startup accepts hello",
			machine: func(*testing.T) *Machine { return NewMachine() },
			msg:     msgOf(message.TypeHello),
			wantOK:  true,
		},
		{
			name:    "startup rejects rpc",
			machine: func(*testing.T) *Machine { return NewMachine() },
			msg:     msgOf(message.TypeRPC),
		},
		{
			name:    "startup rejects reply",
			machine: func(*testing.T) *Machine { return NewMachine() },
			msg:     msgOf(message.TypeReply),
		},
		{
			name:    "startup rejects notification",
			machine: func(*testing.T) *Machine { return NewMachine() },
			msg:     msgOf(message.TypeNotification),
		},
		{
			name:    "working accepts rpc",
			machine: working,
			msg:     msgOf(message.TypeRPC),
			wantOK:  true,
		},
		{
			name:    "working accepts reply",
			machine: working,
			msg:     msgOf(message.TypeReply),
			wantOK:  true,
		},
		{
			name:    "working accepts notification",
			machine: working,
			msg:     msgOf(message.TypeNotification),
			wantOK:  true,
		},
		{
			name:    "working rejects second hello",
			machine: working,
			msg:     msgOf(message.TypeHello),
		},
		{
			name:    "closing accepts the close acknowledgment",
			machine: closing,
			msg:     msgOf(message.TypeReply),
			wantOK:  true,
		},
		{
			name:    "closing rejects other replies",
			machine: closing,
			msg:     &message.Message{Type: message.TypeReply, Reply: &message.Reply{MessageID: "999"}},
		},
		{
			name:    "closing rejects rpc",
			machine: closing,
			msg:     msgOf(message.TypeRPC),
		},
		{
			name:    "dummy rejects everything",
			machine: func(*testing.T) *Machine { return NewDummy() },
			msg:     msgOf(message.TypeRPC),
		},
		{
			name: "closed rejects rpc",
			machine: func(t *testing.T) *Machine {
				m := working(t)
				assert.NoError(t, m.Dropped())
				return m
			},
			msg: msgOf(message.TypeRPC),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			m := tc.machine(t)
			perr := m.Accept(tc.msg)
			if tc.wantOK {
				check.Nil(perr)
				return
			}
			if check.NotNil(perr) {
				check.Equal("protocol", perr.Type.String())
			}
		})
	}
}

func TestMachineSecondHelloTerminates(t *testing.T) {
	check := assert.New(t)
	m := working(t)
	perr := m.Accept(msgOf(message.TypeHello))
	check.NotNil(perr)
	check.Equal("malformed-message", perr.Tag)
	check.Equal(StatusClosed, m.Status())
	check.Equal(TermBadHello, m.Reason())
}

func TestMachineCloseLifecycle(t *testing.T) {
	for _, tc := range []struct {
		name       string
		killed     bool
		wantReason TermReason
	}{
		{name: "close-session", wantReason: TermClosed},
		{name: "kill-session", killed: true, wantReason: TermKilled},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			m := working(t)
			check.NoError(m.CloseRequested("42", tc.killed))
			check.Equal(StatusClosing, m.Status())
			check.NoError(m.CloseDone())
			check.Equal(StatusClosed, m.Status())
			check.Equal(tc.wantReason, m.Reason())
		})
	}
}

func TestMachineExternalTermination(t *testing.T) {
	check := assert.New(t)

	m := working(t)
	check.NoError(m.Dropped())
	check.Equal(TermDropped, m.Reason())

	m = working(t)
	check.NoError(m.TimedOut())
	check.Equal(TermTimeout, m.Reason())

	// drops are also legal mid-close
	m = working(t)
	check.NoError(m.CloseRequested("1", false))
	check.NoError(m.Dropped())
	check.Equal(TermDropped, m.Reason())
}

func TestMachineInvalidTransitionFails(t *testing.T) {
	check := assert.New(t)
	m := NewMachine()
	check.Error(m.CloseDone())
	check.Equal(StatusError, m.Status())
	check.Equal(TermOther, m.Reason())

	// terminal; nothing else moves it
	check.Error(m.HelloDone(capability.Parse([]string{capability.Base10})))
	check.Equal(StatusError, m.Status())
}

func TestMachineDummyAcceptsNoTransitions(t *testing.T) {
	check := assert.New(t)
	m := NewDummy()
	check.Error(m.HelloDone(capability.Parse([]string{capability.Base10})))
	check.Error(m.CloseRequested("1", false))
	check.Error(m.Dropped())
	m.Fail()
	check.Equal(StatusDummy, m.Status())
}

func TestMachineReplyCorrelation(t *testing.T) {
	check := assert.New(t)
	m := working(t)

	m.RequestSent("101")
	check.NoError(m.ReplyReceived("101"))

	err := m.ReplyReceived("101")
	check.True(errors.Is(err, ErrUnmatchedReply))
	// correlation is advisory: the session keeps working
	check.Equal(StatusWorking, m.Status())
}
