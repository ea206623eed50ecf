package session

import (
	"bytes"
	"io"

	"github.com/rs/zerolog"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/message"
	"github.com/ncforge/ncengine/nclog"
	"github.com/ncforge/ncengine/transport"
)

// New returns a new NETCONF Session over the given transport stream
func New(stream transport.Stream, config Config) *Session {
	s := &Session{
		Config: &config,
		State:  &State{Machine: NewMachine()},
		stream: stream,
		local:  capability.Parse(config.Capabilities),
		log:    nclog.New("session"),
	}
	return s
}

// Session represents a NETCONF session
type Session struct {
	Config *Config
	State  *State

	stream transport.Stream
	local  capability.Set
	log    zerolog.Logger
}

// Config contains Session configuration
type Config struct {
	// ID is the configured session-id. Must be 0 for client sessions
	// and non-0 for server sessions
	ID uint32
	// Capabilities holds our local capability URIs
	Capabilities []string
}

// State contains runtime Session state
type State struct {
	// ID is the established session-id, populated during the hello
	// exchange
	ID uint32
	// Peer holds the remote peer's capability set
	Peer capability.Set
	// Effective holds the session's negotiated capability set, the
	// intersection of the local and peer sets
	Effective capability.Set
	// Machine is the session's state machine
	Machine *Machine
	// Counters contains session counters
	Counters struct {
		// RxMsgs is the number of NETCONF messages received
		RxMsgs int
	}

	// Opaque is user private data, unused by the engine
	Opaque interface{}

	errs []error
}

// Handler is the Session handler interface.
// Client and/or server applications implement this interface.
type Handler interface {
	// OnEstablish is called once the hello exchange has completed
	// and the session is Working
	OnEstablish(*Session)
	// OnMessage is called repeatedly while the session remains
	// Working
	OnMessage(*Session)
	// OnError is called once if the session fails to establish or
	// reaches the Error state
	OnError(*Session)
	// OnClose is called after the session's transport is closed
	OnClose(*Session)
}

// Run executes the Session s, using Handler h
func Run(s *Session, h Handler) {
	if s.InitialHandshake() {
		h.OnEstablish(s)
		for s.State.Machine.Status() == StatusWorking {
			h.OnMessage(s)
		}
	}
	if st := s.State.Machine.Status(); st == StatusError ||
		(st == StatusClosed && s.State.Machine.Reason() == TermBadHello) {
		h.OnError(s)
	}
	s.Close()
	h.OnClose(s)
}

// Run executes the session using Handler h
func (s *Session) Run(handler Handler) { Run(s, handler) }

// Server reports whether this is a server session. Server sessions
// are configured with a non-zero session-id.
func (s *Session) Server() bool { return s.Config.ID != 0 }

// InitialHandshake performs the bidirectional <hello> exchange and
// capability negotiation.
//
// Returns true if the session established, in which case the state
// machine is Working and State.Effective holds the negotiated
// capability set. Otherwise the session has terminated with reason
// BadHello (or dropped) and Errors returns the cause.
func (s *Session) InitialHandshake() bool {
	if s.State.Machine.Status() != StatusStartup {
		return false
	}
	if s.sendHello(); len(s.State.errs) == 0 {
		s.recvHello()
	}
	ok := len(s.State.errs) == 0 && s.State.Machine.Status() == StatusWorking
	if !ok && s.State.Machine.Status() == StatusStartup {
		s.State.Machine.HelloFailed()
	}
	return ok
}

func (s *Session) sendHello() {
	buf := &bytes.Buffer{}
	if s.AddError(message.EncodeHello(buf, s.local.URIs(), s.Config.ID)) == 0 {
		s.AddError(s.stream.Send(buf.Bytes()))
	}
}

func (s *Session) recvHello() {
	raw, err := s.stream.Recv()
	if err != nil {
		if err == io.EOF {
			err = message.ErrEndOfStream
		}
		s.AddError(err)
		return
	}
	s.State.Counters.RxMsgs++

	msg, err := message.Decode(bytes.NewReader(raw))
	if s.AddError(err) > 0 {
		return
	}
	if msg.Type != message.TypeHello {
		s.AddError(message.ErrMissingHello)
		return
	}
	if s.AddError(msg.Hello.Validate(s.Server())) > 0 {
		return
	}

	if s.Server() {
		s.State.ID = s.Config.ID
	} else {
		s.State.ID = msg.Hello.SessionID
	}
	s.State.Peer = capability.Parse(msg.Hello.Capabilities)
	s.State.Effective = capability.Intersect(s.local, s.State.Peer)
	if s.AddError(s.State.Machine.HelloDone(s.State.Effective)) == 0 {
		s.log.Info().
			Uint32("session-id", s.State.ID).
			Int("capabilities", s.State.Effective.Len()).
			Msg("session established")
	}
}

// Next receives and classifies the session's next message, validating
// its legality in the current state.
//
// A transport error terminates the session (reason Dropped) and is
// returned. A parse failure or state violation is returned alongside
// any partially classified message; these are survivable and should
// be answered with an error reply. Reply correlation failures are
// advisory: they are recorded on the session and logged, and the
// reply is still delivered.
func (s *Session) Next() (*message.Message, error) {
	raw, err := s.stream.Recv()
	if err != nil {
		if err == io.EOF {
			err = message.ErrEndOfStream
		}
		if st := s.State.Machine.Status(); st == StatusWorking || st == StatusClosing {
			s.State.Machine.Dropped()
		}
		return nil, err
	}
	s.State.Counters.RxMsgs++

	msg, err := message.Decode(bytes.NewReader(raw))
	if err != nil {
		return msg, err
	}
	if perr := s.State.Machine.Accept(msg); perr != nil {
		return msg, perr
	}
	if msg.Type == message.TypeReply {
		if cerr := s.State.Machine.ReplyReceived(msg.Reply.MessageID); cerr != nil {
			s.AddError(cerr)
			s.log.Warn().Str("message-id", msg.Reply.MessageID).Msg("unmatched rpc-reply")
		}
	}
	return msg, nil
}

// SendRPC sends an <rpc> request carrying the operation element(s)
// given, recording the message-id for reply correlation.
func (s *Session) SendRPC(messageID string, operation []byte) error {
	buf := &bytes.Buffer{}
	if err := message.EncodeRPC(buf, messageID, operation); err != nil {
		return err
	}
	if err := s.stream.Send(buf.Bytes()); err != nil {
		return err
	}
	s.State.Machine.RequestSent(messageID)
	return nil
}

// SendReply sends an <rpc-reply>
func (s *Session) SendReply(reply *message.Reply) error {
	buf := &bytes.Buffer{}
	if err := reply.Encode(buf); err != nil {
		return err
	}
	return s.stream.Send(buf.Bytes())
}

// Kill terminates the session on behalf of a <kill-session> request
// received on another session. The session terminates with reason
// Killed and its transport is closed.
func (s *Session) Kill() error {
	if err := s.State.Machine.CloseRequested("", true); err != nil {
		return err
	}
	s.State.Machine.CloseDone()
	return s.stream.Close()
}

// Close closes the Session and its transport
func (s *Session) Close() error {
	switch m := s.State.Machine; m.Status() {
	case StatusClosing:
		m.CloseDone()
	case StatusWorking:
		m.Dropped()
	case StatusStartup:
		m.HelloFailed()
	}
	return s.stream.Close()
}

// AddError adds non-nil errors to the session state
func (s *Session) AddError(errs ...error) (added int) {
	for _, err := range errs {
		if err != nil {
			s.State.errs = append(s.State.errs, err)
			added++
		}
	}
	return added
}

// Errors returns all session errors
func (s *Session) Errors() []error { return s.State.errs }
