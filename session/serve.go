package session

import (
	"github.com/antchfx/xmlquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ncforge/ncengine/capability"
	"github.com/ncforge/ncengine/datastore"
	"github.com/ncforge/ncengine/edit"
	"github.com/ncforge/ncengine/message"
	"github.com/ncforge/ncengine/ncerr"
	"github.com/ncforge/ncengine/nclog"
	"github.com/ncforge/ncengine/rpc"
)

// Datastore is the server's configuration store collaborator
type Datastore interface {
	// Read returns the contents of the source datastore, restricted
	// by filter when non-nil. For <get> the running datastore is read
	// together with device state data.
	Read(source datastore.Type, filter *rpc.Filter) (*xmlquery.Node, *ncerr.Error)
	// Edit applies an edit-config plan, returning any errors in
	// document order
	Edit(plan *edit.Plan) ncerr.List
}

// Extended is implemented by Datastores supporting operations beyond
// reads and edit-config: copy-config, delete-config, lock, unlock,
// commit, discard-changes, get-schema and create-subscription. A
// Datastore without Extended has those operations answered with
// operation-not-supported.
type Extended interface {
	Do(sessionID uint32, req *rpc.Request) (*xmlquery.Node, ncerr.List)
}

// AccessControl authorizes operations before dispatch
type AccessControl interface {
	Check(sessionID uint32, category rpc.Category, op rpc.Op, target datastore.Type) bool
}

// Server is a session Handler dispatching a server session's requests
// to a Datastore
type Server struct {
	Store Datastore
	// Access authorizes each operation. A nil Access permits all.
	Access AccessControl
	// Kill terminates another session by id on behalf of
	// <kill-session>. When nil, kill-session requests for other
	// sessions fail.
	Kill func(sessionID uint32) *ncerr.Error

	log zerolog.Logger
}

var _ Handler = (*Server)(nil)

// NewServer returns a Server handler dispatching to store
func NewServer(store Datastore) *Server {
	return &Server{Store: store, log: nclog.New("server")}
}

// OnEstablish implements Handler
func (srv *Server) OnEstablish(s *Session) {
	srv.log.Debug().Uint32("session-id", s.State.ID).Msg("serving session")
}

// OnError implements Handler
func (srv *Server) OnError(s *Session) {
	srv.log.Warn().Uint32("session-id", s.State.ID).Errs("errors", s.Errors()).Msg("session error")
}

// OnClose implements Handler
func (srv *Server) OnClose(s *Session) {
	srv.log.Debug().
		Uint32("session-id", s.State.ID).
		Stringer("reason", s.State.Machine.Reason()).
		Msg("session closed")
}

// OnMessage implements Handler, receiving and dispatching one message
func (srv *Server) OnMessage(s *Session) {
	msg, err := s.Next()
	if err != nil {
		if perr, ok := err.(*ncerr.Error); ok {
			srv.reply(s, message.NewErrorReply(messageID(msg), perr))
			return
		}
		if errors.Is(err, message.ErrParse) || errors.Is(err, message.ErrBadHello) {
			srv.reply(s, message.NewErrorReply("", ncerr.MalformedMessage()))
			return
		}
		if !errors.Is(err, message.ErrEndOfStream) {
			s.AddError(err)
		}
		return
	}

	switch msg.Type {
	case message.TypeRPC:
		srv.dispatch(s, msg.RPC)
	default:
		// replies and notifications are legal but unexpected on a
		// server session
		srv.log.Debug().Stringer("type", msg.Type).Msg("ignoring non-rpc message")
	}
}

func messageID(msg *message.Message) string {
	if msg != nil && msg.RPC != nil {
		return msg.RPC.MessageID
	}
	return ""
}

func (srv *Server) dispatch(s *Session, r *message.RPC) {
	req, perr := rpc.ParseRequest(r.Body)
	if perr != nil {
		srv.reply(s, message.NewErrorReply(r.MessageID, perr))
		return
	}
	if perr = srv.admit(s, req); perr != nil {
		srv.reply(s, message.NewErrorReply(r.MessageID, perr))
		return
	}

	switch req.Op {
	case rpc.OpGet:
		srv.read(s, r.MessageID, datastore.Running, req.Filter)
	case rpc.OpGetConfig:
		srv.read(s, r.MessageID, req.Source, req.Filter)

	case rpc.OpEditConfig:
		plan, perr := edit.Resolve(req.Edit)
		if perr != nil {
			srv.reply(s, message.NewErrorReply(r.MessageID, perr))
			return
		}
		if errs := srv.Store.Edit(plan); len(errs) > 0 {
			srv.reply(s, message.NewErrorReply(r.MessageID, errs...))
			return
		}
		srv.reply(s, message.NewOkReply(r.MessageID))

	case rpc.OpCloseSession:
		s.State.Machine.CloseRequested(r.MessageID, false)
		srv.reply(s, message.NewOkReply(r.MessageID))
		s.State.Machine.CloseDone()

	case rpc.OpKillSession:
		srv.kill(s, r.MessageID, req.KillSessionID)

	default:
		ext, ok := srv.Store.(Extended)
		if !ok {
			srv.reply(s, message.NewErrorReply(r.MessageID,
				ncerr.OperationNotSupported(
					ncerr.WithMessage(req.Op.String()+" is not supported"))))
			return
		}
		data, errs := ext.Do(s.State.ID, req)
		switch {
		case len(errs) > 0:
			srv.reply(s, message.NewErrorReply(r.MessageID, errs...))
		case data != nil:
			srv.reply(s, message.NewDataReply(r.MessageID, data))
		default:
			srv.reply(s, message.NewOkReply(r.MessageID))
		}
	}
}

// admit validates req against the session's negotiated capabilities
// and the server's access control policy
func (srv *Server) admit(s *Session, req *rpc.Request) *ncerr.Error {
	if req.Op == rpc.OpUnknown {
		return ncerr.OperationNotSupported(ncerr.WithMessage("unknown operation"))
	}

	caps := s.State.Effective
	for _, ds := range []datastore.Type{req.Source, req.Target} {
		if uri := ds.RequiredCapability(); uri != "" && !caps.Has(uri) {
			return ncerr.OperationNotSupported(
				ncerr.WithMessage(ds.String() + " datastore capability was not negotiated"))
		}
	}
	switch req.Op {
	case rpc.OpCommit, rpc.OpDiscardChanges:
		if !caps.Has(capability.Candidate) {
			return ncerr.OperationNotSupported(
				ncerr.WithMessage("candidate datastore capability was not negotiated"))
		}
	case rpc.OpCreateSubscription:
		if !caps.Has(capability.Notification) {
			return ncerr.OperationNotSupported(
				ncerr.WithMessage("notification capability was not negotiated"))
		}
	}

	if req.Filter != nil && req.Filter.Type == rpc.FilterUnknown {
		return ncerr.BadAttribute("type", "filter",
			ncerr.WithMessage("unsupported filter type"))
	}

	if srv.Access != nil && !srv.Access.Check(s.State.ID, req.Category, req.Op, req.Target) {
		srv.log.Info().
			Uint32("session-id", s.State.ID).
			Stringer("op", req.Op).
			Msg("access denied")
		return ncerr.AccessDenied()
	}
	return nil
}

func (srv *Server) read(s *Session, messageID string, source datastore.Type, filter *rpc.Filter) {
	data, derr := srv.Store.Read(source, filter)
	if derr != nil {
		srv.reply(s, message.NewErrorReply(messageID, derr))
		return
	}
	srv.reply(s, message.NewDataReply(messageID, data))
}

func (srv *Server) kill(s *Session, messageID string, victim uint32) {
	if victim == s.State.ID {
		srv.reply(s, message.NewErrorReply(messageID,
			ncerr.InvalidValue(ncerr.WithMessage("attempt to kill own session"),
				ncerr.WithBadElement("session-id"))))
		return
	}
	if srv.Kill == nil {
		srv.reply(s, message.NewErrorReply(messageID,
			ncerr.OperationFailed(ncerr.WithMessage("session termination unavailable"))))
		return
	}
	if kerr := srv.Kill(victim); kerr != nil {
		srv.reply(s, message.NewErrorReply(messageID, kerr))
		return
	}
	srv.reply(s, message.NewOkReply(messageID))
}

func (srv *Server) reply(s *Session, reply *message.Reply) {
	if err := s.SendReply(reply); err != nil {
		s.AddError(err)
		srv.log.Warn().Err(err).Msg("reply send failure")
	}
}
