package message

import (
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"

	"github.com/ncforge/ncengine/ncerr"
)

// Namespaces used by NETCONF messages
const (
	NamespaceBase         = "urn:ietf:params:xml:ns:netconf:base:1.0"
	NamespaceNotification = "urn:ietf:params:xml:ns:netconf:notification:1.0"
)

// Type is the NETCONF message kind
type Type int

const (
	// TypeUnknown indicates an unclassifiable message
	TypeUnknown Type = iota
	// TypeHello is a <hello> message
	TypeHello
	// TypeRPC is an <rpc> message
	TypeRPC
	// TypeReply is an <rpc-reply> message
	TypeReply
	// TypeNotification is a <notification> message
	TypeNotification
)

func (t Type) String() string {
	switch t {
	case TypeHello:
		return "hello"
	case TypeRPC:
		return "rpc"
	case TypeReply:
		return "rpc-reply"
	case TypeNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// ErrParse indicates the input could not be parsed as an XML document.
// Errors returned by Decode wrap ErrParse for such failures.
var ErrParse = errors.New("message parse failure")

// ErrBadHello indicates a structurally invalid <hello> message.
// Distinct from ErrParse: a bad hello carries the BadHello session
// termination reason, while other malformed messages are survivable.
var ErrBadHello = errors.New("bad hello")

// ErrEndOfStream indicates the peer's transport closed
var ErrEndOfStream = errors.New("end of stream")

// ErrMissingHello indicates the peer's first message was not <hello>
var ErrMissingHello = errors.Wrap(ErrBadHello, "first message was not <hello>")

// Message is one classified NETCONF message. Type determines which
// payload field is populated.
type Message struct {
	Type Type

	Hello        *Hello
	RPC          *RPC
	Reply        *Reply
	Notification *Notification
}

// Hello is the payload of a <hello> message
type Hello struct {
	// Capabilities are the peer's declared capability URIs,
	// whitespace-trimmed, in document order
	Capabilities []string
	// SessionID is the server-assigned session-id, valid only if
	// HasSessionID is true
	SessionID    uint32
	HasSessionID bool
}

// Validate checks the structural rules a received <hello> must obey.
// server indicates whether the receiving session is a server session;
// only clients may receive a session-id, and every hello must declare
// at least one capability. Failures wrap ErrBadHello.
func (h *Hello) Validate(server bool) error {
	switch {
	case len(h.Capabilities) == 0:
		return errors.Wrap(ErrBadHello, "missing non-empty <capability> element(s)")
	case server && h.HasSessionID:
		return errors.Wrap(ErrBadHello, "session-id received from client peer")
	case !server && !h.HasSessionID:
		return errors.Wrap(ErrBadHello, "no session-id received for client session")
	}
	return nil
}

// RPC is the payload of an <rpc> message
type RPC struct {
	// MessageID is the caller-supplied opaque message-id attribute.
	// The engine only ever compares it for equality against replies.
	MessageID string
	// Body is the operation element, the first element child of <rpc>
	Body *xmlquery.Node
}

// ReplyKind is the <rpc-reply> content type
type ReplyKind int

const (
	// ReplyUnknown indicates no reply content was detected
	ReplyUnknown ReplyKind = iota
	// ReplyOk is an <ok/> reply
	ReplyOk
	// ReplyError is a reply carrying one or more <rpc-error> elements
	ReplyError
	// ReplyData is a reply carrying a <data> element
	ReplyData
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyOk:
		return "ok"
	case ReplyError:
		return "error"
	case ReplyData:
		return "data"
	default:
		return "unknown"
	}
}

// Reply is the payload of an <rpc-reply> message.
//
// Exactly one of Ok, Errors (non-empty) or Data determines the
// reply's kind; any error present makes the reply an error reply no
// matter what else was included.
type Reply struct {
	// MessageID is the message-id attribute, matching the request's
	MessageID string
	// Ok indicates an <ok/> element was present
	Ok bool
	// Errors are the <rpc-error> records, in document order
	Errors ncerr.List
	// Data is the <data> element, nil if absent
	Data *xmlquery.Node
}

// Kind returns the reply's content type. Errors dominate, then data,
// then ok.
func (r *Reply) Kind() ReplyKind {
	switch {
	case len(r.Errors) > 0:
		return ReplyError
	case r.Data != nil:
		return ReplyData
	case r.Ok:
		return ReplyOk
	default:
		return ReplyUnknown
	}
}

// Notification is the payload of a <notification> message
type Notification struct {
	// EventTime is the notification's eventTime element text
	EventTime string
	// Event is the notification content element following eventTime
	Event *xmlquery.Node
}

var (
	xpHello        = xpath.MustCompile(`/hello[namespace-uri()='` + NamespaceBase + `']`)
	xpRPC          = xpath.MustCompile(`/rpc[namespace-uri()='` + NamespaceBase + `']`)
	xpReply        = xpath.MustCompile(`/rpc-reply[namespace-uri()='` + NamespaceBase + `']`)
	xpNotification = xpath.MustCompile(`/notification[namespace-uri()='` + NamespaceNotification + `']`)

	xpCapability = xpath.MustCompile(`capabilities/capability`)
	xpSessionID  = xpath.MustCompile(`session-id`)
)

// Decode reads one complete XML document from r and classifies it.
// Parse failures wrap ErrParse; structural hello failures wrap
// ErrBadHello.
func Decode(r io.Reader) (*Message, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	return Classify(doc)
}

// Classify tags the parsed document as one of the four NETCONF
// message kinds by its root element name and extracts the
// kind-specific payload.
func Classify(doc *xmlquery.Node) (*Message, error) {
	if n := xmlquery.QuerySelector(doc, xpHello); n != nil {
		return classifyHello(n)
	}
	if n := xmlquery.QuerySelector(doc, xpRPC); n != nil {
		return classifyRPC(n)
	}
	if n := xmlquery.QuerySelector(doc, xpReply); n != nil {
		return classifyReply(n)
	}
	if n := xmlquery.QuerySelector(doc, xpNotification); n != nil {
		return classifyNotification(n)
	}
	return &Message{Type: TypeUnknown}, errors.Wrap(ErrParse, "unrecognized message root element")
}

func classifyHello(n *xmlquery.Node) (*Message, error) {
	hello := &Hello{}
	for _, cap := range xmlquery.QuerySelectorAll(n, xpCapability) {
		if x := strings.TrimSpace(cap.InnerText()); x != "" {
			hello.Capabilities = append(hello.Capabilities, x)
		}
	}
	msg := &Message{Type: TypeHello, Hello: hello}
	if sid := xmlquery.QuerySelector(n, xpSessionID); sid != nil {
		idVal := strings.TrimSpace(sid.InnerText())
		if idVal == "" {
			return msg, errors.Wrap(ErrBadHello, "missing session-id value")
		}
		v, err := strconv.ParseUint(idVal, 10, 32)
		if err != nil {
			return msg, errors.Wrap(ErrBadHello, "invalid session-id value")
		}
		hello.SessionID, hello.HasSessionID = uint32(v), true
	}
	return msg, nil
}

func classifyRPC(n *xmlquery.Node) (*Message, error) {
	rpc := &RPC{Body: firstElementChild(n)}
	msg := &Message{Type: TypeRPC, RPC: rpc}
	if attr := n.SelectAttr("message-id"); attr != "" {
		rpc.MessageID = attr
		return msg, nil
	}
	return msg, ncerr.MissingAttribute("message-id", "rpc",
		ncerr.WithType(ncerr.TypeRPC))
}

func classifyReply(n *xmlquery.Node) (*Message, error) {
	reply := &Reply{MessageID: n.SelectAttr("message-id")}
	for child := firstElementChild(n); child != nil; child = nextElementSibling(child) {
		switch child.Data {
		case "ok":
			reply.Ok = true
		case "data":
			reply.Data = child
		case "rpc-error":
			reply.Errors = append(reply.Errors, decodeError(child))
		}
	}
	return &Message{Type: TypeReply, Reply: reply}, nil
}

func classifyNotification(n *xmlquery.Node) (*Message, error) {
	notif := &Notification{}
	for child := firstElementChild(n); child != nil; child = nextElementSibling(child) {
		if child.Data == "eventTime" {
			notif.EventTime = strings.TrimSpace(child.InnerText())
			continue
		}
		if notif.Event == nil {
			notif.Event = child
		}
	}
	return &Message{Type: TypeNotification, Notification: notif}, nil
}

// decodeError extracts an rpc-error element into an ncerr.Error.
// Unknown error-type or error-severity values fall back to the zero
// enumerate values (application, error).
func decodeError(n *xmlquery.Node) *ncerr.Error {
	e := &ncerr.Error{}
	for child := firstElementChild(n); child != nil; child = nextElementSibling(child) {
		text := strings.TrimSpace(child.InnerText())
		switch child.Data {
		case "error-type":
			_ = e.Type.UnmarshalText([]byte(text))
		case "error-tag":
			e.Tag = text
		case "error-severity":
			_ = e.Severity.UnmarshalText([]byte(text))
		case "error-app-tag":
			e.AppTag = text
		case "error-path":
			e.Path = text
		case "error-message":
			e.Message = text
		case "error-info":
			decodeErrorInfo(child, e)
		}
	}
	return e
}

func decodeErrorInfo(n *xmlquery.Node, e *ncerr.Error) {
	for child := firstElementChild(n); child != nil; child = nextElementSibling(child) {
		text := strings.TrimSpace(child.InnerText())
		switch child.Data {
		case "bad-attribute":
			ncerr.WithBadAttribute(text)(e)
		case "bad-element":
			ncerr.WithBadElement(text)(e)
		case "bad-namespace":
			ncerr.WithBadNamespace(text)(e)
		case "session-id":
			ncerr.WithSessionID(text)(e)
		}
	}
}

func firstElementChild(n *xmlquery.Node) *xmlquery.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

func nextElementSibling(n *xmlquery.Node) *xmlquery.Node {
	for next := n.NextSibling; next != nil; next = next.NextSibling {
		if next.Type == xmlquery.ElementNode {
			return next
		}
	}
	return nil
}
