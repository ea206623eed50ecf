package ncerr

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

// Type represents the NETCONF error-type enumerate, the conceptual
// layer at which an error occurred.
type Type int

const (
	// TypeApplication is an application layer error
	TypeApplication Type = iota
	// TypeProtocol is a NETCONF protocol layer error
	TypeProtocol
	// TypeRPC is a NETCONF RPC layer error
	TypeRPC
	// TypeTransport is an error at the secure transport layer
	TypeTransport
)

func (t Type) String() string {
	switch t {
	case TypeApplication:
		return "application"
	case TypeProtocol:
		return "protocol"
	case TypeRPC:
		return "rpc"
	case TypeTransport:
		return "transport"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t *Type) UnmarshalText(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "application":
		*t = TypeApplication
	case "protocol":
		*t = TypeProtocol
	case "rpc":
		*t = TypeRPC
	case "transport":
		*t = TypeTransport
	default:
		return errors.New("unknown value")
	}
	return nil
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Severity represents the NETCONF error-severity enumerate
type Severity int

const (
	// SeverityError indicates "error" level
	SeverityError Severity = iota
	// SeverityWarning indicates "warning" level.
	// (Not used in errors defined in RFC6241 Appendix A)
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	default:
		return errors.New("unknown value")
	}
	return nil
}

// Error represents a NETCONF rpc-error.
//
// Error marshals as an <rpc-error> element in the NETCONF base
// namespace, suitable for inclusion in an <rpc-reply>.
type Error struct {
	XMLName  xml.Name   `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc-error" json:"-"`
	Type     Type       `xml:"error-type" json:"error-type"`
	Tag      string     `xml:"error-tag" json:"error-tag"`
	Severity Severity   `xml:"error-severity" json:"error-severity"`
	AppTag   string     `xml:"error-app-tag,omitempty" json:"error-app-tag,omitempty"`
	Path     string     `xml:"error-path,omitempty" json:"error-path,omitempty"`
	Message  string     `xml:"error-message,omitempty" json:"error-message,omitempty"`
	Info     *errorInfo `xml:"error-info,omitempty" json:"error-info,omitempty"`
}

// errorInfo carries the error-info parameters defined by RFC6241
// Appendix A errors.
type errorInfo struct {
	BadAttribute string `xml:"bad-attribute,omitempty" json:"bad-attribute,omitempty"`
	BadElement   string `xml:"bad-element,omitempty" json:"bad-element,omitempty"`
	BadNamespace string `xml:"bad-namespace,omitempty" json:"bad-namespace,omitempty"`
	SessionID    string `xml:"session-id,omitempty" json:"session-id,omitempty"`
}

// New returns an Error of the given type and error-tag at error
// severity, modified by any options.
func New(t Type, tag string, opts ...Option) *Error {
	e := &Error{Type: t, Tag: tag}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e Error) Error() string {
	s := fmt.Sprintf("%s error tag:%s", e.Type, e.Tag)
	if e.AppTag != "" {
		s += "app-tag:" + e.AppTag
	}
	if e.Path != "" {
		s += " path:" + e.Path
	}
	if info := e.Info; info != nil {
		if info.BadAttribute != "" {
			s += " bad-attribute:" + info.BadAttribute
		}
		if info.BadElement != "" {
			s += " bad-element:" + info.BadElement
		}
		if info.BadNamespace != "" {
			s += " bad-namespace:" + info.BadNamespace
		}
		if info.SessionID != "" {
			s += " session-id:" + info.SessionID
		}
	}
	if e.Message != "" {
		s += " " + e.Message
	}
	return s
}

// info returns the Error's info parameters, allocating them on first use
func (e *Error) info() *errorInfo {
	if e.Info == nil {
		e.Info = &errorInfo{}
	}
	return e.Info
}

// List is an ordered sequence of Error.
//
// Order is that supplied by the caller, typically detection order; no
// deduplication occurs, as one condition may legitimately yield an
// error per affected node.
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		s := l[0].Error()
		for _, e := range l[1:] {
			s += "; " + e.Error()
		}
		return s
	}
}
