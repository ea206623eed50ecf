package message

import (
	"encoding/xml"
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/ncforge/ncengine/ncerr"
)

// NewOkReply returns an <ok/> Reply for the given message-id
func NewOkReply(messageID string) *Reply {
	return &Reply{MessageID: messageID, Ok: true}
}

// NewDataReply returns a data Reply for the given message-id
func NewDataReply(messageID string, data *xmlquery.Node) *Reply {
	return &Reply{MessageID: messageID, Data: data}
}

// NewErrorReply returns an error Reply carrying errs in the order
// supplied. errs must be non-empty; duplicates are preserved.
func NewErrorReply(messageID string, errs ...*ncerr.Error) *Reply {
	return &Reply{MessageID: messageID, Errors: ncerr.List(errs)}
}

type rpcEnvelope struct {
	XMLName   xml.Name `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc"`
	MessageID string   `xml:"message-id,attr"`
	Inner     string   `xml:",innerxml"`
}

type helloEnvelope struct {
	XMLName      xml.Name `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 hello"`
	Capabilities []string `xml:"capabilities>capability"`
	SessionID    uint32   `xml:"session-id,omitempty"`
}

type replyEnvelope struct {
	XMLName   xml.Name       `xml:"urn:ietf:params:xml:ns:netconf:base:1.0 rpc-reply"`
	MessageID string         `xml:"message-id,attr,omitempty"`
	Ok        *struct{}      `xml:"ok,omitempty"`
	Data      *dataElement   `xml:"data,omitempty"`
	Errors    []*ncerr.Error `xml:"rpc-error,omitempty"`
}

type dataElement struct {
	Inner string `xml:",innerxml"`
}

// EncodeHello writes a <hello> message declaring the given
// capabilities. A non-zero sessionID is included, as sent by servers;
// clients pass zero.
func EncodeHello(w io.Writer, capabilities []string, sessionID uint32) error {
	return xml.NewEncoder(w).Encode(&helloEnvelope{
		Capabilities: capabilities,
		SessionID:    sessionID,
	})
}

// EncodeRPC writes an <rpc> request carrying the operation element(s)
// given verbatim as the request body.
func EncodeRPC(w io.Writer, messageID string, operation []byte) error {
	return xml.NewEncoder(w).Encode(&rpcEnvelope{
		MessageID: messageID,
		Inner:     string(operation),
	})
}

// Encode writes the Reply as an <rpc-reply> document. The reply's
// kind follows the Kind precedence: errors, then data, then ok.
func (r *Reply) Encode(w io.Writer) error {
	env := &replyEnvelope{MessageID: r.MessageID}
	switch r.Kind() {
	case ReplyError:
		env.Errors = r.Errors
	case ReplyData:
		env.Data = &dataElement{Inner: innerXML(r.Data)}
	case ReplyOk:
		env.Ok = &struct{}{}
	}
	return xml.NewEncoder(w).Encode(env)
}

func innerXML(n *xmlquery.Node) (s string) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		s += child.OutputXML(true)
	}
	return s
}
