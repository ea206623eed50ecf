package rpc

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/ncforge/ncengine/datastore"
	"github.com/ncforge/ncengine/edit"
	"github.com/ncforge/ncengine/ncerr"
)

// FilterType is the NETCONF filter type
type FilterType int

const (
	// FilterUnknown is an unsupported filter type (e.g. xpath when
	// not negotiated)
	FilterUnknown FilterType = iota
	// FilterSubtree is a subtree filter
	FilterSubtree
)

func (t FilterType) String() string {
	if t == FilterSubtree {
		return "subtree"
	}
	return "unknown"
}

// Filter is a read-operation filter. Subtree filter content is
// carried verbatim.
type Filter struct {
	Type    FilterType
	Content *xmlquery.Node
}

// Request is a parsed <rpc> operation with its operation-specific
// parameters extracted.
type Request struct {
	Op       Op
	Category Category

	// Source is the source datastore of get-config/copy-config
	Source datastore.Type
	// SourceURL is set when the source is a url element
	SourceURL string
	// SourceConfig is inline copy-config source content
	SourceConfig *xmlquery.Node
	// Target is the target datastore of write and locking operations
	Target datastore.Type
	// TargetURL is set when the target is a url element
	TargetURL string

	// Filter is the read filter, if present
	Filter *Filter
	// Edit carries the edit-config request for OpEditConfig
	Edit *edit.Request

	// KillSessionID is the victim session of OpKillSession
	KillSessionID uint32
	// Stream is the notification stream of OpCreateSubscription
	Stream string
	// SchemaIdentifier is the schema requested by OpGetSchema
	SchemaIdentifier string
}

// ParseRequest classifies body and extracts the operation's
// parameters. An unrecognized operation yields a Request with
// OpUnknown and a nil error; the caller replies
// operation-not-supported. A recognized operation with malformed
// parameters yields the structured error to send in reply.
func ParseRequest(body *xmlquery.Node) (*Request, *ncerr.Error) {
	req := &Request{}
	req.Op, req.Category = Classify(body)

	switch req.Op {
	case OpUnknown, OpCloseSession, OpCommit, OpDiscardChanges:
		return req, nil

	case OpGet:
		return req, parseFilter(body, req)

	case OpGetConfig:
		if err := parseSource(body, req, false); err != nil {
			return req, err
		}
		return req, parseFilter(body, req)

	case OpEditConfig:
		return req, parseEditConfig(body, req)

	case OpCopyConfig:
		if err := parseTarget(body, req); err != nil {
			return req, err
		}
		return req, parseSource(body, req, true)

	case OpDeleteConfig, OpLock, OpUnlock:
		return req, parseTarget(body, req)

	case OpKillSession:
		sid := childText(body, "session-id")
		if sid == "" {
			return req, ncerr.MissingElement("session-id")
		}
		v, err := strconv.ParseUint(sid, 10, 32)
		if err != nil || v == 0 {
			return req, ncerr.InvalidValue(ncerr.WithMessage("invalid kill-session session-id"),
				ncerr.WithBadElement("session-id"))
		}
		req.KillSessionID = uint32(v)
		return req, nil

	case OpCreateSubscription:
		req.Stream = childText(body, "stream")
		return req, parseFilter(body, req)

	case OpGetSchema:
		if req.SchemaIdentifier = childText(body, "identifier"); req.SchemaIdentifier == "" {
			return req, ncerr.MissingElement("identifier")
		}
		return req, nil
	}
	return req, nil
}

func parseEditConfig(body *xmlquery.Node, req *Request) *ncerr.Error {
	if err := parseTarget(body, req); err != nil {
		return err
	}
	ed := &edit.Request{Target: req.Target}
	req.Edit = ed

	if v := childText(body, "default-operation"); v != "" {
		op, ok := edit.ParseDefaultOp(v)
		if !ok {
			return ncerr.BadElement("default-operation",
				ncerr.WithMessage("unknown default-operation value "+v))
		}
		ed.DefaultOp = op
	}
	if v := childText(body, "error-option"); v != "" {
		opt, ok := edit.ParseErrorOption(v)
		if !ok {
			return ncerr.BadElement("error-option",
				ncerr.WithMessage("unknown error-option value "+v))
		}
		ed.ErrorOption = opt
	}
	if v := childText(body, "test-option"); v != "" {
		opt, ok := edit.ParseTestOption(v)
		if !ok {
			return ncerr.BadElement("test-option",
				ncerr.WithMessage("unknown test-option value "+v))
		}
		ed.TestOption = opt
	}

	ed.Config = childElement(body, "config")
	ed.URL = childText(body, "url")
	return nil
}

// parseSource extracts the <source> element. allowConfig permits the
// inline <config> source form used by copy-config.
func parseSource(body *xmlquery.Node, req *Request, allowConfig bool) *ncerr.Error {
	src := childElement(body, "source")
	if src == nil {
		return ncerr.MissingElement("source")
	}
	name := firstElementChild(src)
	if name == nil {
		return ncerr.BadElement("source", ncerr.WithMessage("empty <source> element"))
	}
	switch req.Source = datastore.FromElement(name.Data); req.Source {
	case datastore.URL:
		req.SourceURL = strings.TrimSpace(name.InnerText())
	case datastore.Config:
		if !allowConfig {
			return ncerr.BadElement("config",
				ncerr.WithMessage("inline config is not a valid source here"))
		}
		req.SourceConfig = name
	case datastore.Unknown:
		return ncerr.UnknownElement(name.Data, ncerr.WithMessage("unknown source datastore"))
	}
	return nil
}

func parseTarget(body *xmlquery.Node, req *Request) *ncerr.Error {
	tgt := childElement(body, "target")
	if tgt == nil {
		return ncerr.MissingElement("target")
	}
	name := firstElementChild(tgt)
	if name == nil {
		return ncerr.BadElement("target", ncerr.WithMessage("empty <target> element"))
	}
	switch req.Target = datastore.FromElement(name.Data); req.Target {
	case datastore.URL:
		req.TargetURL = strings.TrimSpace(name.InnerText())
	case datastore.Config, datastore.Unknown:
		return ncerr.UnknownElement(name.Data, ncerr.WithMessage("unknown target datastore"))
	}
	return nil
}

func parseFilter(body *xmlquery.Node, req *Request) *ncerr.Error {
	f := childElement(body, "filter")
	if f == nil {
		return nil
	}
	switch typ := f.SelectAttr("type"); typ {
	case "", "subtree":
		req.Filter = &Filter{Type: FilterSubtree, Content: f}
	default:
		// an unsupported filter type is carried, not rejected; the
		// caller decides based on negotiated capabilities
		req.Filter = &Filter{Type: FilterUnknown, Content: f}
	}
	return nil
}

func childElement(n *xmlquery.Node, name string) *xmlquery.Node {
	for child := firstElementChild(n); child != nil; child = nextElementSibling(child) {
		if child.Data == name {
			return child
		}
	}
	return nil
}

func childText(n *xmlquery.Node, name string) string {
	if child := childElement(n, name); child != nil {
		return strings.TrimSpace(child.InnerText())
	}
	return ""
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
