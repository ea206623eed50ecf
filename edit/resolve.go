package edit

import (
	"github.com/antchfx/xmlquery"

	"github.com/ncforge/ncengine/datastore"
	"github.com/ncforge/ncengine/ncerr"
)

// Request is a parsed <edit-config> request
type Request struct {
	// Target is the datastore to edit
	Target datastore.Type
	// Config is the inline <config> element; mutually exclusive
	// with URL
	Config *xmlquery.Node
	// URL is the remote content source (:url capability);
	// mutually exclusive with Config
	URL string

	DefaultOp   DefaultOp
	ErrorOption ErrorOption
	TestOption  TestOption
}

// Step is one flattened edit operation
type Step struct {
	// Path is the slash-separated element path of the node relative
	// to the <config> root
	Path string
	// Op is the resolved operation: the node's explicit operation
	// attribute, or the request's effective default operation
	Op Op
	// Explicit is true if the node carried its own operation
	// attribute
	Explicit bool
	// Node is the edit content node
	Node *xmlquery.Node
}

// Plan is the executable form of an edit-config request, handed to
// the datastore collaborator. Steps appear in document order.
type Plan struct {
	Target datastore.Type
	// URL is set instead of Steps when the content source is remote
	URL   string
	Steps []Step

	ErrorOption ErrorOption
	TestOption  TestOption
}

// Resolve validates req and flattens it into a Plan.
//
// Resolution is pure: identical requests yield structurally identical
// plans. Rules, in order: exactly one content source must be present;
// an unset default-operation means merge; each content node inherits
// the effective default operation unless overridden by its own
// operation attribute, which claims the node's whole subtree; an
// unset error-option means stop-on-error and an unset test-option
// means test-then-set.
func Resolve(req *Request) (*Plan, *ncerr.Error) {
	if req.Config != nil && req.URL != "" {
		return nil, ncerr.OperationFailed(
			ncerr.WithMessage("ambiguous edit-config source: both <config> and <url> present"))
	}
	if req.Config == nil && req.URL == "" {
		return nil, ncerr.MissingElement("config",
			ncerr.WithMessage("edit-config requires a <config> or <url> content source"))
	}

	plan := &Plan{
		Target:      req.Target,
		URL:         req.URL,
		ErrorOption: req.ErrorOption,
		TestOption:  req.TestOption,
	}
	if plan.ErrorOption == ErrorOptionUnset {
		plan.ErrorOption = ErrorOptionStop
	}
	if plan.TestOption == TestOptionUnset {
		plan.TestOption = TestOptionTestThenSet
	}

	defop := effectiveDefault(req.DefaultOp)
	if req.Config != nil {
		for child := firstElementChild(req.Config); child != nil; child = nextElementSibling(child) {
			if err := resolveNode(plan, child, "", defop); err != nil {
				return nil, err
			}
		}
	}
	return plan, nil
}

func effectiveDefault(o DefaultOp) Op {
	switch o {
	case DefaultReplace:
		return OpReplace
	case DefaultNone:
		return OpUnset
	default:
		return OpMerge
	}
}

// resolveNode walks one content node. A node carrying an explicit
// operation attribute becomes a step claiming its whole subtree; the
// walk descends no further. Interior nodes without an attribute are
// descended through, and leaves take the inherited operation (none at
// all under default-operation "none").
func resolveNode(plan *Plan, n *xmlquery.Node, parentPath string, inherited Op) *ncerr.Error {
	path := parentPath + "/" + n.Data

	if attr := n.SelectAttr("operation"); attr != "" {
		op, ok := ParseOp(attr)
		if !ok {
			return ncerr.BadAttribute("operation", n.Data,
				ncerr.WithPath(path),
				ncerr.WithMessage("unknown operation value "+attr))
		}
		plan.Steps = append(plan.Steps, Step{Path: path, Op: op, Explicit: true, Node: n})
		return nil
	}

	if first := firstElementChild(n); first != nil {
		for child := first; child != nil; child = nextElementSibling(child) {
			if err := resolveNode(plan, child, path, inherited); err != nil {
				return err
			}
		}
		return nil
	}

	// a leaf without an explicit operation takes the default; under
	// default-operation "none" it contributes nothing
	if inherited != OpUnset {
		plan.Steps = append(plan.Steps, Step{Path: path, Op: inherited, Node: n})
	}
	return nil
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
