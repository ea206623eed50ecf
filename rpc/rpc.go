// Package rpc classifies NETCONF <rpc> operations.
//
// Classification maps the operation element name to an operation
// identifier and a coarse category used for policy decisions (e.g. by
// an access control collaborator). It is total: unrecognized names
// classify as OpUnknown rather than failing, and the caller answers
// those with an operation-not-supported error while the session keeps
// working.
package rpc

import (
	"github.com/antchfx/xmlquery"
)

// Op identifies a NETCONF protocol operation
type Op int

const (
	// OpUnknown is an unrecognized operation
	OpUnknown Op = iota
	// OpGetConfig is <get-config>
	OpGetConfig
	// OpGet is <get>
	OpGet
	// OpEditConfig is <edit-config>
	OpEditConfig
	// OpCloseSession is <close-session>
	OpCloseSession
	// OpKillSession is <kill-session>
	OpKillSession
	// OpCopyConfig is <copy-config>
	OpCopyConfig
	// OpDeleteConfig is <delete-config>
	OpDeleteConfig
	// OpLock is <lock>
	OpLock
	// OpUnlock is <unlock>
	OpUnlock
	// OpCommit is <commit> (:candidate capability)
	OpCommit
	// OpDiscardChanges is <discard-changes> (:candidate capability)
	OpDiscardChanges
	// OpCreateSubscription is <create-subscription> (RFC5277)
	OpCreateSubscription
	// OpGetSchema is <get-schema> (RFC6022)
	OpGetSchema
)

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Category is the coarse policy category of an operation
type Category int

const (
	// CategoryUnknown categorizes unrecognized operations
	CategoryUnknown Category = iota
	// CategoryDatastoreRead covers operations reading a datastore
	CategoryDatastoreRead
	// CategoryDatastoreWrite covers operations modifying a datastore
	CategoryDatastoreWrite
	// CategorySession covers operations affecting session state
	CategorySession
)

func (c Category) String() string {
	switch c {
	case CategoryDatastoreRead:
		return "datastore-read"
	case CategoryDatastoreWrite:
		return "datastore-write"
	case CategorySession:
		return "session"
	default:
		return "unknown"
	}
}

var opNames = map[Op]string{
	OpGetConfig:          "get-config",
	OpGet:                "get",
	OpEditConfig:         "edit-config",
	OpCloseSession:       "close-session",
	OpKillSession:        "kill-session",
	OpCopyConfig:         "copy-config",
	OpDeleteConfig:       "delete-config",
	OpLock:               "lock",
	OpUnlock:             "unlock",
	OpCommit:             "commit",
	OpDiscardChanges:     "discard-changes",
	OpCreateSubscription: "create-subscription",
	OpGetSchema:          "get-schema",
}

var opTable = map[string]Op{}

func init() {
	for op, name := range opNames {
		opTable[name] = op
	}
}

var categories = map[Op]Category{
	OpGet:       CategoryDatastoreRead,
	OpGetConfig: CategoryDatastoreRead,
	OpGetSchema: CategoryDatastoreRead,

	OpEditConfig:     CategoryDatastoreWrite,
	OpCopyConfig:     CategoryDatastoreWrite,
	OpDeleteConfig:   CategoryDatastoreWrite,
	OpCommit:         CategoryDatastoreWrite,
	OpDiscardChanges: CategoryDatastoreWrite,

	OpCloseSession:       CategorySession,
	OpKillSession:        CategorySession,
	OpLock:               CategorySession,
	OpUnlock:             CategorySession,
	OpCreateSubscription: CategorySession,
}

// Category returns the operation's coarse category
func (o Op) Category() Category { return categories[o] }

// Classify maps an <rpc> operation element to its operation
// identifier and category. A nil body or unrecognized element name
// yields (OpUnknown, CategoryUnknown); Classify never fails.
func Classify(body *xmlquery.Node) (Op, Category) {
	if body == nil || body.Type != xmlquery.ElementNode {
		return OpUnknown, CategoryUnknown
	}
	op := opTable[body.Data]
	return op, op.Category()
}
