// Package edit resolves <edit-config> request semantics.
//
// An edit-config request combines a default operation, an error
// option, a test option and per-node operation attributes scattered
// through the supplied configuration tree. Resolve flattens these
// into a Plan: an ordered list of (path, operation) steps plus the
// resolved options, to be executed against a datastore. The resolver
// validates and flattens only; it never touches a datastore itself.
package edit

// Op is a per-node edit operation
type Op int

const (
	// OpUnset indicates no operation attribute on the node
	OpUnset Op = iota
	// OpMerge merges the node's content with the target
	OpMerge
	// OpReplace replaces the target node entirely
	OpReplace
	// OpCreate creates the node; an existing node is an error
	OpCreate
	// OpDelete deletes the node; an absent node is an error
	OpDelete
	// OpRemove removes the node; an absent node is a no-op.
	// Remove and Delete differ only in their treatment of absence.
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpMerge:
		return "merge"
	case OpReplace:
		return "replace"
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpRemove:
		return "remove"
	default:
		return "unset"
	}
}

// ParseOp returns the Op named by an operation attribute value
func ParseOp(s string) (Op, bool) {
	switch s {
	case "merge":
		return OpMerge, true
	case "replace":
		return OpReplace, true
	case "create":
		return OpCreate, true
	case "delete":
		return OpDelete, true
	case "remove":
		return OpRemove, true
	}
	return OpUnset, false
}

// DefaultOp is the request's default-operation
type DefaultOp int

const (
	// DefaultUnset indicates no <default-operation> element;
	// resolution falls back to merge
	DefaultUnset DefaultOp = iota
	// DefaultMerge merges unmarked nodes
	DefaultMerge
	// DefaultReplace replaces unmarked nodes
	DefaultReplace
	// DefaultNone applies no operation to unmarked nodes; they only
	// position marked descendants
	DefaultNone
)

func (o DefaultOp) String() string {
	switch o {
	case DefaultMerge:
		return "merge"
	case DefaultReplace:
		return "replace"
	case DefaultNone:
		return "none"
	default:
		return "unset"
	}
}

// ParseDefaultOp returns the DefaultOp named by a <default-operation>
// element value
func ParseDefaultOp(s string) (DefaultOp, bool) {
	switch s {
	case "merge":
		return DefaultMerge, true
	case "replace":
		return DefaultReplace, true
	case "none":
		return DefaultNone, true
	}
	return DefaultUnset, false
}

// ErrorOption governs executor reaction to a per-node failure
type ErrorOption int

const (
	// ErrorOptionUnset falls back to stop-on-error
	ErrorOptionUnset ErrorOption = iota
	// ErrorOptionStop aborts at the first failing step
	ErrorOptionStop
	// ErrorOptionContinue applies all remaining steps, then reports
	// the accumulated errors
	ErrorOptionContinue
	// ErrorOptionRollback reverts the whole transaction on any
	// failure; requires datastore transaction support
	ErrorOptionRollback
)

func (o ErrorOption) String() string {
	switch o {
	case ErrorOptionStop:
		return "stop-on-error"
	case ErrorOptionContinue:
		return "continue-on-error"
	case ErrorOptionRollback:
		return "rollback-on-error"
	default:
		return "unset"
	}
}

// ParseErrorOption returns the ErrorOption named by an <error-option>
// element value
func ParseErrorOption(s string) (ErrorOption, bool) {
	switch s {
	case "stop-on-error":
		return ErrorOptionStop, true
	case "continue-on-error":
		return ErrorOptionContinue, true
	case "rollback-on-error":
		return ErrorOptionRollback, true
	}
	return ErrorOptionUnset, false
}

// TestOption governs validation before application
type TestOption int

const (
	// TestOptionUnset falls back to test-then-set
	TestOptionUnset TestOption = iota
	// TestOptionTestThenSet validates, then applies only if valid
	TestOptionTestThenSet
	// TestOptionSet applies without prior validation
	TestOptionSet
	// TestOptionTestOnly validates and reports, never applies
	TestOptionTestOnly
)

func (o TestOption) String() string {
	switch o {
	case TestOptionTestThenSet:
		return "test-then-set"
	case TestOptionSet:
		return "set"
	case TestOptionTestOnly:
		return "test-only"
	default:
		return "unset"
	}
}

// ParseTestOption returns the TestOption named by a <test-option>
// element value
func ParseTestOption(s string) (TestOption, bool) {
	switch s {
	case "test-then-set":
		return TestOptionTestThenSet, true
	case "set":
		return TestOptionSet, true
	case "test-only":
		return TestOptionTestOnly, true
	}
	return TestOptionUnset, false
}
