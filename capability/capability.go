// Package capability implements NETCONF capability sets.
//
// A capability set is built once, from the capability URIs exchanged
// in a <hello> message, and never mutated; a new negotiation produces
// a new set. Structured attributes carried in URI query parameters
// (currently the with-defaults mode) are extracted at parse time via a
// declarative table, so new attribute-bearing capabilities can be
// added without touching any session logic.
package capability

import (
	"net/url"
	"strings"
)

// Well known NETCONF capability URIs.
const (
	Base10          = "urn:ietf:params:netconf:base:1.0"
	Base11          = "urn:ietf:params:netconf:base:1.1"
	Candidate       = "urn:ietf:params:netconf:capability:candidate:1.0"
	ConfirmedCommit = "urn:ietf:params:netconf:capability:confirmed-commit:1.0"
	Interleave      = "urn:ietf:params:netconf:capability:interleave:1.0"
	Notification    = "urn:ietf:params:netconf:capability:notification:1.0"
	RollbackOnError = "urn:ietf:params:netconf:capability:rollback-on-error:1.0"
	Startup         = "urn:ietf:params:netconf:capability:startup:1.0"
	URL             = "urn:ietf:params:netconf:capability:url:1.0"
	Validate        = "urn:ietf:params:netconf:capability:validate:1.0"
	WithDefaults    = "urn:ietf:params:netconf:capability:with-defaults:1.0"
	WritableRunning = "urn:ietf:params:netconf:capability:writable-running:1.0"
)

// WithDefaultsMode is the negotiated with-defaults basic mode
type WithDefaultsMode int

const (
	// WithDefaultsUnset indicates no with-defaults mode was declared
	WithDefaultsUnset WithDefaultsMode = iota
	// WithDefaultsReportAll reports all default data
	WithDefaultsReportAll
	// WithDefaultsTrim trims default-valued data from reports
	WithDefaultsTrim
	// WithDefaultsExplicit reports only explicitly set data
	WithDefaultsExplicit
	// WithDefaultsReportAllTagged reports all data, tagging defaults
	WithDefaultsReportAllTagged
)

func (m WithDefaultsMode) String() string {
	switch m {
	case WithDefaultsReportAll:
		return "report-all"
	case WithDefaultsTrim:
		return "trim"
	case WithDefaultsExplicit:
		return "explicit"
	case WithDefaultsReportAllTagged:
		return "report-all-tagged"
	default:
		return "unset"
	}
}

// Attributes are the structured values extracted from capability URI
// query parameters.
type Attributes struct {
	// WithDefaults is the peer's declared with-defaults basic-mode
	WithDefaults WithDefaultsMode
}

// Set is an immutable set of capability URIs plus the attributes
// extracted from them. URI uniqueness is by exact string.
type Set struct {
	uris  []string
	index map[string]struct{}
	attrs Attributes
}

// attribute extractors, keyed by the capability's base URI (the URI
// with any query string removed)
var extractors = map[string]func(query url.Values, attrs *Attributes){
	WithDefaults: func(query url.Values, attrs *Attributes) {
		switch query.Get("basic-mode") {
		case "report-all":
			attrs.WithDefaults = WithDefaultsReportAll
		case "trim":
			attrs.WithDefaults = WithDefaultsTrim
		case "explicit":
			attrs.WithDefaults = WithDefaultsExplicit
		case "report-all-tagged":
			attrs.WithDefaults = WithDefaultsReportAllTagged
		}
	},
}

// Parse returns the Set of the given capability URIs.
//
// Duplicate URIs are dropped, attributes are extracted from
// recognized URIs and unrecognized URIs are preserved verbatim so the
// set round-trips into an outgoing <hello>.
func Parse(uris []string) Set {
	s := Set{index: map[string]struct{}{}}
	for _, uri := range uris {
		uri = strings.TrimSpace(uri)
		if uri == "" {
			continue
		}
		if _, dup := s.index[uri]; dup {
			continue
		}
		s.index[uri] = struct{}{}
		s.uris = append(s.uris, uri)

		base, query := splitQuery(uri)
		if extract, ok := extractors[base]; ok {
			extract(query, &s.attrs)
		}
	}
	return s
}

// Intersect returns the effective capability set of a session: the
// exact-URI intersection of the local and peer sets.
//
// Where both sides declare a value for the same attribute (e.g. a
// with-defaults basic-mode) and disagree, the local declaration wins.
// The protocol does not resolve conflicting declarations; local
// precedence is this implementation's documented policy.
func Intersect(local, peer Set) Set {
	var common []string
	for _, uri := range local.uris {
		if _, ok := peer.index[uri]; ok {
			common = append(common, uri)
		}
	}
	effective := Parse(common)
	if local.attrs.WithDefaults != WithDefaultsUnset {
		effective.attrs.WithDefaults = local.attrs.WithDefaults
	} else if peer.attrs.WithDefaults != WithDefaultsUnset {
		effective.attrs.WithDefaults = peer.attrs.WithDefaults
	}
	return effective
}

// Has returns true if uri is in the set. Any query string on uri is
// ignored for comparison.
func (s Set) Has(uri string) bool {
	uri = strings.SplitAfterN(uri, "?", 2)[0]
	uri = strings.TrimSuffix(uri, "?")
	for _, cap := range s.uris {
		base, _ := splitQuery(cap)
		if uri == cap || uri == base {
			return true
		}
	}
	return false
}

// HasBase returns true if either base protocol capability is in the set
func (s Set) HasBase() bool { return s.Has(Base10) || s.Has(Base11) }

// URIs returns the set's capability URIs in insertion order
func (s Set) URIs() []string {
	uris := make([]string, len(s.uris))
	copy(uris, s.uris)
	return uris
}

// Attributes returns the structured attributes extracted from the set
func (s Set) Attributes() Attributes { return s.attrs }

// Len returns the number of capability URIs in the set
func (s Set) Len() int { return len(s.uris) }

func splitQuery(uri string) (base string, query url.Values) {
	parts := strings.SplitN(uri, "?", 2)
	if base = parts[0]; len(parts) == 2 {
		// a malformed query string yields no attributes
		query, _ = url.ParseQuery(parts[1])
	}
	return base, query
}
