// Package datastore names the configuration datastores a NETCONF
// operation may address. The stores themselves are external
// collaborators; this package only identifies them.
package datastore

// Type identifies a configuration datastore or content source
type Type int

const (
	// Unknown indicates an unrecognized datastore element
	Unknown Type = iota
	// Running is the running configuration datastore
	Running
	// Startup is the distinct startup datastore
	// (:startup capability)
	Startup
	// Candidate is the candidate configuration datastore
	// (:candidate capability)
	Candidate
	// Config is inline configuration content supplied in the request
	Config
	// URL is content addressed by URL (:url capability)
	URL
)

func (t Type) String() string {
	switch t {
	case Running:
		return "running"
	case Startup:
		return "startup"
	case Candidate:
		return "candidate"
	case Config:
		return "config"
	case URL:
		return "url"
	default:
		return "unknown"
	}
}

// FromElement returns the Type named by a datastore element name, as
// found inside a <target> or <source> element.
func FromElement(name string) Type {
	switch name {
	case "running":
		return Running
	case "startup":
		return Startup
	case "candidate":
		return Candidate
	case "config":
		return Config
	case "url":
		return URL
	default:
		return Unknown
	}
}

// RequiredCapability returns the capability URI a session must have
// negotiated to address the datastore, or "" if none is required.
func (t Type) RequiredCapability() string {
	switch t {
	case Startup:
		return "urn:ietf:params:netconf:capability:startup:1.0"
	case Candidate:
		return "urn:ietf:params:netconf:capability:candidate:1.0"
	case URL:
		return "urn:ietf:params:netconf:capability:url:1.0"
	default:
		return ""
	}
}
