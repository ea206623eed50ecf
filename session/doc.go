// Package session implements NETCONF session management.
//
// A session's legal message flow is governed by Machine, a pure state
// machine moving through Startup, Working, Closing and the terminal
// Closed and Error states, recording an RFC6470 termination reason on
// the way out. Session drives a Machine over a transport.Stream: it
// performs the bidirectional <hello> exchange and capability
// negotiation, then receives, classifies and validates messages one
// at a time. Server is a Handler dispatching a server session's
// operations to a Datastore collaborator, applying capability gating
// and access control before each operation.
package session
