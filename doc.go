/*
Package ncengine is a NETCONF (RFC6241) protocol engine.

The engine governs the message exchanges of a NETCONF management
session without owning the transport: capability negotiation during
the <hello> exchange, per-state legality of <rpc>, <rpc-reply> and
<notification> messages, classification of RPC operations, resolution
of <edit-config> semantics into an executable plan, and structured
rpc-error construction.

Transports, XML schema validation and datastore storage are
collaborators reached through interfaces; the engine's core functions
are synchronous and operate on explicit session state supplied by the
caller.

Sub-package overview:

	message     typed message model and classification
	capability  capability URI sets, parsing and intersection
	ncerr       structured rpc-error records
	rpc         operation classification and request parsing
	datastore   datastore targets and capability requirements
	edit        edit-config semantics resolution
	session     session state machine and session driver
	lifecycle   process-wide subsystem initialization
	nclog       verbosity control
	config      TOML engine configuration
	transport   message stream collaborator interface
*/
package ncengine
