/*
Package message implements the NETCONF message model.

A NETCONF peer exchanges four kinds of message: <hello>, <rpc>,
<rpc-reply> and <notification>. Classify inspects a parsed XML tree
and tags it as one of these kinds, extracting the kind-specific
payload: capability list and session-id for hello, message-id and
operation body for rpc, and the ok/data/rpc-error content of a reply.

Classification is structural only. It does not judge whether the
message is legal in the session's current state (the session state
machine's job) nor whether an rpc's operation is supported (the rpc
classifier's job). A malformed <hello> is reported distinctly from a
generic parse failure, because a bad hello terminates the session with
its own reason while other malformed messages are survivable.
*/
package message
