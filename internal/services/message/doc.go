// Package message routes inbound chat messages to a reply generator and
// emits the answers.
//
// The dispatcher is passive until the session attaches it after the server
// confirms authentication; only then is the "message" listener registered on
// the transport. Payloads that are not JSON objects are dropped without a
// reply, and nothing a payload contains can make the handler panic back into
// the transport.
package message
