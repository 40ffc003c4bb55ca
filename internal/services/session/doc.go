// Package session drives the authenticated session lifecycle.
//
// A Service owns exactly one session with one server:
//
//	Disconnected --Start--> Connecting --connect--> AwaitingAuth --authenticated--> Authenticated
//	                              \                      /
//	                               `------ error -------'--> Errored
//
// On every transport "connect" a fresh token is issued and sent in a single
// "authenticate" event before anything else. The message dispatcher is
// attached the first time the server answers "authenticated"; later
// "authenticated" events (after a reconnect) never register it again.
// Errored is terminal: no further events are emitted by the session and the
// caller must build a new Service to retry.
package session
