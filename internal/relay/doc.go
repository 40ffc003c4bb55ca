// Package relay provides the real-time event transport used by rtchat and a
// development server that speaks the same protocol.
//
// The wire format is Engine.IO v4 / Socket.IO v5 text framing over a single
// WebSocket on the default namespace. Only the packets the bot needs are
// implemented:
//
//	0{...}          Engine.IO open (server -> client, carries ping timing)
//	1               Engine.IO close
//	2 / 3           Engine.IO ping / pong
//	40 / 40{...}    namespace connect request / acknowledgement
//	41              namespace disconnect
//	42["ev",data]   event
//	44{...}         namespace connect error
//
// Client implements domain.Transport. Handlers registered with On run one at a
// time on the client's read loop, so callbacks never race each other. The
// reserved events "connect", "connect_error" and "disconnect" are raised by the
// client itself.
//
// Server is an in-memory relay intended for local use and tests. It checks
// the token carried by the "authenticate" event with token.Verifier and then
// forwards "message" events between the operator and the bot.
package relay
