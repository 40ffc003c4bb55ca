// Package main runs a development Socket.IO relay for exercising rtchat bots
// locally.
//
// Endpoint
//
//	GET /socket.io/?EIO=4&transport=websocket
//	    Engine.IO v4 websocket upgrade. Polling transports are refused.
//
// Events
//
//	authenticate {"token": "..."}
//	    Verified against --secret. Success emits authenticated {"iss": ...};
//	    failure emits error {"message": "authentication failed"}.
//
//	message {"text": "..."}
//	    From an authenticated bot: printed to stdout. Before authentication
//	    the relay answers with error {"message": "not authenticated"}.
//
// Each line read from stdin is broadcast as message {"text": line} to every
// authenticated bot. State lives in memory only. The default listen address
// is :8080.
package main
