// Package token issues and verifies the bot's self-signed credential.
//
// A token has three dot-joined segments:
//
//	<header-json>.<claims-json>.<hex-signature>
//
// The header is always {"alg":"HS256","typ":"JWT"} and the claims carry the
// issuer label and the issue time in whole seconds. Unlike a standard JWT the
// first two segments are the raw JSON text, not base64url; the signature is
// the lowercase hex HMAC-SHA256 of "<header-json>.<claims-json>" under the
// bot secret.
//
// Issue builds a fresh token for each handshake attempt. Verify is the
// server-side check used by the development relay.
package token
