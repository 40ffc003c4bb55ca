// Package crypto exposes the minimal primitives used by rtchat.
//
// Contents
//
//   - HMAC-SHA256 keyed hashing rendered as lowercase hex (Sign, Verify)
//   - Short secret fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Sign is a pure function: the same message and key always yield the same
// 64-character digest. Verify compares in constant time and is what the
// development relay uses to check a bot's token.
package crypto
