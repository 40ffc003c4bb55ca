// Package store provides file-based persistence for the bot credential.
//
// CredentialFileStore keeps the bot's shared secret sealed under a
// passphrase: an scrypt-derived key and ChaCha20-Poly1305 protect a small,
// versioned JSON blob. Writes go through a temp file and rename so a crash
// never leaves a half-written credential behind. All methods are
// concurrency-safe via internal locking.
package store
