// Package identity manages the bot's signing secret.
//
// It enforces the passphrase policy, seals the secret through a
// domain.CredentialStore and renders short fingerprints so operators can
// check which secret a bot runs with without printing it.
package identity
