package identity

import (
	"errors"
	"fmt"
	"unicode"

	"rtchat/internal/crypto"
	"rtchat/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrEmptySecret is returned when asked to seal an empty secret.
	ErrEmptySecret = errors.New("bot secret must not be empty")
)

// Service seals and loads the bot secret using a backing store.
type Service struct {
	store domain.CredentialStore
}

// New returns an identity service backed by the given store.
func New(s domain.CredentialStore) *Service { return &Service{store: s} }

// Seal stores secret encrypted under passphrase and returns its fingerprint.
func (s *Service) Seal(passphrase string, secret []byte) (domain.Fingerprint, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if !isSecurePassphrase(passphrase) {
		return "", ErrWeakPassphrase
	}
	if err := s.store.SaveSecret(passphrase, secret); err != nil {
		return "", err
	}
	return Fingerprint(secret), nil
}

// Load decrypts and returns the bot secret.
func (s *Service) Load(passphrase string) ([]byte, error) {
	return s.store.LoadSecret(passphrase)
}

// Identity loads the secret and pairs it with issuer.
func (s *Service) Identity(passphrase, issuer string) (domain.BotIdentity, error) {
	secret, err := s.Load(passphrase)
	if err != nil {
		return domain.BotIdentity{}, err
	}
	return domain.BotIdentity{Issuer: issuer, Secret: secret}, nil
}

// Fingerprint returns a short display-safe fingerprint of secret.
func Fingerprint(secret []byte) domain.Fingerprint {
	return domain.Fingerprint(crypto.Fingerprint(secret))
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
