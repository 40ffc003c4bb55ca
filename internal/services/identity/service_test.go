package identity_test

import (
	"errors"
	"testing"

	"rtchat/internal/services/identity"
)

// memStore keeps the secret in memory, ignoring encryption.
type memStore struct {
	pass   string
	secret []byte
}

func (m *memStore) SaveSecret(passphrase string, secret []byte) error {
	m.pass, m.secret = passphrase, append([]byte(nil), secret...)
	return nil
}

func (m *memStore) LoadSecret(passphrase string) ([]byte, error) {
	if passphrase != m.pass {
		return nil, errors.New("wrong passphrase")
	}
	return m.secret, nil
}

const strong = "Correct-Horse-9"

func TestSeal_RejectsWeakPassphrase(t *testing.T) {
	svc := identity.New(&memStore{})
	for _, p := range []string{"", "short1!A", "alllowercase-123", "NoDigitsHere!!", "NoSymbols12345"} {
		if _, err := svc.Seal(p, []byte("s")); !errors.Is(err, identity.ErrWeakPassphrase) {
			t.Fatalf("passphrase %q: want ErrWeakPassphrase, got %v", p, err)
		}
	}
}

func TestSeal_RejectsEmptySecret(t *testing.T) {
	if _, err := identity.New(&memStore{}).Seal(strong, nil); !errors.Is(err, identity.ErrEmptySecret) {
		t.Fatalf("want ErrEmptySecret, got %v", err)
	}
}

func TestSealAndIdentity(t *testing.T) {
	svc := identity.New(&memStore{})
	fp, err := svc.Seal(strong, []byte("bot-secret"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if fp != identity.Fingerprint([]byte("bot-secret")) {
		t.Fatalf("unexpected fingerprint %q", fp)
	}

	id, err := svc.Identity(strong, "rt-chat-bot")
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if id.Issuer != "rt-chat-bot" || string(id.Secret) != "bot-secret" {
		t.Fatalf("unexpected identity %+v", id)
	}
}
