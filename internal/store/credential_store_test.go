package store_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"rtchat/internal/domain"
	"rtchat/internal/store"
)

func newStore(t *testing.T) *store.CredentialFileStore {
	t.Helper()
	s := store.NewCredentialFileStore(t.TempDir())
	s.UseTestKDF()
	return s
}

func TestCredential_SaveLoad_OK(t *testing.T) {
	var cs domain.CredentialStore = newStore(t)

	if err := cs.SaveSecret("pass", []byte("bot-secret")); err != nil {
		t.Fatalf("save secret: %v", err)
	}
	got, err := cs.LoadSecret("pass")
	if err != nil {
		t.Fatalf("load secret: %v", err)
	}
	if !bytes.Equal(got, []byte("bot-secret")) {
		t.Fatalf("mismatch after load: %q", got)
	}
}

func TestCredential_WrongPassphrase_Fails(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSecret("correct", []byte("bot-secret")); err != nil {
		t.Fatalf("save secret: %v", err)
	}
	if _, err := s.LoadSecret("wrong"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}

func TestCredential_Missing(t *testing.T) {
	if _, err := newStore(t).LoadSecret("pass"); !errors.Is(err, store.ErrNoCredential) {
		t.Fatalf("want ErrNoCredential, got %v", err)
	}
}

func TestCredential_FileModeAndNoPlaintext(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSecret("pass", []byte("bot-secret")); err != nil {
		t.Fatalf("save secret: %v", err)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("want mode 0600, got %v", info.Mode().Perm())
	}
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("bot-secret")) {
		t.Fatal("secret stored in plaintext")
	}
}

func TestCredential_Tampered(t *testing.T) {
	s := newStore(t)
	if err := s.SaveSecret("pass", []byte("bot-secret")); err != nil {
		t.Fatalf("save secret: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte(`{"v":1,"salt":"AAAA","scrypt_N":1024,"scrypt_r":8,"scrypt_p":1,"cipher":"AAAA"}`), 0o600); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := s.LoadSecret("pass"); !errors.Is(err, store.ErrWrongPassphrase) {
		t.Fatalf("want ErrWrongPassphrase, got %v", err)
	}
}
