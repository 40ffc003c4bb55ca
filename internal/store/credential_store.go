package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rtchat/internal/domain"
)

// CredentialFile is the name of the sealed secret inside the home directory.
const CredentialFile = "credential.json.enc"

// ErrNoCredential means no sealed secret has been written yet.
var ErrNoCredential = errors.New("no sealed credential; run init first")

// CredentialFileStore persists the bot secret under dir.
type CredentialFileStore struct {
	dir string
	kdf kdfParams
	mu  sync.Mutex
}

// NewCredentialFileStore returns a CredentialFileStore rooted at dir.
func NewCredentialFileStore(dir string) *CredentialFileStore {
	return &CredentialFileStore{dir: dir, kdf: defaultKDF}
}

// Path returns the file the sealed secret lives in.
func (s *CredentialFileStore) Path() string {
	return filepath.Join(s.dir, CredentialFile)
}

// SaveSecret seals secret under passphrase and writes it with mode 0600.
func (s *CredentialFileStore) SaveSecret(passphrase string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := seal(passphrase, secret, s.kdf)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(s.Path(), blob, 0o600)
}

// LoadSecret reads and opens the sealed secret.
func (s *CredentialFileStore) LoadSecret(passphrase string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, err
	}
	return open(passphrase, blob)
}

// Compile-time assertion that CredentialFileStore implements domain.CredentialStore.
var _ domain.CredentialStore = (*CredentialFileStore)(nil)
