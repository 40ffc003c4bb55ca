package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"rtchat/internal/util/memzero"
)

const (
	// envelopeVersion is the current on-disk format of a sealed secret.
	envelopeVersion = 1

	saltBytes = 16
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// sealed file has been modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted credential")
)

// envelope is the on-disk JSON structure holding the ciphertext and KDF parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

type kdfParams struct{ N, R, P int }

// defaultKDF are the scrypt parameters used for new envelopes.
var defaultKDF = kdfParams{N: 1 << 15, R: 8, P: 1}

// seal derives a key from passphrase and encrypts raw into an envelope.
func seal(passphrase string, raw []byte, kdf kdfParams) ([]byte, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// A fresh salt per seal gives a fresh key, so the zero nonce never repeats under one key.
	nonce := make([]byte, chacha20poly1305.NonceSize)
	ct := aead.Seal(nil, nonce, raw, salt)

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Salt:   salt,
		N:      kdf.N,
		R:      kdf.R,
		P:      kdf.P,
		Cipher: ct,
	})
}

// open decrypts an envelope using a key derived from passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("unsupported credential version %d", env.V)
	}

	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	pt, err := aead.Open(nil, nonce, env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
