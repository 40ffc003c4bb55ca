package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rtchat/internal/crypto"
	"rtchat/internal/domain"
)

const (
	// Algorithm is the only signing algorithm label produced or accepted.
	Algorithm = "HS256"
	// Type is the header typ value.
	Type = "JWT"
)

var (
	// ErrCredentialConstruction means the header or claims could not be
	// serialised. A session cannot start without a credential.
	ErrCredentialConstruction = errors.New("token: credential construction failed")
)

// Issue builds a signed token for issuer at time now.
func Issue(issuer string, key []byte, now time.Time) (domain.Token, error) {
	header, err := json.Marshal(domain.Header{Alg: Algorithm, Typ: Type})
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: header: %v", ErrCredentialConstruction, err)
	}
	claims, err := json.Marshal(domain.Claims{IssuedAt: now.Unix(), Issuer: issuer})
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: claims: %v", ErrCredentialConstruction, err)
	}

	tok := domain.Token{Header: string(escapeDots(header)), Claims: string(escapeDots(claims))}
	tok.Signature = crypto.Sign([]byte(tok.SigningInput()), key)
	return tok, nil
}

// escapeDots rewrites '.' as \u002e so a segment never contains the
// separator. Marshalled output only carries dots inside strings, where the
// escape decodes to the same value.
func escapeDots(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("."), []byte(`\u002e`))
}

// Signer issues tokens for one bot identity.
type Signer struct {
	identity domain.BotIdentity
	now      func() time.Time
}

// NewSigner returns a Signer for id. A nil now uses time.Now.
func NewSigner(id domain.BotIdentity, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	if id.Issuer == "" {
		id.Issuer = domain.DefaultIssuer
	}
	return &Signer{identity: id, now: now}
}

// Issue returns a token stamped with the current time.
func (s *Signer) Issue() (domain.Token, error) {
	return Issue(s.identity.Issuer, s.identity.Secret, s.now())
}

// Issuer returns the issuer label tokens are signed with.
func (s *Signer) Issuer() string { return s.identity.Issuer }

// Compile-time assertion that Signer implements domain.TokenIssuer.
var _ domain.TokenIssuer = (*Signer)(nil)
