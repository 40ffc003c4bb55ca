package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"rtchat/internal/crypto"
	"rtchat/internal/domain"
)

var (
	// ErrMalformedToken means the token is not header.claims.signature.
	ErrMalformedToken = errors.New("token: malformed")
	// ErrBadSignature means the signature does not match the secret.
	ErrBadSignature = errors.New("token: signature mismatch")
	// ErrStaleToken means iat is outside the accepted clock skew.
	ErrStaleToken = errors.New("token: issued-at outside allowed skew")
	// ErrUnknownIssuer means iss is not in the verifier's allowlist.
	ErrUnknownIssuer = errors.New("token: unknown issuer")
)

// Verifier checks tokens presented by bots.
type Verifier struct {
	Key     []byte
	MaxSkew time.Duration // zero disables the iat check
	Issuers []string      // empty accepts any non-empty issuer
	Now     func() time.Time
}

// Parse splits a wire token into its segments.
//
// The header is located by decoding the first JSON object, so a dot inside
// a claim value does not shift the split.
func Parse(raw string) (domain.Token, error) {
	sep := strings.LastIndexByte(raw, '.')
	if sep <= 0 || sep == len(raw)-1 {
		return domain.Token{}, ErrMalformedToken
	}
	input, sig := raw[:sep], raw[sep+1:]

	dec := json.NewDecoder(strings.NewReader(input))
	var header json.RawMessage
	if err := dec.Decode(&header); err != nil {
		return domain.Token{}, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	off := int(dec.InputOffset())
	if off >= len(input) || input[off] != '.' {
		return domain.Token{}, fmt.Errorf("%w: missing claims", ErrMalformedToken)
	}
	claims := input[off+1:]
	if claims == "" {
		return domain.Token{}, fmt.Errorf("%w: empty claims", ErrMalformedToken)
	}
	return domain.Token{Header: input[:off], Claims: claims, Signature: sig}, nil
}

// Verify checks raw and returns its claims.
func (v *Verifier) Verify(raw string) (domain.Claims, error) {
	tok, err := Parse(raw)
	if err != nil {
		return domain.Claims{}, err
	}
	if !crypto.Verify([]byte(tok.SigningInput()), v.Key, tok.Signature) {
		return domain.Claims{}, ErrBadSignature
	}

	var h domain.Header
	if err := decodeStrict(tok.Header, &h); err != nil {
		return domain.Claims{}, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if h.Alg != Algorithm {
		return domain.Claims{}, fmt.Errorf("%w: unsupported alg %q", ErrMalformedToken, h.Alg)
	}

	var c domain.Claims
	if err := decodeStrict(tok.Claims, &c); err != nil {
		return domain.Claims{}, fmt.Errorf("%w: claims: %v", ErrMalformedToken, err)
	}
	if c.Issuer == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing iss", ErrMalformedToken)
	}
	if len(v.Issuers) > 0 && !slices.Contains(v.Issuers, c.Issuer) {
		return domain.Claims{}, fmt.Errorf("%w: %q", ErrUnknownIssuer, c.Issuer)
	}

	if v.MaxSkew > 0 {
		now := time.Now
		if v.Now != nil {
			now = v.Now
		}
		skew := now().Sub(time.Unix(c.IssuedAt, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > v.MaxSkew {
			return domain.Claims{}, ErrStaleToken
		}
	}
	return c, nil
}

func decodeStrict(s string, out any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
