package domain

import "strings"

// Header is the fixed token header. Field order is the serialised key order.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Claims are the assertions the bot makes about itself.
type Claims struct {
	IssuedAt int64  `json:"iat"`
	Issuer   string `json:"iss"`
}

// Token is a compact signed assertion: header.claims.signature.
//
// Header and Claims hold the exact JSON encodings that were signed, and
// Signature is the lowercase hex keyed hash over "<Header>.<Claims>".
type Token struct {
	Header    string
	Claims    string
	Signature string
}

// SigningInput returns the bytes the signature covers.
func (t Token) SigningInput() string {
	return t.Header + "." + t.Claims
}

// String returns the wire form of the token.
func (t Token) String() string {
	return strings.Join([]string{t.Header, t.Claims, t.Signature}, ".")
}
