package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DigestHexLen is the length of a hex-encoded HMAC-SHA256 digest.
const DigestHexLen = sha256.Size * 2

// Sign returns the HMAC-SHA256 of message under key as lowercase hex.
func Sign(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the hex HMAC-SHA256 of message under key.
// Uppercase hex is rejected; Sign never produces it.
func Verify(message, key []byte, sig string) bool {
	if len(sig) != DigestHexLen {
		return false
	}
	want := Sign(message, key)
	return hmac.Equal([]byte(want), []byte(sig))
}
