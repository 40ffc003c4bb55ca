package memzero_test

import (
	"testing"

	"rtchat/internal/util/memzero"
)

func TestZero(t *testing.T) {
	b := []byte("bot-secret")
	memzero.Zero(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not wiped", i)
		}
	}
	memzero.Zero(nil)
}
