// Package vpn implements the server ranking and profile generation core.
// This file contains WireGuard key handling.
package vpn

import (
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/curve25519"
)

// keyLen is the length of a raw Curve25519 key.
const keyLen = 32

// ErrInvalidKey indicates a string is not a base64-encoded 32-byte key.
var ErrInvalidKey = errors.New("invalid WireGuard key")

// ValidKey reports whether s is a well-formed WireGuard key.
func ValidKey(s string) bool {
	raw, err := base64.StdEncoding.DecodeString(s)
	return err == nil && len(raw) == keyLen
}

// PublicKey derives the WireGuard public key for a base64-encoded
// private key. Used as a sanity check on the credential returned by the
// API before any profile is written.
func PublicKey(privateKey string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil || len(raw) != keyLen {
		return "", ErrInvalidKey
	}

	pub, err := curve25519.X25519(raw, curve25519.Basepoint)
	if err != nil {
		return "", ErrInvalidKey
	}

	return base64.StdEncoding.EncodeToString(pub), nil
}
