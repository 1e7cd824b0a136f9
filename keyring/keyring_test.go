package keyring

import (
	"crypto/sha256"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	hash := sha256.Sum256([]byte("test-key-material"))
	encryptionKey = hash[:]

	plaintext := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	encrypted, err := encrypt([]byte(plaintext))
	if err != nil {
		t.Fatalf("encrypt() error = %v", err)
	}

	if string(encrypted) == plaintext {
		t.Error("encrypt() should not return the plaintext")
	}

	decrypted, err := decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt() error = %v", err)
	}

	if string(decrypted) != plaintext {
		t.Errorf("decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	hash := sha256.Sum256([]byte("test-key-material"))
	encryptionKey = hash[:]

	if _, err := decrypt([]byte("bm90LWEtY2lwaGVydGV4dA==")); err == nil {
		t.Error("decrypt() should fail on data that was never encrypted")
	}

	if _, err := decrypt([]byte("not base64 at all!")); err == nil {
		t.Error("decrypt() should fail on invalid base64")
	}
}
