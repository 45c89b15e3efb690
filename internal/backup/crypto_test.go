package backup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSealUnsealRoundTrip(t *testing.T) {
	plaintext := []byte("vacuumed sqlite snapshot bytes")

	sealed, err := seal(plaintext, "family-passphrase")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(sealed) <= saltSize+nonceSize {
		t.Fatalf("sealed length = %d, want header plus ciphertext", len(sealed))
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("sealed output leaks plaintext")
	}

	got, err := unseal(sealed, "family-passphrase")
	if err != nil {
		t.Fatalf("unseal: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("round trip changed the payload")
	}
}

func TestSealFreshSaltPerCall(t *testing.T) {
	a, err := seal([]byte("same input"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := seal([]byte("same input"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("salt reused across seals")
	}
	if bytes.Equal(a, b) {
		t.Error("two seals of the same input should not match")
	}
}

func TestUnsealWrongPassphrase(t *testing.T) {
	sealed, err := seal([]byte("secret data"), "correct-password")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := unseal(sealed, "wrong-password"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestUnsealTampered(t *testing.T) {
	sealed, err := seal([]byte("secret data"), "password")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[saltSize+nonceSize] ^= 0xFF
	if _, err := unseal(sealed, "password"); err == nil {
		t.Fatal("expected error with tampered ciphertext")
	}
}

func TestUnsealTruncated(t *testing.T) {
	_, err := unseal([]byte("too short"), "password")
	if !errors.Is(err, errCiphertextTooShort) {
		t.Fatalf("err = %v, want errCiphertextTooShort", err)
	}
}

func TestDeriveKeyStable(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := deriveKey("mypassphrase", salt)
	key2 := deriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase and salt should produce the same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, deriveKey("otherpassphrase", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptFiles(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "source.db.enc")
	decPath := filepath.Join(dir, "restored.db")

	original := []byte("This is test database content with some data in it.")
	if err := os.WriteFile(srcPath, original, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "test-passphrase-123"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := DecryptFile(encPath, decPath, "test-passphrase-123"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	restored, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if !bytes.Equal(original, restored) {
		t.Error("restored content should match original")
	}
}

func TestEncryptDecryptEmptyFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "empty.db")
	encPath := filepath.Join(dir, "empty.db.enc")
	decPath := filepath.Join(dir, "empty-restored.db")

	if err := os.WriteFile(srcPath, nil, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "password"); err != nil {
		t.Fatalf("encrypt empty file: %v", err)
	}
	if err := DecryptFile(encPath, decPath, "password"); err != nil {
		t.Fatalf("decrypt empty file: %v", err)
	}

	restored, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if len(restored) != 0 {
		t.Errorf("expected empty restored file, got %d bytes", len(restored))
	}
}
