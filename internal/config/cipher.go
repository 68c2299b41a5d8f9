package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"

	"gittrack/internal/errors"
)

// keySize is the master key length in bytes (AES-256).
const keySize = 32

// hkdfLabel provides domain separation for the sealing key so the raw
// master key never touches the cipher directly.
const hkdfLabel = "gittrack:config-v1"

// generateKey writes a fresh random master key to path with owner-only
// permissions. Fails if the file already exists: key rotation must go
// through Store.Reset, never silently.
func generateKey(path string) ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(err, "failed to generate key material")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key file")
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "failed to write key file")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close key file")
	}
	return key, nil
}

// loadKey reads the master key from path.
func loadKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrDecryptionFailed, "key file is missing")
		}
		return nil, errors.Wrap(err, "failed to read key file")
	}
	if len(key) != keySize {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, "key file has wrong size")
	}
	return key, nil
}

// sealingKey derives the AEAD key from the master key via HKDF-SHA256
// with a fixed label.
func sealingKey(masterKey []byte) ([]byte, error) {
	derived := make([]byte, keySize)
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(hkdfLabel))
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, errors.Wrap(err, "key derivation failed")
	}
	return derived, nil
}

// seal encrypts plaintext with AES-256-GCM. The nonce is prepended to
// the ciphertext.
func seal(masterKey, plaintext []byte) ([]byte, error) {
	derived, err := sealingKey(masterKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrEncryptionFailed, err.Error())
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Wrap(errors.ErrEncryptionFailed, err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(errors.ErrEncryptionFailed, err.Error())
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Wrap(errors.ErrEncryptionFailed, "failed to generate nonce")
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a sealed blob. Any authentication failure surfaces as
// ErrDecryptionFailed; a partially decoded payload is never returned.
func open(masterKey, sealed []byte) ([]byte, error) {
	derived, err := sealingKey(masterKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, err.Error())
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, err.Error())
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, err.Error())
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, "blob too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDecryptionFailed, err.Error())
	}
	return plaintext, nil
}
