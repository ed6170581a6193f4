package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

var encoding = base64.URLEncoding

// Sign returns base64(value) + "|" + base64(HMAC-SHA256(value)) using the
// primary secret.
func (m *Manager) Sign(value string) string {
	return encoding.EncodeToString([]byte(value)) + "|" + encoding.EncodeToString(mac(m.secrets[0], []byte(value)))
}

// Verify checks a value produced by Sign against every configured secret.
func (m *Manager) Verify(signed string) (string, error) {
	encoded, sig, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := encoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}
	got, err := encoding.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		if hmac.Equal(got, mac(secret, value)) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

// Seal encrypts value with AES-256-GCM under the primary secret.
func (m *Manager) Seal(value string) (string, error) {
	gcm, err := newGCM(m.secrets[0])
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	return encoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(value), nil)), nil
}

// Open decrypts a value produced by Seal, trying every configured secret.
func (m *Manager) Open(sealed string) (string, error) {
	data, err := encoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		gcm, err := newGCM(secret)
		if err != nil {
			continue
		}
		if len(data) < gcm.NonceSize() {
			return "", ErrInvalidFormat
		}
		nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
		if plain, err := gcm.Open(nil, nonce, ciphertext, nil); err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}

func mac(secret, value []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(value)
	return h.Sum(nil)
}

// newGCM derives the AES-256 key from the first 32 bytes of secret.
func newGCM(secret []byte) (cipher.AEAD, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	block, err := aes.NewCipher(secret[:minSecretLength])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
