package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// NonceSize размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// KeySize размер ключа AES-256
	KeySize = 32
)

// Назначения шифртекста. Передаются как associated data, поэтому шифртекст
// пароля нельзя подсунуть туда, где ожидается OTP, и наоборот.
var (
	PurposePassword = []byte("password")
	PurposeOTP      = []byte("otp")
)

// ErrDecrypt возвращается, когда шифртекст поврежден, подделан или зашифрован другим ключом
var ErrDecrypt = errors.New("failed to decrypt: authentication failed or corrupted data")

// Encrypt шифрует данные с использованием AES-256-GCM.
// Формат результата: nonce (12 bytes) + ciphertext + auth_tag (16 bytes)
func Encrypt(plaintext, key, purpose []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal дописывает шифртекст и тег к nonce
	return aesGCM.Seal(nonce, nonce, plaintext, purpose), nil
}

// EncryptToBase64 шифрует данные и возвращает результат в URL-safe Base64,
// пригодном и для JSON, и для query-параметров
func EncryptToBase64(plaintext, key, purpose []byte) (string, error) {
	encrypted, err := Encrypt(plaintext, key, purpose)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(encrypted), nil
}

// Decrypt дешифрует данные, зашифрованные с помощью Encrypt с тем же purpose
func Decrypt(encrypted, key, purpose []byte) ([]byte, error) {
	if len(encrypted) < NonceSize {
		return nil, fmt.Errorf("encrypted data too short")
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, encrypted[:NonceSize], encrypted[NonceSize:], purpose)
	if err != nil {
		return nil, ErrDecrypt
	}

	return plaintext, nil
}

// DecryptFromBase64 дешифрует данные из URL-safe Base64
func DecryptFromBase64(encryptedBase64 string, key, purpose []byte) ([]byte, error) {
	encrypted, err := base64.RawURLEncoding.DecodeString(encryptedBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return Decrypt(encrypted, key, purpose)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}
