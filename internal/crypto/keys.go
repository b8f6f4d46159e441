package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id
const (
	// Argon2Time количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads количество параллельных потоков
	Argon2Threads = 4
)

// DeriveKey получает ключ AES-256 из секрета конфигурации.
// Соль детерминирована и зависит только от context, поэтому ключ одинаков
// между перезапусками и ранее зашифрованные пароли остаются читаемыми.
func DeriveKey(secret, context string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret cannot be empty")
	}
	if context == "" {
		return nil, fmt.Errorf("context cannot be empty")
	}

	salt := sha256.Sum256([]byte("rentspace/" + context))

	return argon2.IDKey([]byte(secret), salt[:], Argon2Time, Argon2Memory, Argon2Threads, KeySize), nil
}

// Fingerprint возвращает hex SHA256 от строки.
// Используется как ключ в хранилищах, где нельзя держать исходное значение.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
