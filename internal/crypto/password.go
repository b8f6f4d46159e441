package crypto

import (
	"crypto/subtle"
	"fmt"
)

// EncryptPassword шифрует пароль ключом сервера (AES-GCM, не хеш)
func EncryptPassword(key []byte, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return EncryptToBase64([]byte(password), key, PurposePassword)
}

// CheckPassword сравнивает пароль с сохраненным шифртекстом за постоянное время
func CheckPassword(key []byte, sealed, password string) bool {
	if sealed == "" || password == "" {
		return false
	}

	plain, err := DecryptFromBase64(sealed, key, PurposePassword)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(plain, []byte(password)) == 1
}
