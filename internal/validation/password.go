package validation

import "fmt"

// MinPasswordLen минимальная длина пароля
const MinPasswordLen = 8

// MaxPasswordLen ограничивает размер шифруемых данных
const MaxPasswordLen = 128

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}

	return nil
}
