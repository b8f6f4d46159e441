package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goccy/go-json"
)

var (
	// ErrOTPInvalid шифрованный OTP не удалось расшифровать или разобрать
	ErrOTPInvalid = errors.New("invalid otp")
	// ErrOTPExpired срок действия OTP истек
	ErrOTPExpired = errors.New("otp expired")
)

// OTPPayload содержимое шифрованного OTP, которое клиент возвращает вместе с кодом
type OTPPayload struct {
	OTP       string `json:"otp"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expirationTime"` // unix миллисекунды
}

// GenerateOTP генерирует код из digits десятичных цифр
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("digits must be positive, got %d", digits)
	}

	buf := make([]byte, digits)
	ten := big.NewInt(10)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate otp digit: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}

	return string(buf), nil
}

// SealOTP шифрует код вместе с email и сроком действия.
// Сервер не хранит выданные коды: вся информация уходит клиенту в этом блобе.
func SealOTP(key []byte, otp, email string, expiresAt time.Time) (string, error) {
	data, err := json.Marshal(OTPPayload{
		OTP:       otp,
		Email:     email,
		ExpiresAt: expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal otp payload: %w", err)
	}

	return EncryptToBase64(data, key, PurposeOTP)
}

// OpenOTP расшифровывает блоб и проверяет срок действия на момент now.
// Граница включительная: в момент ExpiresAt код уже недействителен.
func OpenOTP(key []byte, sealed string, now time.Time) (*OTPPayload, error) {
	if sealed == "" {
		return nil, ErrOTPInvalid
	}

	data, err := DecryptFromBase64(sealed, key, PurposeOTP)
	if err != nil {
		return nil, ErrOTPInvalid
	}

	var payload OTPPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrOTPInvalid
	}

	if now.UnixMilli() >= payload.ExpiresAt {
		return nil, ErrOTPExpired
	}

	return &payload, nil
}

// CompareOTP сравнивает коды за постоянное время
func CompareOTP(expected, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
