// Package otpguard ограничивает число попыток ввода OTP и не дает
// использовать один и тот же зашифрованный OTP дважды.
package otpguard

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTooManyAttempts превышено число попыток в текущем окне
	ErrTooManyAttempts = errors.New("too many otp attempts, try again later")
	// ErrAlreadyUsed OTP уже был использован
	ErrAlreadyUsed = errors.New("otp has already been used")
)

// Guard ограничитель попыток и журнал использованных OTP
type Guard interface {
	// Allow учитывает попытку по ключу (обычно email).
	// Returns ErrTooManyAttempts when the window limit is exceeded
	Allow(ctx context.Context, key string) error

	// Reset сбрасывает счетчик попыток после успешной проверки
	Reset(ctx context.Context, key string) error

	// Consume помечает зашифрованный OTP использованным на ttl.
	// Returns ErrAlreadyUsed on the second call with the same value
	Consume(ctx context.Context, sealed string, ttl time.Duration) error
}

const minUsedTTL = time.Second

func usedTTL(ttl time.Duration) time.Duration {
	if ttl < minUsedTTL {
		return minUsedTTL
	}
	return ttl
}
