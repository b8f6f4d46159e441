package models

import (
	"fmt"
	"time"
)

// PrincipalKind вид учетной записи, от имени которой выполняется запрос
type PrincipalKind string

const (
	KindUser  PrincipalKind = "user"
	KindAdmin PrincipalKind = "admin"
)

// ParsePrincipalKind разбирает строковое представление вида учетной записи
func ParsePrincipalKind(s string) (PrincipalKind, error) {
	switch PrincipalKind(s) {
	case KindUser, KindAdmin:
		return PrincipalKind(s), nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", s)
	}
}

func (k PrincipalKind) String() string {
	return string(k)
}

// Principal учетная запись пользователя или администратора.
// Для аутентификации оба вида устроены одинаково.
type Principal struct {
	CreatedAt      time.Time     `json:"createdAt"`                // время создания
	ID             string        `json:"id"`                       // UUID, не меняется
	Kind           PrincipalKind `json:"kind"`                     // user или admin
	Name           string        `json:"name"`                     // отображаемое имя
	Email          string        `json:"email"`                    // уникальный email
	Password       string        `json:"-"`                        // зашифрованный пароль (AES-GCM, base64)
	RefreshTokens  []string      `json:"-"`                        // действующие refresh токены
	Verified       bool          `json:"verified"`                 // email подтвержден через OTP
	Active         bool          `json:"active"`                   // false если заблокирован администратором
	ForgetPassword bool          `json:"forgetPassword,omitempty"` // запрошен сброс пароля
}

// HasRefreshToken проверяет, что refresh токен еще действует для этой учетной записи
func (p *Principal) HasRefreshToken(token string) bool {
	for _, t := range p.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}
