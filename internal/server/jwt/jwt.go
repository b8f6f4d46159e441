// Package jwt подписывает и проверяет токены сессии (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature подпись не совпала, алгоритм не HS256 или токен не разбирается
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired срок действия токена истек
	ErrExpired = errors.New("token expired")
)

// AccessClaims полезная нагрузка access токена: principal id в sub и nonce сессии
type AccessClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// PrincipalID возвращает id учетной записи из sub
func (c *AccessClaims) PrincipalID() string {
	return c.Subject
}

// RefreshClaims полезная нагрузка refresh токена. exp отсутствует:
// действительность refresh токена определяется только хранилищем.
type RefreshClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет токены общим секретом.
// Секрет копируется при создании и дальше не меняется.
type Codec struct {
	now       func() time.Time
	secret    []byte
	accessTTL time.Duration
}

// Option настраивает Codec
type Option func(*Codec)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec создает Codec
func NewCodec(secret []byte, accessTTL time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive, got %s", accessTTL)
	}

	c := &Codec{
		secret:    append([]byte(nil), secret...),
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AccessTTL время жизни access токена
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// SignAccess подписывает access токен с exp = now + accessTTL
func (c *Codec) SignAccess(principalID, nonce string) (string, error) {
	now := c.now()
	claims := AccessClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	return c.sign(claims)
}

// SignRefresh подписывает refresh токен без срока действия
func (c *Codec) SignRefresh(nonce string) (string, error) {
	claims := RefreshClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}

	return c.sign(claims)
}

// VerifyAccess проверяет подпись и срок действия access токена.
// Токен, срок которого истекает ровно сейчас, уже недействителен.
func (c *Codec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(tokenString, claims, jwt.WithExpirationRequired()); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh проверяет подпись refresh токена
func (c *Codec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	if tokenString == "" {
		return ErrInvalidSignature
	}

	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, opts...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
}
