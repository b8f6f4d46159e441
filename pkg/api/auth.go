package api

// Имена cookie с токенами сессии
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Статусы ответа
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope общий формат всех ответов сервера
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`  // success | fail | error
	Message string `json:"message"` // человекочитаемое описание
}

// RegisterRequest запрос на регистрацию пользователя
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
}

// OTPResponse шифрованный OTP, который клиент возвращает вместе с кодом из письма
type OTPResponse struct {
	EncryptedOTP string `json:"encryptedOtp"`
}

// LoginRequest запрос на вход по паролю
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest новый пароль при сбросе через OTP
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"password"`
}

// SetActiveRequest блокировка или разблокировка пользователя администратором
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SessionInfo тело ответа при выдаче или обновлении сессии.
// Токены дублируются в cookie; в теле они нужны клиентам без cookie jar.
type SessionInfo struct {
	ID           string `json:"id,omitempty"`
	Kind         string `json:"kind"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Rotated      bool   `json:"rotated,omitempty"`
}

// Identity кто выполняет запрос
type Identity struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}
