package session

import "errors"

var (
	// ErrNotAuthenticated access токен не передан, не разбирается или истек
	ErrNotAuthenticated = errors.New("you are not authenticated")
	// ErrInvalidToken refresh токен не проходит проверку подписи, nonce не совпадает
	// или токен уже не числится за учетной записью
	ErrInvalidToken = errors.New("invalid token")
	// ErrAccessDenied учетная запись из access токена не найдена ни в одном из допустимых видов
	ErrAccessDenied = errors.New("access denied")
	// ErrNotLoggedIn refresh токен не принадлежит ни одной учетной записи
	ErrNotLoggedIn = errors.New("you are not logged in")
	// ErrUnknownKind для вида учетной записи не настроено хранилище
	ErrUnknownKind = errors.New("unknown principal kind")
)
