// errors.go — ошибки модуля аутентификации.
package auth

import "errors"

var (
	// ErrUnknownPrincipal — некорректный формат адреса кошелька.
	ErrUnknownPrincipal = errors.New("некорректный формат principal: ожидается 0x + 40 hex")
	// ErrNonceExpired — окно действия nonce истекло или nonce неизвестен.
	ErrNonceExpired = errors.New("окно действия nonce истекло")
	// ErrNonceReused — nonce уже был использован (одноразовый).
	ErrNonceReused = errors.New("nonce уже использован")
	// ErrSignatureMismatch — подпись не принадлежит заявленному principal.
	ErrSignatureMismatch = errors.New("подпись не соответствует principal")
)
