// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrForbidden — операция запрещена для данного principal.
	ErrForbidden = errors.New("операция запрещена")
	// ErrPaymentFailed — платёж отклонён леджером.
	ErrPaymentFailed = errors.New("платёж отклонён")
	// ErrTxMismatch — предъявленная транзакция не соответствует покупке
	// (другой получатель, сумма меньше цены или статус не confirmed).
	ErrTxMismatch = errors.New("транзакция не соответствует покупке")
)
