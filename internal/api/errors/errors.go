// Пакет errors — конструкторы стандартных ошибок HTTP API Book Market.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib допустим внутри internal/api

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNonceExpired      = "NONCE_EXPIRED"
	CodeNonceReused       = "NONCE_REUSED"
	CodeSignatureMismatch = "SIGNATURE_MISMATCH"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeLedgerUnavailable = "LEDGER_UNAVAILABLE"
	CodePaymentFailed     = "PAYMENT_FAILED"
	CodePurchasePending   = "PURCHASE_PENDING"
	CodeContentTooLarge   = "CONTENT_TOO_LARGE"
	CodeInternalError     = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате Book Market.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// NonceExpired — 401 окно действия nonce истекло.
func NonceExpired(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeNonceExpired, message)
}

// NonceReused — 401 nonce уже использован.
func NonceReused(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeNonceReused, message)
}

// SignatureMismatch — 401 подпись не соответствует principal.
func SignatureMismatch(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeSignatureMismatch, message)
}

// StoreUnavailable — 503 content store недоступен после всех retry.
func StoreUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, message)
}

// LedgerUnavailable — 503 леджер недоступен.
func LedgerUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, CodeLedgerUnavailable, message)
}

// PaymentFailed — 402 платёж отклонён леджером (терминально).
func PaymentFailed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusPaymentRequired, CodePaymentFailed, message)
}

// PurchasePending — 202 исход платежа ещё не известен, нужен reconcile.
// Не ошибка: промежуточное восстановимое состояние.
func PurchasePending(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusAccepted, CodePurchasePending, message)
}

// ContentTooLarge — 413 файл превышает лимит.
func ContentTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodeContentTooLarge, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
