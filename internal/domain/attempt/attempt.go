// attempt.go — PurchaseAttempt, durable-запись попытки покупки.
package attempt

import (
	"time"
)

// PurchaseAttempt — запись попытки покупки в purchase_attempts.
// Фиксируется ДО обращения к леджеру: после сбоя процесса reconcile
// находит попытки в разрешимых состояниях и доводит их до терминальных
// по истине леджера. Seller и Amount денормализованы, чтобы reconcile
// мог опросить леджер, даже если запись каталога изменилась.
type PurchaseAttempt struct {
	// AttemptID — уникальный идентификатор попытки (UUID v4)
	AttemptID string `json:"attempt_id"`

	// BookID — идентификатор покупаемой книги
	BookID string `json:"book_id"`

	// BuyerAddress — адрес кошелька покупателя
	BuyerAddress string `json:"buyer_address"`

	// SellerAddress — адрес кошелька получателя платежа
	SellerAddress string `json:"seller_address"`

	// Amount — сумма платежа на момент начала попытки
	Amount int64 `json:"amount"`

	// TxHash — хэш транзакции; пуст до успешного broadcast
	TxHash string `json:"tx_hash,omitempty"`

	// State — текущее состояние попытки
	State State `json:"state"`

	// CreatedAt — время создания попытки (UTC)
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего перехода состояния (UTC)
	UpdatedAt time.Time `json:"updated_at"`
}
