// purchase.go — PurchaseRecord, off-chain запись подтверждённой покупки.
package model

import (
	"time"
)

// PurchaseRecord — запись покупки книги.
// Создаётся только после подтверждения транзакции леджером.
// TxHash — натуральный ключ идемпотентности: две попытки записи
// с одинаковым подтверждённым tx_hash схлопываются в одну запись.
type PurchaseRecord struct {
	// PurchaseID — уникальный идентификатор записи (UUID v4)
	PurchaseID string `json:"purchase_id"`

	// BookID — идентификатор купленной книги
	BookID string `json:"book_id"`

	// BuyerAddress — адрес кошелька покупателя
	BuyerAddress string `json:"buyer_address"`

	// TxHash — хэш подтверждённой транзакции леджера (уникален)
	TxHash string `json:"tx_hash"`

	// AmountPaid — оплаченная сумма в минимальных единицах
	AmountPaid int64 `json:"amount_paid"`

	// PurchasedAt — дата и время записи покупки (UTC)
	PurchasedAt time.Time `json:"purchased_at"`
}
