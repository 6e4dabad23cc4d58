// ledger.go — LedgerTransaction, on-chain транзакция платежа.
package model

// TxStatus — статус транзакции леджера.
// Переходы монотонны: pending → confirmed или pending → failed.
// Терминальные статусы никогда не откатываются.
type TxStatus string

const (
	// TxPending — транзакция отправлена, подтверждение не получено
	TxPending TxStatus = "pending"
	// TxConfirmed — транзакция подтверждена леджером (терминальный)
	TxConfirmed TxStatus = "confirmed"
	// TxFailed — транзакция отклонена леджером (терминальный)
	TxFailed TxStatus = "failed"
)

// IsTerminal возвращает true для терминальных статусов.
func (s TxStatus) IsTerminal() bool {
	return s == TxConfirmed || s == TxFailed
}

// LedgerTransaction — транзакция платежа, прочитанная из леджера.
// Леджер — внешний источник истины: Book Market только читает
// и отправляет транзакции, но не владеет их состоянием.
type LedgerTransaction struct {
	// TxHash — хэш транзакции
	TxHash string `json:"tx_hash"`

	// From — адрес кошелька отправителя (покупатель)
	From string `json:"from"`

	// To — адрес кошелька получателя (автор/продавец)
	To string `json:"to"`

	// Amount — сумма в минимальных единицах
	Amount int64 `json:"amount"`

	// Status — текущий статус транзакции
	Status TxStatus `json:"status"`
}
