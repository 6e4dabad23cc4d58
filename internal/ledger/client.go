// Пакет ledger — HTTP-клиент ledger gateway (платёжный контракт).
//
// Леджер — внешний оракул с монотонными статусами транзакций:
// pending → confirmed | failed, терминальные статусы не откатываются.
// Подтверждение — единственная граница доверия для платежа.
//
// При ErrLedgerUnavailable на отправке исход broadcast НЕИЗВЕСТЕН:
// транзакция могла уйти в сеть. Безопасное восстановление — опрос
// GetTransaction/ListTransactions, а не повторная отправка.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

var (
	// ErrLedgerUnavailable — леджер недоступен, исход операции неизвестен.
	ErrLedgerUnavailable = errors.New("ledger gateway недоступен")
	// ErrInsufficientFunds — на кошельке отправителя недостаточно средств.
	ErrInsufficientFunds = errors.New("недостаточно средств")
	// ErrInvalidRecipient — некорректный адрес получателя.
	ErrInvalidRecipient = errors.New("некорректный получатель платежа")
	// ErrTxNotFound — транзакция с таким хэшем леджеру неизвестна.
	ErrTxNotFound = errors.New("транзакция не найдена")
)

// submitRequest — тело POST /api/v1/transactions.
type submitRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// submitResponse — ответ на отправку транзакции.
type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

// listResponse — ответ GET /api/v1/transactions.
type listResponse struct {
	Transactions []model.LedgerTransaction `json:"transactions"`
}

// Client — HTTP-клиент ledger gateway.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	pollInterval time.Duration
	logger       *slog.Logger
}

// New создаёт клиент леджера.
// baseURL — базовый URL gateway (например, http://ledger-gateway:8545).
// pollInterval — интервал опроса статуса в AwaitConfirmation.
func New(baseURL string, timeout, pollInterval time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: pollInterval,
		logger:       logger.With(slog.String("component", "ledger_client")),
	}
}

// SubmitPayment отправляет платёж from → to и возвращает tx_hash
// (статус pending сразу после broadcast).
//
// ErrLedgerUnavailable означает неизвестный исход, не отказ:
// вызывающий код обязан опросить леджер перед повторной отправкой.
func (c *Client) SubmitPayment(ctx context.Context, from, to string, amount int64) (string, error) {
	body, err := json.Marshal(submitRequest{From: from, To: to, Amount: amount})
	if err != nil {
		return "", fmt.Errorf("сериализация запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("создание запроса submit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrLedgerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK:
		var sr submitResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return "", fmt.Errorf("декодирование ответа submit: %w", err)
		}
		if sr.TxHash == "" {
			return "", fmt.Errorf("submit: пустой tx_hash в ответе")
		}
		return sr.TxHash, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrInsufficientFunds
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return "", ErrInvalidRecipient
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: статус %d", ErrLedgerUnavailable, resp.StatusCode)
	default:
		return "", fmt.Errorf("submit: неожиданный статус %d", resp.StatusCode)
	}
}

// GetTransaction возвращает транзакцию по хэшу. Идемпотентное чтение,
// безопасно для многократного опроса при reconciliation.
func (c *Client) GetTransaction(ctx context.Context, txHash string) (*model.LedgerTransaction, error) {
	reqURL := fmt.Sprintf("%s/api/v1/transactions/%s", c.baseURL, url.PathEscape(txHash))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса get: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLedgerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var tx model.LedgerTransaction
		if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
			return nil, fmt.Errorf("декодирование транзакции: %w", err)
		}
		return &tx, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txHash)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: статус %d", ErrLedgerUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("get: неожиданный статус %d", resp.StatusCode)
	}
}

// ListTransactions возвращает транзакции по паре адресов from → to.
// Используется reconciliation для поиска подтверждённых платежей
// без соответствующей off-chain записи.
func (c *Client) ListTransactions(ctx context.Context, from, to string) ([]model.LedgerTransaction, error) {
	reqURL := fmt.Sprintf("%s/api/v1/transactions?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса list: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLedgerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: статус %d", ErrLedgerUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list: неожиданный статус %d", resp.StatusCode)
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("декодирование списка транзакций: %w", err)
	}
	return lr.Transactions, nil
}

// AwaitConfirmation блокируется до терминального статуса транзакции
// либо до истечения timeout. Таймаут НЕ ошибка: возвращается транзакция
// со статусом pending, разрешение откладывается до reconcile.
// Транзиентные ошибки чтения не прерывают ожидание.
func (c *Client) AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (*model.LedgerTransaction, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	pending := &model.LedgerTransaction{TxHash: txHash, Status: model.TxPending}

	for {
		tx, err := c.GetTransaction(waitCtx, txHash)
		switch {
		case err == nil:
			if tx.Status.IsTerminal() {
				return tx, nil
			}
			pending = tx
		case errors.Is(err, ErrTxNotFound):
			// Транзакция могла ещё не попасть в индекс леджера — ждём
		case errors.Is(err, ErrLedgerUnavailable):
			c.logger.Debug("Леджер недоступен при опросе, продолжаем ожидание",
				slog.String("tx_hash", txHash),
			)
		default:
			return nil, err
		}

		select {
		case <-waitCtx.Done():
			// Истечение таймаута — транзакция остаётся pending
			return pending, nil
		case <-ticker.C:
		}
	}
}
