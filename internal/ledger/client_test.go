package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// testLogger — логгер, пишущий в никуда.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	buyerAddr  = "0x1111111111111111111111111111111111111111"
	sellerAddr = "0x2222222222222222222222222222222222222222"
)

// TestClient_SubmitPayment проверяет успешный broadcast платежа.
func TestClient_SubmitPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/transactions" {
			t.Errorf("неожиданный запрос: %s %s", r.Method, r.URL.Path)
		}

		var req submitRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.From != buyerAddr || req.To != sellerAddr || req.Amount != 1500 {
			t.Errorf("тело запроса = %+v", req)
		}

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"tx_hash":"0xabc123"}`))
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 10*time.Millisecond, testLogger())

	txHash, err := client.SubmitPayment(context.Background(), buyerAddr, sellerAddr, 1500)
	if err != nil {
		t.Fatalf("SubmitPayment() вернул ошибку: %v", err)
	}
	if txHash != "0xabc123" {
		t.Errorf("txHash = %q, ожидается 0xabc123", txHash)
	}
}

// TestClient_SubmitPaymentErrors проверяет маппинг статусов в sentinel-ошибки.
func TestClient_SubmitPaymentErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"недостаточно средств", http.StatusPaymentRequired, ErrInsufficientFunds},
		{"некорректный получатель", http.StatusBadRequest, ErrInvalidRecipient},
		{"леджер недоступен", http.StatusInternalServerError, ErrLedgerUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, ErrLedgerUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()
			client := New(srv.URL, 5*time.Second, 10*time.Millisecond, testLogger())

			_, err := client.SubmitPayment(context.Background(), buyerAddr, sellerAddr, 100)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ошибка = %v, ожидается %v", err, tc.wantErr)
			}
		})
	}
}

// TestClient_SubmitPaymentTransportError проверяет, что транспортная ошибка
// маппится в ErrLedgerUnavailable (исход broadcast неизвестен).
func TestClient_SubmitPaymentTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // закрываем сразу — соединение откажет

	client := New(srv.URL, time.Second, 10*time.Millisecond, testLogger())
	_, err := client.SubmitPayment(context.Background(), buyerAddr, sellerAddr, 100)
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Fatalf("ожидался ErrLedgerUnavailable, получено: %v", err)
	}
}

// TestClient_GetTransaction проверяет чтение транзакции и ErrTxNotFound.
func TestClient_GetTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/transactions/0xknown":
			_ = json.NewEncoder(w).Encode(model.LedgerTransaction{
				TxHash: "0xknown",
				From:   buyerAddr,
				To:     sellerAddr,
				Amount: 900,
				Status: model.TxConfirmed,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 10*time.Millisecond, testLogger())

	tx, err := client.GetTransaction(context.Background(), "0xknown")
	if err != nil {
		t.Fatalf("GetTransaction() вернул ошибку: %v", err)
	}
	if tx.Status != model.TxConfirmed || tx.Amount != 900 {
		t.Errorf("транзакция = %+v", tx)
	}

	_, err = client.GetTransaction(context.Background(), "0xunknown")
	if !errors.Is(err, ErrTxNotFound) {
		t.Fatalf("ожидался ErrTxNotFound, получено: %v", err)
	}
}

// TestClient_ListTransactions проверяет выборку по паре адресов.
func TestClient_ListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != buyerAddr {
			t.Errorf("from = %q", got)
		}
		if got := r.URL.Query().Get("to"); got != sellerAddr {
			t.Errorf("to = %q", got)
		}
		_ = json.NewEncoder(w).Encode(listResponse{
			Transactions: []model.LedgerTransaction{
				{TxHash: "0x1", Status: model.TxConfirmed, Amount: 500},
				{TxHash: "0x2", Status: model.TxPending, Amount: 500},
			},
		})
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 10*time.Millisecond, testLogger())

	txs, err := client.ListTransactions(context.Background(), buyerAddr, sellerAddr)
	if err != nil {
		t.Fatalf("ListTransactions() вернул ошибку: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len(txs) = %d, ожидается 2", len(txs))
	}
}

// TestClient_AwaitConfirmation_Confirms проверяет ожидание до терминального
// статуса: первые опросы pending, затем confirmed.
func TestClient_AwaitConfirmation_Confirms(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := model.TxPending
		if polls.Add(1) >= 3 {
			status = model.TxConfirmed
		}
		_ = json.NewEncoder(w).Encode(model.LedgerTransaction{TxHash: "0xwait", Status: status})
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 5*time.Millisecond, testLogger())

	tx, err := client.AwaitConfirmation(context.Background(), "0xwait", 2*time.Second)
	if err != nil {
		t.Fatalf("AwaitConfirmation() вернул ошибку: %v", err)
	}
	if tx.Status != model.TxConfirmed {
		t.Errorf("статус = %q, ожидается confirmed", tx.Status)
	}
	if polls.Load() < 3 {
		t.Errorf("выполнено %d опросов, ожидается >= 3", polls.Load())
	}
}

// TestClient_AwaitConfirmation_TimeoutReturnsPending проверяет, что таймаут
// не ошибка: возвращается pending-транзакция для последующей сверки.
func TestClient_AwaitConfirmation_TimeoutReturnsPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.LedgerTransaction{TxHash: "0xstuck", Status: model.TxPending})
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 5*time.Millisecond, testLogger())

	tx, err := client.AwaitConfirmation(context.Background(), "0xstuck", 30*time.Millisecond)
	if err != nil {
		t.Fatalf("AwaitConfirmation() при таймауте вернул ошибку: %v", err)
	}
	if tx.Status != model.TxPending {
		t.Errorf("статус = %q, ожидается pending", tx.Status)
	}
	if tx.TxHash != "0xstuck" {
		t.Errorf("tx_hash = %q, ожидается 0xstuck", tx.TxHash)
	}
}

// TestClient_AwaitConfirmation_SurvivesUnavailable проверяет, что транзиентная
// недоступность леджера не прерывает ожидание.
func TestClient_AwaitConfirmation_SurvivesUnavailable(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		switch {
		case n == 1:
			w.WriteHeader(http.StatusInternalServerError)
		case n == 2:
			http.NotFound(w, r) // ещё не в индексе леджера
		default:
			_ = json.NewEncoder(w).Encode(model.LedgerTransaction{TxHash: "0xflaky", Status: model.TxConfirmed})
		}
	}))
	defer srv.Close()
	client := New(srv.URL, 5*time.Second, 5*time.Millisecond, testLogger())

	tx, err := client.AwaitConfirmation(context.Background(), "0xflaky", 2*time.Second)
	if err != nil {
		t.Fatalf("AwaitConfirmation() вернул ошибку: %v", err)
	}
	if tx.Status != model.TxConfirmed {
		t.Errorf("статус = %q, ожидается confirmed", tx.Status)
	}
}
