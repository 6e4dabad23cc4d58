package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// testLogger — логгер, пишущий в никуда.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAddr = "0x0123456789abcdef0123456789abcdef01234567"

// TestNonceStore_IssueConsume проверяет базовый цикл выдачи и сгорания nonce.
func TestNonceStore_IssueConsume(t *testing.T) {
	store := NewNonceStore(5*time.Minute, testLogger())

	nonce, expiresAt, err := store.Issue(testAddr)
	if err != nil {
		t.Fatalf("Issue() вернул ошибку: %v", err)
	}
	if nonce == "" {
		t.Fatal("Issue() вернул пустой nonce")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v в прошлом", expiresAt)
	}

	if err := store.Consume(testAddr, nonce); err != nil {
		t.Fatalf("Consume() вернул ошибку для валидного nonce: %v", err)
	}
}

// TestNonceStore_Reuse проверяет одноразовость: второй Consume — ErrNonceReused.
func TestNonceStore_Reuse(t *testing.T) {
	store := NewNonceStore(5*time.Minute, testLogger())

	nonce, _, err := store.Issue(testAddr)
	if err != nil {
		t.Fatalf("Issue() вернул ошибку: %v", err)
	}

	if err := store.Consume(testAddr, nonce); err != nil {
		t.Fatalf("первый Consume() вернул ошибку: %v", err)
	}

	err = store.Consume(testAddr, nonce)
	if !errors.Is(err, ErrNonceReused) {
		t.Fatalf("ожидался ErrNonceReused, получено: %v", err)
	}
}

// TestNonceStore_Expired проверяет сгорание nonce по истечении TTL.
func TestNonceStore_Expired(t *testing.T) {
	store := NewNonceStore(time.Minute, testLogger())

	base := time.Now()
	store.now = func() time.Time { return base }

	nonce, _, err := store.Issue(testAddr)
	if err != nil {
		t.Fatalf("Issue() вернул ошибку: %v", err)
	}

	// Перематываем время за пределы TTL
	store.now = func() time.Time { return base.Add(2 * time.Minute) }

	err = store.Consume(testAddr, nonce)
	if !errors.Is(err, ErrNonceExpired) {
		t.Fatalf("ожидался ErrNonceExpired, получено: %v", err)
	}
}

// TestNonceStore_WrongPrincipal проверяет, что nonce чужого principal
// неотличим от неизвестного.
func TestNonceStore_WrongPrincipal(t *testing.T) {
	store := NewNonceStore(5*time.Minute, testLogger())

	nonce, _, err := store.Issue(testAddr)
	if err != nil {
		t.Fatalf("Issue() вернул ошибку: %v", err)
	}

	other := "0xfedcba9876543210fedcba9876543210fedcba98"
	err = store.Consume(other, nonce)
	if !errors.Is(err, ErrNonceExpired) {
		t.Fatalf("ожидался ErrNonceExpired для чужого principal, получено: %v", err)
	}
}

// TestNonceStore_InvalidAddress проверяет отклонение некорректного адреса.
func TestNonceStore_InvalidAddress(t *testing.T) {
	store := NewNonceStore(5*time.Minute, testLogger())

	for _, addr := range []string{"", "not-an-address", "0x123", "0xZZ23456789abcdef0123456789abcdef01234567"} {
		if _, _, err := store.Issue(addr); !errors.Is(err, ErrUnknownPrincipal) {
			t.Errorf("Issue(%q): ожидался ErrUnknownPrincipal, получено: %v", addr, err)
		}
	}
}

// TestNonceStore_Purge проверяет очистку использованных и просроченных записей.
func TestNonceStore_Purge(t *testing.T) {
	store := NewNonceStore(time.Minute, testLogger())

	base := time.Now()
	store.now = func() time.Time { return base }

	used, _, _ := store.Issue(testAddr)
	expired, _, _ := store.Issue(testAddr)
	_ = store.Consume(testAddr, used)

	// expired выходит за TTL, fresh издаётся уже в новом времени
	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	fresh, _, _ := store.Issue(testAddr)
	store.purge()

	if err := store.Consume(testAddr, fresh); err != nil {
		t.Errorf("свежий nonce удалён очисткой: %v", err)
	}
	if err := store.Consume(testAddr, used); !errors.Is(err, ErrNonceExpired) {
		t.Errorf("использованный nonce пережил очистку: %v", err)
	}
	if err := store.Consume(testAddr, expired); !errors.Is(err, ErrNonceExpired) {
		t.Errorf("просроченный nonce пережил очистку: %v", err)
	}
}
