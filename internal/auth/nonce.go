// nonce.go — потокобезопасное in-memory хранилище одноразовых nonce.
//
// Nonce привязан к principal, живёт BM_NONCE_TTL и сгорает при первом
// успешном Consume. Не персистентное: рестарт инвалидирует выданные
// challenge, клиент просто запрашивает новый.
package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// nonceEntry — выданный nonce с окном действия.
type nonceEntry struct {
	principal string
	expiresAt time.Time
	used      bool
}

// NonceStore — хранилище одноразовых nonce для challenge-response.
type NonceStore struct {
	mu      sync.Mutex
	entries map[string]*nonceEntry
	ttl     time.Duration
	logger  *slog.Logger

	cancel context.CancelFunc
	now    func() time.Time // подменяется в тестах
}

// NewNonceStore создаёт хранилище nonce с указанным TTL.
func NewNonceStore(ttl time.Duration, logger *slog.Logger) *NonceStore {
	return &NonceStore{
		entries: make(map[string]*nonceEntry),
		ttl:     ttl,
		logger:  logger.With(slog.String("component", "nonce_store")),
		now:     time.Now,
	}
}

// Issue выдаёт одноразовый nonce для principal.
// Возвращает ErrUnknownPrincipal при некорректном формате адреса.
func (s *NonceStore) Issue(principal string) (nonce string, expiresAt time.Time, err error) {
	if !model.IsValidAddress(principal) {
		return "", time.Time{}, ErrUnknownPrincipal
	}

	nonce = uuid.NewString()
	expiresAt = s.now().Add(s.ttl)

	s.mu.Lock()
	s.entries[nonce] = &nonceEntry{
		principal: principal,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()

	return nonce, expiresAt, nil
}

// Consume проверяет и инвалидирует nonce (одноразовый).
// Возвращает ErrNonceReused для уже использованного nonce,
// ErrNonceExpired для просроченного, неизвестного или выданного
// другому principal.
func (s *NonceStore) Consume(principal, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[nonce]
	if !ok || entry.principal != principal {
		return ErrNonceExpired
	}
	if entry.used {
		return ErrNonceReused
	}
	if s.now().After(entry.expiresAt) {
		return ErrNonceExpired
	}

	entry.used = true
	return nil
}

// StartJanitor запускает фоновую горутину очистки просроченных nonce.
// Интервал очистки равен TTL: просроченная запись живёт не дольше 2×TTL.
func (s *NonceStore) StartJanitor(ctx context.Context) {
	jCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(jCtx)
}

// Stop останавливает фоновую очистку.
func (s *NonceStore) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// run — основной цикл фоновой очистки.
func (s *NonceStore) run(ctx context.Context) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

// purge удаляет просроченные и использованные nonce.
func (s *NonceStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for nonce, entry := range s.entries {
		if entry.used || now.After(entry.expiresAt) {
			delete(s.entries, nonce)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Очистка nonce выполнена", slog.Int("removed", removed))
	}
}
