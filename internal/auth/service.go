// service.go — сервис аутентификации: challenge-response и выпуск credential.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// PrincipalDirectory — доступ к principals в off-chain индексе.
// Реализуется repository.PrincipalRepository.
type PrincipalDirectory interface {
	// Ensure возвращает principal по адресу, регистрируя его
	// с ролью USER при первом обращении.
	Ensure(ctx context.Context, address string) (*model.Principal, error)
}

// Credential — выпущенный credential с метаданными для API-ответа.
type Credential struct {
	// Token — подписанный JWT (Bearer)
	Token string
	// Principal — адрес кошелька
	Principal string
	// Role — роль на момент выпуска
	Role model.Role
	// ExpiresAt — момент истечения credential (UTC)
	ExpiresAt time.Time
}

// Service — сервис аутентификации Book Market.
type Service struct {
	nonces     *NonceStore
	keys       *KeySet
	principals PrincipalDirectory
	tokenTTL   time.Duration
	logger     *slog.Logger

	// Список отозванных credential (jti → exp).
	// In-memory: отзыв действует до рестарта, что совпадает со временем
	// жизни ключа подписи при сгенерированном ключе.
	revokedMu sync.Mutex
	revoked   map[string]time.Time
}

// NewService создаёт сервис аутентификации.
func NewService(
	nonces *NonceStore,
	keys *KeySet,
	principals PrincipalDirectory,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		nonces:     nonces,
		keys:       keys,
		principals: principals,
		tokenTTL:   tokenTTL,
		logger:     logger.With(slog.String("component", "auth_service")),
		revoked:    make(map[string]time.Time),
	}
}

// IssueChallenge выдаёт одноразовый nonce для principal.
func (s *Service) IssueChallenge(principal string) (nonce string, expiresAt time.Time, err error) {
	return s.nonces.Issue(principal)
}

// Verify проверяет подпись challenge и выпускает credential.
//
// Порядок проверок:
//  1. Подпись — при ошибке nonce НЕ сгорает, клиент может повторить
//     с корректной подписью.
//  2. Consume nonce — одноразовость и окно действия.
//  3. Роль из off-chain индекса (регистрация USER при первом входе).
func (s *Service) Verify(ctx context.Context, principal, nonce, signature string) (*Credential, error) {
	if err := VerifySignature(principal, nonce, signature); err != nil {
		return nil, err
	}

	if err := s.nonces.Consume(principal, nonce); err != nil {
		return nil, err
	}

	p, err := s.principals.Ensure(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("поиск principal в индексе: %w", err)
	}

	token, claims, err := s.keys.Mint(p.Address, p.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Credential выпущен",
		slog.String("principal", p.Address),
		slog.String("role", string(p.Role)),
		slog.String("jti", claims.ID),
	)

	return &Credential{
		Token:     token,
		Principal: p.Address,
		Role:      p.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke отзывает credential по jti до его естественного истечения.
func (s *Service) Revoke(jti string, expiresAt time.Time) {
	s.revokedMu.Lock()
	defer s.revokedMu.Unlock()

	// Попутная очистка истёкших записей
	now := time.Now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}

	s.revoked[jti] = expiresAt
}

// IsRevoked возвращает true, если credential отозван.
func (s *Service) IsRevoked(jti string) bool {
	s.revokedMu.Lock()
	defer s.revokedMu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

// Authorize проверяет credential на допуск к операции (fail closed).
// Возвращает false — никогда не ошибку — для nil claims, истёкшего
// или отозванного credential и роли вне allowed.
func (s *Service) Authorize(claims *Claims, allowed ...model.Role) bool {
	if claims == nil || claims.Subject == "" {
		return false
	}
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return false
	}
	if claims.ID != "" && s.IsRevoked(claims.ID) {
		return false
	}

	for _, role := range allowed {
		if claims.Role == role {
			return true
		}
	}
	return false
}
