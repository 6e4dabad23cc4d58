// auth.go — обработчики wallet-аутентификации: challenge, verify, JWKS.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/bookmarket/internal/api/errors"
	"github.com/bigkaa/bookmarket/internal/api/generated"
	"github.com/bigkaa/bookmarket/internal/auth"
)

// AuthHandler — обработчик endpoints аутентификации.
type AuthHandler struct {
	svc    *auth.Service
	keys   *auth.KeySet
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(svc *auth.Service, keys *auth.KeySet, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		keys:   keys,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// IssueChallenge — POST /api/v1/auth/challenge.
// Выдаёт одноразовый nonce для указанного principal.
func (h *AuthHandler) IssueChallenge(w http.ResponseWriter, r *http.Request) {
	var req generated.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}
	if req.Principal == "" {
		apierrors.ValidationError(w, "Поле principal обязательно")
		return
	}

	nonce, expiresAt, err := h.svc.IssueChallenge(req.Principal)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownPrincipal) {
			apierrors.ValidationError(w, "Некорректный адрес кошелька")
			return
		}
		h.logger.Error("Ошибка выдачи challenge", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось выдать challenge")
		return
	}

	writeJSON(w, http.StatusOK, generated.ChallengeResponse{
		Principal: req.Principal,
		Nonce:     nonce,
		ExpiresAt: expiresAt,
	})
}

// VerifyChallenge — POST /api/v1/auth/verify.
// Проверяет подпись nonce и выпускает credential.
func (h *AuthHandler) VerifyChallenge(w http.ResponseWriter, r *http.Request) {
	var req generated.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}
	if req.Principal == "" || req.Nonce == "" || req.Signature == "" {
		apierrors.ValidationError(w, "Поля principal, nonce и signature обязательны")
		return
	}

	cred, err := h.svc.Verify(r.Context(), req.Principal, req.Nonce, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSignatureMismatch):
			apierrors.SignatureMismatch(w, "Подпись не соответствует principal")
		case errors.Is(err, auth.ErrNonceReused):
			apierrors.NonceReused(w, "Nonce уже использован")
		case errors.Is(err, auth.ErrNonceExpired):
			apierrors.NonceExpired(w, "Nonce неизвестен или истёк")
		case errors.Is(err, auth.ErrUnknownPrincipal):
			apierrors.ValidationError(w, "Некорректный адрес кошелька")
		default:
			h.logger.Error("Ошибка verify", slog.String("error", err.Error()))
			apierrors.InternalError(w, "Не удалось выпустить credential")
		}
		return
	}

	writeJSON(w, http.StatusOK, generated.TokenResponse{
		Token:     cred.Token,
		Principal: cred.Principal,
		Role:      generated.TokenResponseRole(cred.Role),
		ExpiresAt: cred.ExpiresAt,
	})
}

// GetJwks — GET /api/v1/auth/jwks.
// Публичный JWKS для валидации credential внешними коллабораторами.
func (h *AuthHandler) GetJwks(w http.ResponseWriter, r *http.Request) {
	raw, err := h.keys.JWKS(r.Context())
	if err != nil {
		h.logger.Error("Ошибка сериализации JWKS", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось получить JWKS")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
