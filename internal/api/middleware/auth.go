// auth.go — JWT middleware аутентификации маркетплейса.
// Валидирует credential, выпущенный локальным auth-сервисом (RS256,
// ключ из KeySet), проверяет отзыв по jti и помещает claims в контекст.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/bookmarket/internal/api/errors"
	"github.com/bigkaa/bookmarket/internal/auth"
	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyClaims — проверенные claims credential в контексте запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// Revoker — проверка отзыва credential по jti.
// Реализуется auth.Service.
type Revoker interface {
	IsRevoked(jti string) bool
}

// JWTAuth — middleware аутентификации по credential маркетплейса.
type JWTAuth struct {
	keys    *auth.KeySet
	revoker Revoker
	leeway  time.Duration
	logger  *slog.Logger
}

// NewJWTAuth создаёт JWT middleware.
// keys — KeySet auth-сервиса (подпись и валидация — одна ключевая пара).
// revoker — проверка отзыва (auth.Service); nil отключает проверку.
func NewJWTAuth(keys *auth.KeySet, revoker Revoker, leeway time.Duration, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		keys:    keys,
		revoker: revoker,
		leeway:  leeway,
		logger:  logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись (RS256), issuer, срок
// действия и отзыв, помещает claims в контекст запроса.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			tokenString := parts[1]
			if tokenString == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			claims := &auth.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims,
				j.keys.KeyfuncCtx(r.Context()),
				jwt.WithValidMethods([]string{"RS256"}),
				jwt.WithExpirationRequired(),
				jwt.WithIssuer(auth.Issuer),
				jwt.WithLeeway(j.leeway),
			)
			if err != nil || !token.Valid {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный credential")
				return
			}

			if claims.Subject == "" {
				apierrors.Unauthorized(w, "Отсутствует sub в credential")
				return
			}

			if j.revoker != nil && claims.ID != "" && j.revoker.IsRevoked(claims.ID) {
				apierrors.Unauthorized(w, "Credential отозван")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext извлекает claims credential из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return claims
}

// PrincipalFromContext извлекает principal из контекста запроса.
// Возвращает nil для неаутентифицированного запроса.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.Subject == "" {
		return nil
	}
	return &model.Principal{
		Address: claims.Subject,
		Role:    claims.Role,
	}
}
