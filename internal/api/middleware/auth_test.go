package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bigkaa/bookmarket/internal/auth"
	"github.com/bigkaa/bookmarket/internal/domain/model"
)

const testAddr = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRevoker — in-memory список отозванных jti.
type fakeRevoker struct {
	revoked map[string]bool
}

func (f *fakeRevoker) IsRevoked(jti string) bool {
	return f.revoked[jti]
}

// newTestAuth собирает KeySet и middleware со сгенерированным ключом.
func newTestAuth(t *testing.T, revoker Revoker) (*auth.KeySet, *JWTAuth) {
	t.Helper()
	keys, err := auth.NewKeySet("")
	if err != nil {
		t.Fatalf("создание KeySet: %v", err)
	}
	return keys, NewJWTAuth(keys, revoker, 0, testLogger())
}

// echoHandler отвечает 200 и фиксирует principal из контекста.
func echoHandler(got **model.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

// TestJWTAuth_ValidToken проверяет пропуск валидного credential
// и доступность principal в контексте обработчика.
func TestJWTAuth_ValidToken(t *testing.T) {
	keys, mw := newTestAuth(t, nil)

	token, _, err := keys.Mint(testAddr, model.RoleAuthor, time.Hour)
	if err != nil {
		t.Fatalf("выпуск credential: %v", err)
	}

	var principal *model.Principal
	handler := mw.Middleware()(echoHandler(&principal))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200; тело: %s", rec.Code, rec.Body.String())
	}
	if principal == nil {
		t.Fatal("principal не попал в контекст")
	}
	if principal.Address != testAddr {
		t.Errorf("address = %q, ожидается %q", principal.Address, testAddr)
	}
	if principal.Role != model.RoleAuthor {
		t.Errorf("role = %q, ожидается AUTHOR", principal.Role)
	}
}

// TestJWTAuth_Rejections проверяет отказы по заголовку и токену.
func TestJWTAuth_Rejections(t *testing.T) {
	keys, mw := newTestAuth(t, nil)

	// Токен, подписанный чужим ключом
	otherKeys, err := auth.NewKeySet("")
	if err != nil {
		t.Fatalf("создание второго KeySet: %v", err)
	}
	foreign, _, err := otherKeys.Mint(testAddr, model.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("выпуск чужого credential: %v", err)
	}

	// Истёкший токен
	expired, _, err := keys.Mint(testAddr, model.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("выпуск истёкшего credential: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"нет заголовка", ""},
		{"не Bearer", "Basic dXNlcjpwYXNz"},
		{"пустой token", "Bearer "},
		{"мусор вместо token", "Bearer not.a.jwt"},
		{"чужой ключ подписи", "Bearer " + foreign},
		{"истёкший credential", "Bearer " + expired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var principal *model.Principal
			handler := mw.Middleware()(echoHandler(&principal))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("статус = %d, ожидается 401", rec.Code)
			}
			if principal != nil {
				t.Error("обработчик вызван несмотря на отказ")
			}
		})
	}
}

// TestJWTAuth_RevokedToken проверяет отказ по отозванному jti.
func TestJWTAuth_RevokedToken(t *testing.T) {
	revoker := &fakeRevoker{revoked: make(map[string]bool)}
	keys, mw := newTestAuth(t, revoker)

	token, claims, err := keys.Mint(testAddr, model.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("выпуск credential: %v", err)
	}
	revoker.revoked[claims.ID] = true

	var principal *model.Principal
	handler := mw.Middleware()(echoHandler(&principal))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("статус = %d, ожидается 401 для отозванного credential", rec.Code)
	}
	if principal != nil {
		t.Error("обработчик вызван для отозванного credential")
	}
}

// TestPrincipalFromContext_Empty проверяет nil для чистого контекста.
func TestPrincipalFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p := PrincipalFromContext(req.Context()); p != nil {
		t.Errorf("ожидался nil principal, получено: %+v", p)
	}
}
