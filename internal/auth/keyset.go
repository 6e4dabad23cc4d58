// keyset.go — ключи подписи credential (JWT RS256) и публичный JWKS.
//
// Ключ либо загружается из PEM (BM_JWT_KEY_FILE), либо генерируется
// при старте. Публичная часть публикуется через JWKS endpoint, чтобы
// внешние коллабораторы (API gateway, UI backend-for-frontend) могли
// валидировать credential без обращения к Book Market.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// Issuer — значение iss в выпускаемых credential.
const Issuer = "bookmarket/auth"

// Claims — структура JWT claims credential Book Market.
// sub — адрес кошелька principal, role — роль из off-chain индекса.
type Claims struct {
	jwt.RegisteredClaims
	// Role — роль principal на момент выпуска credential
	Role model.Role `json:"role"`
}

// KeySet — ключевая пара подписи credential и JWKS на её основе.
type KeySet struct {
	private *rsa.PrivateKey
	kid     string
	storage jwkset.Storage
	jwks    keyfunc.Keyfunc
}

// NewKeySet создаёт KeySet. keyFile — путь к PEM RSA приватного ключа;
// пустая строка — ключ генерируется (credential инвалидируются при рестарте).
func NewKeySet(keyFile string) (*KeySet, error) {
	var private *rsa.PrivateKey
	var err error

	if keyFile != "" {
		private, err = loadRSAKey(keyFile)
		if err != nil {
			return nil, fmt.Errorf("загрузка ключа подписи %s: %w", keyFile, err)
		}
	} else {
		private, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("генерация ключа подписи: %w", err)
		}
	}

	kid := uuid.NewString()

	storage := jwkset.NewMemoryStorage()
	jwk, err := jwkset.NewJWKFromKey(private, jwkset.JWKOptions{
		Metadata: jwkset.JWKMetadataOptions{
			ALG: jwkset.AlgRS256,
			KID: kid,
			USE: jwkset.UseSig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWK: %w", err)
	}
	if err := storage.KeyWrite(context.Background(), jwk); err != nil {
		return nil, fmt.Errorf("запись JWK в storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &KeySet{
		private: private,
		kid:     kid,
		storage: storage,
		jwks:    k,
	}, nil
}

// Mint выпускает подписанный credential для principal с указанной ролью.
func (ks *KeySet) Mint(principal string, role model.Role, ttl time.Duration) (token string, claims *Claims, err error) {
	now := time.Now().UTC()
	claims = &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	t.Header["kid"] = ks.kid

	token, err = t.SignedString(ks.private)
	if err != nil {
		return "", nil, fmt.Errorf("подпись credential: %w", err)
	}
	return token, claims, nil
}

// KeyfuncCtx возвращает jwt.Keyfunc для валидации credential.
func (ks *KeySet) KeyfuncCtx(ctx context.Context) jwt.Keyfunc {
	return ks.jwks.KeyfuncCtx(ctx)
}

// JWKS возвращает публичный JWKS документ (RFC 7517).
func (ks *KeySet) JWKS(ctx context.Context) (json.RawMessage, error) {
	raw, err := ks.storage.JSONPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("сериализация JWKS: %w", err)
	}
	return raw, nil
}

// loadRSAKey загружает RSA приватный ключ из PEM-файла (PKCS1 или PKCS8).
func loadRSAKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("PEM-блок не найден")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("парсинг приватного ключа: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ожидается RSA ключ, получен %T", parsed)
	}
	return key, nil
}
