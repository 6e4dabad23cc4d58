// wallet.go — проверка подписей кошелька (ed25519).
//
// Кошелёк — внешний неконтролируемый подписант: модуль получает готовый
// конверт подписи и восстанавливает из него подписанта. Конверт:
// base64(pubkey[32] ‖ signature[64]). Адрес выводится из публичного ключа
// детерминированно, поэтому подмена ключа в конверте меняет адрес
// и проверка равенства с заявленным principal её обнаруживает.
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// envelopeLen — длина конверта подписи: 32 байта ключа + 64 байта подписи.
const envelopeLen = ed25519.PublicKeySize + ed25519.SignatureSize

// DeriveAddress выводит адрес кошелька из публичного ключа:
// 0x + hex первых 20 байт SHA-256 ключа.
func DeriveAddress(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[:20])
}

// ChallengeMessage формирует каноническое сообщение для подписи.
// Встраивает nonce: подпись действительна только для конкретного challenge.
func ChallengeMessage(principal, nonce string) []byte {
	return []byte(fmt.Sprintf("bookmarket-auth\n%s\n%s", strings.ToLower(principal), nonce))
}

// VerifySignature проверяет конверт подписи над каноническим сообщением.
// Восстанавливает адрес подписанта из публичного ключа конверта; возвращает
// ErrSignatureMismatch, если адрес не равен principal или подпись невалидна.
func VerifySignature(principal, nonce, envelope string) error {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return fmt.Errorf("%w: некорректный base64 конверта", ErrSignatureMismatch)
	}
	if len(raw) != envelopeLen {
		return fmt.Errorf("%w: длина конверта %d, ожидается %d", ErrSignatureMismatch, len(raw), envelopeLen)
	}

	pub := ed25519.PublicKey(raw[:ed25519.PublicKeySize])
	sig := raw[ed25519.PublicKeySize:]

	recovered := DeriveAddress(pub)
	if !strings.EqualFold(recovered, principal) {
		return fmt.Errorf("%w: восстановленный адрес %s", ErrSignatureMismatch, recovered)
	}

	if !ed25519.Verify(pub, ChallengeMessage(principal, nonce), sig) {
		return fmt.Errorf("%w: ed25519 подпись невалидна", ErrSignatureMismatch)
	}

	return nil
}

// SignChallenge формирует конверт подписи для challenge.
// Используется тестами и клиентским инструментарием.
func SignChallenge(priv ed25519.PrivateKey, principal, nonce string) string {
	sig := ed25519.Sign(priv, ChallengeMessage(principal, nonce))
	pub := priv.Public().(ed25519.PublicKey)

	raw := make([]byte, 0, envelopeLen)
	raw = append(raw, pub...)
	raw = append(raw, sig...)
	return base64.StdEncoding.EncodeToString(raw)
}
