// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет auth, books, purchases, content и health обработчики.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/bookmarket/internal/api/generated"
)

// APIHandler — основной обработчик API Book Market.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	auth      *AuthHandler
	books     *BooksHandler
	purchases *PurchasesHandler
	content   *ContentHandler
	health    *HealthHandler
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	auth *AuthHandler,
	books *BooksHandler,
	purchases *PurchasesHandler,
	content *ContentHandler,
	health *HealthHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		auth:      auth,
		books:     books,
		purchases: purchases,
		content:   content,
		health:    health,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// --- Auth endpoints ---

// IssueChallenge — выдача одноразового nonce.
func (h *APIHandler) IssueChallenge(w http.ResponseWriter, r *http.Request) {
	h.auth.IssueChallenge(w, r)
}

// VerifyChallenge — проверка подписи и выпуск credential.
func (h *APIHandler) VerifyChallenge(w http.ResponseWriter, r *http.Request) {
	h.auth.VerifyChallenge(w, r)
}

// GetJwks — публичный JWKS.
func (h *APIHandler) GetJwks(w http.ResponseWriter, r *http.Request) {
	h.auth.GetJwks(w, r)
}

// --- Books endpoints ---

// ListBooks — страница каталога.
func (h *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request, params generated.ListBooksParams) {
	h.books.ListBooks(w, r, params)
}

// PublishBook — публикация книги.
func (h *APIHandler) PublishBook(w http.ResponseWriter, r *http.Request) {
	h.books.PublishBook(w, r)
}

// GetBook — карточка книги.
func (h *APIHandler) GetBook(w http.ResponseWriter, r *http.Request, bookId generated.BookId) {
	h.books.GetBook(w, r, bookId)
}

// UpdateBookPrice — смена цены книги.
func (h *APIHandler) UpdateBookPrice(w http.ResponseWriter, r *http.Request, bookId generated.BookId) {
	h.books.UpdateBookPrice(w, r, bookId)
}

// --- Purchases endpoints ---

// CreatePurchase — покупка книги.
func (h *APIHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	h.purchases.CreatePurchase(w, r)
}

// ListPurchases — покупки вызывающего principal.
func (h *APIHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	h.purchases.ListPurchases(w, r)
}

// ReconcilePurchase — сверка покупки по требованию.
func (h *APIHandler) ReconcilePurchase(w http.ResponseWriter, r *http.Request, bookId generated.BookId) {
	h.purchases.ReconcilePurchase(w, r, bookId)
}

// --- Content endpoints ---

// GetContent — байты объекта из content store.
func (h *APIHandler) GetContent(w http.ResponseWriter, r *http.Request, contentId string) {
	h.content.GetContent(w, r, contentId)
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
