// purchases.go — обработчики покупок: покупка, регистрация, список, сверка.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/bookmarket/internal/api/errors"
	"github.com/bigkaa/bookmarket/internal/api/generated"
	"github.com/bigkaa/bookmarket/internal/api/middleware"
	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/service"
)

// PurchasesHandler — обработчик endpoints покупок.
type PurchasesHandler struct {
	purchase  *service.PurchaseService
	reconcile *service.ReconcileService
	logger    *slog.Logger
}

// NewPurchasesHandler создаёт обработчик покупок.
func NewPurchasesHandler(
	purchase *service.PurchaseService,
	reconcile *service.ReconcileService,
	logger *slog.Logger,
) *PurchasesHandler {
	return &PurchasesHandler{
		purchase:  purchase,
		reconcile: reconcile,
		logger:    logger.With(slog.String("component", "purchases_handler")),
	}
}

// CreatePurchase — POST /api/v1/purchases.
// Без tx_hash платёж отправляет ядро; с tx_hash регистрируется
// уже оплаченная клиентом транзакция. 201 — покупка записана,
// 202 — исход платежа пока неизвестен, 402 — платёж отклонён.
func (h *PurchasesHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.PrincipalFromContext(r.Context())
	if buyer == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req generated.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}

	var (
		outcome *service.PurchaseOutcome
		err     error
	)
	if req.TxHash != nil && *req.TxHash != "" {
		outcome, err = h.purchase.Register(r.Context(), buyer, req.BookId.String(), *req.TxHash)
	} else {
		outcome, err = h.purchase.Purchase(r.Context(), buyer, req.BookId.String())
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if outcome.Pending {
		h.writePending(w, outcome)
		return
	}
	writeJSON(w, http.StatusCreated, toAPIPurchase(outcome.Record))
}

// ListPurchases — GET /api/v1/purchases. Покупки вызывающего principal.
func (h *PurchasesHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.PrincipalFromContext(r.Context())
	if buyer == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	records, err := h.purchase.ListMine(r.Context(), buyer)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	purchases := make([]generated.Purchase, 0, len(records))
	for _, rec := range records {
		purchases = append(purchases, toAPIPurchase(rec))
	}
	writeJSON(w, http.StatusOK, generated.PurchaseListResponse{
		Purchases: purchases,
		Total:     len(purchases),
	})
}

// ReconcilePurchase — POST /api/v1/purchases/{bookId}/reconcile.
// Сверка по требованию: ищет в леджере подтверждённый платёж
// покупателя за книгу и дозаписывает пропущенную покупку.
func (h *PurchasesHandler) ReconcilePurchase(w http.ResponseWriter, r *http.Request, bookID generated.BookId) {
	buyer := middleware.PrincipalFromContext(r.Context())
	if buyer == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	rec, err := h.reconcile.ReconcileBook(r.Context(), bookID.String(), buyer.Address)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIPurchase(rec))
}

// writePending отвечает 202: исход разрешит фоновая сверка.
func (h *PurchasesHandler) writePending(w http.ResponseWriter, outcome *service.PurchaseOutcome) {
	message := "Исход платежа не определён, покупка будет доведена сверкой"
	pending := generated.PurchasePending{
		Code:    generated.PURCHASEPENDING,
		Message: &message,
	}
	if id, err := uuid.Parse(outcome.AttemptID); err == nil {
		pending.AttemptId = id
	}
	if outcome.TxHash != "" {
		txHash := outcome.TxHash
		pending.TxHash = &txHash
	}
	writeJSON(w, http.StatusAccepted, pending)
}

// toAPIPurchase конвертирует PurchaseRecord в API-представление.
func toAPIPurchase(rec *model.PurchaseRecord) generated.Purchase {
	p := generated.Purchase{
		BuyerAddress: rec.BuyerAddress,
		TxHash:       rec.TxHash,
		AmountPaid:   rec.AmountPaid,
		PurchasedAt:  rec.PurchasedAt,
	}
	if id, err := uuid.Parse(rec.PurchaseID); err == nil {
		p.PurchaseId = id
	}
	if id, err := uuid.Parse(rec.BookID); err == nil {
		p.BookId = id
	}
	return p
}

// writeServiceError транслирует ошибки сервисного слоя в HTTP-ответ.
func (h *PurchasesHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrTxMismatch):
		apierrors.PaymentFailed(w, err.Error())
	case errors.Is(err, service.ErrPaymentFailed):
		apierrors.PaymentFailed(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Книга или платёж не найдены")
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, "Недостаточно прав")
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		apierrors.LedgerUnavailable(w, "Леджер недоступен, повторите позже")
	default:
		h.logger.Error("Внутренняя ошибка покупки", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка")
	}
}
