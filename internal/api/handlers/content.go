// content.go — публичная выдача объектов content store через gateway ядра.
// Content id — криптографический хэш содержимого, сам по себе capability.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/bookmarket/internal/api/errors"
	"github.com/bigkaa/bookmarket/internal/contentstore"
)

// ContentHandler — обработчик выдачи содержимого.
type ContentHandler struct {
	store  *contentstore.Client
	logger *slog.Logger
}

// NewContentHandler создаёт обработчик содержимого.
func NewContentHandler(store *contentstore.Client, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		store:  store,
		logger: logger.With(slog.String("component", "content_handler")),
	}
}

// GetContent — GET /api/v1/content/{contentId}. Публичный.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request, contentID string) {
	data, err := h.store.Get(r.Context(), contentID)
	if err != nil {
		switch {
		case errors.Is(err, contentstore.ErrNotFound):
			apierrors.NotFound(w, "Объект не найден")
		case errors.Is(err, contentstore.ErrStoreUnavailable):
			apierrors.StoreUnavailable(w, "Content store недоступен")
		default:
			h.logger.Error("Ошибка чтения content store",
				slog.String("content_id", contentID),
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Внутренняя ошибка")
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
