// books.go — обработчики каталога: список, карточка, публикация, цена.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/bigkaa/bookmarket/internal/api/errors"
	"github.com/bigkaa/bookmarket/internal/api/generated"
	"github.com/bigkaa/bookmarket/internal/api/middleware"
	"github.com/bigkaa/bookmarket/internal/contentstore"
	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/service"
)

// BooksHandler — обработчик endpoints каталога.
type BooksHandler struct {
	catalog        *service.CatalogService
	publish        *service.PublishService
	maxContentSize int64
	logger         *slog.Logger
}

// NewBooksHandler создаёт обработчик каталога.
func NewBooksHandler(
	catalog *service.CatalogService,
	publish *service.PublishService,
	maxContentSize int64,
	logger *slog.Logger,
) *BooksHandler {
	return &BooksHandler{
		catalog:        catalog,
		publish:        publish,
		maxContentSize: maxContentSize,
		logger:         logger.With(slog.String("component", "books_handler")),
	}
}

// ListBooks — GET /api/v1/books. Публичный.
func (h *BooksHandler) ListBooks(w http.ResponseWriter, r *http.Request, params generated.ListBooksParams) {
	limit, offset := 0, 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	if params.Offset != nil {
		offset = *params.Offset
	}

	entries, total, err := h.catalog.List(r.Context(), limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	books := make([]generated.Book, 0, len(entries))
	for _, e := range entries {
		books = append(books, h.toAPIBook(e))
	}

	writeJSON(w, http.StatusOK, generated.BookListResponse{Books: books, Total: total})
}

// GetBook — GET /api/v1/books/{bookId}. Публичный.
func (h *BooksHandler) GetBook(w http.ResponseWriter, r *http.Request, bookID generated.BookId) {
	entry, err := h.catalog.Get(r.Context(), bookID.String())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAPIBook(entry))
}

// PublishBook — POST /api/v1/books. Требует роль AUTHOR или SELLER.
// JSON-тело — заранее загруженные content id; multipart — полная публикация.
func (h *BooksHandler) PublishBook(w http.ResponseWriter, r *http.Request) {
	author := middleware.PrincipalFromContext(r.Context())
	if author == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.publishMultipart(w, r, author)
		return
	}
	h.publishJSON(w, r, author)
}

// publishJSON — публикация с заранее загруженным содержимым.
func (h *BooksHandler) publishJSON(w http.ResponseWriter, r *http.Request, author *model.Principal) {
	var req generated.PublishBookJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}

	p := service.PreparedParams{
		Title:       req.Title,
		PriceAmount: req.PriceAmount,
		ContentID:   req.ContentId,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CoverContentId != nil {
		p.CoverContentID = *req.CoverContentId
	}

	entry, err := h.publish.PublishPrepared(r.Context(), author, p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toAPIBook(entry))
}

// publishMultipart — полная публикация: загрузки выполняет ядро.
func (h *BooksHandler) publishMultipart(w http.ResponseWriter, r *http.Request, author *model.Principal) {
	// Запас на multipart-оверхед и обложку поверх лимита файла книги
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxContentSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.ContentTooLarge(w, "Содержимое превышает допустимый размер")
			return
		}
		apierrors.ValidationError(w, "Некорректное multipart-тело")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	price, err := strconv.ParseInt(r.FormValue("price_amount"), 10, 64)
	if err != nil {
		apierrors.ValidationError(w, "Поле price_amount должно быть целым числом")
		return
	}

	bookData, err := h.readFormFile(r, "book")
	if err != nil {
		apierrors.ValidationError(w, "Файл book обязателен")
		return
	}
	if int64(len(bookData)) > h.maxContentSize {
		apierrors.ContentTooLarge(w, "Файл книги превышает допустимый размер")
		return
	}

	coverData, _ := h.readFormFile(r, "cover") // обложка опциональна

	entry, err := h.publish.Publish(r.Context(), author, service.PublishParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		PriceAmount: price,
		BookData:    bookData,
		CoverData:   coverData,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toAPIBook(entry))
}

// UpdateBookPrice — PATCH /api/v1/books/{bookId}/price. Только автор.
func (h *BooksHandler) UpdateBookPrice(w http.ResponseWriter, r *http.Request, bookID generated.BookId) {
	actor := middleware.PrincipalFromContext(r.Context())
	if actor == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	var req generated.UpdateBookPriceJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса")
		return
	}

	entry, err := h.catalog.UpdatePrice(r.Context(), actor, bookID.String(), req.PriceAmount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toAPIBook(entry))
}

// readFormFile читает файл из multipart-формы целиком.
func (h *BooksHandler) readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// toAPIBook конвертирует CatalogEntry в API-представление.
func (h *BooksHandler) toAPIBook(e *model.CatalogEntry) generated.Book {
	book := generated.Book{
		Title:         e.Title,
		PriceAmount:   e.PriceAmount,
		ContentId:     e.ContentID,
		AuthorAddress: e.AuthorAddress,
		Status:        generated.BookStatus(e.Status),
		CreatedAt:     e.CreatedAt,
	}
	if id, err := uuid.Parse(e.BookID); err == nil {
		book.BookId = id
	}
	if e.Description != "" {
		book.Description = &e.Description
	}
	if e.CoverContentID != "" {
		book.CoverContentId = &e.CoverContentID
	}
	if e.MetadataContentID != "" {
		book.MetadataContentId = &e.MetadataContentID
	}
	downloadURL := h.catalog.DownloadURL(e)
	book.DownloadUrl = &downloadURL
	updatedAt := e.UpdatedAt
	book.UpdatedAt = &updatedAt
	return book
}

// writeServiceError транслирует ошибки сервисного слоя в HTTP-ответ.
func (h *BooksHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Книга не найдена")
	case errors.Is(err, service.ErrForbidden):
		apierrors.Forbidden(w, "Недостаточно прав")
	case errors.Is(err, contentstore.ErrStoreUnavailable):
		apierrors.StoreUnavailable(w, "Content store недоступен, повторите публикацию")
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		apierrors.LedgerUnavailable(w, "Леджер недоступен")
	default:
		h.logger.Error("Внутренняя ошибка каталога", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка")
	}
}
