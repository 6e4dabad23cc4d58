// publish.go — сервис публикации книги.
//
// Протокол публикации (порядок важен):
//  1. Загрузка файла книги в content store
//  2. Загрузка обложки (опционально)
//  3. Сборка и загрузка metadata JSON
//  4. Одна INSERT-запись в каталог
//
// Сбой записи в индекс после успешных загрузок — retryable: объекты
// в content-addressed хранилище безвредны как orphan'ы, повторная
// публикация тех же байтов вернёт те же ContentID без дублирования.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/repository"
)

// Prometheus-метрики публикации.
var publishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bm_publish_total",
	Help: "Общее количество публикаций книг по результату.",
}, []string{"status"})

// ContentStore — операции content-addressed хранилища для публикации.
// Реализуется contentstore.Client.
type ContentStore interface {
	Put(ctx context.Context, data []byte, mime model.MimeClass) (model.ContentObject, error)
	Get(ctx context.Context, contentID string) ([]byte, error)
	GatewayURL(contentID string) string
}

// PublishParams — параметры полной публикации (multipart-вариант):
// ядро само выполняет загрузки в хранилище.
type PublishParams struct {
	Title       string
	Description string
	PriceAmount int64
	BookData    []byte
	CoverData   []byte // опционально
}

// PreparedParams — параметры публикации с заранее загруженным
// содержимым (JSON-вариант): клиент передаёт готовые ContentID.
type PreparedParams struct {
	Title          string
	Description    string
	PriceAmount    int64
	ContentID      string
	CoverContentID string // опционально
}

// PublishService — бизнес-логика публикации книг.
type PublishService struct {
	store          ContentStore
	catalog        repository.CatalogRepository
	maxContentSize int64
	logger         *slog.Logger
}

// NewPublishService создаёт сервис публикации.
func NewPublishService(
	store ContentStore,
	catalog repository.CatalogRepository,
	maxContentSize int64,
	logger *slog.Logger,
) *PublishService {
	return &PublishService{
		store:          store,
		catalog:        catalog,
		maxContentSize: maxContentSize,
		logger:         logger.With(slog.String("component", "publish_service")),
	}
}

// Publish выполняет полный протокол публикации от имени author.
// Требует роль AUTHOR или SELLER.
func (s *PublishService) Publish(ctx context.Context, author *model.Principal, p PublishParams) (*model.CatalogEntry, error) {
	if err := s.authorizePublisher(author); err != nil {
		return nil, err
	}
	if err := validateListing(p.Title, p.PriceAmount); err != nil {
		return nil, err
	}
	if len(p.BookData) == 0 {
		return nil, fmt.Errorf("%w: пустой файл книги", ErrValidation)
	}
	if int64(len(p.BookData)) > s.maxContentSize {
		return nil, fmt.Errorf("%w: файл книги превышает %d байт", ErrValidation, s.maxContentSize)
	}

	bookObj, err := s.store.Put(ctx, p.BookData, model.MimeBook)
	if err != nil {
		publishTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	var coverObj model.ContentObject
	if len(p.CoverData) > 0 {
		coverObj, err = s.store.Put(ctx, p.CoverData, model.MimeCover)
		if err != nil {
			publishTotal.WithLabelValues("store_error").Inc()
			return nil, err
		}
	}

	meta := model.BookMetadata{
		Title:          p.Title,
		Description:    p.Description,
		AuthorAddress:  author.Address,
		ContentID:      bookObj.ContentID,
		CoverContentID: coverObj.ContentID,
		BookSize:       bookObj.ByteLength,
		CoverSize:      coverObj.ByteLength,
		CreatedAt:      time.Now().UTC(),
	}

	metaID, err := s.uploadMetadata(ctx, meta)
	if err != nil {
		publishTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	return s.createEntry(ctx, author, p.Title, p.Description, p.PriceAmount,
		bookObj.ContentID, coverObj.ContentID, metaID)
}

// PublishPrepared публикует книгу с заранее загруженным содержимым.
// Metadata JSON собирается и загружается сервисом в любом случае.
func (s *PublishService) PublishPrepared(ctx context.Context, author *model.Principal, p PreparedParams) (*model.CatalogEntry, error) {
	if err := s.authorizePublisher(author); err != nil {
		return nil, err
	}
	if err := validateListing(p.Title, p.PriceAmount); err != nil {
		return nil, err
	}
	if p.ContentID == "" {
		return nil, fmt.Errorf("%w: content_id обязателен", ErrValidation)
	}

	meta := model.BookMetadata{
		Title:          p.Title,
		Description:    p.Description,
		AuthorAddress:  author.Address,
		ContentID:      p.ContentID,
		CoverContentID: p.CoverContentID,
		CreatedAt:      time.Now().UTC(),
	}

	metaID, err := s.uploadMetadata(ctx, meta)
	if err != nil {
		publishTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	return s.createEntry(ctx, author, p.Title, p.Description, p.PriceAmount,
		p.ContentID, p.CoverContentID, metaID)
}

// authorizePublisher проверяет право публикации.
func (s *PublishService) authorizePublisher(author *model.Principal) error {
	if author == nil {
		return ErrForbidden
	}
	if author.Role != model.RoleAuthor && author.Role != model.RoleSeller {
		return fmt.Errorf("%w: публикация доступна ролям AUTHOR и SELLER", ErrForbidden)
	}
	return nil
}

// uploadMetadata сериализует и загружает metadata JSON.
func (s *PublishService) uploadMetadata(ctx context.Context, meta model.BookMetadata) (string, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("сериализация metadata: %w", err)
	}
	obj, err := s.store.Put(ctx, data, model.MimeMetadata)
	if err != nil {
		return "", err
	}
	return obj.ContentID, nil
}

// createEntry записывает книгу в каталог.
func (s *PublishService) createEntry(
	ctx context.Context,
	author *model.Principal,
	title, description string,
	price int64,
	contentID, coverID, metaID string,
) (*model.CatalogEntry, error) {
	entry := &model.CatalogEntry{
		BookID:            uuid.NewString(),
		Title:             title,
		Description:       description,
		PriceAmount:       price,
		ContentID:         contentID,
		CoverContentID:    coverID,
		MetadataContentID: metaID,
		AuthorAddress:     author.Address,
		Status:            model.BookActive,
	}

	if err := s.catalog.Create(ctx, entry); err != nil {
		publishTotal.WithLabelValues("index_error").Inc()
		// Загруженные объекты остаются orphan'ами — повторная публикация
		// тех же байтов вернёт те же ContentID
		return nil, fmt.Errorf("запись в каталог не выполнена, повторите публикацию: %w", err)
	}

	publishTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Книга опубликована",
		slog.String("book_id", entry.BookID),
		slog.String("author", author.Address),
		slog.Int64("price", price),
	)
	return entry, nil
}

// validateListing проверяет общие поля публикации.
func validateListing(title string, price int64) error {
	if title == "" {
		return fmt.Errorf("%w: название обязательно", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: цена не может быть отрицательной", ErrValidation)
	}
	return nil
}
