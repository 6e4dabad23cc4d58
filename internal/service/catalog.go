// catalog.go — сервис каталога: чтение с LRU-кэшем и смена цены.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/repository"
)

const (
	// defaultPageSize — размер страницы каталога по умолчанию.
	defaultPageSize = 20
	// maxPageSize — максимальный размер страницы каталога.
	maxPageSize = 100
)

// CatalogService — бизнес-логика каталога книг.
type CatalogService struct {
	catalog  repository.CatalogRepository
	txRunner *repository.TxRunner
	cache    *CatalogCache
	store    ContentStore
	logger   *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(
	catalog repository.CatalogRepository,
	txRunner *repository.TxRunner,
	cache *CatalogCache,
	store ContentStore,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		catalog:  catalog,
		txRunner: txRunner,
		cache:    cache,
		store:    store,
		logger:   logger.With(slog.String("component", "catalog_service")),
	}
}

// Get возвращает запись каталога по bookID (кэш впереди репозитория).
// Удалённые книги невидимы.
func (s *CatalogService) Get(ctx context.Context, bookID string) (*model.CatalogEntry, error) {
	if entry, ok := s.cache.Get(bookID); ok {
		return entry, nil
	}

	entry, err := s.catalog.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: книга %s", ErrNotFound, bookID)
		}
		return nil, err
	}
	if entry.Status == model.BookDeleted {
		return nil, fmt.Errorf("%w: книга %s", ErrNotFound, bookID)
	}

	s.cache.Set(bookID, entry)
	return entry, nil
}

// List возвращает страницу активных книг и общее количество.
// limit ограничивается диапазоном [1, maxPageSize], 0 — значение по умолчанию.
func (s *CatalogService) List(ctx context.Context, limit, offset int) ([]*model.CatalogEntry, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.catalog.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// UpdatePrice меняет цену книги. Только владеющий автор; обновления
// одной книги сериализуются через SELECT ... FOR UPDATE.
func (s *CatalogService) UpdatePrice(ctx context.Context, actor *model.Principal, bookID string, newPrice int64) (*model.CatalogEntry, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if newPrice < 0 {
		return nil, fmt.Errorf("%w: цена не может быть отрицательной", ErrValidation)
	}

	var updated *model.CatalogEntry
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		repo := repository.NewCatalogRepository(tx)

		entry, err := repo.GetForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: книга %s", ErrNotFound, bookID)
			}
			return err
		}
		if !strings.EqualFold(entry.AuthorAddress, actor.Address) {
			return fmt.Errorf("%w: цену меняет только автор книги", ErrForbidden)
		}

		if err := repo.SetPrice(ctx, bookID, newPrice); err != nil {
			return err
		}
		entry.PriceAmount = newPrice
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Инвалидация кэша после коммита: читатели не увидят старую цену
	// дольше TTL
	s.cache.Delete(bookID)

	s.logger.Info("Цена книги изменена",
		slog.String("book_id", bookID),
		slog.Int64("price", newPrice),
	)
	return updated, nil
}

// DownloadURL возвращает публичную gateway-ссылку на файл книги.
func (s *CatalogService) DownloadURL(entry *model.CatalogEntry) string {
	return s.store.GatewayURL(entry.ContentID)
}
