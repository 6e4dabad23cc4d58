package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// CatalogRepository — доступ к таблице books (каталог).
type CatalogRepository interface {
	// Create добавляет запись каталога.
	Create(ctx context.Context, e *model.CatalogEntry) error
	// GetByID возвращает запись по bookID.
	GetByID(ctx context.Context, bookID string) (*model.CatalogEntry, error)
	// GetForUpdate возвращает запись с блокировкой строки (SELECT ... FOR UPDATE).
	// Использовать только внутри транзакции: сериализует обновления цены
	// по bookID (single-writer-at-a-time).
	GetForUpdate(ctx context.Context, bookID string) (*model.CatalogEntry, error)
	// SetPrice устанавливает цену книги.
	SetPrice(ctx context.Context, bookID string, price int64) error
	// List возвращает активные записи каталога с пагинацией.
	List(ctx context.Context, limit, offset int) ([]*model.CatalogEntry, error)
	// Count возвращает количество активных записей.
	Count(ctx context.Context) (int, error)
}

// catalogRepo — реализация CatalogRepository.
type catalogRepo struct {
	db DBTX
}

// NewCatalogRepository создаёт репозиторий каталога.
func NewCatalogRepository(db DBTX) CatalogRepository {
	return &catalogRepo{db: db}
}

// catalogColumns — общий список колонок books для SELECT.
const catalogColumns = `book_id, title, description, price_amount, content_id,
		cover_content_id, metadata_content_id, author_address, status, created_at, updated_at`

func (r *catalogRepo) Create(ctx context.Context, e *model.CatalogEntry) error {
	query := `
		INSERT INTO books (book_id, title, description, price_amount, content_id,
			cover_content_id, metadata_content_id, author_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		e.BookID, e.Title, nullIfEmpty(e.Description), e.PriceAmount, e.ContentID,
		nullIfEmpty(e.CoverContentID), e.MetadataContentID, e.AuthorAddress, e.Status,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: книга с таким ID уже опубликована", ErrConflict)
		}
		return fmt.Errorf("ошибка создания записи каталога: %w", err)
	}
	return nil
}

func (r *catalogRepo) GetByID(ctx context.Context, bookID string) (*model.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM books WHERE book_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, bookID))
}

func (r *catalogRepo) GetForUpdate(ctx context.Context, bookID string) (*model.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM books WHERE book_id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRow(ctx, query, bookID))
}

func (r *catalogRepo) SetPrice(ctx context.Context, bookID string, price int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE books SET price_amount = $2, updated_at = now() WHERE book_id = $1`,
		bookID, price,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления цены: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepo) List(ctx context.Context, limit, offset int) ([]*model.CatalogEntry, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM books
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, model.BookActive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка книг: %w", err)
	}
	defer rows.Close()

	var entries []*model.CatalogEntry
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *catalogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM books WHERE status = $1`, model.BookActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта книг: %w", err)
	}
	return count, nil
}

// scanOne сканирует одну строку books, транслируя pgx.ErrNoRows в ErrNotFound.
func (r *catalogRepo) scanOne(row pgx.Row) (*model.CatalogEntry, error) {
	e, err := scanCatalogEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения книги: %w", err)
	}
	return e, nil
}

// scanRow сканирует строку из rows.
func (r *catalogRepo) scanRow(rows pgx.Rows) (*model.CatalogEntry, error) {
	e, err := scanCatalogEntry(rows)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строки книги: %w", err)
	}
	return e, nil
}

// scanCatalogEntry сканирует колонки catalogColumns в CatalogEntry.
func scanCatalogEntry(row pgx.Row) (*model.CatalogEntry, error) {
	e := &model.CatalogEntry{}
	var description, cover *string

	err := row.Scan(
		&e.BookID, &e.Title, &description, &e.PriceAmount, &e.ContentID,
		&cover, &e.MetadataContentID, &e.AuthorAddress, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		e.Description = *description
	}
	if cover != nil {
		e.CoverContentID = *cover
	}
	return e, nil
}

// nullIfEmpty возвращает nil для пустой строки (NULL в колонке).
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
