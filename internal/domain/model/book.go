// book.go — CatalogEntry, запись каталога опубликованной книги.
package model

import (
	"time"
)

// BookStatus — статус книги в каталоге.
type BookStatus string

const (
	// BookActive — книга доступна для покупки
	BookActive BookStatus = "active"
	// BookSuspended — книга временно скрыта из каталога
	BookSuspended BookStatus = "suspended"
	// BookDeleted — книга помечена как удалённая (записи покупок сохраняются)
	BookDeleted BookStatus = "deleted"
)

// CatalogEntry — запись каталога книг (off-chain индекс).
// Неизменяема после публикации, кроме цены — её может менять только
// владеющий authorPrincipal.
type CatalogEntry struct {
	// BookID — уникальный идентификатор книги (UUID v4)
	BookID string `json:"book_id"`

	// Title — название книги
	Title string `json:"title"`

	// Description — описание книги (опционально)
	Description string `json:"description,omitempty"`

	// PriceAmount — цена в минимальных целых единицах валюты леджера.
	// Неотрицательное целое; никогда не float.
	PriceAmount int64 `json:"price_amount"`

	// ContentID — content-addressed идентификатор файла книги
	ContentID string `json:"content_id"`

	// CoverContentID — идентификатор обложки (опционально)
	CoverContentID string `json:"cover_content_id,omitempty"`

	// MetadataContentID — идентификатор metadata JSON в хранилище
	MetadataContentID string `json:"metadata_content_id"`

	// AuthorAddress — адрес кошелька автора/продавца
	AuthorAddress string `json:"author_address"`

	// Status — статус книги в каталоге
	Status BookStatus `json:"status"`

	// CreatedAt — дата и время публикации (UTC)
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — дата и время последнего изменения (UTC)
	UpdatedAt time.Time `json:"updated_at"`
}

// BookMetadata — содержимое metadata JSON, загружаемого в content store
// при публикации. Самодостаточное описание книги: по metadata_content_id
// можно восстановить карточку без обращения к off-chain индексу.
type BookMetadata struct {
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	AuthorAddress  string    `json:"author_address"`
	ContentID      string    `json:"content_id"`
	CoverContentID string    `json:"cover_content_id,omitempty"`
	BookSize       int64     `json:"book_size"`
	CoverSize      int64     `json:"cover_size,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
