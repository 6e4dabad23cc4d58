// content.go — ContentObject, объект в content-addressed хранилище.
package model

// MimeClass — класс содержимого объекта.
type MimeClass string

const (
	// MimeBook — файл книги
	MimeBook MimeClass = "book"
	// MimeCover — обложка
	MimeCover MimeClass = "cover"
	// MimeMetadata — metadata JSON
	MimeMetadata MimeClass = "metadata"
)

// ContentObject — неизменяемый объект content-addressed хранилища.
// Идентификатор детерминированно выводится из байтов: одинаковое
// содержимое всегда даёт одинаковый ContentID (идемпотентная загрузка).
type ContentObject struct {
	// ContentID — content-addressed идентификатор (хэш байтов)
	ContentID string `json:"content_id"`

	// ByteLength — размер объекта в байтах
	ByteLength int64 `json:"byte_length"`

	// MimeClass — класс содержимого
	MimeClass MimeClass `json:"mime_class"`
}
