package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// newCatalogService собирает сервис каталога без txRunner:
// пути, требующие транзакции, покрыты интеграционными тестами репозитория.
func newCatalogService(catalog *fakeCatalogRepo) *CatalogService {
	return NewCatalogService(catalog, nil, NewCatalogCache(16, time.Minute), newFakeStore(), testLogger())
}

// TestCatalogGet_CachesEntry проверяет чтение с кэшированием.
func TestCatalogGet_CachesEntry(t *testing.T) {
	repo := newFakeCatalog(activeEntry("book-1", 1500))
	svc := newCatalogService(repo)

	first, err := svc.Get(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}

	// Правим репозиторий в обход сервиса: кэш должен отдать старую копию
	repo.mu.Lock()
	repo.entries["book-1"].Title = "Изменено напрямую"
	repo.mu.Unlock()

	second, err := svc.Get(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("повторный Get() вернул ошибку: %v", err)
	}
	if second.Title != first.Title {
		t.Errorf("кэш не использован: title = %q", second.Title)
	}
}

// TestCatalogGet_DeletedInvisible проверяет невидимость удалённой книги.
func TestCatalogGet_DeletedInvisible(t *testing.T) {
	entry := activeEntry("book-del", 100)
	entry.Status = model.BookDeleted
	svc := newCatalogService(newFakeCatalog(entry))

	_, err := svc.Get(context.Background(), "book-del")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestCatalogList_ClampsPagination проверяет нормализацию limit/offset.
func TestCatalogList_ClampsPagination(t *testing.T) {
	repo := newFakeCatalog(
		activeEntry("book-1", 100),
		activeEntry("book-2", 200),
		activeEntry("book-3", 300),
	)
	svc := newCatalogService(repo)

	// limit 0 → значение по умолчанию
	entries, total, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if total != 3 || len(entries) != 3 {
		t.Errorf("total = %d, len = %d, ожидается 3/3", total, len(entries))
	}

	// limit больше максимума не ломает выборку
	if _, _, err := svc.List(context.Background(), 100000, -5); err != nil {
		t.Fatalf("List() с экстремальными параметрами вернул ошибку: %v", err)
	}

	// Страница меньше общего количества
	entries, total, err = svc.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, ожидается 2", len(entries))
	}
	if total != 3 {
		t.Errorf("total = %d, ожидается 3 (не размер страницы)", total)
	}
}

// TestCatalogList_HidesInactive проверяет, что suspended книги не в выдаче.
func TestCatalogList_HidesInactive(t *testing.T) {
	suspended := activeEntry("book-s", 100)
	suspended.Status = model.BookSuspended
	svc := newCatalogService(newFakeCatalog(activeEntry("book-a", 100), suspended))

	entries, total, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("total = %d, len = %d, ожидается 1/1", total, len(entries))
	}
	if entries[0].BookID != "book-a" {
		t.Errorf("в выдаче %q, ожидается book-a", entries[0].BookID)
	}
}

// TestUpdatePrice_Validation проверяет отказы до обращения к БД.
func TestUpdatePrice_Validation(t *testing.T) {
	svc := newCatalogService(newFakeCatalog(activeEntry("book-1", 100)))

	if _, err := svc.UpdatePrice(context.Background(), nil, "book-1", 200); !errors.Is(err, ErrForbidden) {
		t.Errorf("nil actor: ожидался ErrForbidden, получено: %v", err)
	}

	actor := &model.Principal{Address: testSeller, Role: model.RoleAuthor}
	if _, err := svc.UpdatePrice(context.Background(), actor, "book-1", -5); !errors.Is(err, ErrValidation) {
		t.Errorf("отрицательная цена: ожидался ErrValidation, получено: %v", err)
	}
}

// TestDownloadURL проверяет формирование gateway-ссылки.
func TestDownloadURL(t *testing.T) {
	svc := newCatalogService(newFakeCatalog())

	entry := activeEntry("book-1", 100)
	got := svc.DownloadURL(entry)
	want := "https://gw.example.com/ipfs/QmBook"
	if got != want {
		t.Errorf("DownloadURL() = %q, ожидается %q", got, want)
	}
}

// TestCatalogCache_GetSetDelete проверяет базовые операции кэша.
func TestCatalogCache_GetSetDelete(t *testing.T) {
	cache := NewCatalogCache(16, time.Minute)

	if _, ok := cache.Get("miss"); ok {
		t.Fatal("ожидался cache miss для нового ключа")
	}

	cache.Set("book-1", activeEntry("book-1", 100))
	got, ok := cache.Get("book-1")
	if !ok {
		t.Fatal("ожидался cache hit после Set")
	}
	if got.BookID != "book-1" {
		t.Errorf("BookID = %q", got.BookID)
	}

	cache.Delete("book-1")
	if _, ok := cache.Get("book-1"); ok {
		t.Fatal("ожидался cache miss после Delete")
	}
}

// TestCatalogCache_TTLExpiration проверяет автоматическое истечение TTL.
func TestCatalogCache_TTLExpiration(t *testing.T) {
	cache := NewCatalogCache(16, 50*time.Millisecond)

	cache.Set("book-ttl", activeEntry("book-ttl", 100))
	if _, ok := cache.Get("book-ttl"); !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := cache.Get("book-ttl"); ok {
		t.Fatal("запись пережила TTL")
	}
}
