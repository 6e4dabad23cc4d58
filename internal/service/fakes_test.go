// fakes_test.go — in-memory реализации зависимостей сервисного слоя.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/attempt"
	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/repository"
)

const (
	testBuyer  = "0x1111111111111111111111111111111111111111"
	testSeller = "0x2222222222222222222222222222222222222222"
)

// testLogger — логгер, пишущий в никуда.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fakeCatalogRepo ---

type fakeCatalogRepo struct {
	mu      sync.Mutex
	entries map[string]*model.CatalogEntry
	failing bool
}

func newFakeCatalog(entries ...*model.CatalogEntry) *fakeCatalogRepo {
	f := &fakeCatalogRepo{entries: make(map[string]*model.CatalogEntry)}
	for _, e := range entries {
		f.entries[e.BookID] = e
	}
	return f
}

func (f *fakeCatalogRepo) Create(_ context.Context, e *model.CatalogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("индекс недоступен")
	}
	if _, ok := f.entries[e.BookID]; ok {
		return repository.ErrConflict
	}
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	f.entries[e.BookID] = e
	return nil
}

func (f *fakeCatalogRepo) GetByID(_ context.Context, bookID string) (*model.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[bookID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeCatalogRepo) GetForUpdate(ctx context.Context, bookID string) (*model.CatalogEntry, error) {
	return f.GetByID(ctx, bookID)
}

func (f *fakeCatalogRepo) SetPrice(_ context.Context, bookID string, price int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[bookID]
	if !ok {
		return repository.ErrNotFound
	}
	e.PriceAmount = price
	return nil
}

func (f *fakeCatalogRepo) List(_ context.Context, limit, offset int) ([]*model.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CatalogEntry
	for _, e := range f.entries {
		if e.Status == model.BookActive {
			cp := *e
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCatalogRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.Status == model.BookActive {
			n++
		}
	}
	return n, nil
}

// --- fakePurchaseRepo ---

type fakePurchaseRepo struct {
	mu     sync.Mutex
	byHash map[string]*model.PurchaseRecord
}

func newFakePurchases() *fakePurchaseRepo {
	return &fakePurchaseRepo{byHash: make(map[string]*model.PurchaseRecord)}
}

func (f *fakePurchaseRepo) CreateIdempotent(_ context.Context, rec *model.PurchaseRecord) (*model.PurchaseRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byHash[rec.TxHash]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *rec
	cp.PurchasedAt = time.Now().UTC()
	f.byHash[rec.TxHash] = &cp
	out := cp
	return &out, true, nil
}

func (f *fakePurchaseRepo) GetByTxHash(_ context.Context, txHash string) (*model.PurchaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byHash[txHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakePurchaseRepo) ListByBuyer(_ context.Context, buyer string) ([]*model.PurchaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PurchaseRecord
	for _, rec := range f.byHash {
		if strings.EqualFold(rec.BuyerAddress, buyer) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePurchaseRepo) ExistsForBuyer(_ context.Context, bookID, buyer string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.byHash {
		if rec.BookID == bookID && strings.EqualFold(rec.BuyerAddress, buyer) {
			return true, nil
		}
	}
	return false, nil
}

// --- fakeAttemptRepo ---

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts map[string]*attempt.PurchaseAttempt
}

func newFakeAttempts() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[string]*attempt.PurchaseAttempt)}
}

func (f *fakeAttemptRepo) Create(_ context.Context, a *attempt.PurchaseAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.attempts[a.AttemptID] = &cp
	return nil
}

func (f *fakeAttemptRepo) SetState(_ context.Context, attemptID string, state attempt.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok {
		return repository.ErrNotFound
	}
	a.State = state
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeAttemptRepo) SetSubmitted(_ context.Context, attemptID, txHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok {
		return repository.ErrNotFound
	}
	a.State = attempt.StateSubmitted
	a.TxHash = txHash
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeAttemptRepo) GetByID(_ context.Context, attemptID string) (*attempt.PurchaseAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptRepo) ListResolvable(_ context.Context, limit int) ([]*attempt.PurchaseAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*attempt.PurchaseAttempt
	for _, a := range f.attempts {
		if a.State.Resolvable() {
			cp := *a
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) ListStaleInitiated(_ context.Context, olderThan time.Time, limit int) ([]*attempt.PurchaseAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*attempt.PurchaseAttempt
	for _, a := range f.attempts {
		if a.State == attempt.StateInitiated && a.UpdatedAt.Before(olderThan) {
			cp := *a
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// mustState возвращает текущее состояние попытки или фейлит тест.
func (f *fakeAttemptRepo) mustState(t *testing.T, attemptID string) attempt.State {
	t.Helper()
	a, err := f.GetByID(context.Background(), attemptID)
	if err != nil {
		t.Fatalf("попытка %s не найдена: %v", attemptID, err)
	}
	return a.State
}

// --- fakeLedger ---

type fakeLedger struct {
	mu sync.Mutex

	submitHash string
	submitErr  error
	submits    int

	txs map[string]*model.LedgerTransaction

	// последовательность статусов для AwaitConfirmation (по одному на вызов)
	awaitStatuses []model.TxStatus

	listTxs []model.LedgerTransaction
	listErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{txs: make(map[string]*model.LedgerTransaction)}
}

func (f *fakeLedger) SubmitPayment(_ context.Context, from, to string, amount int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	hash := f.submitHash
	if hash == "" {
		hash = fmt.Sprintf("0xtx%d", f.submits)
	}
	f.txs[hash] = &model.LedgerTransaction{
		TxHash: hash, From: from, To: to, Amount: amount, Status: model.TxPending,
	}
	return hash, nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, txHash string) (*model.LedgerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[txHash]
	if !ok {
		return nil, ledger.ErrTxNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, from, to string) ([]model.LedgerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listTxs, nil
}

func (f *fakeLedger) AwaitConfirmation(_ context.Context, txHash string, _ time.Duration) (*model.LedgerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := model.TxPending
	if len(f.awaitStatuses) > 0 {
		status = f.awaitStatuses[0]
		f.awaitStatuses = f.awaitStatuses[1:]
	}

	tx, ok := f.txs[txHash]
	if !ok {
		tx = &model.LedgerTransaction{TxHash: txHash, Status: status}
		f.txs[txHash] = tx
	}
	tx.Status = status
	cp := *tx
	return &cp, nil
}

// setTx кладёт транзакцию в леджер напрямую.
func (f *fakeLedger) setTx(tx model.LedgerTransaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := tx
	f.txs[tx.TxHash] = &cp
}

// --- fakeStore ---

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []model.MimeClass
	putErr  error
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, data []byte, mime model.MimeClass) (model.ContentObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return model.ContentObject{}, f.putErr
	}
	f.seq++
	id := fmt.Sprintf("Qm%s%d", mime, f.seq)
	f.objects[id] = data
	f.puts = append(f.puts, mime)
	return model.ContentObject{ContentID: id, ByteLength: int64(len(data)), MimeClass: mime}, nil
}

func (f *fakeStore) Get(_ context.Context, contentID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[contentID]
	if !ok {
		return nil, errors.New("объект не найден")
	}
	return data, nil
}

func (f *fakeStore) GatewayURL(contentID string) string {
	return "https://gw.example.com/ipfs/" + contentID
}

// activeEntry — готовая активная запись каталога для тестов покупки.
func activeEntry(bookID string, price int64) *model.CatalogEntry {
	return &model.CatalogEntry{
		BookID:        bookID,
		Title:         "Тестовая книга",
		PriceAmount:   price,
		ContentID:     "QmBook",
		AuthorAddress: testSeller,
		Status:        model.BookActive,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}
