package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/bookmarket/internal/domain/attempt"
	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// reconcileFixture — собранный сервис сверки с фейковыми зависимостями.
type reconcileFixture struct {
	svc       *ReconcileService
	ledger    *fakeLedger
	catalog   *fakeCatalogRepo
	purchases *fakePurchaseRepo
	attempts  *fakeAttemptRepo
}

func newReconcileFixture(entries ...*model.CatalogEntry) *reconcileFixture {
	lc := newFakeLedger()
	catalog := newFakeCatalog(entries...)
	purchases := newFakePurchases()
	attempts := newFakeAttempts()
	return &reconcileFixture{
		svc:       NewReconcileService(lc, catalog, purchases, attempts, time.Minute, testLogger()),
		ledger:    lc,
		catalog:   catalog,
		purchases: purchases,
		attempts:  attempts,
	}
}

// seedAttempt кладёт попытку в фейковый репозиторий в заданном состоянии.
func (fx *reconcileFixture) seedAttempt(t *testing.T, id, txHash string, state attempt.State, age time.Duration) {
	t.Helper()
	a := &attempt.PurchaseAttempt{
		AttemptID:     id,
		BookID:        "book-1",
		BuyerAddress:  testBuyer,
		SellerAddress: testSeller,
		Amount:        1500,
		TxHash:        txHash,
		State:         state,
	}
	if err := fx.attempts.Create(context.Background(), a); err != nil {
		t.Fatalf("создание попытки: %v", err)
	}
	fx.attempts.mu.Lock()
	fx.attempts.attempts[id].State = state
	fx.attempts.attempts[id].UpdatedAt = time.Now().Add(-age)
	fx.attempts.mu.Unlock()
}

// TestRunOnce_HealsByHash проверяет разрешение timed_out попытки
// по известному tx_hash: леджер подтвердил — покупка записана.
func TestRunOnce_HealsByHash(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.ledger.setTx(model.LedgerTransaction{
		TxHash: "0xlate", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxConfirmed,
	})
	fx.seedAttempt(t, "att-1", "0xlate", attempt.StateTimedOut, time.Minute)

	healed, skipped := fx.svc.RunOnce(context.Background())
	if skipped {
		t.Fatal("проход пропущен")
	}
	if healed != 1 {
		t.Fatalf("healed = %d, ожидается 1", healed)
	}

	if got := fx.attempts.mustState(t, "att-1"); got != attempt.StateRecorded {
		t.Errorf("состояние попытки = %q, ожидается recorded", got)
	}
	rec, err := fx.purchases.GetByTxHash(context.Background(), "0xlate")
	if err != nil {
		t.Fatalf("покупка не материализована: %v", err)
	}
	if rec.BookID != "book-1" || rec.AmountPaid != 1500 {
		t.Errorf("запись покупки = %+v", rec)
	}
}

// TestRunOnce_FailsByHash проверяет закрытие попытки по отклонённой транзакции.
func TestRunOnce_FailsByHash(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.ledger.setTx(model.LedgerTransaction{
		TxHash: "0xrej", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxFailed,
	})
	fx.seedAttempt(t, "att-1", "0xrej", attempt.StateSubmitted, time.Minute)

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 1 {
		t.Fatalf("healed = %d, ожидается 1", healed)
	}
	if got := fx.attempts.mustState(t, "att-1"); got != attempt.StateFailed {
		t.Errorf("состояние = %q, ожидается failed", got)
	}
}

// TestRunOnce_PendingLeftAlone проверяет, что pending-транзакция
// не трогается: попытка остаётся разрешимой до следующего прохода.
func TestRunOnce_PendingLeftAlone(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.ledger.setTx(model.LedgerTransaction{
		TxHash: "0xwait", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxPending,
	})
	fx.seedAttempt(t, "att-1", "0xwait", attempt.StateSubmitted, time.Minute)

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 0 {
		t.Fatalf("healed = %d, ожидается 0", healed)
	}
	if got := fx.attempts.mustState(t, "att-1"); got != attempt.StateSubmitted {
		t.Errorf("состояние = %q, ожидается submitted", got)
	}
}

// TestRunOnce_ResolvesByLookup проверяет разрешение попытки без tx_hash
// (исход broadcast был неизвестен) поиском по паре адресов и сумме.
func TestRunOnce_ResolvesByLookup(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.seedAttempt(t, "att-1", "", attempt.StateSubmitted, time.Minute)
	fx.ledger.listTxs = []model.LedgerTransaction{
		{TxHash: "0xother", From: testBuyer, To: testSeller, Amount: 999, Status: model.TxConfirmed},
		{TxHash: "0xmatch", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxConfirmed},
	}

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 1 {
		t.Fatalf("healed = %d, ожидается 1", healed)
	}

	rec, err := fx.purchases.GetByTxHash(context.Background(), "0xmatch")
	if err != nil {
		t.Fatalf("покупка по найденной транзакции не записана: %v", err)
	}
	if rec.AmountPaid != 1500 {
		t.Errorf("amount_paid = %d", rec.AmountPaid)
	}
	if got := fx.attempts.mustState(t, "att-1"); got != attempt.StateRecorded {
		t.Errorf("состояние = %q, ожидается recorded", got)
	}
}

// TestRunOnce_LookupSkipsBoundTx проверяет, что транзакция, уже привязанная
// к другой покупке, не используется для разрешения попытки.
func TestRunOnce_LookupSkipsBoundTx(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.seedAttempt(t, "att-1", "", attempt.StateSubmitted, time.Minute)

	// Транзакция совпадает по сумме, но уже записана как другая покупка
	_, _, err := fx.purchases.CreateIdempotent(context.Background(), &model.PurchaseRecord{
		PurchaseID: "p-existing", BookID: "book-0", BuyerAddress: testBuyer,
		TxHash: "0xbound", AmountPaid: 1500,
	})
	if err != nil {
		t.Fatalf("подготовка существующей покупки: %v", err)
	}
	fx.ledger.listTxs = []model.LedgerTransaction{
		{TxHash: "0xbound", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxConfirmed},
	}

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 0 {
		t.Fatalf("healed = %d, ожидается 0: единственная транзакция уже привязана", healed)
	}
	if got := fx.attempts.mustState(t, "att-1"); got != attempt.StateSubmitted {
		t.Errorf("состояние = %q, ожидается submitted", got)
	}
}

// TestRunOnce_AbandonsTraceless проверяет закрытие старой попытки
// без следа в леджере как failed.
func TestRunOnce_AbandonsTraceless(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.seedAttempt(t, "att-old", "", attempt.StateSubmitted, 25*time.Hour)
	fx.seedAttempt(t, "att-new", "", attempt.StateSubmitted, time.Hour)

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 1 {
		t.Fatalf("healed = %d, ожидается 1 (только старая попытка)", healed)
	}
	if got := fx.attempts.mustState(t, "att-old"); got != attempt.StateFailed {
		t.Errorf("старая попытка = %q, ожидается failed", got)
	}
	if got := fx.attempts.mustState(t, "att-new"); got != attempt.StateSubmitted {
		t.Errorf("свежая попытка = %q, ожидается submitted", got)
	}
}

// TestRunOnce_PromotesStaleInitiated проверяет перевод зависших
// initiated-попыток в submitted (crash между созданием и broadcast).
func TestRunOnce_PromotesStaleInitiated(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.seedAttempt(t, "att-stuck", "", attempt.StateInitiated, 5*time.Minute)
	// Подтверждённая транзакция существует: broadcast успел уйти до crash
	fx.ledger.listTxs = []model.LedgerTransaction{
		{TxHash: "0xcrash", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxConfirmed},
	}

	healed, _ := fx.svc.RunOnce(context.Background())
	if healed != 1 {
		t.Fatalf("healed = %d, ожидается 1", healed)
	}
	if got := fx.attempts.mustState(t, "att-stuck"); got != attempt.StateRecorded {
		t.Errorf("состояние = %q, ожидается recorded", got)
	}
}

// TestReconcileBook_Materializes проверяет сверку по требованию:
// подтверждённый платёж без off-chain записи материализуется.
func TestReconcileBook_Materializes(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.ledger.listTxs = []model.LedgerTransaction{
		{TxHash: "0xpaid", From: testBuyer, To: testSeller, Amount: 2000, Status: model.TxConfirmed},
	}

	rec, err := fx.svc.ReconcileBook(context.Background(), "book-1", testBuyer)
	if err != nil {
		t.Fatalf("ReconcileBook() вернул ошибку: %v", err)
	}
	if rec.TxHash != "0xpaid" || rec.AmountPaid != 2000 {
		t.Errorf("запись = %+v", rec)
	}

	// Повторная сверка идемпотентна
	again, err := fx.svc.ReconcileBook(context.Background(), "book-1", testBuyer)
	if err != nil {
		t.Fatalf("повторный ReconcileBook() вернул ошибку: %v", err)
	}
	if again.PurchaseID != rec.PurchaseID {
		t.Errorf("повторная сверка создала новую запись")
	}
}

// TestReconcileBook_NoPayment проверяет ErrNotFound без следа платежа.
func TestReconcileBook_NoPayment(t *testing.T) {
	fx := newReconcileFixture(activeEntry("book-1", 1500))
	fx.ledger.listTxs = []model.LedgerTransaction{
		{TxHash: "0xsmall", From: testBuyer, To: testSeller, Amount: 100, Status: model.TxConfirmed},
		{TxHash: "0xpend", From: testBuyer, To: testSeller, Amount: 1500, Status: model.TxPending},
	}

	_, err := fx.svc.ReconcileBook(context.Background(), "book-1", testBuyer)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestRunOnce_SkipsConcurrent проверяет защиту от параллельного прохода.
func TestRunOnce_SkipsConcurrent(t *testing.T) {
	fx := newReconcileFixture()

	fx.svc.mu.Lock()
	fx.svc.inProcess = true
	fx.svc.mu.Unlock()

	healed, skipped := fx.svc.RunOnce(context.Background())
	if !skipped {
		t.Fatal("параллельный проход не пропущен")
	}
	if healed != 0 {
		t.Errorf("healed = %d при пропуске", healed)
	}
}
