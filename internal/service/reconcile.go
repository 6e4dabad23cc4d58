// reconcile.go — сервис фоновой сверки off-chain индекса с леджером.
//
// Сверка доводит попытки покупки в разрешимых состояниях (submitted,
// timed_out) до терминальных по истине леджера:
//   - подтверждённая транзакция → идемпотентная запись покупки, recorded
//   - отклонённая транзакция → failed
//   - попытка без tx_hash (неизвестный broadcast) → поиск подтверждённой
//     транзакции по паре адресов и сумме через ListTransactions
//
// Сверка read-only относительно леджера: она никогда не отправляет
// платежи повторно. Запускается как горутина с периодическим тикером
// (BM_RECONCILE_INTERVAL) и доступна по требованию через ReconcileBook.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/bookmarket/internal/domain/attempt"
	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/repository"
)

// Prometheus-метрики сверки.
var (
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bm_reconcile_runs_total",
		Help: "Общее количество запусков сверки.",
	})

	reconcileHealedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bm_reconcile_healed_total",
		Help: "Количество попыток, доведённых сверкой до терминального состояния.",
	}, []string{"result"})

	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bm_reconcile_duration_seconds",
		Help:    "Длительность одного прохода сверки в секундах.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

const (
	// resolveBatchSize — максимум попыток за один проход сверки.
	resolveBatchSize = 100
	// abandonAfter — возраст, после которого попытка без следа в леджере
	// считается не попавшей в сеть и закрывается как failed.
	abandonAfter = 24 * time.Hour
)

// ReconcileService — сервис сверки покупок с леджером.
type ReconcileService struct {
	ledger    Ledger
	catalog   repository.CatalogRepository
	purchases repository.PurchaseRepository
	attempts  repository.AttemptRepository
	interval  time.Duration
	logger    *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool
	cancel    context.CancelFunc
}

// NewReconcileService создаёт сервис сверки.
func NewReconcileService(
	lc Ledger,
	catalog repository.CatalogRepository,
	purchases repository.PurchaseRepository,
	attempts repository.AttemptRepository,
	interval time.Duration,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		ledger:    lc,
		catalog:   catalog,
		purchases: purchases,
		attempts:  attempts,
		interval:  interval,
		logger:    logger.With(slog.String("component", "reconcile")),
	}
}

// Start запускает фоновую горутину сверки с периодическим тикером.
func (rs *ReconcileService) Start(ctx context.Context) {
	rsCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel

	go rs.run(rsCtx)

	rs.logger.Info("Сверка запущена",
		slog.String("interval", rs.interval.String()),
	)
}

// Stop останавливает фоновый процесс сверки.
func (rs *ReconcileService) Stop() {
	if rs.cancel != nil {
		rs.cancel()
	}
	rs.logger.Info("Сверка остановлена")
}

// run — основной цикл фоновой горутины.
func (rs *ReconcileService) run(ctx context.Context) {
	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход сверки.
// Потокобезопасен: при уже выполняющемся проходе возвращает 0, true.
// Возвращает количество разрешённых попыток и признак пропуска.
func (rs *ReconcileService) RunOnce(ctx context.Context) (int, bool) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Сверка уже выполняется, пропуск")
		return 0, true
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	start := time.Now()
	reconcileRunsTotal.Inc()

	// Попытки, зависшие в initiated (crash между созданием и broadcast),
	// переводим в submitted: исход их broadcast неизвестен
	rs.promoteStaleInitiated(ctx)

	attempts, err := rs.attempts.ListResolvable(ctx, resolveBatchSize)
	if err != nil {
		rs.logger.Error("Ошибка получения разрешимых попыток",
			slog.String("error", err.Error()),
		)
		return 0, false
	}

	healed := 0
	for _, a := range attempts {
		if ctx.Err() != nil {
			break
		}
		if rs.resolveAttempt(ctx, a) {
			healed++
		}
	}

	duration := time.Since(start)
	reconcileDurationSeconds.Observe(duration.Seconds())

	rs.logger.Info("Проход сверки завершён",
		slog.Int("attempts_checked", len(attempts)),
		slog.Int("healed", healed),
		slog.Duration("duration", duration),
	)
	return healed, false
}

// ReconcileBook сверяет покупку конкретной книги конкретным покупателем
// по требованию: ищет подтверждённую транзакцию buyer → seller с суммой
// не меньше цены и материализует отсутствующую запись покупки.
func (rs *ReconcileService) ReconcileBook(ctx context.Context, bookID, buyer string) (*model.PurchaseRecord, error) {
	entry, err := rs.catalog.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	txs, err := rs.ledger.ListTransactions(ctx, buyer, entry.AuthorAddress)
	if err != nil {
		return nil, err
	}

	for i := range txs {
		tx := &txs[i]
		if tx.Status != model.TxConfirmed || tx.Amount < entry.PriceAmount {
			continue
		}
		rec, created, err := rs.purchases.CreateIdempotent(ctx, &model.PurchaseRecord{
			PurchaseID:   uuid.NewString(),
			BookID:       entry.BookID,
			BuyerAddress: strings.ToLower(buyer),
			TxHash:       tx.TxHash,
			AmountPaid:   tx.Amount,
		})
		if err != nil {
			return nil, err
		}
		if created {
			rs.logger.Info("Сверка материализовала запись покупки",
				slog.String("book_id", bookID),
				slog.String("tx_hash", tx.TxHash),
			)
		}
		return rec, nil
	}

	return nil, ErrNotFound
}

// promoteStaleInitiated переводит зависшие initiated-попытки в submitted.
func (rs *ReconcileService) promoteStaleInitiated(ctx context.Context) {
	cutoff := time.Now().Add(-rs.interval)
	stale, err := rs.attempts.ListStaleInitiated(ctx, cutoff, resolveBatchSize)
	if err != nil {
		rs.logger.Error("Ошибка получения зависших попыток",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, a := range stale {
		if err := rs.attempts.SetState(ctx, a.AttemptID, attempt.StateSubmitted); err != nil {
			rs.logger.Error("Ошибка перевода зависшей попытки",
				slog.String("attempt_id", a.AttemptID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// resolveAttempt доводит одну попытку до терминального состояния,
// если леджер уже знает исход. Возвращает true при разрешении.
func (rs *ReconcileService) resolveAttempt(ctx context.Context, a *attempt.PurchaseAttempt) bool {
	if a.TxHash != "" {
		return rs.resolveByHash(ctx, a)
	}
	return rs.resolveByLookup(ctx, a)
}

// resolveByHash разрешает попытку с известным tx_hash.
func (rs *ReconcileService) resolveByHash(ctx context.Context, a *attempt.PurchaseAttempt) bool {
	tx, err := rs.ledger.GetTransaction(ctx, a.TxHash)
	if err != nil {
		if !errors.Is(err, ledger.ErrTxNotFound) && !errors.Is(err, ledger.ErrLedgerUnavailable) {
			rs.logger.Error("Ошибка опроса транзакции при сверке",
				slog.String("tx_hash", a.TxHash),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	switch tx.Status {
	case model.TxConfirmed:
		return rs.finishRecorded(ctx, a, tx)
	case model.TxFailed:
		return rs.finishFailed(ctx, a)
	default:
		return false
	}
}

// resolveByLookup разрешает попытку с неизвестным исходом broadcast:
// ищет подтверждённую транзакцию по паре адресов и сумме.
func (rs *ReconcileService) resolveByLookup(ctx context.Context, a *attempt.PurchaseAttempt) bool {
	txs, err := rs.ledger.ListTransactions(ctx, a.BuyerAddress, a.SellerAddress)
	if err != nil {
		return false
	}

	for i := range txs {
		tx := &txs[i]
		if tx.Status != model.TxConfirmed || tx.Amount != a.Amount {
			continue
		}
		// Транзакция, уже привязанная к другой покупке, не подходит
		if _, err := rs.purchases.GetByTxHash(ctx, tx.TxHash); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return false
		}
		return rs.finishRecorded(ctx, a, tx)
	}

	// Леджер отвечает, но следа платежа нет: старые попытки закрываем
	if time.Since(a.UpdatedAt) > abandonAfter {
		return rs.finishFailed(ctx, a)
	}
	return false
}

// finishRecorded записывает покупку и закрывает попытку как recorded.
func (rs *ReconcileService) finishRecorded(ctx context.Context, a *attempt.PurchaseAttempt, tx *model.LedgerTransaction) bool {
	_, _, err := rs.purchases.CreateIdempotent(ctx, &model.PurchaseRecord{
		PurchaseID:   uuid.NewString(),
		BookID:       a.BookID,
		BuyerAddress: a.BuyerAddress,
		TxHash:       tx.TxHash,
		AmountPaid:   tx.Amount,
	})
	if err != nil {
		rs.logger.Error("Ошибка записи покупки при сверке",
			slog.String("attempt_id", a.AttemptID),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := attempt.Transition(a.State, attempt.StateRecorded); err != nil {
		rs.logger.Error("Недопустимый переход при сверке",
			slog.String("attempt_id", a.AttemptID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if err := rs.attempts.SetState(ctx, a.AttemptID, attempt.StateRecorded); err != nil {
		rs.logger.Error("Ошибка закрытия попытки",
			slog.String("attempt_id", a.AttemptID),
			slog.String("error", err.Error()),
		)
		return false
	}

	reconcileHealedTotal.WithLabelValues("recorded").Inc()
	rs.logger.Info("Попытка разрешена: покупка записана",
		slog.String("attempt_id", a.AttemptID),
		slog.String("tx_hash", tx.TxHash),
	)
	return true
}

// finishFailed закрывает попытку как failed.
func (rs *ReconcileService) finishFailed(ctx context.Context, a *attempt.PurchaseAttempt) bool {
	if err := attempt.Transition(a.State, attempt.StateFailed); err != nil {
		return false
	}
	if err := rs.attempts.SetState(ctx, a.AttemptID, attempt.StateFailed); err != nil {
		rs.logger.Error("Ошибка закрытия попытки",
			slog.String("attempt_id", a.AttemptID),
			slog.String("error", err.Error()),
		)
		return false
	}

	reconcileHealedTotal.WithLabelValues("failed").Inc()
	rs.logger.Info("Попытка разрешена: платёж не состоялся",
		slog.String("attempt_id", a.AttemptID),
	)
	return true
}
