// purchase.go — сервис покупки книги.
//
// Протокол покупки (порядок важен, попытка фиксируется до платежа):
//  1. Запись попытки в purchase_attempts (initiated)
//  2. Broadcast платежа в леджер (submitted + tx_hash)
//  3. Ожидание подтверждения (BM_CONFIRM_TIMEOUT)
//  4. confirmed → идемпотентная запись PurchaseRecord (recorded)
//     failed → попытка failed; таймаут → timed_out, разрешение через reconcile
//
// Единственная граница доверия — подтверждение леджера: запись покупки
// не создаётся ни при каком другом исходе. При недоступности леджера
// на шаге 2 исход broadcast неизвестен — попытка остаётся submitted
// без tx_hash, повторная отправка запрещена до сверки с леджером.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/bookmarket/internal/domain/attempt"
	"github.com/bigkaa/bookmarket/internal/domain/model"
	"github.com/bigkaa/bookmarket/internal/ledger"
	"github.com/bigkaa/bookmarket/internal/repository"
)

// Prometheus-метрики покупок.
var purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bm_purchases_total",
	Help: "Общее количество попыток покупки по исходу.",
}, []string{"status"})

// Ledger — операции платёжного леджера, нужные покупке и сверке.
// Реализуется ledger.Client.
type Ledger interface {
	SubmitPayment(ctx context.Context, from, to string, amount int64) (string, error)
	GetTransaction(ctx context.Context, txHash string) (*model.LedgerTransaction, error)
	ListTransactions(ctx context.Context, from, to string) ([]model.LedgerTransaction, error)
	AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (*model.LedgerTransaction, error)
}

// PurchaseOutcome — результат операции покупки.
// Pending == true означает неизвестный исход: попытка остаётся
// в разрешимом состоянии и будет доведена до терминального reconcile'ом.
type PurchaseOutcome struct {
	Pending   bool
	AttemptID string
	TxHash    string // пуст, если исход broadcast неизвестен
	Record    *model.PurchaseRecord
}

// PurchaseService — бизнес-логика покупки книг.
type PurchaseService struct {
	ledger         Ledger
	catalog        repository.CatalogRepository
	purchases      repository.PurchaseRepository
	attempts       repository.AttemptRepository
	confirmTimeout time.Duration
	logger         *slog.Logger
}

// NewPurchaseService создаёт сервис покупок.
func NewPurchaseService(
	lc Ledger,
	catalog repository.CatalogRepository,
	purchases repository.PurchaseRepository,
	attempts repository.AttemptRepository,
	confirmTimeout time.Duration,
	logger *slog.Logger,
) *PurchaseService {
	return &PurchaseService{
		ledger:         lc,
		catalog:        catalog,
		purchases:      purchases,
		attempts:       attempts,
		confirmTimeout: confirmTimeout,
		logger:         logger.With(slog.String("component", "purchase_service")),
	}
}

// Purchase выполняет полный протокол покупки от имени buyer:
// платёж отправляет ядро. Доступна любой роли.
func (s *PurchaseService) Purchase(ctx context.Context, buyer *model.Principal, bookID string) (*PurchaseOutcome, error) {
	entry, err := s.resolveEntry(ctx, buyer, bookID)
	if err != nil {
		return nil, err
	}

	a := &attempt.PurchaseAttempt{
		AttemptID:     uuid.NewString(),
		BookID:        entry.BookID,
		BuyerAddress:  buyer.Address,
		SellerAddress: entry.AuthorAddress,
		Amount:        entry.PriceAmount,
		State:         attempt.StateInitiated,
	}
	if err := s.attempts.Create(ctx, a); err != nil {
		return nil, err
	}

	txHash, err := s.ledger.SubmitPayment(ctx, buyer.Address, entry.AuthorAddress, entry.PriceAmount)
	if err != nil {
		return s.handleSubmitError(ctx, a, err)
	}

	if err := s.attempts.SetSubmitted(ctx, a.AttemptID, txHash); err != nil {
		// Broadcast состоялся, но состояние не зафиксировано: сверка
		// найдёт попытку по initiated-окну и паре адресов
		s.logger.Error("Не удалось зафиксировать broadcast",
			slog.String("attempt_id", a.AttemptID),
			slog.String("error", err.Error()),
		)
	}

	tx, err := s.ledger.AwaitConfirmation(ctx, txHash, s.confirmTimeout)
	if err != nil {
		purchasesTotal.WithLabelValues("pending").Inc()
		return &PurchaseOutcome{Pending: true, AttemptID: a.AttemptID, TxHash: txHash}, nil
	}

	return s.settle(ctx, a.AttemptID, entry, buyer.Address, tx)
}

// Register записывает покупку по уже оплаченной клиентом транзакции:
// предъявленный tx_hash сверяется с истиной леджера перед записью.
func (s *PurchaseService) Register(ctx context.Context, buyer *model.Principal, bookID, txHash string) (*PurchaseOutcome, error) {
	if txHash == "" {
		return nil, fmt.Errorf("%w: tx_hash обязателен", ErrValidation)
	}

	entry, err := s.resolveEntry(ctx, buyer, bookID)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.GetTransaction(ctx, txHash)
	if err != nil {
		if errors.Is(err, ledger.ErrTxNotFound) {
			return nil, fmt.Errorf("%w: транзакция %s леджеру неизвестна", ErrTxMismatch, txHash)
		}
		return nil, err
	}

	if !tx.Status.IsTerminal() {
		tx, err = s.ledger.AwaitConfirmation(ctx, txHash, s.confirmTimeout)
		if err != nil {
			tx = &model.LedgerTransaction{TxHash: txHash, Status: model.TxPending}
		}
	}

	if tx.Status == model.TxPending {
		// Исход не определён за отведённое время — фиксируем попытку
		// для фоновой сверки и отвечаем pending
		a := &attempt.PurchaseAttempt{
			AttemptID:     uuid.NewString(),
			BookID:        entry.BookID,
			BuyerAddress:  buyer.Address,
			SellerAddress: entry.AuthorAddress,
			Amount:        entry.PriceAmount,
			State:         attempt.StateInitiated,
		}
		if err := s.attempts.Create(ctx, a); err != nil {
			return nil, err
		}
		if err := s.attempts.SetSubmitted(ctx, a.AttemptID, txHash); err != nil {
			return nil, err
		}
		purchasesTotal.WithLabelValues("pending").Inc()
		return &PurchaseOutcome{Pending: true, AttemptID: a.AttemptID, TxHash: txHash}, nil
	}

	if tx.Status == model.TxFailed {
		purchasesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: транзакция %s отклонена", ErrPaymentFailed, txHash)
	}

	if err := verifyTxMatches(tx, buyer.Address, entry); err != nil {
		return nil, err
	}

	rec, err := s.recordPurchase(ctx, entry.BookID, buyer.Address, tx)
	if err != nil {
		return nil, err
	}
	return &PurchaseOutcome{TxHash: tx.TxHash, Record: rec}, nil
}

// ListMine возвращает покупки вызывающего principal.
func (s *PurchaseService) ListMine(ctx context.Context, buyer *model.Principal) ([]*model.PurchaseRecord, error) {
	if buyer == nil {
		return nil, ErrForbidden
	}
	return s.purchases.ListByBuyer(ctx, buyer.Address)
}

// resolveEntry находит активную книгу и отклоняет самопокупку.
func (s *PurchaseService) resolveEntry(ctx context.Context, buyer *model.Principal, bookID string) (*model.CatalogEntry, error) {
	if buyer == nil {
		return nil, ErrForbidden
	}

	entry, err := s.catalog.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: книга %s", ErrNotFound, bookID)
		}
		return nil, err
	}
	if entry.Status != model.BookActive {
		return nil, fmt.Errorf("%w: книга %s недоступна для покупки", ErrNotFound, bookID)
	}
	if strings.EqualFold(entry.AuthorAddress, buyer.Address) {
		return nil, fmt.Errorf("%w: покупка собственной книги запрещена", ErrValidation)
	}
	return entry, nil
}

// handleSubmitError обрабатывает ошибку отправки платежа.
func (s *PurchaseService) handleSubmitError(ctx context.Context, a *attempt.PurchaseAttempt, err error) (*PurchaseOutcome, error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrInvalidRecipient):
		// Детерминированный отказ: платёж не ушёл в сеть
		if serr := s.setState(ctx, a.AttemptID, attempt.StateInitiated, attempt.StateFailed); serr != nil {
			s.logger.Error("Не удалось зафиксировать отказ попытки",
				slog.String("attempt_id", a.AttemptID),
				slog.String("error", serr.Error()),
			)
		}
		purchasesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, err.Error())

	case errors.Is(err, ledger.ErrLedgerUnavailable):
		// Исход broadcast неизвестен: submitted без tx_hash,
		// повторная отправка запрещена до сверки с леджером
		if serr := s.setState(ctx, a.AttemptID, attempt.StateInitiated, attempt.StateSubmitted); serr != nil {
			s.logger.Error("Не удалось зафиксировать неизвестный broadcast",
				slog.String("attempt_id", a.AttemptID),
				slog.String("error", serr.Error()),
			)
		}
		purchasesTotal.WithLabelValues("pending").Inc()
		return &PurchaseOutcome{Pending: true, AttemptID: a.AttemptID}, nil

	default:
		return nil, err
	}
}

// settle доводит попытку до состояния по результату ожидания подтверждения.
func (s *PurchaseService) settle(
	ctx context.Context,
	attemptID string,
	entry *model.CatalogEntry,
	buyer string,
	tx *model.LedgerTransaction,
) (*PurchaseOutcome, error) {
	switch tx.Status {
	case model.TxConfirmed:
		rec, err := s.recordPurchase(ctx, entry.BookID, buyer, tx)
		if err != nil {
			return nil, err
		}
		if serr := s.setState(ctx, attemptID, attempt.StateSubmitted, attempt.StateRecorded); serr != nil {
			s.logger.Error("Покупка записана, но попытка не переведена в recorded",
				slog.String("attempt_id", attemptID),
				slog.String("error", serr.Error()),
			)
		}
		return &PurchaseOutcome{TxHash: tx.TxHash, Record: rec}, nil

	case model.TxFailed:
		if serr := s.setState(ctx, attemptID, attempt.StateSubmitted, attempt.StateFailed); serr != nil {
			s.logger.Error("Не удалось зафиксировать отказ попытки",
				slog.String("attempt_id", attemptID),
				slog.String("error", serr.Error()),
			)
		}
		purchasesTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: транзакция %s отклонена", ErrPaymentFailed, tx.TxHash)

	default:
		// Подтверждение не получено за BM_CONFIRM_TIMEOUT
		if serr := s.setState(ctx, attemptID, attempt.StateSubmitted, attempt.StateTimedOut); serr != nil {
			s.logger.Error("Не удалось зафиксировать таймаут попытки",
				slog.String("attempt_id", attemptID),
				slog.String("error", serr.Error()),
			)
		}
		purchasesTotal.WithLabelValues("pending").Inc()
		return &PurchaseOutcome{Pending: true, AttemptID: attemptID, TxHash: tx.TxHash}, nil
	}
}

// recordPurchase идемпотентно записывает подтверждённую покупку.
func (s *PurchaseService) recordPurchase(ctx context.Context, bookID, buyer string, tx *model.LedgerTransaction) (*model.PurchaseRecord, error) {
	rec, created, err := s.purchases.CreateIdempotent(ctx, &model.PurchaseRecord{
		PurchaseID:   uuid.NewString(),
		BookID:       bookID,
		BuyerAddress: buyer,
		TxHash:       tx.TxHash,
		AmountPaid:   tx.Amount,
	})
	if err != nil {
		return nil, err
	}

	purchasesTotal.WithLabelValues("recorded").Inc()
	s.logger.Info("Покупка записана",
		slog.String("book_id", bookID),
		slog.String("buyer", buyer),
		slog.String("tx_hash", tx.TxHash),
		slog.Bool("duplicate", !created),
	)
	return rec, nil
}

// setState переводит попытку с проверкой допустимости перехода.
func (s *PurchaseService) setState(ctx context.Context, attemptID string, from, to attempt.State) error {
	if err := attempt.Transition(from, to); err != nil {
		return err
	}
	return s.attempts.SetState(ctx, attemptID, to)
}

// verifyTxMatches сверяет предъявленную транзакцию с параметрами покупки.
func verifyTxMatches(tx *model.LedgerTransaction, buyer string, entry *model.CatalogEntry) error {
	if !strings.EqualFold(tx.From, buyer) {
		return fmt.Errorf("%w: отправитель транзакции не совпадает с покупателем", ErrTxMismatch)
	}
	if !strings.EqualFold(tx.To, entry.AuthorAddress) {
		return fmt.Errorf("%w: получатель транзакции не совпадает с продавцом", ErrTxMismatch)
	}
	if tx.Amount < entry.PriceAmount {
		return fmt.Errorf("%w: сумма %d меньше цены %d", ErrTxMismatch, tx.Amount, entry.PriceAmount)
	}
	return nil
}
