package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/bookmarket/internal/domain/attempt"
)

// AttemptRepository — доступ к таблице purchase_attempts (журнал попыток).
type AttemptRepository interface {
	// Create фиксирует новую попытку покупки (до обращения к леджеру).
	Create(ctx context.Context, a *attempt.PurchaseAttempt) error
	// SetState переводит попытку в новое состояние.
	// Переход должен быть проверен вызывающим кодом через attempt.Transition.
	SetState(ctx context.Context, attemptID string, state attempt.State) error
	// SetSubmitted переводит попытку в submitted с сохранением tx_hash.
	SetSubmitted(ctx context.Context, attemptID, txHash string) error
	// GetByID возвращает попытку по идентификатору.
	GetByID(ctx context.Context, attemptID string) (*attempt.PurchaseAttempt, error)
	// ListResolvable возвращает попытки в разрешимых состояниях
	// (submitted, timed_out) для фонового reconcile, старые первыми.
	ListResolvable(ctx context.Context, limit int) ([]*attempt.PurchaseAttempt, error)
	// ListStaleInitiated возвращает попытки, зависшие в initiated
	// (процесс умер между созданием попытки и фиксацией broadcast).
	ListStaleInitiated(ctx context.Context, olderThan time.Time, limit int) ([]*attempt.PurchaseAttempt, error)
}

// attemptRepo — реализация AttemptRepository.
type attemptRepo struct {
	db DBTX
}

// NewAttemptRepository создаёт репозиторий попыток покупки.
func NewAttemptRepository(db DBTX) AttemptRepository {
	return &attemptRepo{db: db}
}

const attemptColumns = `attempt_id, book_id, buyer_address, seller_address,
		amount, COALESCE(tx_hash, ''), state, created_at, updated_at`

func (r *attemptRepo) Create(ctx context.Context, a *attempt.PurchaseAttempt) error {
	query := `
		INSERT INTO purchase_attempts (attempt_id, book_id, buyer_address,
			seller_address, amount, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.AttemptID, a.BookID, a.BuyerAddress, a.SellerAddress, a.Amount, a.State,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: попытка с таким ID уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания попытки покупки: %w", err)
	}
	return nil
}

func (r *attemptRepo) SetState(ctx context.Context, attemptID string, state attempt.State) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE purchase_attempts SET state = $2, updated_at = now() WHERE attempt_id = $1`,
		attemptID, state,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления состояния попытки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attemptRepo) SetSubmitted(ctx context.Context, attemptID, txHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE purchase_attempts
		 SET state = $2, tx_hash = $3, updated_at = now()
		 WHERE attempt_id = $1`,
		attemptID, attempt.StateSubmitted, txHash,
	)
	if err != nil {
		return fmt.Errorf("ошибка фиксации broadcast: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attemptRepo) GetByID(ctx context.Context, attemptID string) (*attempt.PurchaseAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM purchase_attempts WHERE attempt_id = $1`

	a := &attempt.PurchaseAttempt{}
	err := r.db.QueryRow(ctx, query, attemptID).Scan(
		&a.AttemptID, &a.BookID, &a.BuyerAddress, &a.SellerAddress,
		&a.Amount, &a.TxHash, &a.State, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения попытки: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) ListResolvable(ctx context.Context, limit int) ([]*attempt.PurchaseAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM purchase_attempts
		WHERE state = ANY($1)
		ORDER BY updated_at ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query,
		[]string{string(attempt.StateSubmitted), string(attempt.StateTimedOut)}, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения разрешимых попыток: %w", err)
	}
	return collectAttempts(rows)
}

func (r *attemptRepo) ListStaleInitiated(ctx context.Context, olderThan time.Time, limit int) ([]*attempt.PurchaseAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM purchase_attempts
		WHERE state = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, attempt.StateInitiated, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения зависших попыток: %w", err)
	}
	return collectAttempts(rows)
}

// collectAttempts сканирует строки purchase_attempts.
func collectAttempts(rows pgx.Rows) ([]*attempt.PurchaseAttempt, error) {
	defer rows.Close()

	var attempts []*attempt.PurchaseAttempt
	for rows.Next() {
		a := &attempt.PurchaseAttempt{}
		if err := rows.Scan(
			&a.AttemptID, &a.BookID, &a.BuyerAddress, &a.SellerAddress,
			&a.Amount, &a.TxHash, &a.State, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки попытки: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
