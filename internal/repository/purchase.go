package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// PurchaseRepository — доступ к таблице purchases.
type PurchaseRepository interface {
	// CreateIdempotent записывает покупку. При существующей записи
	// с тем же tx_hash возвращает её и created == false: повторное
	// подтверждение одной транзакции не создаёт дубликат.
	CreateIdempotent(ctx context.Context, rec *model.PurchaseRecord) (*model.PurchaseRecord, bool, error)
	// GetByTxHash возвращает покупку по хэшу транзакции.
	GetByTxHash(ctx context.Context, txHash string) (*model.PurchaseRecord, error)
	// ListByBuyer возвращает покупки покупателя (новые первыми).
	ListByBuyer(ctx context.Context, buyer string) ([]*model.PurchaseRecord, error)
	// ExistsForBuyer проверяет, куплена ли книга данным покупателем.
	ExistsForBuyer(ctx context.Context, bookID, buyer string) (bool, error)
}

// purchaseRepo — реализация PurchaseRepository.
type purchaseRepo struct {
	db DBTX
}

// NewPurchaseRepository создаёт репозиторий покупок.
func NewPurchaseRepository(db DBTX) PurchaseRepository {
	return &purchaseRepo{db: db}
}

func (r *purchaseRepo) CreateIdempotent(ctx context.Context, rec *model.PurchaseRecord) (*model.PurchaseRecord, bool, error) {
	// ON CONFLICT DO NOTHING + повторное чтение: при гонке двух
	// конкурентных подтверждений одного tx_hash выигрывает первая
	// вставка, вторая возвращает уже существующую запись.
	query := `
		INSERT INTO purchases (purchase_id, book_id, buyer_address, tx_hash, amount_paid)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_hash) DO NOTHING
		RETURNING purchase_id, book_id, buyer_address, tx_hash, amount_paid, purchased_at`

	created := &model.PurchaseRecord{}
	err := r.db.QueryRow(ctx, query,
		rec.PurchaseID, rec.BookID, rec.BuyerAddress, rec.TxHash, rec.AmountPaid,
	).Scan(&created.PurchaseID, &created.BookID, &created.BuyerAddress,
		&created.TxHash, &created.AmountPaid, &created.PurchasedAt)
	if err == nil {
		return created, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, fmt.Errorf("ошибка записи покупки: %w", err)
	}

	existing, err := r.GetByTxHash(ctx, rec.TxHash)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *purchaseRepo) GetByTxHash(ctx context.Context, txHash string) (*model.PurchaseRecord, error) {
	query := `
		SELECT purchase_id, book_id, buyer_address, tx_hash, amount_paid, purchased_at
		FROM purchases
		WHERE tx_hash = $1`

	p := &model.PurchaseRecord{}
	err := r.db.QueryRow(ctx, query, txHash).Scan(
		&p.PurchaseID, &p.BookID, &p.BuyerAddress, &p.TxHash, &p.AmountPaid, &p.PurchasedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения покупки: %w", err)
	}
	return p, nil
}

func (r *purchaseRepo) ListByBuyer(ctx context.Context, buyer string) ([]*model.PurchaseRecord, error) {
	query := `
		SELECT purchase_id, book_id, buyer_address, tx_hash, amount_paid, purchased_at
		FROM purchases
		WHERE buyer_address = $1
		ORDER BY purchased_at DESC`

	rows, err := r.db.Query(ctx, query, buyer)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка покупок: %w", err)
	}
	defer rows.Close()

	var records []*model.PurchaseRecord
	for rows.Next() {
		p := &model.PurchaseRecord{}
		if err := rows.Scan(
			&p.PurchaseID, &p.BookID, &p.BuyerAddress, &p.TxHash, &p.AmountPaid, &p.PurchasedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки покупки: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (r *purchaseRepo) ExistsForBuyer(ctx context.Context, bookID, buyer string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM purchases WHERE book_id = $1 AND buyer_address = $2)`,
		bookID, buyer,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки покупки: %w", err)
	}
	return exists, nil
}
