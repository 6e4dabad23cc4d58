package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/bookmarket/internal/domain/model"
)

// PrincipalRepository — доступ к таблице principals.
type PrincipalRepository interface {
	// Ensure возвращает principal по адресу, регистрируя его
	// с ролью USER при первом обращении.
	Ensure(ctx context.Context, address string) (*model.Principal, error)
	// GetByAddress возвращает principal по адресу кошелька.
	GetByAddress(ctx context.Context, address string) (*model.Principal, error)
	// SetRole устанавливает роль principal (административная операция).
	SetRole(ctx context.Context, address string, role model.Role) error
}

// principalRepo — реализация PrincipalRepository.
type principalRepo struct {
	db DBTX
}

// NewPrincipalRepository создаёт репозиторий principals.
func NewPrincipalRepository(db DBTX) PrincipalRepository {
	return &principalRepo{db: db}
}

func (r *principalRepo) Ensure(ctx context.Context, address string) (*model.Principal, error) {
	// Upsert-чтение: при первом входе регистрируем с ролью USER,
	// повторный вход возвращает существующую роль без изменений.
	query := `
		INSERT INTO principals (address, role)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET address = EXCLUDED.address
		RETURNING address, role, created_at`

	p := &model.Principal{}
	err := r.db.QueryRow(ctx, query, strings.ToLower(address), model.RoleUser).
		Scan(&p.Address, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации principal: %w", err)
	}
	return p, nil
}

func (r *principalRepo) GetByAddress(ctx context.Context, address string) (*model.Principal, error) {
	query := `
		SELECT address, role, created_at
		FROM principals
		WHERE address = $1`

	p := &model.Principal{}
	err := r.db.QueryRow(ctx, query, strings.ToLower(address)).
		Scan(&p.Address, &p.Role, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения principal: %w", err)
	}
	return p, nil
}

func (r *principalRepo) SetRole(ctx context.Context, address string, role model.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE principals SET role = $2 WHERE address = $1`,
		strings.ToLower(address), role,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления роли: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
