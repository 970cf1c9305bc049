// Package audit — repository.go выполняет операции с таблицей audit_log.
package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей audit_log.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий аудита.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert добавляет запись аудита. Записи никогда не изменяются и не удаляются.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO audit_log (id, user_id, display_name, day, amount, total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.DisplayName, rec.Day, rec.Amount, rec.Total,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи аудита: %w", err)
	}
	return nil
}
