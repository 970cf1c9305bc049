// Package tally — repository.go выполняет операции с таблицей contributions.
package tally

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shulkerlog.ru/telegram-bot/internal/common"
)

// Repository реализует Store поверх PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий вкладов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get возвращает total пользователя за день.
// «Записи нет» — не ошибка; ошибка хранилища — всегда ErrStoreUnavailable.
func (r *Repository) Get(ctx context.Context, userID int64, day string) (int, bool, error) {
	query := `SELECT total FROM contributions WHERE user_id = $1 AND day = $2`
	var total int
	err := r.db.QueryRow(ctx, query, userID, day).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: чтение вклада (user_id=%d, day=%s): %v",
			common.ErrStoreUnavailable, userID, day, err)
	}
	return total, true, nil
}

// Upsert прибавляет delta к вкладу за день одним атомарным запросом.
// INSERT ... ON CONFLICT DO UPDATE выполняется в PostgreSQL как единая
// операция по ключу — одновременные заявки одного пользователя не теряются.
// Имя обновляется на последнее увиденное.
func (r *Repository) Upsert(ctx context.Context, userID int64, displayName, day string, delta int) (int, error) {
	query := `
		INSERT INTO contributions (user_id, display_name, day, total)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, day) DO UPDATE
		SET total = contributions.total + EXCLUDED.total,
		    display_name = EXCLUDED.display_name,
		    updated_at = NOW()
		RETURNING total
	`
	var total int
	err := r.db.QueryRow(ctx, query, userID, displayName, day, delta).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: запись вклада (user_id=%d, day=%s): %v",
			common.ErrStoreUnavailable, userID, day, err)
	}
	return total, nil
}

// ListDay возвращает все вклады за день без определённого порядка.
func (r *Repository) ListDay(ctx context.Context, day string) ([]Row, error) {
	query := `SELECT user_id, display_name, total FROM contributions WHERE day = $1`
	rows, err := r.db.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("%w: чтение вкладов за день %s: %v",
			common.ErrStoreUnavailable, day, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.UserID, &row.DisplayName, &row.Total); err != nil {
			return nil, fmt.Errorf("%w: сканирование вклада: %v", common.ErrStoreUnavailable, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: чтение строк: %v", common.ErrStoreUnavailable, err)
	}
	return out, nil
}
