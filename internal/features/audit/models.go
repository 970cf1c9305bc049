// Package audit ведёт след каждой принятой заявки: строка в audit_log
// и сообщение в лог-чате. models.go описывает структуру записи.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Record — неизменяемая запись о принятой заявке.
type Record struct {
	ID          uuid.UUID `db:"id"`           // Уникальный ID записи
	UserID      int64     `db:"user_id"`      // Кто подал заявку
	DisplayName string    `db:"display_name"` // Имя на момент заявки
	Day         string    `db:"day"`          // Календарный день
	Amount      int       `db:"amount"`       // Сколько добавлено этой заявкой
	Total       int       `db:"total"`        // Итог за день после заявки
	CreatedAt   time.Time `db:"created_at"`   // Когда заявка принята
}
