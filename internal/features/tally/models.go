// Package tally реализует учёт дневных вкладов: сколько шалкеров
// каждый участник поставил за календарный день.
// models.go описывает структуры для работы с таблицей contributions.
package tally

import (
	"context"
	"time"
)

// Contribution — запись вклада одного участника за один день.
// На пару (user_id, day) существует ровно одна строка; total в течение
// дня только растёт. Прошедшие дни не изменяются и хранятся бессрочно.
type Contribution struct {
	ID          int64     `db:"id"`           // Автоинкрементный ID записи в БД
	UserID      int64     `db:"user_id"`      // Telegram user ID
	DisplayName string    `db:"display_name"` // Имя на момент последней заявки (может устареть)
	Day         string    `db:"day"`          // Календарный день, "2006-01-02"
	Total       int       `db:"total"`        // Сумма всех принятых заявок за день, > 0
	CreatedAt   time.Time `db:"created_at"`   // Первая заявка дня
	UpdatedAt   time.Time `db:"updated_at"`   // Последняя заявка дня
}

// Row — строка вклада для построения рейтинга.
type Row struct {
	UserID      int64
	DisplayName string
	Total       int
}

// Store — контракт хранилища вкладов.
//
// Upsert обязан быть единой атомарной операцией read-modify-write по ключу
// (userID, day): два одновременных Upsert по одному ключу не должны терять
// друг друга. Ошибка хранилища всегда помечена common.ErrStoreUnavailable —
// её нельзя трактовать как «записи нет».
type Store interface {
	// Get возвращает total за день. Второй результат false — записи нет.
	Get(ctx context.Context, userID int64, day string) (int, bool, error)
	// Upsert прибавляет delta к total за день и возвращает новый total.
	Upsert(ctx context.Context, userID int64, displayName, day string, delta int) (int, error)
	// ListDay возвращает все вклады за день. Порядок не определён —
	// сортировка остаётся за рейтингом.
	ListDay(ctx context.Context, day string) ([]Row, error)
}
