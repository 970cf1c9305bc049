// Package leaderboard строит и публикует рейтинг дня.
// renderer.go превращает вклады за день в упорядоченный список мест.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// Entry — одно место в рейтинге.
type Entry struct {
	Rank        int
	UserID      int64
	DisplayName string
	Total       int
}

// Renderer строит рейтинг по данным хранилища вкладов.
type Renderer struct {
	store tally.Store
}

// NewRenderer создаёт построитель рейтинга.
func NewRenderer(store tally.Store) *Renderer {
	return &Renderer{store: store}
}

// Render возвращает рейтинг за день: по убыванию total, при равенстве —
// по возрастанию user_id. Порядок не зависит от порядка строк в БД.
// Места идут 1, 2, 3 без пропусков; равные total получают разные места.
// Пустой срез — сигнал «публиковать нечего».
func (r *Renderer) Render(ctx context.Context, day string) ([]Entry, error) {
	rows, err := r.store.ListDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].UserID < rows[j].UserID
	})

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			Total:       row.Total,
		})
	}
	return entries, nil
}

// Format собирает сообщение рейтинга для поверхности.
func Format(day string, entries []Entry) telegram.Message {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s — %d %s\n",
			e.Rank, e.DisplayName, e.Total, common.PluralizeShulkers(e.Total)))
	}

	return telegram.Message{
		Title:  "🏆 Рейтинг дня по шалкерам",
		Body:   strings.TrimRight(sb.String(), "\n"),
		Footer: "Дата: " + common.FormatDay(day),
	}
}
