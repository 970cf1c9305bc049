package leaderboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
)

// listStore отдаёт заранее заданные строки — порядок имитирует
// неопределённый порядок выдачи БД.
type listStore struct {
	rows []tally.Row
}

func (s *listStore) Get(ctx context.Context, userID int64, day string) (int, bool, error) {
	return 0, false, nil
}

func (s *listStore) Upsert(ctx context.Context, userID int64, displayName, day string, delta int) (int, error) {
	return 0, nil
}

func (s *listStore) ListDay(ctx context.Context, day string) ([]tally.Row, error) {
	return s.rows, nil
}

func TestRender_OrdersByTotalDescending(t *testing.T) {
	store := &listStore{rows: []tally.Row{
		{UserID: 1, DisplayName: "A", Total: 5},
		{UserID: 3, DisplayName: "C", Total: 9},
		{UserID: 2, DisplayName: "B", Total: 9},
	}}
	r := leaderboard.NewRenderer(store)

	entries, err := r.Render(context.Background(), "2026-08-31")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// B и C (по 9) выше A (5); между собой — по возрастанию user_id
	assert.Equal(t, "B", entries[0].DisplayName)
	assert.Equal(t, "C", entries[1].DisplayName)
	assert.Equal(t, "A", entries[2].DisplayName)

	// Места последовательные и без пропусков, даже при равных total
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestRender_DeterministicRegardlessOfStoreOrder(t *testing.T) {
	rows := []tally.Row{
		{UserID: 2, DisplayName: "B", Total: 9},
		{UserID: 1, DisplayName: "A", Total: 5},
		{UserID: 3, DisplayName: "C", Total: 9},
	}

	r1 := leaderboard.NewRenderer(&listStore{rows: rows})
	first, err := r1.Render(context.Background(), "2026-08-31")
	require.NoError(t, err)

	// Тот же день, другой порядок строк из хранилища
	reversed := []tally.Row{rows[2], rows[0], rows[1]}
	r2 := leaderboard.NewRenderer(&listStore{rows: reversed})
	second, err := r2.Render(context.Background(), "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_EmptyDay(t *testing.T) {
	r := leaderboard.NewRenderer(&listStore{})

	entries, err := r.Render(context.Background(), "2026-08-31")
	require.NoError(t, err)
	assert.Empty(t, entries, "пустой день — сигнал «публиковать нечего»")
}

func TestFormat(t *testing.T) {
	msg := leaderboard.Format("2026-08-31", []leaderboard.Entry{
		{Rank: 1, DisplayName: "@vasya", Total: 21},
		{Rank: 2, DisplayName: "@petya", Total: 3},
		{Rank: 3, DisplayName: "@kolya", Total: 1},
	})

	assert.Equal(t, "🏆 Рейтинг дня по шалкерам", msg.Title)
	assert.Contains(t, msg.Body, "1. @vasya — 21 шалкер")
	assert.Contains(t, msg.Body, "2. @petya — 3 шалкера")
	assert.Contains(t, msg.Body, "3. @kolya — 1 шалкер")
	assert.Equal(t, "Дата: 31.08.2026", msg.Footer)
}
