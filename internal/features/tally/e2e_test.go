package tally_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// e2eMessenger хранит опубликованные сообщения в памяти и считает операции.
type e2eMessenger struct {
	nextID int
	posted []telegram.Posted
	bodies map[int]string
	sends  int
	edits  int
}

func newE2EMessenger() *e2eMessenger {
	return &e2eMessenger{nextID: 1000, bodies: make(map[int]string)}
}

func (m *e2eMessenger) Send(ctx context.Context, chatID int64, kind string, msg telegram.Message) (int, error) {
	m.nextID++
	m.sends++
	m.posted = append(m.posted, telegram.Posted{
		MessageID: m.nextID,
		Kind:      kind,
		PostedAt:  time.Now(),
	})
	m.bodies[m.nextID] = msg.Body
	return m.nextID, nil
}

func (m *e2eMessenger) Edit(ctx context.Context, chatID int64, messageID int, msg telegram.Message) error {
	m.edits++
	m.bodies[messageID] = msg.Body
	return nil
}

func (m *e2eMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (m *e2eMessenger) History(ctx context.Context, chatID int64, limit int) ([]telegram.Posted, error) {
	var out []telegram.Posted
	for i := len(m.posted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.posted[i])
	}
	return out, nil
}

// Полный путь заявки: текст команды, запись в хранилище,
// перестройка рейтинга и его публикация.
func TestSubmissionToLeaderboard(t *testing.T) {
	store := newMockStore()
	messenger := newE2EMessenger()

	renderer := leaderboard.NewRenderer(store)
	publisher := leaderboard.NewPublisher(messenger, 42, 10)
	board := leaderboard.NewService(renderer, publisher, messenger, 0)

	svc := tally.NewService(store, board, &mockAuditor{})
	svc.SetDispatcher(syncDispatch)

	ctx := context.Background()
	day := "2026-08-31"

	submit := func(text string) int {
		amount, err := tally.ParseAmount(text)
		require.NoError(t, err)
		total, err := svc.Record(ctx, 100, "@vasya", day, amount)
		require.NoError(t, err)
		return total
	}

	total := submit("3")
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, messenger.sends)
	assert.Zero(t, messenger.edits)

	total = submit("2")
	assert.Equal(t, 5, total)

	// Вторая публикация правит первое сообщение, нового не появляется
	assert.Equal(t, 1, messenger.sends)
	assert.Equal(t, 1, messenger.edits)

	require.Len(t, messenger.posted, 1)
	body := messenger.bodies[messenger.posted[0].MessageID]
	assert.Contains(t, body, "@vasya")
	assert.Contains(t, body, "5 шалкеров")
}
