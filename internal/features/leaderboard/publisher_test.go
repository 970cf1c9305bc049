package leaderboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// fakeMessenger имитирует поверхность сообщений с журналом в памяти.
type fakeMessenger struct {
	nextID  int
	posted  []telegram.Posted // от старых к новым
	sends   int
	edits   int
	deletes int
	editErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100}
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, kind string, msg telegram.Message) (int, error) {
	f.nextID++
	f.sends++
	f.posted = append(f.posted, telegram.Posted{
		MessageID: f.nextID,
		Kind:      kind,
		PostedAt:  time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeMessenger) Edit(ctx context.Context, chatID int64, messageID int, msg telegram.Message) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits++
	return nil
}

func (f *fakeMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	f.deletes++
	for i, p := range f.posted {
		if p.MessageID == messageID {
			f.posted = append(f.posted[:i], f.posted[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeMessenger) History(ctx context.Context, chatID int64, limit int) ([]telegram.Posted, error) {
	// От новых к старым, не глубже limit
	var out []telegram.Posted
	for i := len(f.posted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.posted[i])
	}
	return out, nil
}

var testEntries = []leaderboard.Entry{
	{Rank: 1, UserID: 2, DisplayName: "@petya", Total: 9},
	{Rank: 2, UserID: 1, DisplayName: "@vasya", Total: 5},
}

func TestPublish_EmptyRendering_NoOp(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)

	require.NoError(t, p.Publish(context.Background(), "2026-08-31", nil))

	assert.Zero(t, m.sends)
	assert.Zero(t, m.edits)
}

func TestPublish_FirstTimeSends(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)

	require.NoError(t, p.Publish(context.Background(), "2026-08-31", testEntries))

	assert.Equal(t, 1, m.sends)
	assert.Zero(t, m.edits)
}

func TestPublish_SecondTimeEditsInPlace(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))
	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	// Второй вызов правит прошлое сообщение, а не плодит новое
	assert.Equal(t, 1, m.sends)
	assert.Equal(t, 1, m.edits)
}

func TestPublish_IgnoresOtherKindsInWindow(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)
	ctx := context.Background()

	// В окне лежит чужой артефакт — форма
	_, err := m.Send(ctx, 42, telegram.KindEntryPoint, telegram.Message{})
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))
	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	assert.Equal(t, 2, m.sends) // форма + один рейтинг
	assert.Equal(t, 1, m.edits)
}

func TestPublish_ArtifactBeyondWindow_DuplicateAccepted(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 3)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	// Чат завалили: рейтинг уехал за окно сканирования
	for i := 0; i < 5; i++ {
		_, err := m.Send(ctx, 42, telegram.KindAudit, telegram.Message{})
		require.NoError(t, err)
	}

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	// Появился дубль — принятый компромисс ограниченного окна, не падение
	assert.Equal(t, 7, m.sends)
	assert.Zero(t, m.edits)
}

func TestPublish_MessageGone_FallsBackToSend(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	// Прошлое сообщение снесли руками
	m.editErr = fmt.Errorf("%w (message_id=101)", common.ErrMessageGone)
	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	assert.Equal(t, 2, m.sends)
}

func TestPublish_EditError_NoDuplicate(t *testing.T) {
	m := newFakeMessenger()
	p := leaderboard.NewPublisher(m, 42, 10)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "2026-08-31", testEntries))

	// Временный сбой редактирования — ошибка уходит наверх,
	// второго сообщения рейтинга не появляется
	m.editErr = assert.AnError
	err := p.Publish(ctx, "2026-08-31", testEntries)
	require.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, 1, m.sends)
}
