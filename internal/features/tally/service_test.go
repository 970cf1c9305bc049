package tally_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
)

// mockStore — хранилище в памяти с атомарным Upsert под мьютексом,
// тот же контракт, что у PostgreSQL-репозитория.
type mockStore struct {
	mu      sync.Mutex
	entries map[string]*tally.Row
	upserts int
	fail    bool
}

func newMockStore() *mockStore {
	return &mockStore{entries: make(map[string]*tally.Row)}
}

func key(userID int64, day string) string {
	return fmt.Sprintf("%d|%s", userID, day)
}

func (m *mockStore) Get(ctx context.Context, userID int64, day string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, false, fmt.Errorf("%w: тест", common.ErrStoreUnavailable)
	}
	e, ok := m.entries[key(userID, day)]
	if !ok {
		return 0, false, nil
	}
	return e.Total, true, nil
}

func (m *mockStore) Upsert(ctx context.Context, userID int64, displayName, day string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, fmt.Errorf("%w: тест", common.ErrStoreUnavailable)
	}
	m.upserts++
	k := key(userID, day)
	e, ok := m.entries[k]
	if !ok {
		e = &tally.Row{UserID: userID}
		m.entries[k] = e
	}
	e.DisplayName = displayName
	e.Total += delta
	return e.Total, nil
}

func (m *mockStore) ListDay(ctx context.Context, day string) ([]tally.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, fmt.Errorf("%w: тест", common.ErrStoreUnavailable)
	}
	var out []tally.Row
	for k, e := range m.entries {
		if k == key(e.UserID, day) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type mockRefresher struct {
	mu   sync.Mutex
	days []string
}

func (m *mockRefresher) Refresh(day string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = append(m.days, day)
}

type mockAuditor struct {
	mu    sync.Mutex
	calls int
}

func (m *mockAuditor) Submission(userID int64, displayName, day string, amount, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

// syncDispatch выполняет побочные эффекты синхронно — тестам не нужны гонки.
func syncDispatch(fn func()) { fn() }

func TestRecord_AccumulatesTotal(t *testing.T) {
	store := newMockStore()
	refresher := &mockRefresher{}
	auditor := &mockAuditor{}
	svc := tally.NewService(store, refresher, auditor)
	svc.SetDispatcher(syncDispatch)

	ctx := context.Background()

	total, err := svc.Record(ctx, 100, "@vasya", "2026-08-31", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	total, err = svc.Record(ctx, 100, "@vasya", "2026-08-31", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	// Один Upsert на заявку, никаких read-modify-write в сервисе
	assert.Equal(t, 2, store.upserts)
	assert.Equal(t, []string{"2026-08-31", "2026-08-31"}, refresher.days)
	assert.Equal(t, 2, auditor.calls)
}

// Свойство корректности всей системы: при любом чередовании заявок
// одного пользователя за один день итог равен их сумме.
func TestRecord_ConcurrentSameKey_NoLostUpdates(t *testing.T) {
	store := newMockStore()
	svc := tally.NewService(store, &mockRefresher{}, &mockAuditor{})
	svc.SetDispatcher(func(fn func()) {}) // побочные эффекты здесь не интересны

	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	expected := 0
	for i := 1; i <= n; i++ {
		expected += i
		wg.Add(1)
		go func(delta int) {
			defer wg.Done()
			_, err := svc.Record(ctx, 100, "@vasya", "2026-08-31", delta)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, ok, err := store.Get(ctx, 100, "2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, expected, got)
}

func TestRecord_DifferentKeysIndependent(t *testing.T) {
	store := newMockStore()
	svc := tally.NewService(store, &mockRefresher{}, &mockAuditor{})
	svc.SetDispatcher(syncDispatch)

	ctx := context.Background()

	_, err := svc.Record(ctx, 100, "@vasya", "2026-08-31", 3)
	require.NoError(t, err)
	_, err = svc.Record(ctx, 200, "@petya", "2026-08-31", 7)
	require.NoError(t, err)
	_, err = svc.Record(ctx, 100, "@vasya", "2026-09-01", 1)
	require.NoError(t, err)

	total, ok, _ := store.Get(ctx, 100, "2026-08-31")
	require.True(t, ok)
	assert.Equal(t, 3, total)

	total, ok, _ = store.Get(ctx, 200, "2026-08-31")
	require.True(t, ok)
	assert.Equal(t, 7, total)

	total, ok, _ = store.Get(ctx, 100, "2026-09-01")
	require.True(t, ok)
	assert.Equal(t, 1, total)
}

func TestRecord_StoreUnavailable_NoSideEffects(t *testing.T) {
	store := newMockStore()
	store.fail = true
	refresher := &mockRefresher{}
	auditor := &mockAuditor{}
	svc := tally.NewService(store, refresher, auditor)
	svc.SetDispatcher(syncDispatch)

	_, err := svc.Record(context.Background(), 100, "@vasya", "2026-08-31", 3)
	require.Error(t, err)
	// Ошибка хранилища различима — это не «первая заявка дня»
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	// Заявка не принята — ни аудита, ни обновления рейтинга
	assert.Empty(t, refresher.days)
	assert.Zero(t, auditor.calls)
}

func TestTodayTotal(t *testing.T) {
	store := newMockStore()
	svc := tally.NewService(store, &mockRefresher{}, &mockAuditor{})
	svc.SetDispatcher(syncDispatch)

	ctx := context.Background()

	_, ok, err := svc.TodayTotal(ctx, 100, "2026-08-31")
	require.NoError(t, err)
	assert.False(t, ok, "до первой заявки записи нет")

	_, err = svc.Record(ctx, 100, "@vasya", "2026-08-31", 4)
	require.NoError(t, err)

	total, ok, err := svc.TodayTotal(ctx, 100, "2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, total)
}
