// Package tally — service.go содержит бизнес-логику приёма заявок.
package tally

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Refresher перестраивает и публикует рейтинг за день.
type Refresher interface {
	Refresh(day string)
}

// Auditor записывает след принятой заявки (БД + лог-чат).
type Auditor interface {
	Submission(userID int64, displayName, day string, amount, total int)
}

// Service принимает заявки и запускает побочные эффекты.
//
// Сериализация по ключу (userID, day) обеспечивается атомарным Upsert
// хранилища — сервис вызывает его ровно один раз на заявку и ничего
// не читает перед записью, поэтому терять нечего.
type Service struct {
	store    Store
	refresh  Refresher
	audit    Auditor
	dispatch func(fn func()) // запуск побочных эффектов; в тестах — синхронный
}

// NewService создаёт сервис учёта вкладов.
func NewService(store Store, refresh Refresher, audit Auditor) *Service {
	return &Service{
		store:   store,
		refresh: refresh,
		audit:   audit,
		dispatch: func(fn func()) {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithField("panic", r).Error("Паника в фоновой задаче заявки")
					}
				}()
				fn()
			}()
		},
	}
}

// SetDispatcher заменяет механизм запуска побочных эффектов.
// Нужен тестам, чтобы выполнить аудит и обновление рейтинга синхронно.
func (s *Service) SetDispatcher(dispatch func(fn func())) {
	s.dispatch = dispatch
}

// Record применяет проверенную заявку: один атомарный Upsert, затем —
// уже после фиксации записи — аудит и обновление рейтинга в фоне.
// Вызывающему нужен только новый total для подтверждения; судьба
// побочных эффектов на подтверждение не влияет.
func (s *Service) Record(ctx context.Context, userID int64, displayName, day string, delta int) (int, error) {
	total, err := s.store.Upsert(ctx, userID, displayName, day, delta)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"day":     day,
		"delta":   delta,
		"total":   total,
	}).Info("Заявка принята")

	s.dispatch(func() { s.audit.Submission(userID, displayName, day, delta, total) })
	s.dispatch(func() { s.refresh.Refresh(day) })

	return total, nil
}

// TodayTotal возвращает текущий вклад пользователя за день.
// Если заявок ещё не было — (0, false).
func (s *Service) TodayTotal(ctx context.Context, userID int64, day string) (int, bool, error) {
	return s.store.Get(ctx, userID, day)
}
