// Package leaderboard — service.go связывает построение и публикацию рейтинга.
package leaderboard

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// refreshTimeout ограничивает один цикл «прочитать-построить-опубликовать».
const refreshTimeout = 30 * time.Second

// Service обновляет рейтинг дня.
type Service struct {
	renderer  *Renderer
	publisher *Publisher
	messenger telegram.Messenger
	logChatID int64
	flight    singleflight.Group
}

// NewService создаёт сервис рейтинга.
// logChatID — чат для итогов дня (пост по крону, каждый раз новое сообщение).
func NewService(renderer *Renderer, publisher *Publisher, messenger telegram.Messenger, logChatID int64) *Service {
	return &Service{
		renderer:  renderer,
		publisher: publisher,
		messenger: messenger,
		logChatID: logChatID,
	}
}

// Refresh перестраивает и публикует рейтинг за день. Фоновый вход:
// ошибки логируются здесь и не доезжают до автора заявки.
// Параллельные обновления одного дня схлопываются в одно — снимок
// может оказаться чуть устаревшим, следующая заявка его догонит.
func (s *Service) Refresh(day string) {
	_, _, _ = s.flight.Do(day, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := s.RefreshCtx(ctx, day); err != nil {
			if errors.Is(err, common.ErrTargetUnresolved) {
				log.WithError(err).Error("Чат рейтинга не найден, публикация пропущена")
			} else {
				log.WithError(err).WithField("day", day).Error("Ошибка обновления рейтинга")
			}
		}
		return nil, nil
	})
}

// RefreshCtx — синхронный вариант Refresh для команды !рейтинг.
func (s *Service) RefreshCtx(ctx context.Context, day string) error {
	entries, err := s.renderer.Render(ctx, day)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, day, entries)
}

// PostFinal отправляет итоги дня в лог-чат отдельным сообщением.
// В отличие от рейтинга, итоги никогда не редактируются — это архив.
// Пустой день итогов не получает.
func (s *Service) PostFinal(ctx context.Context, day string) error {
	entries, err := s.renderer.Render(ctx, day)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.WithField("day", day).Debug("За день не было заявок, итоги не публикуем")
		return nil
	}

	msg := Format(day, entries)
	msg.Title = "📊 Итоги дня по шалкерам"

	_, err = s.messenger.Send(ctx, s.logChatID, telegram.KindSummary, msg)
	return err
}
