// Package audit — service.go записывает след заявки в БД и лог-чат.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// emitTimeout ограничивает одну фоновую запись аудита.
const emitTimeout = 15 * time.Second

// Service эмитит записи аудита.
type Service struct {
	repo      *Repository
	messenger telegram.Messenger
	logChatID int64
}

// NewService создаёт сервис аудита.
func NewService(repo *Repository, messenger telegram.Messenger, logChatID int64) *Service {
	return &Service{repo: repo, messenger: messenger, logChatID: logChatID}
}

// Submission фиксирует принятую заявку. Вызывается в фоне после того,
// как вклад уже записан: сбой аудита заявку не отменяет, только логируется.
func (s *Service) Submission(userID int64, displayName, day string, amount, total int) {
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()

	rec := &Record{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: displayName,
		Day:         day,
		Amount:      amount,
		Total:       total,
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Запись аудита в БД не удалась")
	}

	_, err := s.messenger.Send(ctx, s.logChatID, telegram.KindAudit, telegram.Message{
		Title: "🧰 Заявка записана",
		Body: fmt.Sprintf("👤 Участник: %s\n📦 Добавлено: %d\n📊 Итог за день: %d",
			displayName, amount, total),
		Footer: "Дата: " + common.FormatDay(day),
	})
	if err != nil {
		if errors.Is(err, common.ErrTargetUnresolved) {
			log.WithError(err).Error("Лог-чат не найден, запись аудита пропущена")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Не удалось отправить запись аудита в лог-чат")
	}
}
