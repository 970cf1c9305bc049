// Package leaderboard — publisher.go поддерживает единственное видимое
// сообщение рейтинга в чате.
package leaderboard

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// Publisher публикует рейтинг: правит прошлое сообщение на месте,
// а если его нет в окне сканирования — отправляет новое.
//
// Окно ограничено scanDepth: если прошлый рейтинг уехал глубже
// (чат завалили сообщениями), появится дубль. Это принятый компромисс
// «дёшево и почти всегда одно сообщение», а не баг корректности.
type Publisher struct {
	messenger telegram.Messenger
	chatID    int64
	scanDepth int
}

// NewPublisher создаёт публикатор рейтинга.
func NewPublisher(messenger telegram.Messenger, chatID int64, scanDepth int) *Publisher {
	return &Publisher{messenger: messenger, chatID: chatID, scanDepth: scanDepth}
}

// Publish выводит рейтинг на поверхность.
// Пустой рейтинг не публикуется вовсе.
func (p *Publisher) Publish(ctx context.Context, day string, entries []Entry) error {
	if len(entries) == 0 {
		log.WithField("day", day).Debug("Рейтинг пуст, публиковать нечего")
		return nil
	}

	msg := Format(day, entries)

	history, err := p.messenger.History(ctx, p.chatID, p.scanDepth)
	if err != nil {
		return err
	}

	for _, posted := range history {
		if posted.Kind != telegram.KindLeaderboard {
			continue
		}
		err := p.messenger.Edit(ctx, p.chatID, posted.MessageID, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrMessageGone) {
			// Сообщение снесли руками — публикуем заново
			log.WithError(err).WithField("message_id", posted.MessageID).
				Warn("Прошлый рейтинг исчез, отправляем новый")
			break
		}
		// Любая другая ошибка — не повод плодить дубль
		return err
	}

	_, err = p.messenger.Send(ctx, p.chatID, telegram.KindLeaderboard, msg)
	return err
}
