// Package entrypoint поддерживает единственную форму регистрации в чате формы.
// При каждом старте бот убирает свои старые сообщения из ограниченного окна
// и вешает одну свежую форму с кнопкой.
package entrypoint

import (
	"context"

	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// CallbackSubmit — callback data кнопки регистрации.
// По нажатию бот запрашивает у пользователя число шалкеров.
const CallbackSubmit = "shulker_submit"

// Sync чистит чат формы и публикует свежую форму регистрации.
type Sync struct {
	messenger  telegram.Messenger
	chatID     int64
	cleanDepth int
}

// NewSync создаёт синхронизатор формы.
func NewSync(messenger telegram.Messenger, chatID int64, cleanDepth int) *Sync {
	return &Sync{messenger: messenger, chatID: chatID, cleanDepth: cleanDepth}
}

// Run выполняется один раз на старте процесса, не на горячем пути заявок.
// После него в просканированном окне остаётся ровно одна наша форма —
// сколько бы черновиков ни накопилось с прошлых запусков.
func (s *Sync) Run(ctx context.Context) error {
	history, err := s.messenger.History(ctx, s.chatID, s.cleanDepth)
	if err != nil {
		return err
	}

	for _, posted := range history {
		if err := s.messenger.Delete(ctx, s.chatID, posted.MessageID); err != nil {
			// Одно зависшее сообщение не должно срывать публикацию формы
			log.WithError(err).WithField("message_id", posted.MessageID).
				Warn("Не удалось удалить старое сообщение бота")
		}
	}

	_, err = s.messenger.Send(ctx, s.chatID, telegram.KindEntryPoint, telegram.Message{
		Title: "📦 Учёт шалкеров",
		Body: "Нажми кнопку и ответь числом — сколько шалкеров ты поставил сегодня.\n" +
			"Или просто напиши: !шалкер <число>",
		Button: &telegram.Button{
			Label: "📦 Записать шалкеры",
			Data:  CallbackSubmit,
		},
	})
	if err != nil {
		return err
	}

	log.WithField("chat_id", s.chatID).Info("Форма регистрации опубликована")
	return nil
}
