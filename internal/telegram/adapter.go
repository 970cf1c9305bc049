// Package telegram — adapter.go реализует Messenger поверх Bot API.
// Каждая отправка фиксируется в журнале, каждое удаление — стирается из него,
// чтобы History видел актуальное окно своих сообщений.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/common"
)

// journalStore — журнал собственных отправок, который ведёт адаптер.
// Реализуется Journal; в тестах подменяется.
type journalStore interface {
	Record(ctx context.Context, chatID int64, messageID int, kind string) error
	Forget(ctx context.Context, chatID int64, messageID int) error
	Recent(ctx context.Context, chatID int64, limit int) ([]Posted, error)
}

// Adapter — реализация Messenger поверх go-telegram-bot-api и журнала.
type Adapter struct {
	api     *tgbotapi.BotAPI
	journal journalStore
}

// NewAdapter создаёт адаптер поверхности сообщений.
func NewAdapter(api *tgbotapi.BotAPI, journal journalStore) *Adapter {
	return &Adapter{api: api, journal: journal}
}

// Send отправляет форматированное сообщение и записывает его в журнал.
func (a *Adapter) Send(ctx context.Context, chatID int64, kind string, msg Message) (int, error) {
	out := tgbotapi.NewMessage(chatID, renderHTML(msg))
	out.ParseMode = tgbotapi.ModeHTML
	if msg.Button != nil {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(msg.Button.Label, msg.Button.Data),
			),
		)
	}

	sent, err := a.api.Send(out)
	if err != nil {
		return 0, wrapAPIError(chatID, err)
	}

	if err := a.journal.Record(ctx, chatID, sent.MessageID, kind); err != nil {
		// Сообщение уже на поверхности — журнал догоним на очистке
		log.WithError(err).WithField("chat_id", chatID).Warn("Сообщение отправлено, но не записано в журнал")
	}
	return sent.MessageID, nil
}

// Edit заменяет содержимое ранее отправленного сообщения на месте.
// Возвращает nil и тогда, когда новое содержимое совпадает со старым:
// Bot API отвечает на такой запрос ошибкой, но сообщение на поверхности
// уже показывает ровно то, что нужно. Если сообщения больше нет,
// ошибка помечена common.ErrMessageGone.
func (a *Adapter) Edit(ctx context.Context, chatID int64, messageID int, msg Message) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, renderHTML(msg))
	edit.ParseMode = tgbotapi.ModeHTML

	if _, err := a.api.Send(edit); err != nil {
		if isNotModified(err) {
			return nil
		}
		// Сообщение снесли руками — чистим журнал, чтобы не
		// спотыкаться об этот же ID при следующем сканировании
		if isMessageGone(err) {
			if fErr := a.journal.Forget(ctx, chatID, messageID); fErr != nil {
				log.WithError(fErr).Warn("Не удалось забыть удалённое сообщение")
			}
			return fmt.Errorf("%w (chat_id=%d, message_id=%d): %v",
				common.ErrMessageGone, chatID, messageID, err)
		}
		return wrapAPIError(chatID, err)
	}
	return nil
}

// Delete удаляет сообщение с поверхности и из журнала.
func (a *Adapter) Delete(ctx context.Context, chatID int64, messageID int) error {
	if _, err := a.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		if !isMessageGone(err) {
			return wrapAPIError(chatID, err)
		}
		// Уже удалено — просто чистим журнал
	}
	return a.journal.Forget(ctx, chatID, messageID)
}

// History возвращает окно недавних сообщений бота в чате (из журнала).
func (a *Adapter) History(ctx context.Context, chatID int64, limit int) ([]Posted, error) {
	return a.journal.Recent(ctx, chatID, limit)
}

// renderHTML собирает HTML-представление сообщения.
// Пользовательский текст экранируется — имена бывают с «<» и «&».
func renderHTML(msg Message) string {
	var sb strings.Builder
	if msg.Title != "" {
		sb.WriteString("<b>" + html.EscapeString(msg.Title) + "</b>\n\n")
	}
	sb.WriteString(html.EscapeString(msg.Body))
	if msg.Footer != "" {
		sb.WriteString("\n\n<i>" + html.EscapeString(msg.Footer) + "</i>")
	}
	return sb.String()
}

// wrapAPIError переводит ошибки Bot API в ошибки ядра.
// «Чат не найден» — отдельное условие: значит, конфигурация битая.
func wrapAPIError(chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), "chat not found") {
		return fmt.Errorf("%w (chat_id=%d): %v", common.ErrTargetUnresolved, chatID, err)
	}
	return fmt.Errorf("ошибка Bot API (chat_id=%d): %w", chatID, err)
}

// isNotModified — редактирование с тем же содержимым. Для Bot API это
// ошибка, для нас — успешный no-op.
func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) &&
		strings.Contains(strings.ToLower(apiErr.Message), "message is not modified")
}

// isMessageGone — сообщение, которое мы пытаемся изменить/удалить, уже не существует.
func isMessageGone(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	m := strings.ToLower(apiErr.Message)
	return strings.Contains(m, "message to edit not found") ||
		strings.Contains(m, "message to delete not found") ||
		strings.Contains(m, "message can't be deleted")
}
