// Package tally — handlers.go обрабатывает заявки из Telegram:
// команду !шалкер <число> и ответы на форму.
package tally

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/common"
)

// Handler обрабатывает события заявок.
type Handler struct {
	service    *Service
	bot        *tgbotapi.BotAPI
	formChatID int64
	loc        func() string // текущий день, "2006-01-02"
}

// NewHandler создаёт обработчик заявок.
// today — источник текущего дня (часовой пояс решает конфигурация).
func NewHandler(service *Service, bot *tgbotapi.BotAPI, formChatID int64, today func() string) *Handler {
	return &Handler{service: service, bot: bot, formChatID: formChatID, loc: today}
}

// HandleSubmission обрабатывает текст заявки от пользователя.
// replyTo — ID исходного сообщения пользователя в чате формы,
// используется для ответа, если личка закрыта.
func (h *Handler) HandleSubmission(ctx context.Context, userID int64, displayName, raw string, replyTo int) {
	amount, err := ParseAmount(raw)
	if err != nil {
		h.replyPrivate(userID, replyTo, "❌ Нужно ввести целое число от 1 до 9999.")
		return
	}

	day := h.loc()
	total, err := h.service.Record(ctx, userID, displayName, day, amount)
	if err != nil {
		if errors.Is(err, common.ErrStoreUnavailable) {
			log.WithError(err).WithField("user_id", userID).Error("Хранилище недоступно, заявка не принята")
			h.replyPrivate(userID, replyTo, "⚠️ База данных недоступна, заявка не записана. Попробуй ещё раз.")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка записи заявки")
		h.replyPrivate(userID, replyTo, "⚠️ Не получилось записать заявку. Попробуй ещё раз.")
		return
	}

	h.replyPrivate(userID, replyTo, fmt.Sprintf(
		"✅ Записано: +%d. Твой итог за сегодня: %d %s.",
		amount, total, common.PluralizeShulkers(total),
	))
}

// HandleMyTotal — команда !мои. Показывает ТОЛЬКО свой вклад за сегодня.
func (h *Handler) HandleMyTotal(ctx context.Context, chatID, userID int64) {
	total, ok, err := h.service.TodayTotal(ctx, userID, h.loc())
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка чтения вклада")
		h.sendMessage(chatID, "⚠️ База данных недоступна, попробуй позже.")
		return
	}
	if !ok {
		h.sendMessage(chatID, "📦 Сегодня ты ещё не записывал шалкеры.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("📦 Твой итог за сегодня: %d %s.", total, common.PluralizeShulkers(total)))
}

// replyPrivate доставляет ответ так, чтобы его видел только автор заявки:
// сначала личным сообщением; если личка закрыта — ответом на его
// сообщение в чате формы.
func (h *Handler) replyPrivate(userID int64, replyTo int, text string) {
	dm := tgbotapi.NewMessage(userID, text)
	if _, err := h.bot.Send(dm); err == nil {
		return
	}

	msg := tgbotapi.NewMessage(h.formChatID, text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось доставить ответ на заявку")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
