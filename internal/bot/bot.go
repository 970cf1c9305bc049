// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go принимает апдейты Telegram, фильтрует их и раздаёт обработчикам.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/bot/filters"
	"shulkerlog.ru/telegram-bot/internal/bot/middleware"
	"shulkerlog.ru/telegram-bot/internal/config"
	"shulkerlog.ru/telegram-bot/internal/features/entrypoint"
	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/features/members"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService      *members.Service
	tallyHandler       *tally.Handler
	leaderboardService *leaderboard.Service
	messenger          telegram.Messenger
	journal            *telegram.Journal

	parser  *CommandParser
	pending *pendingPrompts
	today   func() string

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	tallyHandler *tally.Handler,
	leaderboardService *leaderboard.Service,
	messenger telegram.Messenger,
	journal *telegram.Journal,
	chatFilter *filters.ChatFilter,
	today func() string,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:      memberService,
		tallyHandler:       tallyHandler,
		leaderboardService: leaderboardService,
		messenger:          messenger,
		journal:            journal,
		parser:             NewCommandParser(),
		pending:            newPendingPrompts(),
		today:              today,
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Нажатие кнопки формы
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	// Обрабатываем новых участников (событие вступления)
	if update.Message != nil && update.Message.NewChatMembers != nil {
		if update.Message.Chat != nil && update.Message.Chat.ID == b.cfg.FormChatID {
			b.handleNewMembers(ctx, update.Message.NewChatMembers)
		}
		return
	}

	// Обрабатываем обычные сообщения
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	// Логируем входящее
	middleware.LogMessage(message)

	// Проверяем доступ (FORM_CHAT_ID или DM участника)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	// Rate limiting
	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// Ответ на наш вопрос «сколько шалкеров?» — это заявка
	if message.ReplyToMessage != nil && b.pending.Claim(message.ReplyToMessage.MessageID, userID) {
		b.tallyHandler.HandleSubmission(ctx, userID, displayName(message.From), message.Text, message.MessageID)

		// Вопрос отработал — убираем его с поверхности
		if err := b.messenger.Delete(ctx, b.cfg.FormChatID, message.ReplyToMessage.MessageID); err != nil {
			log.WithError(err).Debug("Не удалось удалить вопрос формы")
		}
		return
	}

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	log.WithFields(log.Fields{
		"isCommand": isCommand,
		"cmd":       cmd,
		"args":      args,
		"text":      message.Text,
	}).Debug("parsed command")

	if isCommand {
		b.routeCommand(ctx, chatID, userID, message, cmd, args)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, message *tgbotapi.Message, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")
	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, "Я считаю шалкеры. Команды: !шалкер <число>, !мои, !рейтинг — или кнопка в чате формы.")

	case "шалкер", "shulker":
		if len(args) == 0 {
			b.sendMessage(chatID, "📦 Напиши так: !шалкер 3")
			return
		}
		b.tallyHandler.HandleSubmission(ctx, userID, displayName(message.From), args[0], message.MessageID)

	case "мои", "итог":
		b.tallyHandler.HandleMyTotal(ctx, chatID, userID)

	case "рейтинг":
		if err := b.leaderboardService.RefreshCtx(ctx, b.today()); err != nil {
			log.WithError(err).Error("Ошибка обновления рейтинга по команде")
			b.sendMessage(chatID, "⚠️ Не удалось обновить рейтинг")
			return
		}
		b.sendMessage(chatID, "🏆 Рейтинг обновлён")
	}
}

// handleCallback обрабатывает нажатие кнопки «Записать шалкеры»:
// отвечает на callback и задаёт пользователю вопрос с ForceReply.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	middleware.LogCallback(cb)

	if cb.Data != entrypoint.CallbackSubmit || cb.From == nil {
		return
	}

	if !b.rateLimiter.Allow(cb.From.ID) {
		log.WithField("user_id", cb.From.ID).Debug("callback rate limited")
		return
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "Ответь числом на вопрос в чате")); err != nil {
		log.WithError(err).Warn("Не удалось ответить на callback")
	}

	prompt := tgbotapi.NewMessage(b.cfg.FormChatID, fmt.Sprintf(
		"📦 %s, сколько шалкеров ты поставил сегодня? Ответь на это сообщение числом.",
		displayName(cb.From),
	))
	prompt.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}

	sent, err := b.api.Send(prompt)
	if err != nil {
		log.WithError(err).Error("Не удалось отправить вопрос формы")
		return
	}

	// Вопрос попадает в журнал: если бот упадёт, не дождавшись ответа,
	// зависший вопрос уберёт стартовая очистка чата формы
	if err := b.journal.Record(ctx, b.cfg.FormChatID, sent.MessageID, telegram.KindPrompt); err != nil {
		log.WithError(err).Warn("Вопрос формы не записан в журнал")
	}

	b.pending.Add(sent.MessageID, cb.From.ID)
}

// handleNewMembers обрабатывает вступление новых участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if err := b.memberService.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("HandleNewMember failed")
		}

		log.WithField("user", user.UserName).Info("Новый участник обработан")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// displayName строит отображаемое имя из данных Telegram.
// Совпадает с members.Member.DisplayName по правилам.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return strings.TrimSpace(name)
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
