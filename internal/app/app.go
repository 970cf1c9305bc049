// Package app инициализирует все композиции приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot. Глобальных синглтонов нет —
// все зависимости передаются явно через конструкторы.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/bot"
	"shulkerlog.ru/telegram-bot/internal/bot/filters"
	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/config"
	"shulkerlog.ru/telegram-bot/internal/db/postgres"
	"shulkerlog.ru/telegram-bot/internal/features/audit"
	"shulkerlog.ru/telegram-bot/internal/features/entrypoint"
	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/features/members"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
	"shulkerlog.ru/telegram-bot/internal/jobs"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// App содержит все компоненты приложения.
type App struct {
	Bot        *bot.Bot
	Scheduler  *jobs.Scheduler
	EntryPoint *entrypoint.Sync
	DB         *pgxpool.Pool
	BotAPI     *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// Часовой пояс и «сегодня» — одно определение на всё приложение
	loc := common.LoadLocation(cfg.AppTimezone)
	today := func() string { return common.Today(loc) }

	// === 3. Поверхность сообщений ===
	journal := telegram.NewJournal(pool)
	messenger := telegram.NewAdapter(botAPI, journal)

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool)
	tallyRepo := tally.NewRepository(pool)
	auditRepo := audit.NewRepository(pool)

	// === 5. Сервисы ===
	memberService := members.NewService(memberRepo)
	auditService := audit.NewService(auditRepo, messenger, cfg.LogChatID)

	renderer := leaderboard.NewRenderer(tallyRepo)
	publisher := leaderboard.NewPublisher(messenger, cfg.RankingChatID, cfg.LeaderboardScanDepth)
	leaderboardService := leaderboard.NewService(renderer, publisher, messenger, cfg.LogChatID)

	tallyService := tally.NewService(tallyRepo, leaderboardService, auditService)

	// === 6. Обработчики ===
	tallyHandler := tally.NewHandler(tallyService, botAPI, cfg.FormChatID, today)

	// === 7. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.FormChatID, memberService, botAPI)

	// === 8. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService,
		tallyHandler,
		leaderboardService,
		messenger,
		journal,
		chatFilter,
		today,
	)

	// === 9. Форма регистрации и планировщик ===
	entryPoint := entrypoint.NewSync(messenger, cfg.FormChatID, cfg.EntryPointCleanDepth)
	scheduler := jobs.NewScheduler(leaderboardService, journal, loc, cfg.JournalRetentionDays, today)

	return &App{
		Bot:        b,
		Scheduler:  scheduler,
		EntryPoint: entryPoint,
		DB:         pool,
		BotAPI:     botAPI,
	}, nil
}

// runMigrations применяет все SQL-миграции по порядку версий.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return postgres.Migrate(ctx, pool, []postgres.Migration{
		{Version: 1, SQL: migration001Members},
		{Version: 2, SQL: migration002Contributions},
		{Version: 3, SQL: migration003BotMessages},
		{Version: 4, SQL: migration004AuditLog},
	})
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
`

var migration002Contributions = `
CREATE TABLE IF NOT EXISTS contributions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    day VARCHAR(10) NOT NULL,
    total INTEGER NOT NULL CHECK (total > 0),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (user_id, day)
);
CREATE INDEX IF NOT EXISTS idx_contributions_day ON contributions(day);
`

var migration003BotMessages = `
CREATE TABLE IF NOT EXISTS bot_messages (
    id BIGSERIAL PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    message_id BIGINT NOT NULL,
    kind VARCHAR(32) NOT NULL,
    posted_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bot_messages_chat ON bot_messages(chat_id, posted_at DESC);
`

var migration004AuditLog = `
CREATE TABLE IF NOT EXISTS audit_log (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    day VARCHAR(10) NOT NULL,
    amount INTEGER NOT NULL,
    total INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_audit_log_day ON audit_log(day);
`

// EnsureEntryPoint публикует форму регистрации после подключения.
// Выполняется один раз на старте; ошибки не фатальны для процесса —
// бот продолжит принимать команды даже без формы.
func (a *App) EnsureEntryPoint(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := a.EntryPoint.Run(syncCtx); err != nil {
		log.WithError(err).Error("Не удалось синхронизировать форму регистрации")
	}
}
