// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: итоги дня перед полуночью
// и ночную очистку журнала сообщений.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"shulkerlog.ru/telegram-bot/internal/features/leaderboard"
	"shulkerlog.ru/telegram-bot/internal/telegram"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron               *cron.Cron
	leaderboardService *leaderboard.Service
	journal            *telegram.Journal
	retentionDays      int
	today              func() string
}

// NewScheduler создаёт планировщик задач в заданном часовом поясе —
// в том же, в котором считается календарный день заявок.
func NewScheduler(
	leaderboardService *leaderboard.Service,
	journal *telegram.Journal,
	loc *time.Location,
	retentionDays int,
	today func() string,
) *Scheduler {
	return &Scheduler{
		cron:               cron.New(cron.WithLocation(loc)),
		leaderboardService: leaderboardService,
		journal:            journal,
		retentionDays:      retentionDays,
		today:              today,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Итоги дня в 23:59 — пока «сегодня» ещё не перевернулось
	s.cron.AddFunc("59 23 * * *", func() {
		day := s.today()
		log.WithField("day", day).Info("[CRON] Публикуем итоги дня")
		if err := s.leaderboardService.PostFinal(ctx, day); err != nil {
			log.WithError(err).Error("[CRON] Ошибка публикации итогов")
		}
	})

	// Ночная очистка журнала сообщений
	s.cron.AddFunc("30 3 * * *", func() {
		removed, err := s.journal.Prune(ctx, s.retentionDays)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки журнала")
			return
		}
		log.WithField("removed", removed).Debug("[CRON] Журнал сообщений очищен")
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
