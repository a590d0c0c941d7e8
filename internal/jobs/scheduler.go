// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: пересборку кэша рейтинга
// и напоминания о доступном ежедневном бонусе.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/config"
	"serotonyl.ru/farm-bot/internal/features/bank"
	"serotonyl.ru/farm-bot/internal/features/rating"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	cfg           *config.Config
	bankService   *bank.Service
	ratingService *rating.Service
	sendFunc      func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач в часовом поясе бота.
func NewScheduler(
	cfg *config.Config,
	bankService *bank.Service,
	ratingService *rating.Service,
	sendFunc func(userID int64, text string),
) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cron:          cron.New(cron.WithLocation(loc)),
		cfg:           cfg,
		bankService:   bankService,
		ratingService: ratingService,
		sendFunc:      sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Пересборка кэша рейтинга каждый час: точечные обновления
	// могли потеряться, полная пересборка убирает расхождения
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Пересборка рейтинга")
		if err := s.ratingService.Rebuild(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка пересборки рейтинга")
		}
	})

	// Напоминание о бонусе в полдень — тем, у кого он снова доступен
	if s.cfg.BonusReminderEnabled {
		s.cron.AddFunc("0 12 * * *", func() {
			log.Info("[CRON] Напоминания о бонусе")
			s.remindBonus(ctx)
		})
	}

	s.cron.Start()
	log.WithField("timezone", s.cfg.AppTimezone).Info("Планировщик задач запущен")
}

func (s *Scheduler) remindBonus(ctx context.Context) {
	ids, err := s.bankService.BonusDueUserIDs(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка поиска кандидатов на бонус")
		return
	}
	for _, id := range ids {
		s.sendFunc(id, "🎁 Ежедневный бонус ждёт тебя: !бонус")
	}
	log.WithField("count", len(ids)).Debug("[CRON] Напоминания отправлены")
}

// Stop останавливает планировщик и дожидается текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
