package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"

	"github.com/okuzmina/tutorbot/internal/storage"
)

const (
	lessonWindow   = time.Hour
	deadlineWindow = 24 * time.Hour

	timeLayout = "02.01.2006 15:04"
)

// Sender is the outbound half of the Telegram client.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Reminder periodically notifies students about lessons starting within the
// next hour and homework due within the next day. Each row is reminded once;
// a failed send stays unmarked and is retried on the next sweep.
type Reminder struct {
	sender   Sender
	store    *storage.Store
	log      *logrus.Logger
	interval time.Duration
	loc      *time.Location
}

func New(sender Sender, store *storage.Store, log *logrus.Logger, interval time.Duration, loc *time.Location) *Reminder {
	return &Reminder{
		sender:   sender,
		store:    store,
		log:      log,
		interval: interval,
		loc:      loc,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reminder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx, time.Now())
		}
	}
}

func (r *Reminder) sweep(ctx context.Context, now time.Time) {
	lessons, err := r.store.Lessons.ListStartingSoon(ctx, now, lessonWindow)
	if err != nil {
		r.log.WithError(err).Error("lesson reminder query failed")
	}
	for _, l := range lessons {
		msg := fmt.Sprintf("🔔 Напоминание: урок в %s", l.LessonTime.In(r.loc).Format(timeLayout))
		if l.Topic != "" {
			msg += "\nТема: " + l.Topic
		}
		if !r.deliver(l.Student.TelegramID, msg) {
			continue
		}
		if err := r.store.Lessons.MarkReminded(ctx, l.ID, now); err != nil {
			r.log.WithError(err).WithField("lesson_id", l.ID).Error("mark lesson reminded failed")
		}
	}

	homeworks, err := r.store.Homeworks.ListDueSoon(ctx, now, deadlineWindow)
	if err != nil {
		r.log.WithError(err).Error("homework reminder query failed")
	}
	for _, hw := range homeworks {
		msg := fmt.Sprintf("⏰ Напоминание: дедлайн по ДЗ %s\n%s",
			hw.Deadline.In(r.loc).Format(timeLayout), hw.TaskText)
		if !r.deliver(hw.Student.TelegramID, msg) {
			continue
		}
		if err := r.store.Homeworks.MarkReminded(ctx, hw.ID, now); err != nil {
			r.log.WithError(err).WithField("homework_id", hw.ID).Error("mark homework reminded failed")
		}
	}
}

func (r *Reminder) deliver(telegramID int64, text string) bool {
	if telegramID == 0 {
		return false
	}
	if _, err := r.sender.Send(&tele.User{ID: telegramID}, text); err != nil {
		r.log.WithError(err).WithField("telegram_id", telegramID).Warn("reminder send failed")
		return false
	}
	return true
}
