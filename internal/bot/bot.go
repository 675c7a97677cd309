package bot

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"

	"github.com/okuzmina/tutorbot/internal/storage"
)

type Bot struct {
	api   *tele.Bot
	store *storage.Store
	cfg   Config
	log   *logrus.Logger

	dialogs *dialogRegistry
}

type Config struct {
	Token    string
	TutorID  int64
	Location *time.Location
}

// Inline buttons. Uniques double as callback routing keys.
var (
	btnAddHomework  = tele.Btn{Unique: "add_hw", Text: "📝 Добавить ДЗ"}
	btnListHomework = tele.Btn{Unique: "list_hw", Text: "📋 Список ДЗ"}
	btnAddLesson    = tele.Btn{Unique: "add_lesson", Text: "📅 Запланировать урок"}
	btnMenu         = tele.Btn{Unique: "menu", Text: "⬅️ Меню"}

	btnHomeworkDone = tele.Btn{Unique: "hw_done", Text: "✅ ДЗ выполнено"}
	btnMyHomework   = tele.Btn{Unique: "my_homework", Text: "📚 Мои ДЗ"}
	btnMySchedule   = tele.Btn{Unique: "my_schedule", Text: "📆 Расписание"}

	btnPickHWStudent     = tele.Btn{Unique: "hw_student"}
	btnPickLessonStudent = tele.Btn{Unique: "lesson_student"}
)

func New(cfg Config, store *storage.Store, log *logrus.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	api, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:     api,
		store:   store,
		cfg:     cfg,
		log:     log,
		dialogs: newDialogRegistry(),
	}
	b.register()
	return b, nil
}

func (b *Bot) Start() {
	b.log.WithField("username", b.api.Me.Username).Info("bot online, polling")
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

// API exposes the underlying client for outbound-only users like the
// reminder sweep.
func (b *Bot) API() *tele.Bot {
	return b.api
}

func (b *Bot) register() {
	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/menu", b.handleMenu)
	b.api.Handle("/cancel", b.handleCancel)

	b.api.Handle(&btnMenu, b.handleMenu)
	b.api.Handle(&btnAddHomework, b.handleAddHomework)
	b.api.Handle(&btnListHomework, b.handleListHomework)
	b.api.Handle(&btnAddLesson, b.handleAddLesson)
	b.api.Handle(&btnHomeworkDone, b.handleHomeworkDone)
	b.api.Handle(&btnMyHomework, b.handleMyHomework)
	b.api.Handle(&btnMySchedule, b.handleMySchedule)
	b.api.Handle(&btnPickHWStudent, b.handlePickHWStudent)
	b.api.Handle(&btnPickLessonStudent, b.handlePickLessonStudent)

	b.api.Handle(tele.OnText, b.handleText)
}

// isTutor mirrors the registration-or-env check: a stored role wins,
// otherwise the configured tutor ID decides.
func (b *Bot) isTutor(ctx context.Context, telegramID int64) (bool, error) {
	u, err := b.store.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if u != nil {
		return u.Role == storage.RoleTutor, nil
	}
	return telegramID == b.cfg.TutorID, nil
}

// ensureUser returns the stored row for the sender, registering it with the
// given role if needed.
func (b *Bot) ensureUser(ctx context.Context, sender *tele.User, role string) (*storage.User, error) {
	u := &storage.User{
		TelegramID: sender.ID,
		Username:   sender.Username,
		FullName:   fullName(sender),
		Role:       role,
	}
	if _, err := b.store.Users.Register(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func fullName(u *tele.User) string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
