package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"

	"github.com/okuzmina/tutorbot/internal/storage"
)

const deadlineLayout = "02.01.2006 15:04"

func (b *Bot) handleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	tutor, err := b.isTutor(ctx, sender.ID)
	if err != nil {
		return err
	}

	if tutor {
		if _, err := b.ensureUser(ctx, sender, storage.RoleTutor); err != nil {
			return err
		}
		err := c.Send(
			fmt.Sprintf("👨‍🏫 Добро пожаловать, репетитор %s!\n\nИспользуйте команду /menu для управления", fullName(sender)),
			&tele.ReplyMarkup{RemoveKeyboard: true},
		)
		if err != nil {
			return err
		}
		return b.showTutorMenu(c)
	}

	if _, err := b.ensureUser(ctx, sender, storage.RoleStudent); err != nil {
		return err
	}
	return c.Send(
		fmt.Sprintf("👨‍🎓 Привет, %s!\n\nЯ помогу вам следить за домашними заданиями и расписанием.", fullName(sender)),
		studentKeyboard(),
	)
}

func (b *Bot) handleMenu(c tele.Context) error {
	if c.Callback() != nil {
		_ = c.Respond()
	}
	return b.showTutorMenu(c)
}

func (b *Bot) showTutorMenu(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnAddHomework),
		markup.Row(btnListHomework),
		markup.Row(btnAddLesson),
	)

	if c.Callback() != nil {
		return c.Edit("📊 Панель управления:", markup)
	}
	return c.Send("📊 Панель управления:", markup)
}

func (b *Bot) handleAddHomework(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	tutor, err := b.isTutor(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if !tutor {
		return c.Edit("Доступно только репетитору!")
	}

	students, err := b.store.Users.ListStudents(ctx)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return c.Edit("📭 Пока нет зарегистрированных учеников.")
	}
	return c.Edit("👤 Выберите ученика:", studentPicker(btnPickHWStudent, students))
}

func (b *Bot) handlePickHWStudent(c tele.Context) error {
	_ = c.Respond()
	student, err := b.pickedStudent(c)
	if err != nil {
		return err
	}

	b.dialogs.set(c.Sender().ID, &dialog{
		step:        stepHomeworkText,
		studentID:   student.ID,
		studentTG:   student.TelegramID,
		studentName: student.FullName,
	})
	return c.Edit(fmt.Sprintf("📝 Ученик: %s\nВведите текст задания:", student.FullName))
}

func (b *Bot) handleListHomework(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	items, err := b.store.Homeworks.ListActive(ctx, time.Now())
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return c.Edit("📭 Нет активных домашних заданий.")
	}

	text := "📚 Активные домашние задания:\n\n"
	for _, hw := range items {
		status := "⏳ В процессе"
		if hw.IsCompleted {
			status = "✅ Выполнено"
		}
		deadline := hw.Deadline.In(b.cfg.Location).Format(deadlineLayout)
		text += fmt.Sprintf("👤 %s\n📝 %s...\n📅 Дедлайн: %s\n%s\n\n",
			hw.FullName, truncate(hw.TaskText, 50), deadline, status)
	}
	return c.Edit(text)
}

func (b *Bot) handleAddLesson(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	tutor, err := b.isTutor(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if !tutor {
		return c.Edit("Доступно только репетитору!")
	}

	students, err := b.store.Users.ListStudents(ctx)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		return c.Edit("📭 Пока нет зарегистрированных учеников.")
	}
	return c.Edit("👤 Выберите ученика для урока:", studentPicker(btnPickLessonStudent, students))
}

func (b *Bot) handlePickLessonStudent(c tele.Context) error {
	_ = c.Respond()
	student, err := b.pickedStudent(c)
	if err != nil {
		return err
	}

	b.dialogs.set(c.Sender().ID, &dialog{
		step:        stepLessonTime,
		studentID:   student.ID,
		studentTG:   student.TelegramID,
		studentName: student.FullName,
	})
	return c.Edit(fmt.Sprintf("📅 Ученик: %s\nВведите дату и время урока в формате дд.мм.гггг чч:мм", student.FullName))
}

func (b *Bot) handleHomeworkDone(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	student, err := b.store.Users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if student == nil {
		return c.Edit("Сначала напишите /start")
	}

	hw, err := b.store.Homeworks.CompleteOldestOpen(ctx, student.ID, time.Now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Edit("📭 У вас нет невыполненных заданий.", studentKeyboard())
	}
	if err != nil {
		return err
	}

	b.notify(hw.Tutor.TelegramID, fmt.Sprintf("✅ %s выполнил(а) ДЗ:\n%s", student.FullName, hw.TaskText))
	return c.Edit("✅ Вы отметили ДЗ как выполненное! Репетитор получит уведомление.", studentKeyboard())
}

func (b *Bot) handleMyHomework(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	student, err := b.store.Users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if student == nil {
		return c.Edit("Сначала напишите /start")
	}

	hws, err := b.store.Homeworks.ListOpenForStudent(ctx, student.ID)
	if err != nil {
		return err
	}
	if len(hws) == 0 {
		return c.Edit("📭 У вас нет активных заданий.", studentKeyboard())
	}

	text := "📚 Ваши домашние задания:\n\n"
	for _, hw := range hws {
		deadline := hw.Deadline.In(b.cfg.Location).Format(deadlineLayout)
		text += fmt.Sprintf("📝 %s\n📅 Дедлайн: %s\n\n", hw.TaskText, deadline)
	}
	return c.Edit(text, studentKeyboard())
}

func (b *Bot) handleMySchedule(c tele.Context) error {
	_ = c.Respond()
	ctx := context.Background()

	student, err := b.store.Users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if student == nil {
		return c.Edit("Сначала напишите /start")
	}

	lessons, err := b.store.Lessons.ListUpcomingForStudent(ctx, student.ID, time.Now())
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		return c.Edit("📭 У вас нет запланированных уроков.", studentKeyboard())
	}

	text := "📆 Ваши уроки:\n\n"
	for _, l := range lessons {
		when := l.LessonTime.In(b.cfg.Location).Format(deadlineLayout)
		if l.Topic != "" {
			text += fmt.Sprintf("📅 %s\nТема: %s\n\n", when, l.Topic)
		} else {
			text += fmt.Sprintf("📅 %s\n\n", when)
		}
	}
	return c.Edit(text, studentKeyboard())
}

func (b *Bot) handleCancel(c tele.Context) error {
	if b.dialogs.clear(c.Sender().ID) {
		return c.Send("Диалог отменён.")
	}
	return c.Send("Нет активного диалога.")
}

// handleText is the catch-all for plain messages: an active dialog consumes
// them, everyone else gets pointed at their controls.
func (b *Bot) handleText(c tele.Context) error {
	if d := b.dialogs.get(c.Sender().ID); d != nil {
		return b.resumeDialog(c, d)
	}

	ctx := context.Background()
	tutor, err := b.isTutor(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if tutor {
		return c.Send("Используйте /menu для доступа к панели управления.")
	}
	return c.Send("Используйте кнопки ниже:", studentKeyboard())
}

// pickedStudent resolves a student-picker callback into the stored user.
func (b *Bot) pickedStudent(c tele.Context) (*storage.User, error) {
	args := c.Args()
	if len(args) < 2 {
		return nil, fmt.Errorf("malformed student callback: %v", args)
	}
	telegramID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed student callback: %w", err)
	}

	student, err := b.store.Users.GetByTelegramID(context.Background(), telegramID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("student %s no longer registered", args[0])
	}
	return student, nil
}

func (b *Bot) notify(telegramID int64, text string) {
	if b.api == nil || telegramID == 0 {
		return
	}
	if _, err := b.api.Send(&tele.User{ID: telegramID}, text); err != nil {
		b.log.WithError(err).WithField("telegram_id", telegramID).Warn("notify failed")
	}
}

func studentKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnHomeworkDone),
		markup.Row(btnMyHomework),
		markup.Row(btnMySchedule),
	)
	return markup
}

func studentPicker(base tele.Btn, students []storage.User) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(students)+1)
	for _, s := range students {
		btn := markup.Data(s.FullName, base.Unique,
			strconv.FormatUint(uint64(s.ID), 10),
			strconv.FormatInt(s.TelegramID, 10))
		rows = append(rows, markup.Row(btn))
	}
	rows = append(rows, markup.Row(btnMenu))
	markup.Inline(rows...)
	return markup
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
