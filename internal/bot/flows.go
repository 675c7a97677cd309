package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/okuzmina/tutorbot/internal/storage"
)

// resumeDialog feeds the next plain-text message into the tutor's active
// entry flow.
func (b *Bot) resumeDialog(c tele.Context, d *dialog) error {
	text := strings.TrimSpace(c.Text())

	switch d.step {
	case stepHomeworkText:
		if text == "" {
			return c.Send("⛔ Текст задания не может быть пустым.")
		}
		d.taskText = text
		d.step = stepHomeworkDeadline
		return c.Send("📅 Введите дедлайн в формате дд.мм.гггг чч:мм")

	case stepHomeworkDeadline:
		deadline, err := b.parseWhen(text)
		if err != nil {
			return c.Send(err.Error())
		}
		return b.finishHomework(c, d, deadline)

	case stepLessonTime:
		at, err := b.parseWhen(text)
		if err != nil {
			return c.Send(err.Error())
		}
		d.lessonTime = at
		d.step = stepLessonTopic
		return c.Send("Введите тему урока (или «-», если без темы):")

	case stepLessonTopic:
		topic := text
		if topic == "-" {
			topic = ""
		}
		return b.finishLesson(c, d, topic)
	}

	// Unknown step means a stale entry, drop it.
	b.dialogs.clear(c.Sender().ID)
	return c.Send("Нет активного диалога.")
}

func (b *Bot) finishHomework(c tele.Context, d *dialog, deadline time.Time) error {
	ctx := context.Background()

	tutor, err := b.ensureUser(ctx, c.Sender(), storage.RoleTutor)
	if err != nil {
		return err
	}

	hw := &storage.Homework{
		StudentID: d.studentID,
		TutorID:   tutor.ID,
		TaskText:  d.taskText,
		Deadline:  deadline,
	}
	if err := b.store.Homeworks.Create(ctx, hw); err != nil {
		return err
	}
	b.dialogs.clear(c.Sender().ID)

	when := deadline.In(b.cfg.Location).Format(deadlineLayout)
	b.notify(d.studentTG, fmt.Sprintf("📝 Новое домашнее задание:\n%s\n📅 Дедлайн: %s", d.taskText, when))
	return c.Send(fmt.Sprintf("✅ ДЗ добавлено для %s (дедлайн %s).", d.studentName, when))
}

func (b *Bot) finishLesson(c tele.Context, d *dialog, topic string) error {
	ctx := context.Background()

	tutor, err := b.ensureUser(ctx, c.Sender(), storage.RoleTutor)
	if err != nil {
		return err
	}

	lesson := &storage.Lesson{
		StudentID:     d.studentID,
		TutorID:       tutor.ID,
		LessonTime:    d.lessonTime,
		Topic:         topic,
		NotifyStudent: true,
	}
	if err := b.store.Lessons.Create(ctx, lesson); err != nil {
		return err
	}
	b.dialogs.clear(c.Sender().ID)

	when := d.lessonTime.In(b.cfg.Location).Format(deadlineLayout)
	msg := fmt.Sprintf("📅 Новый урок: %s", when)
	if topic != "" {
		msg += "\nТема: " + topic
	}
	b.notify(d.studentTG, msg)
	return c.Send(fmt.Sprintf("✅ Урок для %s запланирован на %s.", d.studentName, when))
}

// parseWhen parses a user-entered timestamp in the configured timezone and
// requires it to be in the future. The returned error text is user-facing.
func (b *Bot) parseWhen(text string) (time.Time, error) {
	at, err := time.ParseInLocation(deadlineLayout, text, b.cfg.Location)
	if err != nil {
		return time.Time{}, errors.New("⛔ Неверный формат. Пример: 25.12.2026 18:00")
	}
	if !at.After(time.Now()) {
		return time.Time{}, errors.New("⛔ Дата должна быть в будущем.")
	}
	return at, nil
}
