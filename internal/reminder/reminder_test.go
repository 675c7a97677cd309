package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/okuzmina/tutorbot/internal/storage"
)

type sentMsg struct {
	to   int64
	text string
}

type fakeSender struct {
	sent []sentMsg
	fail bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.fail {
		return nil, fmt.Errorf("telegram unavailable")
	}
	u := to.(*tele.User)
	f.sent = append(f.sent, sentMsg{to: u.ID, text: what.(string)})
	return &tele.Message{}, nil
}

type fakeLessonRepo struct {
	soon     []storage.Lesson
	reminded []uint
}

func (f *fakeLessonRepo) Create(context.Context, *storage.Lesson) error { return nil }

func (f *fakeLessonRepo) ListUpcomingForStudent(context.Context, uint, time.Time) ([]storage.Lesson, error) {
	return nil, nil
}

func (f *fakeLessonRepo) ListStartingSoon(context.Context, time.Time, time.Duration) ([]storage.Lesson, error) {
	return f.soon, nil
}

func (f *fakeLessonRepo) MarkReminded(_ context.Context, id uint, _ time.Time) error {
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeHomeworkRepo struct {
	due      []storage.Homework
	reminded []uint
}

func (f *fakeHomeworkRepo) Create(context.Context, *storage.Homework) error { return nil }

func (f *fakeHomeworkRepo) ListActive(context.Context, time.Time) ([]storage.HomeworkItem, error) {
	return nil, nil
}

func (f *fakeHomeworkRepo) ListOpenForStudent(context.Context, uint) ([]storage.Homework, error) {
	return nil, nil
}

func (f *fakeHomeworkRepo) CompleteOldestOpen(context.Context, uint, time.Time) (*storage.Homework, error) {
	return nil, nil
}

func (f *fakeHomeworkRepo) ListDueSoon(context.Context, time.Time, time.Duration) ([]storage.Homework, error) {
	return f.due, nil
}

func (f *fakeHomeworkRepo) MarkReminded(_ context.Context, id uint, _ time.Time) error {
	f.reminded = append(f.reminded, id)
	return nil
}

func newTestReminder(sender *fakeSender, lessons *fakeLessonRepo, homeworks *fakeHomeworkRepo) *Reminder {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := &storage.Store{Homeworks: homeworks, Lessons: lessons}
	return New(sender, store, log, time.Minute, time.UTC)
}

func TestSweepNotifiesAndMarks(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	lessons := &fakeLessonRepo{soon: []storage.Lesson{{
		ID:         3,
		LessonTime: now.Add(30 * time.Minute),
		Topic:      "Дроби",
		Student:    storage.User{TelegramID: 500},
	}}}
	homeworks := &fakeHomeworkRepo{due: []storage.Homework{{
		ID:       7,
		Deadline: now.Add(2 * time.Hour),
		TaskText: "Решить задачи",
		Student:  storage.User{TelegramID: 600},
	}}}
	sender := &fakeSender{}

	r := newTestReminder(sender, lessons, homeworks)
	r.sweep(context.Background(), now)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(500), sender.sent[0].to)
	assert.Contains(t, sender.sent[0].text, "урок в 01.09.2026 12:30")
	assert.Contains(t, sender.sent[0].text, "Дроби")
	assert.Equal(t, int64(600), sender.sent[1].to)
	assert.Contains(t, sender.sent[1].text, "Решить задачи")

	assert.Equal(t, []uint{3}, lessons.reminded)
	assert.Equal(t, []uint{7}, homeworks.reminded)
}

func TestSweepSendFailureLeavesUnmarked(t *testing.T) {
	now := time.Now()

	lessons := &fakeLessonRepo{soon: []storage.Lesson{{
		ID:         3,
		LessonTime: now.Add(30 * time.Minute),
		Student:    storage.User{TelegramID: 500},
	}}}
	homeworks := &fakeHomeworkRepo{}
	sender := &fakeSender{fail: true}

	r := newTestReminder(sender, lessons, homeworks)
	r.sweep(context.Background(), now)

	assert.Empty(t, lessons.reminded, "failed delivery must stay unmarked for retry")
}

func TestSweepSkipsStudentsWithoutTelegramID(t *testing.T) {
	now := time.Now()

	lessons := &fakeLessonRepo{soon: []storage.Lesson{{
		ID:         3,
		LessonTime: now.Add(30 * time.Minute),
		Student:    storage.User{TelegramID: 0},
	}}}
	sender := &fakeSender{}

	r := newTestReminder(sender, lessons, &fakeHomeworkRepo{})
	r.sweep(context.Background(), now)

	assert.Empty(t, sender.sent)
	assert.Empty(t, lessons.reminded)
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newTestReminder(&fakeSender{}, &fakeLessonRepo{}, &fakeHomeworkRepo{})
	r.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
