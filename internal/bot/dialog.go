package bot

import (
	"sync"
	"time"
)

type dialogStep int

const (
	stepHomeworkText dialogStep = iota + 1
	stepHomeworkDeadline
	stepLessonTime
	stepLessonTopic
)

// dialog tracks a tutor's in-progress multi-message flow (homework entry or
// lesson scheduling).
type dialog struct {
	step dialogStep

	studentID   uint
	studentTG   int64
	studentName string

	taskText   string
	lessonTime time.Time
}

type dialogRegistry struct {
	mu sync.Mutex
	m  map[int64]*dialog
}

func newDialogRegistry() *dialogRegistry {
	return &dialogRegistry{m: make(map[int64]*dialog)}
}

func (r *dialogRegistry) get(chatID int64) *dialog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[chatID]
}

func (r *dialogRegistry) set(chatID int64, d *dialog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[chatID] = d
}

// clear removes the chat's dialog and reports whether one existed.
func (r *dialogRegistry) clear(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.m[chatID]
	delete(r.m, chatID)
	return ok
}
