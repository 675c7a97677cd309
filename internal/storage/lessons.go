package storage

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, l *Lesson) error
	ListUpcomingForStudent(ctx context.Context, studentID uint, now time.Time) ([]Lesson, error)
	// ListStartingSoon returns unreminded lessons with notify_student set
	// that begin within the window, with students preloaded.
	ListStartingSoon(ctx context.Context, now time.Time, window time.Duration) ([]Lesson, error)
	MarkReminded(ctx context.Context, id uint, at time.Time) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, l *Lesson) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *lessonRepository) ListUpcomingForStudent(ctx context.Context, studentID uint, now time.Time) ([]Lesson, error) {
	var lessons []Lesson
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND lesson_time > ?", studentID, now).
		Order("lesson_time").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) ListStartingSoon(ctx context.Context, now time.Time, window time.Duration) ([]Lesson, error) {
	var lessons []Lesson
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("notify_student = ? AND reminded_at IS NULL AND lesson_time > ? AND lesson_time <= ?",
			true, now, now.Add(window)).
		Order("lesson_time").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Lesson{}).
		Where("id = ?", id).
		Update("reminded_at", at).Error
}
