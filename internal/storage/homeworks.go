package storage

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const activeListLimit = 10

type HomeworkRepository interface {
	Create(ctx context.Context, hw *Homework) error
	// ListActive returns up to ten homeworks whose deadline has not passed,
	// joined with the student's name, soonest deadline first.
	ListActive(ctx context.Context, now time.Time) ([]HomeworkItem, error)
	ListOpenForStudent(ctx context.Context, studentID uint) ([]Homework, error)
	// CompleteOldestOpen marks the student's open homework with the nearest
	// deadline as done and returns it with the tutor preloaded. Returns
	// gorm.ErrRecordNotFound when the student has nothing open.
	CompleteOldestOpen(ctx context.Context, studentID uint, now time.Time) (*Homework, error)
	// ListDueSoon returns open, not yet reminded homeworks due within the
	// window, with students preloaded.
	ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]Homework, error)
	MarkReminded(ctx context.Context, id uint, at time.Time) error
}

type homeworkRepository struct {
	db *gorm.DB
}

func NewHomeworkRepository(db *gorm.DB) HomeworkRepository {
	return &homeworkRepository{db: db}
}

func (r *homeworkRepository) Create(ctx context.Context, hw *Homework) error {
	return r.db.WithContext(ctx).Create(hw).Error
}

func (r *homeworkRepository) ListActive(ctx context.Context, now time.Time) ([]HomeworkItem, error) {
	var items []HomeworkItem
	err := r.db.WithContext(ctx).
		Table("homeworks").
		Select("homeworks.task_text, homeworks.deadline, homeworks.is_completed, users.full_name").
		Joins("JOIN users ON homeworks.student_id = users.id").
		Where("homeworks.deadline > ?", now).
		Order("homeworks.deadline").
		Limit(activeListLimit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *homeworkRepository) ListOpenForStudent(ctx context.Context, studentID uint) ([]Homework, error) {
	var hws []Homework
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND is_completed = ?", studentID, false).
		Order("deadline").
		Find(&hws).Error
	if err != nil {
		return nil, err
	}
	return hws, nil
}

func (r *homeworkRepository) CompleteOldestOpen(ctx context.Context, studentID uint, now time.Time) (*Homework, error) {
	var hw Homework
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Where("student_id = ? AND is_completed = ?", studentID, false).
		Order("deadline").
		First(&hw).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&Homework{}).
		Where("id = ?", hw.ID).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": now,
		}).Error
	if err != nil {
		return nil, err
	}

	hw.IsCompleted = true
	hw.CompletedAt = &now
	return &hw, nil
}

func (r *homeworkRepository) ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]Homework, error) {
	var hws []Homework
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("is_completed = ? AND reminded_at IS NULL AND deadline > ? AND deadline <= ?",
			false, now, now.Add(window)).
		Order("deadline").
		Find(&hws).Error
	if err != nil {
		return nil, err
	}
	return hws, nil
}

func (r *homeworkRepository) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Homework{}).
		Where("id = ?", id).
		Update("reminded_at", at).Error
}
