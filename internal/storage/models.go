package storage

import "time"

const (
	RoleTutor   = "tutor"
	RoleStudent = "student"
)

// User is a registered Telegram account, either the tutor or a student.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"size:100"`
	FullName   string `gorm:"size:200;not null"`
	Role       string `gorm:"size:20"`
	CreatedAt  time.Time
}

// Homework is a task the tutor assigned to a student.
type Homework struct {
	ID          uint      `gorm:"primaryKey"`
	StudentID   uint      `gorm:"not null"`
	Student     User      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	TutorID     uint      `gorm:"not null"`
	Tutor       User      `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE"`
	TaskText    string    `gorm:"type:text;not null"`
	Deadline    time.Time `gorm:"not null"`
	IsCompleted bool      `gorm:"default:false"`
	CompletedAt *time.Time
	RemindedAt  *time.Time
	CreatedAt   time.Time
}

// Lesson is a scheduled session between the tutor and a student.
type Lesson struct {
	ID            uint      `gorm:"primaryKey"`
	StudentID     uint      `gorm:"not null"`
	Student       User      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	TutorID       uint      `gorm:"not null"`
	Tutor         User      `gorm:"foreignKey:TutorID;constraint:OnDelete:CASCADE"`
	LessonTime    time.Time `gorm:"not null"`
	Topic         string    `gorm:"type:text"`
	NotifyStudent bool      `gorm:"default:true"`
	RemindedAt    *time.Time
	CreatedAt     time.Time
}

// TableName keeps the table the schema has always used.
func (Lesson) TableName() string { return "schedule" }

// HomeworkItem is a joined row for the tutor's active homework listing.
type HomeworkItem struct {
	TaskText    string
	Deadline    time.Time
	IsCompleted bool
	FullName    string
}
