package storage

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute

	connectAttempts = 10
)

// Connect opens the PostgreSQL database, retrying while it comes up, and
// migrates the schema.
func Connect(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("database connection failed, retrying")
		time.Sleep(time.Duration(i+1) * 2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := db.AutoMigrate(&User{}, &Homework{}, &Lesson{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info("connected to PostgreSQL")
	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Store bundles the repositories the bot and the reminder sweep work with.
type Store struct {
	Users     UserRepository
	Homeworks HomeworkRepository
	Lessons   LessonRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:     NewUserRepository(db),
		Homeworks: NewHomeworkRepository(db),
		Lessons:   NewLessonRepository(db),
	}
}
