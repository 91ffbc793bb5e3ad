package dao

import (
	"bytes"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	md "github.com/nao1215/markdown"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLog "gorm.io/gorm/logger"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
	// Регистрация markdown-кодека документа
	_ "github.com/writegeist/writegeist.go/internal/writegeist/editor/blockmd"
)

func editorDocumentFromMarkdown(markdown string) editor.Document {
	doc, err := editor.FromMarkdown(markdown)
	if err != nil || doc == nil {
		return editor.Document{Blocks: make([]any, 0)}
	}
	return *doc
}

// OpenDB открывает соединение с базой по DSN. Строки postgres:// и postgresql:// идут через драйвер PostgreSQL, любое другое значение трактуется как путь к файлу SQLite.
func OpenDB(dsn string, logger gormLog.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger,
		TranslateError: true,
	})
}

// Migrate выполняет автомиграцию всех моделей.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ProjectPage{},
		&Chapter{},
		&ChapterAudio{},
		&Backup{},
		&SyncState{},
	)
}

// DefaultProjectDocument возвращает документ нового проекта с пустыми стандартными разделами.
func DefaultProjectDocument() string {
	var buf bytes.Buffer
	md.NewMarkdown(&buf).
		H1("My Project").
		H2("Ideas-Notes").
		H2("Setting").
		H2("Full Outline").
		H2("Characters").
		Build()
	return buf.String()
}

// GetProjectPage возвращает проектный документ, создавая стартовую запись при первом обращении.
func GetProjectPage(db *gorm.DB) (*ProjectPage, error) {
	var page ProjectPage
	if err := db.Where("id = ?", 1).First(&page).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		page = ProjectPage{ID: 1, Document: editorDocumentFromMarkdown(DefaultProjectDocument())}
		if err := db.Create(&page).Error; err != nil {
			return nil, err
		}
	}
	return &page, nil
}

// SaveProjectDocument перезаписывает документ и отмечает момент изменения для синхронизации.
func SaveProjectDocument(db *gorm.DB, markdown string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		page := ProjectPage{ID: 1, Document: editorDocumentFromMarkdown(markdown), UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&page).Error; err != nil {
			return err
		}
		return touchLastUpdated(tx)
	})
}

// GetLastUpdated возвращает unix-время последнего изменения. Ноль означает, что данные еще не менялись.
func GetLastUpdated(db *gorm.DB) (int64, error) {
	var state SyncState
	if err := db.Where("id = ?", 1).First(&state).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return state.LastUpdatedAt, nil
}

// TouchLastUpdated обновляет отметку времени изменения данных.
func TouchLastUpdated(db *gorm.DB) error {
	return touchLastUpdated(db)
}

func touchLastUpdated(tx *gorm.DB) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_updated_at"}),
	}).Create(&SyncState{ID: 1, LastUpdatedAt: time.Now().Unix()}).Error
}
