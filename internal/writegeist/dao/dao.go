// DAO (Data Access Object) - предоставляет интерфейс для взаимодействия с базой данных. Содержит модели проектного документа, глав, аудио и состояния синхронизации. Обеспечивает абстракцию от конкретной реализации базы данных и упрощает доступ к данным приложения.
//
// Основные возможности:
//   - Работа с проектным документом (единственная строка project_pages).
//   - Управление главами рукописи (создание, обновление, подсчет слов).
//   - Хранение статуса озвучки глав.
//   - Отметка времени последнего изменения для синхронизации.
package dao

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/config"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
	filestorage "github.com/writegeist/writegeist.go/internal/writegeist/file-storage"
)

// GenID генерирует уникальный идентификатор в формате UUID.
// Не принимает параметров и возвращает строку, представляющую собой UUID.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

var Config *config.Config
var FileStorage filestorage.FileStorage

// ProjectPage - единственная строка с проектным документом. Приложение всегда работает с записью id=1.
type ProjectPage struct {
	ID        int             `json:"id" gorm:"primaryKey"`
	Document  editor.Document `json:"-" gorm:"column:markdown"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ProjectPage) TableName() string { return "project_pages" }

// Chapter - глава рукописи с извлеченными метаданными.
type Chapter struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title" gorm:"index"`
	Text  string `json:"text"`

	Characters StringSlice `json:"characters" gorm:"type:text"`
	Locations  StringSlice `json:"locations" gorm:"type:text"`
	POV        StringSlice `json:"pov" gorm:"type:text"`

	WordCount          int `json:"word_count"`
	ReadingTimeMinutes int `json:"reading_time_minutes"`

	Audio *ChapterAudio `json:"audio,omitempty" gorm:"foreignKey:ChapterId" extensions:"x-nullable"`
}

func (Chapter) TableName() string { return "chapters" }

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.Id == "" {
		c.Id = GenID()
	}
	return nil
}

// Статусы озвучки главы.
const (
	AudioStatusPending    = "pending"
	AudioStatusProcessing = "processing"
	AudioStatusComplete   = "complete"
	AudioStatusError      = "error"
)

// ChapterAudio - состояние озвучки главы. AssetId указывает на файл в хранилище.
type ChapterAudio struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	ChapterId string    `json:"chapter_id" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status          string  `json:"status" gorm:"index"`
	AssetId         string  `json:"asset_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	LastError       string  `json:"last_error,omitempty"`
}

func (ChapterAudio) TableName() string { return "chapter_audio" }

func (a *ChapterAudio) BeforeCreate(tx *gorm.DB) error {
	if a.Id == "" {
		a.Id = GenID()
	}
	return nil
}

// Backup - запись о снимке базы в файловом хранилище. Id совпадает с именем объекта.
type Backup struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	SizeBytes int64     `json:"size_bytes"`
}

func (Backup) TableName() string { return "backups" }

// SyncState - единственная строка с unix-временем последнего изменения данных. Используется зеркалами для pull-опроса.
type SyncState struct {
	ID            int   `json:"id" gorm:"primaryKey"`
	LastUpdatedAt int64 `json:"last_updated_at"`
}

func (SyncState) TableName() string { return "sync_states" }
