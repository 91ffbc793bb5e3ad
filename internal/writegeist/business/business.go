// Бизнес-логика приложения: проектный документ, разделы, главы рукописи.
//
// Основные возможности:
//   - Загрузка и сохранение проектного документа через сессию редактирования.
//   - Извлечение разделов и применение предложений с отсевом дубликатов.
//   - CRUD глав с пересчетом числа слов и времени чтения.
package business

import (
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

type Business struct {
	db      *gorm.DB
	session *editor.Session
}

// NewBL создает бизнес-слой над базой и поднимает сессию редактирования проектного документа.
func NewBL(db *gorm.DB) (*Business, error) {
	b := &Business{db: db}
	b.session = editor.NewSession(&projectStore{db: db})
	if err := b.session.Load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Session возвращает сессию редактирования проектного документа.
func (b *Business) Session() *editor.Session {
	return b.session
}

// DB возвращает подключение к базе для инфраструктурных потребителей.
func (b *Business) DB() *gorm.DB {
	return b.db
}

// projectStore - адаптер хранилища сессии поверх таблицы project_pages.
type projectStore struct {
	db *gorm.DB
}

func (s *projectStore) LoadDocument() (string, error) {
	page, err := dao.GetProjectPage(s.db)
	if err != nil {
		return "", err
	}
	return page.Document.Markdown()
}

func (s *projectStore) SaveDocument(markdown string) error {
	return dao.SaveProjectDocument(s.db, markdown)
}
