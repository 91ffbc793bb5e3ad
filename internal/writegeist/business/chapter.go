package business

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor/blockmd"
)

const wordsPerMinute = 200

// CreateChapter сохраняет новую главу. Число слов и время чтения считаются
// по очищенному тексту, метаданные заполняет последующее извлечение.
func (b *Business) CreateChapter(title string, text string) (*dao.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierrors.ErrChapterTitleRequired
	}
	text = blockmd.Normalize(blockmd.CleanHTMLArtifacts(text))
	if text == "" {
		return nil, apierrors.ErrChapterTextRequired
	}

	words := blockmd.WordCount(text)
	chapter := dao.Chapter{
		Title:              title,
		Text:               text,
		Characters:         dao.StringSlice{},
		Locations:          dao.StringSlice{},
		POV:                dao.StringSlice{},
		WordCount:          words,
		ReadingTimeMinutes: readingTime(words),
	}

	if err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chapter).Error; err != nil {
			return err
		}
		return dao.TouchLastUpdated(tx)
	}); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// Chapters возвращает все главы в порядке создания.
func (b *Business) Chapters() ([]dao.Chapter, error) {
	var chapters []dao.Chapter
	if err := b.db.Preload("Audio").Order("created_at").Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// Chapter возвращает главу по идентификатору.
func (b *Business) Chapter(id string) (*dao.Chapter, error) {
	var chapter dao.Chapter
	if err := b.db.Preload("Audio").Where("id = ?", id).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.ErrChapterNotFound
		}
		return nil, err
	}
	return &chapter, nil
}

// UpdateChapter перезаписывает заголовок и текст главы с пересчетом статистики.
func (b *Business) UpdateChapter(id string, title string, text string) (*dao.Chapter, error) {
	chapter, err := b.Chapter(id)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierrors.ErrChapterTitleRequired
	}
	text = blockmd.Normalize(blockmd.CleanHTMLArtifacts(text))
	if text == "" {
		return nil, apierrors.ErrChapterTextRequired
	}

	words := blockmd.WordCount(text)
	chapter.Title = title
	chapter.Text = text
	chapter.WordCount = words
	chapter.ReadingTimeMinutes = readingTime(words)

	if err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(chapter).Error; err != nil {
			return err
		}
		return dao.TouchLastUpdated(tx)
	}); err != nil {
		return nil, err
	}
	return chapter, nil
}

// SetChapterMetadata записывает результат извлечения персонажей, локаций и POV.
func (b *Business) SetChapterMetadata(id string, characters, locations, pov []string) error {
	return b.db.Model(&dao.Chapter{}).Where("id = ?", id).Updates(map[string]interface{}{
		"characters": dao.StringSlice(characters),
		"locations":  dao.StringSlice(locations),
		"pov":        dao.StringSlice(pov),
	}).Error
}

// DeleteChapter удаляет главу вместе с записью об озвучке.
func (b *Business) DeleteChapter(id string) error {
	chapter, err := b.Chapter(id)
	if err != nil {
		return err
	}

	return b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", chapter.Id).Delete(&dao.ChapterAudio{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(chapter).Error; err != nil {
			return err
		}
		return dao.TouchLastUpdated(tx)
	})
}

func readingTime(words int) int {
	minutes := words / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
