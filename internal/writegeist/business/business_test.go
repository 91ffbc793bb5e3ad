package business

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))
	return db
}

func setupBL(t *testing.T) *Business {
	bl, err := NewBL(setupTestDB(t))
	require.NoError(t, err)
	return bl
}

func TestProjectDocBootstrap(t *testing.T) {
	bl := setupBL(t)

	markdown, words, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, markdown, "# My Project")
	assert.Contains(t, markdown, "## Characters")
	assert.Greater(t, words, 0)
	assert.False(t, bl.Session().Dirty())
}

func TestUpdateProjectDoc(t *testing.T) {
	bl := setupBL(t)

	err := bl.UpdateProjectDoc("   \n  ")
	assert.ErrorIs(t, err, apierrors.ErrEmptyDocument)

	require.NoError(t, bl.UpdateProjectDoc("# My Project\n\n## Setting\n\nA small coastal town.\n"))

	markdown, words, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, markdown, "A small coastal town.")
	assert.Greater(t, words, 0)
	assert.False(t, bl.Session().Dirty())

	// Документ должен пережить перезапуск
	reopened, err := NewBL(bl.DB())
	require.NoError(t, err)
	persisted, _, err := reopened.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, persisted, "A small coastal town.")
}

func TestSection(t *testing.T) {
	bl := setupBL(t)

	_, err := bl.Section("  ")
	assert.ErrorIs(t, err, apierrors.ErrSectionNameRequired)

	_, err = bl.Section("Antagonists")
	require.Error(t, err)
	var defined apierrors.DefinedError
	require.ErrorAs(t, err, &defined)
	assert.Equal(t, apierrors.ErrSectionNotFound.Code, defined.Code)

	require.NoError(t, bl.UpdateProjectDoc("# My Project\n\n## Characters\n\n* Anna\n\n## Setting\n\nThe docks.\n"))

	content, err := bl.Section("characters")
	require.NoError(t, err)
	assert.Equal(t, "* Anna", content)

	content, err = bl.Section("Setting")
	require.NoError(t, err)
	assert.Equal(t, "The docks.", content)
}

func TestApplySectionProposal(t *testing.T) {
	bl := setupBL(t)
	require.NoError(t, bl.UpdateProjectDoc("# My Project\n\n## Characters\n\n* Anna (detective)\n\n## Setting\n\nThe docks.\n"))

	_, err := bl.ApplySectionProposal("Characters", "  <p></p> ")
	assert.ErrorIs(t, err, apierrors.ErrEmptyProposal)

	applied, err := bl.ApplySectionProposal("Characters", "* Boris (smuggler)")
	require.NoError(t, err)
	assert.True(t, applied)

	content, err := bl.Section("Characters")
	require.NoError(t, err)
	assert.Contains(t, content, "* Anna (detective)")
	assert.Contains(t, content, "* Boris (smuggler)")

	// Повтор того же персонажа с другим описанием отклоняется
	applied, err = bl.ApplySectionProposal("Characters", "* Boris (fisherman)")
	require.NoError(t, err)
	assert.False(t, applied)

	// Неизвестная секция создается в конце документа
	applied, err = bl.ApplySectionProposal("Themes", "* Trust and betrayal")
	require.NoError(t, err)
	assert.True(t, applied)

	content, err = bl.Section("Themes")
	require.NoError(t, err)
	assert.Equal(t, "* Trust and betrayal", content)
}

func TestReplaceProjectDoc(t *testing.T) {
	bl := setupBL(t)
	require.NoError(t, bl.UpdateProjectDoc("# My Project\n\n## Setting\n\nThe docks.\n"))

	markdown, _, err := bl.ProjectDoc()
	require.NoError(t, err)

	// Совпадающий снимок не трогает документ
	replaced, err := bl.ReplaceProjectDoc(markdown, "remote")
	require.NoError(t, err)
	assert.False(t, replaced)

	replaced, err = bl.ReplaceProjectDoc("# My Project\n\n## Setting\n\nThe lighthouse.\n", "remote")
	require.NoError(t, err)
	assert.True(t, replaced)

	updated, _, err := bl.ProjectDoc()
	require.NoError(t, err)
	assert.Contains(t, updated, "The lighthouse.")
	assert.False(t, bl.Session().Dirty())
}

func TestChapterLifecycle(t *testing.T) {
	bl := setupBL(t)

	_, err := bl.CreateChapter("  ", "text")
	assert.ErrorIs(t, err, apierrors.ErrChapterTitleRequired)

	_, err = bl.CreateChapter("Chapter One", "   ")
	assert.ErrorIs(t, err, apierrors.ErrChapterTextRequired)

	chapter, err := bl.CreateChapter("Chapter One", "Anna walked to the docks. The fog was thick.")
	require.NoError(t, err)
	assert.NotEmpty(t, chapter.Id)
	assert.Equal(t, 9, chapter.WordCount)
	assert.Equal(t, 1, chapter.ReadingTimeMinutes)

	loaded, err := bl.Chapter(chapter.Id)
	require.NoError(t, err)
	assert.Equal(t, "Chapter One", loaded.Title)

	updated, err := bl.UpdateChapter(chapter.Id, "Chapter One", "Anna ran.")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.WordCount)
	assert.Equal(t, 1, updated.ReadingTimeMinutes)

	require.NoError(t, bl.SetChapterMetadata(chapter.Id, []string{"Anna"}, []string{"the docks"}, []string{"Anna"}))
	loaded, err = bl.Chapter(chapter.Id)
	require.NoError(t, err)
	assert.Equal(t, dao.StringSlice{"Anna"}, loaded.Characters)
	assert.Equal(t, dao.StringSlice{"the docks"}, loaded.Locations)

	chapters, err := bl.Chapters()
	require.NoError(t, err)
	assert.Len(t, chapters, 1)

	require.NoError(t, bl.DeleteChapter(chapter.Id))
	_, err = bl.Chapter(chapter.Id)
	assert.ErrorIs(t, err, apierrors.ErrChapterNotFound)
}

func TestLastUpdatedTouch(t *testing.T) {
	bl := setupBL(t)

	before, err := dao.GetLastUpdated(bl.DB())
	require.NoError(t, err)

	_, err = bl.CreateChapter("Chapter One", "Anna walked to the docks.")
	require.NoError(t, err)

	after, err := dao.GetLastUpdated(bl.DB())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after, before)
	assert.Greater(t, after, int64(0))
}
