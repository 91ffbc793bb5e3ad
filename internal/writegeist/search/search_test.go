package search

import (
	"testing"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

func setupSearcher(t *testing.T, chapters ...dao.Chapter) *ChaptersSearcher {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))

	for i := range chapters {
		require.NoError(t, db.Create(&chapters[i]).Error)
	}
	return NewChaptersSearcher(db)
}

func TestSearchRanking(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "The Docks", Text: "Anna walked to the docks. Anna waited. Anna watched the fog."},
		dao.Chapter{Title: "The Lighthouse", Text: "Boris climbed the stairs. Anna was already there."},
		dao.Chapter{Title: "Morning", Text: "The town woke slowly. Coffee and bread."},
	)

	results, err := searcher.Search("Anna", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "The Docks", results[0].Chapter.Title)
	assert.Equal(t, maxScore, results[0].Score)

	assert.Equal(t, "The Lighthouse", results[1].Chapter.Title)
	assert.Less(t, results[1].Score, results[0].Score)
	assert.GreaterOrEqual(t, results[1].Score, minScore)

	assert.Contains(t, results[0].Snippet, "Anna walked")
}

func TestSearchTitleBoost(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "The Fog", Text: "Nothing happened here."},
		dao.Chapter{Title: "Morning", Text: "The fog was thick over the bay."},
	)

	results, err := searcher.Search("fog", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Совпадение в заголовке перевешивает одно вхождение в тексте
	assert.Equal(t, "The Fog", results[0].Chapter.Title)
}

func TestSearchEqualScores(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "One", Text: "Anna went home."},
		dao.Chapter{Title: "Two", Text: "Anna stayed out."},
	)

	results, err := searcher.Search("anna", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, equalScore, results[0].Score)
	assert.Equal(t, equalScore, results[1].Score)
}

func TestSearchFallback(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "One", Text: "First chapter."},
		dao.Chapter{Title: "Two", Text: "Second chapter."},
		dao.Chapter{Title: "Three", Text: "Third chapter."},
	)

	results, err := searcher.Search("zeppelin", 10)
	require.NoError(t, err)
	require.Len(t, results, fallbackCount)

	for _, r := range results {
		assert.Equal(t, fallbackScore, r.Score)
	}
}

func TestSearchLimit(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "One", Text: "fog fog fog"},
		dao.Chapter{Title: "Two", Text: "fog fog"},
		dao.Chapter{Title: "Three", Text: "fog"},
	)

	results, err := searcher.Search("fog", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "One", results[0].Chapter.Title)
}

func TestSearchShortWordsIgnored(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "OfSpam", Text: "of of of of of of of of of of of of"},
		dao.Chapter{Title: "Light", Text: "Nobody could see the lighthouse from the shore."},
	)

	results, err := searcher.Search("of lighthouse", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Light", results[0].Chapter.Title)
}

func TestSearchOnlyShortWords(t *testing.T) {
	searcher := setupSearcher(t,
		dao.Chapter{Title: "One", Text: "of of of"},
	)

	results, err := searcher.Search("of at", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQuery(t *testing.T) {
	searcher := setupSearcher(t)

	results, err := searcher.Search("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSnippetEllipsis(t *testing.T) {
	long := "The fog was thick over the bay and nobody could see the lighthouse from the shore, " +
		"so the fishermen stayed home and mended their nets while the church bell counted the hours away."
	searcher := setupSearcher(t, dao.Chapter{Title: "One", Text: long})

	results, err := searcher.Search("lighthouse", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, results[0].Snippet, "lighthouse")
	assert.True(t, len(results[0].Snippet) < len(long))
}

func TestSnippetMultibyte(t *testing.T) {
	long := "Туман висел над заливом с самого утра, и никто на берегу не видел маяка, " +
		"поэтому рыбаки остались дома чинить сети, пока церковный колокол отсчитывал " +
		"часы, а волны накатывали на пустой причал снова и снова до самой темноты."
	searcher := setupSearcher(t, dao.Chapter{Title: "Один", Text: long})

	results, err := searcher.Search("маяка", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, utf8.ValidString(results[0].Snippet))
	assert.Contains(t, results[0].Snippet, "маяка")
	assert.True(t, len(results[0].Snippet) < len(long))
}
