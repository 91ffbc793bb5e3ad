package writegeist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/search"
)

func setupServices(t *testing.T) *Services {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))

	bl, err := business.NewBL(db)
	require.NoError(t, err)

	return &Services{
		db:       db,
		business: bl,
		searcher: search.NewChaptersSearcher(db),
	}
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func TestProjectRoutePaths(t *testing.T) {
	s := setupServices(t)
	e := newTestEcho()
	s.AddProjectServices(e.Group("/api/"))

	paths := make(map[string]bool)
	for _, r := range e.Routes() {
		paths[r.Method+" "+r.Path] = true
	}

	assert.True(t, paths[http.MethodGet+" /api/project/wordcount/"])
	assert.True(t, paths[http.MethodGet+" /api/project/sections/:sectionName/"])
	assert.True(t, paths[http.MethodPost+" /api/project/sections/:sectionName/proposals/"])
}

func TestGetProjectWordCount(t *testing.T) {
	s := setupServices(t)
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/project/wordcount/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.getProjectWordCount(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp WordCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.WordCount, 0)
}

func TestGetSectionNested(t *testing.T) {
	s := setupServices(t)
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/project/sections/characters/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sectionName")
	c.SetParamValues("characters")
	require.NoError(t, s.getSection(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "characters", resp.Name)
}
