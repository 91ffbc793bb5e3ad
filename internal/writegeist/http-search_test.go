package writegeist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writegeist/writegeist.go/internal/writegeist/search"
)

func TestSearchQueryParam(t *testing.T) {
	s := setupServices(t)
	_, err := s.business.CreateChapter("The Lighthouse", "Nobody could see the lighthouse from the shore.")
	require.NoError(t, err)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/search/?q=lighthouse", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.searchChapters(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var results []search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "The Lighthouse", results[0].Chapter.Title)
}

func TestSearchMissingQuery(t *testing.T) {
	s := setupServices(t)

	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/search/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.searchChapters(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
