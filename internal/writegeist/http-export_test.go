package writegeist

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportRequest(t *testing.T, s *Services, fileName string) *httptest.ResponseRecorder {
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/export/"+fileName+"/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("fileName")
	c.SetParamValues(fileName)
	require.NoError(t, s.exportManuscript(c))
	return rec
}

func TestExportManuscriptMarkdown(t *testing.T) {
	s := setupServices(t)

	rec := exportRequest(t, s, "manuscript.md")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/markdown")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".md")
	assert.Contains(t, rec.Body.String(), "My Project")
}

func TestExportManuscriptPDF(t *testing.T) {
	s := setupServices(t)

	rec := exportRequest(t, s, "manuscript.pdf")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, len(rec.Body.Bytes()) > 4 && string(rec.Body.Bytes()[:5]) == "%PDF-")
}

func TestExportUnknownExtension(t *testing.T) {
	s := setupServices(t)

	rec := exportRequest(t, s, "manuscript.docx")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
