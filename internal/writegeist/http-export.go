// Маршрут экспорта рукописи в markdown, PDF или HTML.
package writegeist

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/export"
)

type ExportRequest struct {
	Format string `validate:"exportFormat"`
	Title  string `query:"title"`
}

// Расширение запрошенного файла задает формат экспорта.
func formatByExtension(fileName string) string {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".md", ".markdown":
		return export.FormatMarkdown
	case ".pdf":
		return export.FormatPDF
	case ".html":
		return export.FormatHTML
	}
	return ""
}

func (s *Services) AddExportServices(g *echo.Group) {
	g.GET("export/:fileName/", s.exportManuscript)
}

// exportManuscript godoc
func (s *Services) exportManuscript(c echo.Context) error {
	// @id exportManuscript
	// @Summary Экспорт: сборка рукописи в файл
	// @Description Собирает проектный документ и все главы в один файл указанного формата.
	// @Tags Export
	// @Security ApiKeyAuth
	// @Produce octet-stream
	// @Param fileName path string true "Имя файла: manuscript.md, manuscript.pdf или manuscript.html"
	// @Param title query string false "Заголовок рукописи"
	// @Success 200 {file} binary "Файл рукописи"
	// @Failure 400 {object} apierrors.DefinedError "Неподдерживаемый формат"
	// @Failure 500 {object} apierrors.DefinedError "Ошибка экспорта"
	// @Router /api/export/{fileName} [get]
	fileName := c.Param("fileName")
	req := ExportRequest{
		Format: formatByExtension(fileName),
		Title:  c.QueryParam("title"),
	}
	if err := c.Validate(&req); err != nil || req.Format == "" {
		return EErrorDefined(c, apierrors.ErrUnsupportedFormat.WithFormattedMessage(path.Ext(fileName)))
	}
	if req.Title == "" {
		req.Title = "Manuscript"
	}

	projectDoc, _, err := s.business.ProjectDoc()
	if err != nil {
		return EError(c, err)
	}
	chapters, err := s.business.Chapters()
	if err != nil {
		return EError(c, err)
	}

	manuscript := export.Manuscript{
		Title:       req.Title,
		ProjectDoc:  projectDoc,
		Chapters:    chapters,
		GeneratedAt: time.Now(),
	}

	var buf bytes.Buffer
	if err := export.Export(&manuscript, req.Format, &buf); err != nil {
		return EErrorDefined(c, apierrors.ErrExportFailed)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.FileName(req.Format, manuscript.GeneratedAt)))
	return c.Blob(http.StatusOK, export.ContentType(req.Format), buf.Bytes())
}
