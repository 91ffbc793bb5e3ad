// Маршруты проектного документа: чтение, правка, разделы и предложения.
package writegeist

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
)

type ProjectDocResponse struct {
	Markdown  string `json:"markdown"`
	WordCount int    `json:"word_count"`
	Dirty     bool   `json:"dirty"`
}

type UpdateProjectDocRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type WordCountResponse struct {
	WordCount int `json:"word_count"`
}

type SectionResponse struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type ProposalRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type ProposalResponse struct {
	Applied bool `json:"applied"`
}

var previewEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))
var previewPolicy = bluemonday.UGCPolicy()

func (s *Services) AddProjectServices(g *echo.Group) {
	g.GET("project/", s.getProjectDoc)
	g.PUT("project/", s.updateProjectDoc)
	g.GET("project/html/", s.getProjectDocHTML)
	g.GET("project/wordcount/", s.getProjectWordCount)

	g.GET("project/sections/:sectionName/", s.getSection)
	g.POST("project/sections/:sectionName/proposals/", s.proposeSectionItem)
}

// getProjectDoc godoc
func (s *Services) getProjectDoc(c echo.Context) error {
	// @id getProjectDoc
	// @Summary Документ: получение проектного документа
	// @Tags Project
	// @Security ApiKeyAuth
	// @Produce json
	// @Success 200 {object} ProjectDocResponse "Документ и число слов"
	// @Failure 500 {object} apierrors.DefinedError "Внутренняя ошибка сервера"
	// @Router /api/project [get]
	markdown, words, err := s.business.ProjectDoc()
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, ProjectDocResponse{
		Markdown:  markdown,
		WordCount: words,
		Dirty:     s.business.Session().Dirty(),
	})
}

// updateProjectDoc godoc
func (s *Services) updateProjectDoc(c echo.Context) error {
	// @id updateProjectDoc
	// @Summary Документ: перезапись проектного документа
	// @Tags Project
	// @Security ApiKeyAuth
	// @Accept json
	// @Produce json
	// @Param data body UpdateProjectDocRequest true "Новый markdown документа"
	// @Success 200 {object} ProjectDocResponse "Сохраненный документ"
	// @Failure 400 {object} apierrors.DefinedError "Пустой документ"
	// @Router /api/project [put]
	var req UpdateProjectDocRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	if err := s.business.UpdateProjectDoc(req.Markdown); err != nil {
		return EError(c, err)
	}
	return s.getProjectDoc(c)
}

// getProjectDocHTML отдает HTML-предпросмотр документа.
func (s *Services) getProjectDocHTML(c echo.Context) error {
	markdown, _, err := s.business.ProjectDoc()
	if err != nil {
		return EError(c, err)
	}

	var buf bytes.Buffer
	if err := previewEngine.Convert([]byte(markdown), &buf); err != nil {
		return EError(c, err)
	}
	return c.HTML(http.StatusOK, previewPolicy.Sanitize(buf.String()))
}

// getProjectWordCount godoc
func (s *Services) getProjectWordCount(c echo.Context) error {
	// @id getProjectWordCount
	// @Summary Документ: число слов проектного документа
	// @Tags Project
	// @Security ApiKeyAuth
	// @Produce json
	// @Success 200 {object} WordCountResponse "Число слов без разметки"
	// @Failure 500 {object} apierrors.DefinedError "Внутренняя ошибка сервера"
	// @Router /api/project/wordcount [get]
	_, words, err := s.business.ProjectDoc()
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, WordCountResponse{WordCount: words})
}

// getSection godoc
func (s *Services) getSection(c echo.Context) error {
	// @id getSection
	// @Summary Документ: получение раздела по имени
	// @Tags Project
	// @Security ApiKeyAuth
	// @Produce json
	// @Param sectionName path string true "Имя раздела (без учета регистра)"
	// @Success 200 {object} SectionResponse "Содержимое раздела"
	// @Failure 404 {object} apierrors.DefinedError "Раздел не найден"
	// @Router /api/project/sections/{sectionName} [get]
	name := c.Param("sectionName")
	content, err := s.business.Section(name)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, SectionResponse{Name: name, Content: content})
}

// proposeSectionItem godoc
func (s *Services) proposeSectionItem(c echo.Context) error {
	// @id proposeSectionItem
	// @Summary Документ: предложение в раздел
	// @Description Дописывает markdown-блок в конец раздела. Дубликат отклоняется, документ не меняется.
	// @Tags Project
	// @Security ApiKeyAuth
	// @Accept json
	// @Produce json
	// @Param sectionName path string true "Имя раздела"
	// @Param data body ProposalRequest true "Предлагаемый блок"
	// @Success 202 {object} ProposalResponse "Результат применения"
	// @Failure 400 {object} apierrors.DefinedError "Пустое предложение"
	// @Router /api/project/sections/{sectionName}/proposals [post]
	var req ProposalRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	applied, err := s.business.ApplySectionProposal(c.Param("sectionName"), req.Markdown)
	if err != nil {
		return EError(c, err)
	}

	if applied {
		s.proposalsApplied.Inc()
	} else {
		s.proposalsRejected.Inc()
	}
	return c.JSON(http.StatusAccepted, ProposalResponse{Applied: applied})
}
