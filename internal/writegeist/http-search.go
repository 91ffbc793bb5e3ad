// Маршрут полнотекстового поиска по главам.
package writegeist

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
)

const defaultSearchLimit = 10

func (s *Services) AddSearchServices(g *echo.Group) {
	g.GET("search/", s.searchChapters)
}

// searchChapters godoc
func (s *Services) searchChapters(c echo.Context) error {
	// @id searchChapters
	// @Summary Поиск: поиск по главам
	// @Description Ранжирует главы по совпадениям слов запроса в тексте и заголовке.
	// @Tags Search
	// @Security ApiKeyAuth
	// @Produce json
	// @Param q query string true "Поисковый запрос"
	// @Param limit query int false "Максимум результатов (по умолчанию 10)"
	// @Success 200 {array} search.Result "Главы с релевантностью и сниппетом"
	// @Failure 400 {object} apierrors.DefinedError "Пустой запрос"
	// @Router /api/search [get]
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return EErrorDefined(c, apierrors.ErrSearchQueryRequired)
	}

	limit := defaultSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return EErrorDefined(c, apierrors.ErrBadRequest)
		}
		limit = parsed
	}

	results, err := s.searcher.Search(query, limit)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
