// Маршруты глав: CRUD и фоновый анализ текста (персонажи, локации, POV).
package writegeist

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/ingest"
	"github.com/writegeist/writegeist.go/internal/writegeist/notifications"
)

const ingestTimeout = time.Minute * 5

type ChapterRequest struct {
	Title string `json:"title" validate:"required,chapterTitle"`
	Text  string `json:"text" validate:"required"`
}

// ingestRunner выполняет анализ глав в фоне, не более одного запуска на главу.
type ingestRunner struct {
	bl        *business.Business
	extractor *ingest.Extractor
	ns        *notifications.WebsocketNotificationService

	mu     sync.Mutex
	active map[string]bool
}

func newIngestRunner(bl *business.Business, extractor *ingest.Extractor, ns *notifications.WebsocketNotificationService) *ingestRunner {
	return &ingestRunner{
		bl:        bl,
		extractor: extractor,
		ns:        ns,
		active:    make(map[string]bool),
	}
}

// Enqueue запускает анализ главы. Возвращает ErrIngestInProgress при повторном запуске.
func (r *ingestRunner) Enqueue(chapterId string, title string, text string) error {
	r.mu.Lock()
	if r.active[chapterId] {
		r.mu.Unlock()
		return apierrors.ErrIngestInProgress
	}
	r.active[chapterId] = true
	r.mu.Unlock()

	go r.run(chapterId, title, text)
	return nil
}

func (r *ingestRunner) run(chapterId string, title string, text string) {
	defer func() {
		r.mu.Lock()
		delete(r.active, chapterId)
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	meta := r.extractor.Extract(ctx, title, text)
	if err := r.bl.SetChapterMetadata(chapterId, meta.Characters, meta.Locations, meta.POV); err != nil {
		slog.Error("Save chapter metadata", "chapterId", chapterId, "err", err)
		return
	}

	r.ns.Broadcast(notifications.ChapterIngested{
		ChapterId:  chapterId,
		Title:      title,
		Characters: meta.Characters,
		Locations:  meta.Locations,
		POV:        meta.POV,
	})
}

func (s *Services) AddChapterServices(g *echo.Group) {
	g.GET("chapters/", s.getChapterList)
	g.POST("chapters/", s.createChapter)
	g.GET("chapters/:chapterId/", s.getChapter)
	g.PUT("chapters/:chapterId/", s.updateChapter)
	g.DELETE("chapters/:chapterId/", s.deleteChapter)
	g.POST("chapters/:chapterId/ingest/", s.ingestChapter)
}

// getChapterList godoc
func (s *Services) getChapterList(c echo.Context) error {
	// @id getChapterList
	// @Summary Главы: получение списка глав
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Produce json
	// @Success 200 {array} dao.Chapter "Главы в порядке создания"
	// @Failure 500 {object} apierrors.DefinedError "Внутренняя ошибка сервера"
	// @Router /api/chapters [get]
	chapters, err := s.business.Chapters()
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, chapters)
}

// createChapter godoc
func (s *Services) createChapter(c echo.Context) error {
	// @id createChapter
	// @Summary Главы: создание главы
	// @Description Создает главу и запускает фоновый анализ текста.
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Accept json
	// @Produce json
	// @Param data body ChapterRequest true "Заголовок и текст главы"
	// @Success 201 {object} dao.Chapter "Созданная глава"
	// @Failure 400 {object} apierrors.DefinedError "Некорректные данные"
	// @Router /api/chapters [post]
	var req ChapterRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	chapter, err := s.business.CreateChapter(req.Title, req.Text)
	if err != nil {
		return EError(c, err)
	}

	if err := s.ingestRunner.Enqueue(chapter.Id, chapter.Title, chapter.Text); err != nil {
		slog.Warn("Enqueue chapter ingest", "chapterId", chapter.Id, "err", err)
	}

	return c.JSON(http.StatusCreated, chapter)
}

// getChapter godoc
func (s *Services) getChapter(c echo.Context) error {
	// @id getChapter
	// @Summary Главы: получение главы
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Produce json
	// @Param chapterId path string true "Id главы"
	// @Success 200 {object} dao.Chapter "Глава"
	// @Failure 404 {object} apierrors.DefinedError "Глава не найдена"
	// @Router /api/chapters/{chapterId} [get]
	chapter, err := s.business.Chapter(c.Param("chapterId"))
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, chapter)
}

// updateChapter godoc
func (s *Services) updateChapter(c echo.Context) error {
	// @id updateChapter
	// @Summary Главы: изменение главы
	// @Description Обновляет заголовок и текст, пересчитывает число слов и перезапускает анализ.
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Accept json
	// @Produce json
	// @Param chapterId path string true "Id главы"
	// @Param data body ChapterRequest true "Новый заголовок и текст"
	// @Success 200 {object} dao.Chapter "Обновленная глава"
	// @Failure 404 {object} apierrors.DefinedError "Глава не найдена"
	// @Router /api/chapters/{chapterId} [put]
	var req ChapterRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	chapter, err := s.business.UpdateChapter(c.Param("chapterId"), req.Title, req.Text)
	if err != nil {
		return EError(c, err)
	}

	if err := s.ingestRunner.Enqueue(chapter.Id, chapter.Title, chapter.Text); err != nil {
		slog.Warn("Enqueue chapter ingest", "chapterId", chapter.Id, "err", err)
	}

	return c.JSON(http.StatusOK, chapter)
}

// deleteChapter godoc
func (s *Services) deleteChapter(c echo.Context) error {
	// @id deleteChapter
	// @Summary Главы: удаление главы
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Param chapterId path string true "Id главы"
	// @Success 200 "Глава удалена"
	// @Failure 404 {object} apierrors.DefinedError "Глава не найдена"
	// @Router /api/chapters/{chapterId} [delete]
	if err := s.business.DeleteChapter(c.Param("chapterId")); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// ingestChapter godoc
func (s *Services) ingestChapter(c echo.Context) error {
	// @id ingestChapter
	// @Summary Главы: повторный анализ главы
	// @Tags Chapters
	// @Security ApiKeyAuth
	// @Param chapterId path string true "Id главы"
	// @Success 202 "Анализ запущен"
	// @Failure 409 {object} apierrors.DefinedError "Анализ уже выполняется"
	// @Router /api/chapters/{chapterId}/ingest [post]
	chapter, err := s.business.Chapter(c.Param("chapterId"))
	if err != nil {
		return EError(c, err)
	}
	if err := s.ingestRunner.Enqueue(chapter.Id, chapter.Title, chapter.Text); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}
