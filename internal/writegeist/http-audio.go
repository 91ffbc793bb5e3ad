// Маршруты озвучивания глав: запуск генерации, статус и выдача аудиофайла.
package writegeist

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

func (s *Services) AddAudioServices(g *echo.Group) {
	g.POST("chapters/:chapterId/audio/", s.generateChapterAudio)
	g.GET("chapters/:chapterId/audio/", s.getChapterAudioStatus)
	g.GET("chapters/:chapterId/audio/file/", s.getChapterAudioFile)
}

// generateChapterAudio godoc
func (s *Services) generateChapterAudio(c echo.Context) error {
	// @id generateChapterAudio
	// @Summary Аудио: запуск генерации озвучки главы
	// @Tags Audio
	// @Security ApiKeyAuth
	// @Param chapterId path string true "Id главы"
	// @Success 202 "Генерация запущена"
	// @Failure 400 {object} apierrors.DefinedError "Генерация аудио не настроена"
	// @Failure 409 {object} apierrors.DefinedError "Генерация уже выполняется"
	// @Router /api/chapters/{chapterId}/audio [post]
	chapter, err := s.business.Chapter(c.Param("chapterId"))
	if err != nil {
		return EError(c, err)
	}
	if err := s.ttsService.Generate(chapter); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

// getChapterAudioStatus godoc
func (s *Services) getChapterAudioStatus(c echo.Context) error {
	// @id getChapterAudioStatus
	// @Summary Аудио: статус озвучки главы
	// @Tags Audio
	// @Security ApiKeyAuth
	// @Produce json
	// @Param chapterId path string true "Id главы"
	// @Success 200 {object} dao.ChapterAudio "Запись о генерации"
	// @Failure 404 {object} apierrors.DefinedError "Аудио еще не сгенерировано"
	// @Router /api/chapters/{chapterId}/audio [get]
	var audio dao.ChapterAudio
	if err := s.db.Where("chapter_id = ?", c.Param("chapterId")).First(&audio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrAudioNotReady)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, audio)
}

// getChapterAudioFile godoc
func (s *Services) getChapterAudioFile(c echo.Context) error {
	// @id getChapterAudioFile
	// @Summary Аудио: скачивание аудиофайла главы
	// @Tags Audio
	// @Security ApiKeyAuth
	// @Produce audio/mpeg
	// @Param chapterId path string true "Id главы"
	// @Success 200 {file} binary "MP3 файл"
	// @Failure 404 {object} apierrors.DefinedError "Аудио еще не сгенерировано"
	// @Router /api/chapters/{chapterId}/audio/file [get]
	var audio dao.ChapterAudio
	if err := s.db.Where("chapter_id = ?", c.Param("chapterId")).First(&audio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrAudioNotReady)
		}
		return EError(c, err)
	}
	if audio.Status != dao.AudioStatusComplete || audio.AssetId == "" {
		return EErrorDefined(c, apierrors.ErrAudioNotReady)
	}

	assetId, err := uuid.FromString(audio.AssetId)
	if err != nil {
		return EError(c, err)
	}
	info, err := s.storage.GetFileInfo(assetId)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrAudioNotReady)
	}
	reader, err := s.storage.LoadReader(assetId)
	if err != nil {
		return EError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", audio.ChapterId+".mp3"))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	return c.Stream(http.StatusOK, "audio/mpeg", reader)
}
