// Маршруты зеркальной синхронизации: пинг, отметка времени, прием документа
// и скачивание базы по подписанному токену.
package writegeist

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	filestorage "github.com/writegeist/writegeist.go/internal/writegeist/file-storage"
)

const downloadTokenSubject = "download-db"

type UploadProjectRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

type UploadProjectResponse struct {
	Replaced bool `json:"replaced"`
}

type DownloadTokenResponse struct {
	Token string `json:"token"`
}

func (s *Services) AddSyncServices(g *echo.Group, authGroup *echo.Group) {
	g.POST("echo/", s.echoPayload)
	g.GET("download-db/", s.downloadDB, DownloadTokenMiddleware([]byte(cfg.SecretKey), downloadTokenSubject))

	authGroup.GET("last-updated/", s.getLastUpdated)
	authGroup.POST("upload-project/", s.uploadProject)
	authGroup.GET("download-db/token/", s.getDownloadToken)
}

// echoPayload возвращает тело запроса без изменений. Проверка доступности зеркала.
func (s *Services) echoPayload(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	return c.JSON(http.StatusOK, payload)
}

// getLastUpdated godoc
func (s *Services) getLastUpdated(c echo.Context) error {
	// @id getLastUpdated
	// @Summary Синхронизация: отметка последнего изменения
	// @Description Unix-время последнего изменения документа или глав, "0" если изменений не было.
	// @Tags Sync
	// @Security ApiKeyAuth
	// @Produce plain
	// @Success 200 {string} string "Unix-время в секундах"
	// @Router /api/last-updated [get]
	lastUpdated, err := dao.GetLastUpdated(s.db)
	if err != nil {
		return EError(c, err)
	}
	return c.String(http.StatusOK, strconv.FormatInt(lastUpdated, 10))
}

// uploadProject godoc
func (s *Services) uploadProject(c echo.Context) error {
	// @id uploadProject
	// @Summary Синхронизация: прием документа с зеркала
	// @Description Замещает локальный документ присланным, если содержимое отличается.
	// @Tags Sync
	// @Security ApiKeyAuth
	// @Accept json
	// @Produce json
	// @Param data body UploadProjectRequest true "Markdown документа"
	// @Success 200 {object} UploadProjectResponse "Признак замены"
	// @Failure 400 {object} apierrors.DefinedError "Пустой документ"
	// @Router /api/upload-project [post]
	var req UploadProjectRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrEmptyDocument)
	}

	// Принятая сверка сама рассылает UpdatedEvent подписчикам сессии
	replaced, err := s.business.ReplaceProjectDoc(req.Markdown, "remote")
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, UploadProjectResponse{Replaced: replaced})
}

// getDownloadToken godoc
func (s *Services) getDownloadToken(c echo.Context) error {
	// @id getDownloadToken
	// @Summary Синхронизация: токен на скачивание базы
	// @Tags Sync
	// @Security ApiKeyAuth
	// @Produce json
	// @Success 200 {object} DownloadTokenResponse "Короткоживущий токен"
	// @Router /api/download-db/token [get]
	token, err := GenDownloadToken([]byte(cfg.SecretKey), downloadTokenSubject)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, DownloadTokenResponse{Token: token})
}

// downloadDB godoc
func (s *Services) downloadDB(c echo.Context) error {
	// @id downloadDB
	// @Summary Синхронизация: скачивание файла базы
	// @Description Отдает живой файл SQLite. Для postgres отдается последняя резервная копия.
	// @Tags Sync
	// @Produce octet-stream
	// @Param token query string true "Токен скачивания"
	// @Success 200 {file} binary "Файл базы данных"
	// @Failure 401 {object} apierrors.DefinedError "Неверный или просроченный токен"
	// @Failure 404 {object} apierrors.DefinedError "Резервная копия не найдена"
	// @Router /api/download-db [get]
	if strings.HasPrefix(cfg.DatabaseDSN, "postgres://") || strings.HasPrefix(cfg.DatabaseDSN, "postgresql://") {
		backup, reader, err := s.backupService.Latest()
		if err != nil {
			return EError(c, err)
		}
		defer reader.Close()

		filename := fmt.Sprintf("writegeist-%s.db", backup.CreatedAt.Format("2006-01-02"))
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", filename))
		return c.Stream(http.StatusOK, filestorage.ContentTypeByName(filename), reader)
	}

	file, err := os.Open(cfg.DatabaseDSN)
	if err != nil {
		return EError(c, err)
	}
	defer file.Close()

	filename := fmt.Sprintf("writegeist-%s.db", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
	return c.Stream(http.StatusOK, filestorage.ContentTypeByName(filename), file)
}
