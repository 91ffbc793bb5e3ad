// Пакет содержит определения ошибок, используемых в приложении Writegeist при работе с документом проекта, главами, синхронизацией и вспомогательными сервисами. Каждая ошибка имеет код, HTTP статус и описание, что позволяет единообразно обрабатывать исключения и выдавать информативные сообщения пользователю.
//
// Основные возможности:
//   - Определение типов ошибок, связанных с авторизацией, документом проекта и его секциями, главами, синхронизацией и генерацией.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - generic and auth errors
	ErrGeneric          = DefinedError{Code: 1000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later.", RuErr: "Что-то пошло не так. Повторите попытку позже"}
	ErrTokenRequired    = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "api token is required", RuErr: "Требуется токен доступа"}
	ErrTokenInvalid     = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "invalid api token", RuErr: "Неверный токен доступа"}
	ErrDownloadToken    = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "invalid or expired download token", RuErr: "Неверный или просроченный токен скачивания"}
	ErrRequestValidate  = DefinedError{Code: 1004, StatusCode: http.StatusBadRequest, Err: "validation error", RuErr: "Введены некорректные данные"}
	ErrBadRequest       = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}
	ErrEntityToLarge    = DefinedError{Code: 1006, StatusCode: http.StatusRequestEntityTooLarge, Err: "size exceeds the allowed limit", RuErr: "Размер запроса превышает допустимый"}
	ErrTooManyProposals = DefinedError{Code: 1007, StatusCode: http.StatusTooManyRequests, Err: "too many proposal requests", RuErr: "Слишком много предложений подряд"}

	// 2*** - project document and section errors
	ErrProjectDocNotFound  = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "project document not found", RuErr: "Документ проекта не найден"}
	ErrSectionNotFound     = DefinedError{Code: 2002, StatusCode: http.StatusNotFound, Err: "section %s not found", RuErr: "Секция %s не найдена"}
	ErrSectionNameRequired = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "section name is required", RuErr: "Необходимо указать имя секции"}
	ErrEmptyProposal       = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "proposal content is empty", RuErr: "Попытка отправить пустое предложение"}
	ErrEmptyDocument       = DefinedError{Code: 2005, StatusCode: http.StatusBadRequest, Err: "markdown payload is empty", RuErr: "Передан пустой документ"}

	// 3*** - chapter errors
	ErrChapterNotFound      = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "chapter not found", RuErr: "Глава не найдена"}
	ErrChapterTitleRequired = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "chapter title is required", RuErr: "Поле заголовок главы не может быть пустым"}
	ErrChapterTextRequired  = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "chapter text is required", RuErr: "Текст главы не может быть пустым"}
	ErrChapterIDInvalid     = DefinedError{Code: 3004, StatusCode: http.StatusBadRequest, Err: "invalid chapter ID", RuErr: "Указан неверный ID главы"}
	ErrSearchQueryRequired  = DefinedError{Code: 3005, StatusCode: http.StatusBadRequest, Err: "search query is required", RuErr: "Необходимо указать поисковый запрос"}

	// 4*** - sync and remote errors
	ErrRemoteDisabled    = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "remote sync is not configured", RuErr: "Удаленная синхронизация не настроена"}
	ErrRemoteUnavailable = DefinedError{Code: 4002, StatusCode: http.StatusBadGateway, Err: "remote service unavailable", RuErr: "Удаленный сервис недоступен"}
	ErrBackupNotFound    = DefinedError{Code: 4003, StatusCode: http.StatusNotFound, Err: "backup not found", RuErr: "Резервная копия не найдена"}

	// 5*** - ingest, audio and export errors
	ErrIngestInProgress  = DefinedError{Code: 5001, StatusCode: http.StatusConflict, Err: "chapter ingest already in progress", RuErr: "Анализ главы уже выполняется"}
	ErrAudioInProgress   = DefinedError{Code: 5002, StatusCode: http.StatusConflict, Err: "audio generation already in progress", RuErr: "Озвучивание главы уже выполняется"}
	ErrAudioNotReady     = DefinedError{Code: 5003, StatusCode: http.StatusNotFound, Err: "audio is not generated yet", RuErr: "Аудио еще не сгенерировано"}
	ErrAudioDisabled     = DefinedError{Code: 5004, StatusCode: http.StatusBadRequest, Err: "audio generation is not configured", RuErr: "Генерация аудио не настроена"}
	ErrExportFailed      = DefinedError{Code: 5005, StatusCode: http.StatusInternalServerError, Err: "manuscript export failed", RuErr: "Не удалось экспортировать рукопись"}
	ErrUnsupportedFormat = DefinedError{Code: 5006, StatusCode: http.StatusBadRequest, Err: "unsupported export format %s", RuErr: "Неподдерживаемый формат экспорта %s"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
