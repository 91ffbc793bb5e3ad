// Озвучка глав через OpenAI-совместимый endpoint синтеза речи.
//
// Основные возможности:
//   - Разбиение текста главы на куски по границам абзацев.
//   - Параллельный синтез кусков с ограничением числа запросов.
//   - Склейка аудио и загрузка файла в хранилище.
//   - Учет активных задач, повторный запуск той же главы отклоняется.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	filestorage "github.com/writegeist/writegeist.go/internal/writegeist/file-storage"
	"github.com/writegeist/writegeist.go/internal/writegeist/notifications"
)

const (
	// Максимальный размер куска текста на один запрос синтеза
	chunkLimit = 4000
	// Оценка длительности речи
	speechWordsPerMinute = 150

	maxParallelRequests = 3
)

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

type Service struct {
	db      *gorm.DB
	storage filestorage.FileStorage
	ns      *notifications.WebsocketNotificationService

	endpoint string
	apiKey   string
	model    string
	voice    string

	client *retryablehttp.Client

	mu     sync.Mutex
	active map[string]bool
}

// NewService создает сервис озвучки. Пустой endpoint выключает сервис.
func NewService(db *gorm.DB, storage filestorage.FileStorage, ns *notifications.WebsocketNotificationService, endpoint, apiKey, model, voice string) *Service {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 3
	cl.RetryWaitMin = time.Second * 5
	cl.HTTPClient.Timeout = time.Minute * 5
	cl.Logger = slog.Default()

	return &Service{
		db:       db,
		storage:  storage,
		ns:       ns,
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		voice:    voice,
		client:   cl,
		active:   make(map[string]bool),
	}
}

// Enabled сообщает, настроен ли endpoint синтеза.
func (s *Service) Enabled() bool {
	return s.endpoint != ""
}

// Generate запускает озвучку главы в фоне. Возвращает ошибку, если озвучка
// этой главы уже идет либо сервис не настроен.
func (s *Service) Generate(chapter *dao.Chapter) error {
	if !s.Enabled() {
		return apierrors.ErrAudioDisabled
	}

	s.mu.Lock()
	if s.active[chapter.Id] {
		s.mu.Unlock()
		return apierrors.ErrAudioInProgress
	}
	s.active[chapter.Id] = true
	s.mu.Unlock()

	if err := s.setStatus(chapter.Id, dao.AudioStatusProcessing, ""); err != nil {
		s.release(chapter.Id)
		return err
	}

	go s.run(*chapter)
	return nil
}

func (s *Service) run(chapter dao.Chapter) {
	defer s.release(chapter.Id)

	audio, err := s.synthesize(context.Background(), chapter.Text)
	if err != nil {
		slog.Error("Synthesize chapter audio", "chapterId", chapter.Id, "err", err)
		s.setStatus(chapter.Id, dao.AudioStatusError, err.Error())
		s.ns.Broadcast(notifications.AudioReady{ChapterId: chapter.Id, Status: dao.AudioStatusError, Error: err.Error()})
		return
	}

	assetId := dao.GenUUID()
	if err := s.storage.Save(audio, assetId, "audio/mpeg", &filestorage.Metadata{
		ChapterId: chapter.Id,
		Kind:      "audio",
	}); err != nil {
		slog.Error("Save chapter audio", "chapterId", chapter.Id, "err", err)
		s.setStatus(chapter.Id, dao.AudioStatusError, err.Error())
		s.ns.Broadcast(notifications.AudioReady{ChapterId: chapter.Id, Status: dao.AudioStatusError, Error: err.Error()})
		return
	}

	duration := estimateDuration(chapter.Text)

	if err := s.db.Model(&dao.ChapterAudio{}).
		Where("chapter_id = ?", chapter.Id).
		Updates(map[string]interface{}{
			"status":           dao.AudioStatusComplete,
			"asset_id":         assetId.String(),
			"duration_seconds": duration,
			"last_error":       "",
		}).Error; err != nil {
		slog.Error("Update chapter audio record", "chapterId", chapter.Id, "err", err)
		return
	}

	slog.Info("Chapter audio ready", "chapterId", chapter.Id, "bytes", len(audio), "duration", duration)
	s.ns.Broadcast(notifications.AudioReady{ChapterId: chapter.Id, Status: dao.AudioStatusComplete, DurationSeconds: duration})
}

// synthesize разбивает текст на куски и синтезирует их параллельно,
// сохраняя исходный порядок при склейке.
func (s *Service) synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := SplitChunks(text, chunkLimit)
	if len(chunks) == 0 {
		return nil, apierrors.ErrChapterTextRequired
	}

	parts := make([][]byte, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)

	for i, chunk := range chunks {
		g.Go(func() error {
			data, err := s.speechRequest(ctx, chunk)
			if err != nil {
				return err
			}
			parts[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return bytes.Join(parts, nil), nil
}

func (s *Service) speechRequest(ctx context.Context, input string) ([]byte, error) {
	body, err := json.Marshal(speechRequest{Model: s.model, Input: input, Voice: s.voice})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/audio/speech", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech endpoint status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Service) setStatus(chapterId string, status string, lastError string) error {
	var record dao.ChapterAudio
	err := s.db.Where("chapter_id = ?", chapterId).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.Create(&dao.ChapterAudio{
			Id:        dao.GenUUID().String(),
			ChapterId: chapterId,
			Status:    status,
			LastError: lastError,
		}).Error
	}
	if err != nil {
		return err
	}

	return s.db.Model(&record).Updates(map[string]interface{}{
		"status":     status,
		"last_error": lastError,
	}).Error
}

func (s *Service) release(chapterId string) {
	s.mu.Lock()
	delete(s.active, chapterId)
	s.mu.Unlock()
}

// SplitChunks режет текст на куски не длиннее limit по границам абзацев.
// Абзац длиннее лимита режется по предложениям, в крайнем случае по словам.
func SplitChunks(text string, limit int) []string {
	paragraphs := strings.Split(strings.TrimSpace(text), "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	appendPiece := func(piece string) {
		if current.Len() > 0 && current.Len()+len(piece)+2 > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len(paragraph) <= limit {
			appendPiece(paragraph)
			continue
		}

		for _, piece := range splitLong(paragraph, limit) {
			appendPiece(piece)
		}
	}
	flush()
	return chunks
}

func splitLong(paragraph string, limit int) []string {
	var pieces []string
	var current strings.Builder

	for _, word := range strings.Fields(paragraph) {
		if current.Len() > 0 && current.Len()+len(word)+1 > limit {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func estimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / speechWordsPerMinute * 60
}
