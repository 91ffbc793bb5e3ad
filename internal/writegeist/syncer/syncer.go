// Синхронизация проектного документа с удаленным зеркалом.
//
// Основные возможности:
//   - Push снимка документа на зеркало после каждого сохранения.
//   - Периодический pull-опрос отметки времени зеркала.
//   - Принятие расходящегося снимка через сверку сессии редактирования.
package syncer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

const remoteSource = "remote"

type projectSnapshot struct {
	Markdown string `json:"markdown"`
}

type Syncer struct {
	bl     *business.Business
	remote *url.URL
	token  string
	client *retryablehttp.Client

	mu       sync.Mutex
	lastSeen int64

	sub *editor.Subscription
}

// NewSyncer создает синхронизатор с зеркалом. Клиент повторяет неудачные
// запросы с паузами, чтобы переживать короткие обрывы сети.
func NewSyncer(bl *business.Business, remote *url.URL, token string) *Syncer {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 3
	cl.RetryWaitMin = time.Second * 2
	cl.HTTPClient.Timeout = time.Second * 30
	cl.Logger = slog.Default()

	return &Syncer{
		bl:     bl,
		remote: remote,
		token:  token,
		client: cl,
	}
}

// Start подписывает синхронизатор на сохранения документа: каждый успешный
// Save уходит на зеркало в фоне.
func (s *Syncer) Start() {
	s.sub = s.bl.Session().Subscribe(func(ev editor.Event) {
		saved, ok := ev.(editor.SavedEvent)
		if !ok {
			return
		}
		go func() {
			if err := s.Push(saved.Markdown); err != nil {
				slog.Error("Push project to remote", "err", err)
			}
		}()
	})
}

// Stop снимает подписку на события сессии.
func (s *Syncer) Stop() {
	s.bl.Session().Unsubscribe(s.sub)
}

// Push отправляет снимок документа на зеркало.
func (s *Syncer) Push(markdown string) error {
	body, err := json.Marshal(projectSnapshot{Markdown: markdown})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, s.endpoint("/api/upload-project"), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote upload status %d", resp.StatusCode)
	}
	return nil
}

// Pull опрашивает отметку времени зеркала и при изменении забирает документ.
// Совпадающий после нормализации снимок сверка отбрасывает без событий.
func (s *Syncer) Pull() {
	remoteUpdated, err := s.fetchLastUpdated()
	if err != nil {
		slog.Error("Fetch remote last-updated", "err", err)
		return
	}

	s.mu.Lock()
	seen := s.lastSeen
	s.mu.Unlock()

	if remoteUpdated == 0 || remoteUpdated <= seen {
		return
	}

	markdown, err := s.fetchProject()
	if err != nil {
		slog.Error("Fetch remote project", "err", err)
		return
	}

	s.mu.Lock()
	s.lastSeen = remoteUpdated
	s.mu.Unlock()

	// Принятая сверка сама рассылает UpdatedEvent подписчикам сессии
	replaced, err := s.bl.ReplaceProjectDoc(markdown, remoteSource)
	if err != nil {
		slog.Error("Apply remote project snapshot", "err", err)
		return
	}
	if replaced {
		slog.Info("Project document replaced from remote", "remoteUpdated", remoteUpdated)
	}
}

func (s *Syncer) fetchLastUpdated() (int64, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, s.endpoint("/api/last-updated"), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("remote last-updated status %d", resp.StatusCode)
	}

	// Зеркало отдает unix-время простой строкой, "0" до первого изменения
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
}

func (s *Syncer) fetchProject() (string, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, s.endpoint("/api/project"), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote project status %d", resp.StatusCode)
	}

	var payload projectSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Markdown, nil
}

func (s *Syncer) endpoint(path string) string {
	ref, _ := url.Parse(path)
	return s.remote.ResolveReference(ref).String()
}
