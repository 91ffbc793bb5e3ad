// Вебсокетные уведомления подключенным окнам приложения.
// Рассылка событий документа и глав, поддержание активных сессий и автоматическое закрытие неактивных.
//
// Основные возможности:
//   - Поддержка множественных активных вебсокетных подключений.
//   - Рассылка событий через вебсокеты с использованием JSON.
//   - Пинг для поддержания активных соединений.
package notifications

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gofrs/uuid"
)

const (
	pingPeriod = time.Second * 20
	timeout    = time.Minute
)

type WebsocketMsg struct {
	Type      string      `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	Data      interface{} `json:"data"`
}

// DocumentUpdate - проектный документ заменен внешним обновлением.
type DocumentUpdate struct {
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
}

// DocumentSaved - документ сохранен, окна обновляют счетчик слов.
type DocumentSaved struct {
	WordCount int `json:"word_count"`
}

// ChapterIngested - завершено извлечение метаданных главы.
type ChapterIngested struct {
	ChapterId  string   `json:"chapter_id"`
	Title      string   `json:"title"`
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	POV        []string `json:"pov"`
}

// AudioReady - озвучка главы готова либо завершилась ошибкой.
type AudioReady struct {
	ChapterId       string  `json:"chapter_id"`
	Status          string  `json:"status"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type WebsocketNotificationService struct {
	sessions map[uuid.UUID]*websocket.Conn
	mutex    sync.RWMutex
}

func NewWebsocketNotificationService() *WebsocketNotificationService {
	return &WebsocketNotificationService{
		sessions: make(map[uuid.UUID]*websocket.Conn),
	}
}

func (wns *WebsocketNotificationService) Handle(w http.ResponseWriter, req *http.Request) {
	c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Open websocket connection", "err", err)
		return
	}
	defer c.CloseNow()

	conId := uuid.Must(uuid.NewV4())

	wns.mutex.Lock()
	wns.sessions[conId] = c
	wns.mutex.Unlock()

	go wns.pingLoop(conId, c)

	// Start read until close
	ctx := context.Background()
	ctx = c.CloseRead(ctx)
	<-ctx.Done()

	wns.mutex.Lock()
	delete(wns.sessions, conId)
	wns.mutex.Unlock()

	c.Close(websocket.StatusNormalClosure, "")
}

// CloseAll закрывает все подключения при остановке сервера.
func (wns *WebsocketNotificationService) CloseAll() {
	wns.mutex.Lock()
	defer wns.mutex.Unlock()
	for _, con := range wns.sessions {
		con.Close(websocket.StatusNormalClosure, "server shutting down")
	}
}

// Broadcast рассылает событие всем подключенным окнам.
func (wns *WebsocketNotificationService) Broadcast(data interface{}) error {
	msg := WebsocketMsg{CreatedAt: time.Now().UTC(), Data: data}
	switch data.(type) {
	case DocumentUpdate:
		msg.Type = "project_updated"
	case DocumentSaved:
		msg.Type = "project_saved"
	case ChapterIngested:
		msg.Type = "chapter_ingested"
	case AudioReady:
		msg.Type = "audio_ready"
	default:
		return errors.New("unsupported notification data type")
	}

	wns.mutex.RLock()
	cons := make([]*websocket.Conn, 0, len(wns.sessions))
	for _, session := range wns.sessions {
		cons = append(cons, session)
	}
	wns.mutex.RUnlock()

	for _, session := range cons {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := wsjson.Write(ctx, session, msg); err != nil {
			slog.Error("Write notification to websocket", "err", err)
		}
		cancel()
	}
	return nil
}

func (wns *WebsocketNotificationService) pingLoop(sessionId uuid.UUID, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := conn.Ping(ctx)
		cancel()
		if err != nil {
			slog.Debug("Ping to websocket failed", "err", err)
			wns.mutex.Lock()
			delete(wns.sessions, sessionId)
			wns.mutex.Unlock()
			conn.Close(websocket.StatusNormalClosure, "Ping failed, connection closed")
			return
		}
	}
}
