// Пакет writegeist предоставляет HTTP-сервер приложения для организации заметок длинной прозы. Включает работу с проектным документом и его разделами, главами рукописи, синхронизацией с зеркалом, поиском, озвучкой и экспортом.
//
// Основные возможности:
//   - REST API проектного документа и глав.
//   - Вебсокетные уведомления об изменениях данных.
//   - Webhook-слушатель для предложений от внешних пайплайнов.
//   - Периодические задачи: автосохранение, pull зеркала, ночной бэкап.
package writegeist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/backup"
	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/config"
	"github.com/writegeist/writegeist.go/internal/writegeist/cronmanager"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
	filestorage "github.com/writegeist/writegeist.go/internal/writegeist/file-storage"
	"github.com/writegeist/writegeist.go/internal/writegeist/ingest"
	"github.com/writegeist/writegeist.go/internal/writegeist/mcp"
	"github.com/writegeist/writegeist.go/internal/writegeist/notifications"
	"github.com/writegeist/writegeist.go/internal/writegeist/search"
	"github.com/writegeist/writegeist.go/internal/writegeist/syncer"
	"github.com/writegeist/writegeist.go/internal/writegeist/tts"
)

type Services struct {
	db      *gorm.DB
	storage filestorage.FileStorage

	business      *business.Business
	wsService     *notifications.WebsocketNotificationService
	searcher      *search.ChaptersSearcher
	extractor     *ingest.Extractor
	ttsService    *tts.Service
	backupService *backup.Service
	syncService   *syncer.Syncer

	ingestRunner *ingestRunner

	proposalsApplied  prometheus.Counter
	proposalsRejected prometheus.Counter
}

var cfg *config.Config
var appVersion string

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Writegeist")
		return next(c)
	}
}

func Server(db *gorm.DB, c *config.Config, version string) {
	cfg = c
	appVersion = version

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	var storage filestorage.FileStorage
	var err error
	if cfg.MinioEndpoint != "" {
		storage, err = filestorage.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioSSL, cfg.MinioBucket)
	} else {
		storage, err = filestorage.NewLocalStorage(cfg.StorageDir)
	}
	if err != nil {
		slog.Error("Fail init file storage", "err", err)
		os.Exit(1)
	}

	dao.Config = cfg
	dao.FileStorage = storage

	bl, err := business.NewBL(db)
	if err != nil {
		slog.Error("Load project document", "err", err)
		os.Exit(1)
	}

	ws := notifications.NewWebsocketNotificationService()

	s := &Services{
		db:            db,
		storage:       storage,
		business:      bl,
		wsService:     ws,
		searcher:      search.NewChaptersSearcher(db),
		extractor:     ingest.NewExtractor(cfg.OllamaURL, cfg.OllamaModel),
		ttsService:    tts.NewService(db, storage, ws, cfg.TTSEndpoint, cfg.TTSAPIKey, cfg.TTSModel, cfg.TTSVoice),
		backupService: backup.NewService(db, storage, cfg.DatabaseDSN, cfg.BackupKeep),
	}
	s.ingestRunner = newIngestRunner(bl, s.extractor, ws)
	s.registerMetrics()

	// Окна приложения узнают о внешних заменах и сохранениях документа
	bl.Session().Subscribe(func(ev editor.Event) {
		switch event := ev.(type) {
		case editor.UpdatedEvent:
			ws.Broadcast(notifications.DocumentUpdate{Markdown: event.Markdown, Source: event.Source})
		case editor.SavedEvent:
			ws.Broadcast(notifications.DocumentSaved{WordCount: event.WordCount})
		}
	})

	jobRegistry := cronmanager.JobRegistry{
		"autosave_flush": cronmanager.Job{
			Func:     s.autosaveFlush,
			Schedule: fmt.Sprintf("*/%d * * * *", cfg.AutosavePeriod),
		},
		"nightly_backup": cronmanager.Job{
			Func: func() {
				s.backupService.Run()
				s.backupService.Sweep()
			},
			Schedule: "0 2 * * *", // daily at 02:00
		},
	}

	if cfg.SyncEnabled() {
		s.syncService = syncer.NewSyncer(bl, cfg.RemoteURL, cfg.APIToken)
		s.syncService.Start()
		jobRegistry["remote_pull"] = cronmanager.Job{
			Func:     s.syncService.Pull,
			Schedule: fmt.Sprintf("*/%d * * * *", cfg.SyncPullPeriod),
		}
	} else {
		slog.Info("Remote sync disabled, REMOTE_URL not set")
	}

	// Create CronManager
	cronManager := cronmanager.NewCronManager(jobRegistry)
	if err := cronManager.LoadJobs(); err != nil {
		slog.Error("Failed to load cron jobs", "err", err)
		os.Exit(1)
	}
	cronManager.Start()

	// Create a channel to handle termination signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")
		s.autosaveFlush()
		cronManager.Stop()
		if s.syncService != nil {
			s.syncService.Stop()
		}
		ws.CloseAll()
		os.Exit(0)
	}()

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "5M",
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/updates/ws/" ||
				strings.Contains(c.Path(), "download-db")
		},
	}))
	e.Use(echoprometheus.NewMiddleware("writegeist"))
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	authGroup := apiGroup.Group("", TokenAuthMiddleware(cfg.APIToken))

	s.AddProjectServices(authGroup)
	s.AddChapterServices(authGroup)
	s.AddSearchServices(authGroup)
	s.AddAudioServices(authGroup)
	s.AddExportServices(authGroup)
	s.AddSyncServices(apiGroup, authGroup)

	// MCP endpoint for LLM agents
	authGroup.POST("mcp/", mcp.NewMCPServer(db, bl, s.searcher))

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
			"sync":    cfg.SyncEnabled(),
			"audio":   s.ttsService.Enabled(),
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Websocket updates endpoint
	authGroup.GET("updates/ws/", func(c echo.Context) error {
		s.wsService.Handle(c.Response(), c.Request())
		return nil
	})

	// Webhook listener on the separate port
	go s.startWebhookListener()

	// Prometheus metrics
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "writegeist",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler()) // adds route to serve gathered metrics
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	if err := e.Start(":8080"); err != nil {
		slog.Error("Server fail", "err", err)
	}
}

// autosaveFlush сбрасывает несохраненные правки сессии в базу.
func (s *Services) autosaveFlush() {
	if !s.business.Session().Dirty() {
		return
	}
	if err := s.business.Session().Save(); err != nil {
		slog.Error("Autosave project document", "err", err)
	}
}

func (s *Services) registerMetrics() {
	s.proposalsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "writegeist",
		Name:      "proposals_applied_total",
		Help:      "Section proposals applied to the project document",
	})
	s.proposalsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "writegeist",
		Name:      "proposals_rejected_total",
		Help:      "Section proposals rejected as duplicates",
	})

	for _, collector := range []prometheus.Collector{s.proposalsApplied, s.proposalsRejected} {
		if err := prometheus.Register(collector); err != nil {
			slog.Error("Register metrics collector", "err", err)
		}
	}
}
