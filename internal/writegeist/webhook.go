// Отдельный HTTP-слушатель для входящих вебхуков автоматизаций (n8n и подобных).
// Поднимается на собственном адресе, чтобы не смешивать внешние вызовы с основным API.
package writegeist

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
)

type WebhookProposalRequest struct {
	Section  string `json:"section" validate:"required,sectionName"`
	Markdown string `json:"markdown" validate:"required"`
}

func (s *Services) startWebhookListener() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Validator = NewRequestValidator()

	rateLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      10,
			Burst:     20,
			ExpiresIn: time.Minute * 3,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return EErrorDefined(c, apierrors.ErrTooManyProposals)
		},
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST("/n8n/proposal", s.webhookProposal, rateLimiter)

	slog.Info("Webhook listener start", "addr", cfg.WebhookAddr)
	if err := e.Start(cfg.WebhookAddr); err != nil {
		slog.Error("Webhook listener stopped", "err", err)
	}
}

// webhookProposal принимает предложение в раздел документа от внешней автоматизации.
func (s *Services) webhookProposal(c echo.Context) error {
	var req WebhookProposalRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestValidate)
	}

	applied, err := s.business.ApplySectionProposal(req.Section, req.Markdown)
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
