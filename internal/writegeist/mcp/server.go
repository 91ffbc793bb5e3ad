// MCP сервер для доступа LLM-агентов к проектному документу и главам.
//
// Основные возможности:
//   - Чтение проектного документа и его разделов.
//   - Поиск и чтение глав рукописи.
//   - Внесение предложений в разделы с отсевом дубликатов.
package mcp

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/search"
)

// mcpInstructions содержит описание MCP сервера для LLM-моделей.
const mcpInstructions = `MCP сервер приложения Writegeist для работы с рукописью.

## Структура данных

### Проектный документ
Единый markdown-документ с разделами второго уровня (## Название).
Стандартные разделы: Ideas-Notes, Setting, Full Outline, Characters.

### Главы
Главы рукописи хранятся отдельно от проектного документа. У каждой главы
есть заголовок, markdown-текст и извлеченные метаданные: персонажи, локации,
точка зрения повествования.

## Предложения
Инструмент propose_section_item дописывает блок в конец раздела. Дубликаты
(повтор пункта списка, совпадение имени, почти идентичный текст) отклоняются,
документ при этом не меняется.
`

// NewMCPServer создает MCP сервер с доступом к business слою.
func NewMCPServer(db *gorm.DB, bl *business.Business, searcher *search.ChaptersSearcher) echo.HandlerFunc {
	hooks := &server.Hooks{}
	hooks.AddOnError(ErrorLoggerHook)

	srv := server.NewMCPServer(
		"writegeist-mcp",
		"version",
		server.WithInstructions(mcpInstructions),
		server.WithHooks(hooks),
	)
	srv.AddTools(GetProjectTools(bl)...)
	srv.AddTools(GetChapterTools(bl, searcher)...)

	httpServer := server.NewStreamableHTTPServer(srv)
	return func(c echo.Context) error {
		httpServer.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

func ErrorLoggerHook(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
	slog.Error("MCP Error", "id", id, "method", method, "message", message, "err", err)
}
