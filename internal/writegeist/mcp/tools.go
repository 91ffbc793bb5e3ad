package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/business"
	"github.com/writegeist/writegeist.go/internal/writegeist/search"
)

// GetProjectTools возвращает MCP инструменты проектного документа.
func GetProjectTools(bl *business.Business) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(
				"get_project_doc",
				mcp.WithDescription("Получение всего проектного документа в markdown"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				markdown, words, err := bl.ProjectDoc()
				if err != nil {
					return mcp.NewToolResultError("internal error"), nil
				}
				return mcp.NewToolResultJSON(map[string]interface{}{
					"markdown":   markdown,
					"word_count": words,
				})
			},
		},
		{
			Tool: mcp.NewTool(
				"get_section",
				mcp.WithDescription("Получение содержимого раздела проектного документа по имени (## Название, без учета регистра)"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Имя раздела, например Characters или Full Outline"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				name, ok := request.GetArguments()["name"].(string)
				if !ok {
					return mcp.NewToolResultError("name is required"), nil
				}
				content, err := bl.Section(name)
				if err != nil {
					var defined apierrors.DefinedError
					if errors.As(err, &defined) {
						return mcp.NewToolResultError(defined.Err), nil
					}
					return mcp.NewToolResultError("internal error"), nil
				}
				return mcp.NewToolResultText(content), nil
			},
		},
		{
			Tool: mcp.NewTool(
				"propose_section_item",
				mcp.WithDescription("Дописывает предложенный markdown-блок в конец раздела. Дубликаты отклоняются без изменения документа."),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("section",
					mcp.Required(),
					mcp.Description("Имя раздела"),
				),
				mcp.WithString("markdown",
					mcp.Required(),
					mcp.Description("Предлагаемый markdown-блок"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := request.GetArguments()
				section, _ := args["section"].(string)
				markdown, _ := args["markdown"].(string)

				applied, err := bl.ApplySectionProposal(section, markdown)
				if err != nil {
					var defined apierrors.DefinedError
					if errors.As(err, &defined) {
						return mcp.NewToolResultError(defined.Err), nil
					}
					return mcp.NewToolResultError("internal error"), nil
				}
				if !applied {
					return mcp.NewToolResultText("duplicate, document unchanged"), nil
				}
				return mcp.NewToolResultText("applied"), nil
			},
		},
	}
}

// GetChapterTools возвращает MCP инструменты глав рукописи.
func GetChapterTools(bl *business.Business, searcher *search.ChaptersSearcher) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(
				"get_chapter",
				mcp.WithDescription("Получение главы по идентификатору"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("id",
					mcp.Required(),
					mcp.Description("UUID главы"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				id, ok := request.GetArguments()["id"].(string)
				if !ok {
					return mcp.NewToolResultError("id is required"), nil
				}
				chapter, err := bl.Chapter(id)
				if err != nil {
					if errors.Is(err, apierrors.ErrChapterNotFound) {
						return mcp.NewToolResultError("глава не найдена"), nil
					}
					return mcp.NewToolResultError("internal error"), nil
				}
				return mcp.NewToolResultJSON(chapter)
			},
		},
		{
			Tool: mcp.NewTool(
				"search_chapters",
				mcp.WithDescription("Поиск по главам рукописи с релевантностью и фрагментами"),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("Поисковый запрос"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Лимит результатов (по умолчанию 10)"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := request.GetArguments()
				query, ok := args["query"].(string)
				if !ok || query == "" {
					return mcp.NewToolResultError("query is required"), nil
				}

				limit := 10
				if raw, ok := args["limit"].(float64); ok && raw > 0 {
					limit = int(raw)
				}

				results, err := searcher.Search(query, limit)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("ошибка поиска: %v", err)), nil
				}
				return mcp.NewToolResultJSON(results)
			},
		},
	}
}
