// Извлечение метаданных главы: персонажи, локации, точка зрения повествования.
//
// Основные возможности:
//   - Извлечение через языковую модель Ollama со структурированным JSON-ответом.
//   - Эвристический разбор текста, когда модель не настроена или недоступна.
//   - Ограничение времени запроса к модели контекстом.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/ollama/ollama/api"
)

const extractTimeout = time.Minute * 2

const extractPrompt = `Extract metadata from this fiction chapter. Return JSON with fields:
"characters" - character names mentioned in the text,
"locations" - place names where scenes happen,
"pov" - narrative point of view ("first person" or the viewpoint character's name).
Return only names actually present in the text.`

// Metadata - результат извлечения.
type Metadata struct {
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
	POV        []string `json:"pov"`
}

type Extractor struct {
	client *api.Client
	model  string
}

// NewExtractor создает извлекатель. Пустой адрес Ollama оставляет только эвристики.
func NewExtractor(ollamaURL *url.URL, model string) *Extractor {
	e := &Extractor{model: model}
	if ollamaURL != nil {
		e.client = api.NewClient(ollamaURL, http.DefaultClient)
	}
	return e
}

// Extract возвращает метаданные главы. Сначала пробует языковую модель,
// при любой ошибке тихо откатывается на эвристики.
func (e *Extractor) Extract(ctx context.Context, title string, text string) Metadata {
	if e.client != nil {
		meta, err := e.extractLLM(ctx, title, text)
		if err == nil {
			return meta
		}
		slog.Warn("LLM extraction failed, falling back to heuristics", "err", err)
	}
	return HeuristicExtract(text)
}

func (e *Extractor) extractLLM(ctx context.Context, title string, text string) (Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	format := json.RawMessage(`{
        "type": "object",
        "properties": {
            "characters": {"type": "array", "items": {"type": "string"}},
            "locations": {"type": "array", "items": {"type": "string"}},
            "pov": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["characters", "locations", "pov"]
    }`)

	var fullResponse strings.Builder
	stream := false
	req := api.ChatRequest{
		Model: e.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: "Title: " + title + "\n\n" + text,
			},
			{
				Role:    "user",
				Content: extractPrompt,
			},
		},
		Format: format,
		Stream: &stream,
	}

	err := e.client.Chat(ctx, &req, func(resp api.ChatResponse) error {
		if len(resp.Message.Content) > 0 {
			fullResponse.WriteString(resp.Message.Content)
		}
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(fullResponse.String()), &meta); err != nil {
		return Metadata{}, err
	}

	meta.Characters = dedupe(meta.Characters)
	meta.Locations = dedupe(meta.Locations)
	meta.POV = dedupe(meta.POV)
	return meta, nil
}

var locationCues = map[string]bool{
	"in": true, "at": true, "near": true, "inside": true, "outside": true,
	"toward": true, "towards": true, "from": true,
}

// Слова, с большой буквы начинающие предложение, но не являющиеся именами.
var commonSentenceStarters = map[string]bool{
	"the": true, "a": true, "an": true, "he": true, "she": true, "it": true,
	"they": true, "we": true, "i": true, "but": true, "and": true, "then": true,
	"when": true, "after": true, "before": true, "there": true, "this": true,
	"that": true, "his": true, "her": true, "my": true, "their": true, "our": true,
	"if": true, "as": true, "so": true, "no": true, "yes": true, "now": true,
	"what": true, "why": true, "how": true, "where": true, "who": true,
}

// HeuristicExtract разбирает текст без модели. Имена собираются из слов с
// заглавной буквы не в начале предложения, локации - из таких же слов после
// пространственных предлогов, точка зрения определяется подсчетом маркеров
// первого лица против упоминаний самого частого имени.
func HeuristicExtract(text string) Metadata {
	words := strings.Fields(text)

	nameCounts := make(map[string]int)
	locationSet := make(map[string]bool)
	firstPersonMarkers := 0

	sentenceStart := true
	for i, raw := range words {
		word := strings.Trim(raw, ".,!?;:\"'()*#>")

		switch word {
		case "I", "I'm", "I'd", "I'll", "I've":
			firstPersonMarkers++
		case "my", "My", "me", "mine":
			firstPersonMarkers++
		}

		if word != "" && isCapitalized(word) && !sentenceStart && !commonSentenceStarters[strings.ToLower(word)] {
			// Склеиваем последовательные слова с заглавной в одно имя
			name := word
			if i+1 < len(words) {
				next := strings.Trim(words[i+1], ".,!?;:\"'()*#>")
				if isCapitalized(next) && !commonSentenceStarters[strings.ToLower(next)] {
					name = word + " " + next
				}
			}

			prev := strings.ToLower(strings.Trim(words[i-1], ".,!?;:\"'()*#>"))
			if locationCues[prev] {
				locationSet[name] = true
			} else {
				nameCounts[name]++
			}
		}

		sentenceStart = strings.ContainsAny(raw, ".!?") || strings.HasSuffix(raw, ":")
		if i == 0 {
			sentenceStart = true
		}
	}

	// Составные имена поглощают свои одиночные части
	for name := range nameCounts {
		parts := strings.Fields(name)
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			if count, ok := nameCounts[part]; ok {
				nameCounts[name] += count
				delete(nameCounts, part)
			}
		}
	}

	var characters []string
	for name, count := range nameCounts {
		if count >= 2 && !locationSet[name] {
			characters = append(characters, name)
		}
	}
	sort.Slice(characters, func(i, j int) bool {
		if nameCounts[characters[i]] != nameCounts[characters[j]] {
			return nameCounts[characters[i]] > nameCounts[characters[j]]
		}
		return characters[i] < characters[j]
	})

	var locations []string
	for loc := range locationSet {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var pov []string
	topMentions := 0
	if len(characters) > 0 {
		topMentions = nameCounts[characters[0]]
	}
	if firstPersonMarkers > topMentions {
		pov = []string{"first person"}
	} else if len(characters) > 0 {
		pov = []string{characters[0]}
	}

	return Metadata{
		Characters: characters,
		Locations:  locations,
		POV:        pov,
	}
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
	}
	return out
}
