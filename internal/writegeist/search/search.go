// Поиск по главам рукописи.
//
// Основные возможности:
//   - Подсчет вхождений слов запроса в текст и заголовок главы.
//   - Нормированная релевантность с привязкой лучшего результата к верхней границе.
//   - Возврат последних глав при отсутствии совпадений.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

const (
	wordHitWeight   = 2.0
	substringWeight = 0.5
	titleHitWeight  = 3.0

	maxScore      = 0.95
	minScore      = 0.1
	equalScore    = 0.8
	fallbackScore = 0.3
	fallbackCount = 2

	// Слова короче не участвуют в ранжировании
	minKeywordRunes = 3

	snippetBefore = 80
	snippetAfter  = 120
	// Сужение окна под многоточие, фрагмент остается короче исходного текста
	ellipsisReserve = 4
)

type Result struct {
	Chapter dao.Chapter `json:"chapter"`
	Score   float64     `json:"score"`
	Snippet string      `json:"snippet"`
}

type ChaptersSearcher struct {
	db *gorm.DB
}

func NewChaptersSearcher(db *gorm.DB) *ChaptersSearcher {
	return &ChaptersSearcher{db: db}
}

// Search считает релевантность каждой главы и возвращает совпадения по
// убыванию. Лучший результат получает верхнюю границу релевантности,
// остальные масштабируются относительно него. Если не совпало ничего,
// возвращаются две последние главы с минимальной фиксированной релевантностью.
func (s *ChaptersSearcher) Search(query string, limit int) ([]Result, error) {
	var chapters []dao.Chapter
	if err := s.db.Order("created_at").Find(&chapters).Error; err != nil {
		return nil, err
	}

	terms := keywords(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		chapter dao.Chapter
		raw     float64
	}

	var matches []scored
	for _, chapter := range chapters {
		raw := rawScore(chapter, terms)
		if raw > 0 {
			matches = append(matches, scored{chapter: chapter, raw: raw})
		}
	}

	if len(matches) == 0 {
		return s.fallback(terms)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].raw > matches[j].raw })

	best := matches[0].raw
	allEqual := matches[len(matches)-1].raw == best

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		score := maxScore
		if allEqual && len(matches) > 1 {
			score = equalScore
		} else if m.raw != best {
			score = clamp(maxScore * m.raw / best)
		}
		results = append(results, Result{
			Chapter: m.chapter,
			Score:   score,
			Snippet: snippet(m.chapter.Text, terms),
		})
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *ChaptersSearcher) fallback(terms []string) ([]Result, error) {
	var recent []dao.Chapter
	if err := s.db.Order("created_at DESC").Limit(fallbackCount).Find(&recent).Error; err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(recent))
	for _, chapter := range recent {
		results = append(results, Result{
			Chapter: chapter,
			Score:   fallbackScore,
			Snippet: snippet(chapter.Text, terms),
		})
	}
	return results, nil
}

// keywords отбирает слова запроса для ранжирования: нижний регистр,
// союзы и предлоги короче трех символов отбрасываются.
func keywords(query string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(word) >= minKeywordRunes {
			terms = append(terms, word)
		}
	}
	return terms
}

func rawScore(chapter dao.Chapter, terms []string) float64 {
	text := strings.ToLower(chapter.Text)
	title := strings.ToLower(chapter.Title)
	textWords := strings.Fields(text)

	var score float64
	for _, term := range terms {
		count := 0
		for _, w := range textWords {
			if strings.Trim(w, ".,!?;:\"'()") == term {
				count++
			}
		}
		score += wordHitWeight * float64(count)

		if count == 0 && strings.Contains(text, term) {
			score += substringWeight
		}
		if strings.Contains(title, term) {
			score += titleHitWeight
		}
	}
	return score
}

func clamp(score float64) float64 {
	if score > maxScore {
		return maxScore
	}
	if score < minScore {
		return minScore
	}
	return score
}

// snippet возвращает фрагмент текста вокруг первого вхождения запроса.
// Окно режется по рунам, обрезанные края помечаются многоточием.
func snippet(text string, terms []string) string {
	lower := strings.ToLower(text)
	pos := -1
	for _, term := range terms {
		if i := strings.Index(lower, term); i >= 0 && (pos == -1 || i < pos) {
			pos = i
		}
	}
	if pos == -1 {
		pos = 0
	}

	runes := []rune(text)
	runePos := utf8.RuneCountInString(text[:pos])

	start := runePos - snippetBefore
	if start < 0 {
		start = 0
	}
	end := runePos + snippetAfter
	if end > len(runes) {
		end = len(runes)
	}

	if start > 0 {
		start += ellipsisReserve
	}
	if end < len(runes) {
		end -= ellipsisReserve
	}

	fragment := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		fragment = "…" + fragment
	}
	if end < len(runes) {
		fragment += "…"
	}
	return fragment
}
