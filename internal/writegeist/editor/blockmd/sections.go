package blockmd

import (
	"regexp"
	"strings"
)

var nextSectionReg = regexp.MustCompile(`^\s*##\s+`)

func sectionHeaderReg(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*##\s+` + regexp.QuoteMeta(name) + `\s*$`)
}

// ExtractSection возвращает содержимое секции `## name` до следующего
// заголовка второго уровня. Имя сравнивается без учета регистра, пустые
// строки по краям содержимого отбрасываются. Второе значение - найдена ли секция.
func ExtractSection(markdown string, name string) (string, bool) {
	lines := strings.Split(markdown, "\n")
	headerReg := sectionHeaderReg(name)

	start := -1
	for i, line := range lines {
		if headerReg.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return "", false
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if nextSectionReg.MatchString(lines[i]) {
			end = i
			break
		}
	}

	content := lines[start:end]
	for len(content) > 0 && strings.TrimSpace(content[0]) == "" {
		content = content[1:]
	}
	for len(content) > 0 && strings.TrimSpace(content[len(content)-1]) == "" {
		content = content[:len(content)-1]
	}
	return strings.Join(content, "\n"), true
}

// ApplyProposal дописывает предложенный блок в конец секции, подавляя
// дубликаты. Проверки по нарастающей: точное вхождение блока; для списков -
// совпадение пунктов без учета регистра, совпадение имени до скобки или тире,
// пересечение множеств слов выше 0.8; для прочего текста - построчное
// совпадение. Любое срабатывание отклоняет блок целиком. Отсутствующая секция
// создается в конце документа. Второе значение - был ли документ изменен.
func ApplyProposal(markdown string, section string, patch string) (string, bool) {
	lines := strings.Split(markdown, "\n")
	headerReg := sectionHeaderReg(section)

	headerIndex := -1
	start := 0
	for i, line := range lines {
		if headerReg.MatchString(line) {
			headerIndex = i
			start = i + 1
			break
		}
	}

	if headerIndex == -1 {
		// Секции нет - создаем в конце документа
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, "## "+section, "")
		lines = append(lines, strings.Split(patch, "\n")...)
		return strings.Join(lines, "\n"), true
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if nextSectionReg.MatchString(lines[i]) {
			end = i
			break
		}
	}

	existing := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	incoming := strings.TrimSpace(patch)

	if incoming != "" && strings.Contains(existing, incoming) {
		return markdown, false
	}

	if strings.HasPrefix(incoming, "* ") {
		if bulletDuplicate(lines[start:end], incoming) {
			return markdown, false
		}
	} else if lineDuplicate(existing, incoming) {
		return markdown, false
	}

	updated := make([]string, 0, len(lines)+4)
	updated = append(updated, lines[:end]...)
	if incoming != "" {
		if end > start && strings.TrimSpace(lines[end-1]) != "" {
			updated = append(updated, "")
		}
		updated = append(updated, strings.Split(patch, "\n")...)
	}
	updated = append(updated, lines[end:]...)
	return strings.Join(updated, "\n"), true
}

// bulletDuplicate сравнивает каждый новый пункт списка с уже имеющимися.
func bulletDuplicate(sectionLines []string, incoming string) bool {
	for _, newLine := range strings.Split(incoming, "\n") {
		newLine = strings.TrimSpace(newLine)
		if !strings.HasPrefix(newLine, "* ") {
			continue
		}
		newItem := strings.TrimSpace(newLine[2:])

		for _, line := range sectionLines {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "* ") {
				continue
			}
			existingItem := strings.TrimSpace(line[2:])

			if strings.EqualFold(existingItem, newItem) {
				return true
			}

			// Имя до скобки или тире: "Анна (детектив)" и "Анна — детектив" совпадают
			newName := itemName(newItem)
			if len(newName) > 2 && strings.EqualFold(newName, itemName(existingItem)) {
				return true
			}

			if len(newItem) > 10 && len(existingItem) > 10 &&
				wordSetSimilarity(newItem, existingItem) > 0.8 {
				return true
			}
		}
	}
	return false
}

func lineDuplicate(existing string, incoming string) bool {
	existingLines := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			existingLines[line] = true
		}
	}
	for _, line := range strings.Split(incoming, "\n") {
		if line = strings.TrimSpace(line); line != "" && existingLines[line] {
			return true
		}
	}
	return false
}

func itemName(item string) string {
	name, _, _ := strings.Cut(item, "(")
	name, _, _ = strings.Cut(name, "—")
	return strings.TrimSpace(name)
}

// wordSetSimilarity - коэффициент Жаккара по множествам слов в нижнем регистре.
func wordSetSimilarity(a string, b string) float64 {
	aWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		aWords[w] = true
	}
	bWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(b)) {
		bWords[w] = true
	}
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}

	intersection := 0
	for w := range aWords {
		if bWords[w] {
			intersection++
		}
	}
	union := len(aWords) + len(bWords) - intersection
	return float64(intersection) / float64(union)
}
