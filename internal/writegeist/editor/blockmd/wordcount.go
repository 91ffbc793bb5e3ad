package blockmd

import "strings"

var markupStripper = strings.NewReplacer(
	"#", "",
	"*", "",
	">", "",
	"-", "",
	"[", "",
	"]", "",
)

// WordCount считает слова markdown-текста: символы разметки # * > - [ ]
// удаляются, переносы строк считаются пробелами, слова разделены пробельными
// символами. Пустой или пробельный вход дает 0.
func WordCount(markdown string) int {
	return len(strings.Fields(markupStripper.Replace(markdown)))
}
