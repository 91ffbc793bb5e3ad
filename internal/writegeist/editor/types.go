// Пакет editor содержит блочную модель документа проекта: упорядоченный набор
// блоков (заголовки, параграфы, элементы списка, цитаты, разделители), из которых
// состоит rich-представление markdown-текста.
//
// Основные возможности:
//   - Типы блоков документа и текстовых фрагментов с форматированием.
//   - Хранение документа в БД как markdown-текст через Valuer/Scanner.
//   - Сессия редактирования с подпиской на типизированные события.
package editor

// HintText - текст-подсказка, который получает единственный параграф
// пустого документа. В markdown при сериализации не попадает.
const HintText = "Start writing…"

// Heading - заголовок уровня 1-3.
type Heading struct {
	Level int
	Spans []any
}

// Paragraph - обычный текстовый параграф. Placeholder отмечает параграф-подсказку
// пустого документа: он отображается в редакторе, но не сериализуется в markdown.
type Paragraph struct {
	Spans       []any
	Placeholder bool
}

// ListItem - плоский элемент списка, вложенность не отслеживается.
type ListItem struct {
	Spans []any
}

// Blockquote - цитата из одной строки.
type Blockquote struct {
	Spans []any
}

// HorizontalRule - горизонтальная линия (---).
type HorizontalRule struct{}

// BlankLine - пустая строка-разделитель между блоками.
type BlankLine struct{}

// Text - текстовый фрагмент с инлайн-форматированием.
type Text struct {
	Content string

	Bold   bool
	Italic bool
}

// Break - принудительный перенос строки внутри блока.
type Break struct{}
