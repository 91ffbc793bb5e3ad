package editor

import (
	"log/slog"
	"strings"
	"sync"
)

// MarkdownWordCounter - функция подсчета слов markdown-текста, устанавливается из blockmd пакета
var MarkdownWordCounter func(string) int

// Store - внешнее хранилище документа проекта.
type Store interface {
	LoadDocument() (string, error)
	SaveDocument(markdown string) error
}

// Event - типизированное событие сессии редактирования.
type Event interface {
	editorEvent()
}

// UpdatedEvent - внешнее обновление принято, документ заменён.
type UpdatedEvent struct {
	Markdown string
	Source   string
}

// SavedEvent - документ успешно сохранён в хранилище.
type SavedEvent struct {
	Markdown  string
	WordCount int
}

// DirtyEvent - изменение признака несохранённых правок.
type DirtyEvent struct {
	Dirty bool
}

func (UpdatedEvent) editorEvent() {}
func (SavedEvent) editorEvent()   {}
func (DirtyEvent) editorEvent()   {}

// Subscription - дескриптор подписки на события сессии.
type Subscription struct {
	id int
}

// Session - сессия редактирования документа проекта. Держит rich-представление
// в памяти, следит за несохранёнными правками и решает, принимать ли внешние
// обновления. Доступ к документу сериализуется мьютексом, поэтому обновление,
// пришедшее одновременно с правкой пользователя, применяется строго по порядку.
type Session struct {
	mu    sync.Mutex
	doc   *Document
	words int
	dirty bool
	store Store

	subsMu  sync.RWMutex
	subs    map[int]func(Event)
	nextSub int
}

// NewSession создает сессию над хранилищем. Документ загружается при вызове Load.
func NewSession(store Store) *Session {
	return &Session{
		store: store,
		doc:   &Document{Blocks: make([]any, 0)},
		subs:  make(map[int]func(Event)),
	}
}

// Subscribe регистрирует обработчик событий сессии и возвращает дескриптор
// для отписки. Дескриптор привязан к времени жизни подписчика, а не к
// глобальному состоянию.
func (s *Session) Subscribe(fn func(Event)) *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextSub++
	s.subs[s.nextSub] = fn
	return &Subscription{id: s.nextSub}
}

// Unsubscribe снимает подписку. Повторный вызов безопасен.
func (s *Session) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	delete(s.subs, sub.id)
}

func (s *Session) emit(ev Event) {
	s.subsMu.RLock()
	handlers := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Load читает документ из хранилища. Ошибка чтения оставляет текущее
// состояние нетронутым.
func (s *Session) Load() error {
	markdown, err := s.store.LoadDocument()
	if err != nil {
		slog.Error("Load project document", "err", err)
		return err
	}

	doc, err := FromMarkdown(markdown)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.words = countWords(markdown)
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Markdown сериализует текущий документ в markdown.
func (s *Session) Markdown() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Markdown()
}

// Document возвращает копию блоков текущего документа.
func (s *Session) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]any, len(s.doc.Blocks))
	copy(blocks, s.doc.Blocks)
	return &Document{Blocks: blocks}
}

// WordCount возвращает число слов последнего состояния документа.
func (s *Session) WordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.words
}

// Dirty сообщает, есть ли несохранённые правки.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Edit применяет правку пользователя: заменяет документ разбором markdown,
// пересчитывает число слов и помечает сессию несохранённой.
func (s *Session) Edit(markdown string) error {
	doc, err := FromMarkdown(markdown)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.words = countWords(markdown)
	wasDirty := s.dirty
	s.dirty = true
	s.mu.Unlock()

	if !wasDirty {
		s.emit(DirtyEvent{Dirty: true})
	}
	return nil
}

// Save сериализует документ и записывает его в хранилище. Неудачная запись
// не сбрасывает признак несохранённых правок и не теряет содержимое.
func (s *Session) Save() error {
	s.mu.Lock()
	markdown, err := s.doc.Markdown()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	words := s.words
	s.mu.Unlock()

	if err := s.store.SaveDocument(markdown); err != nil {
		return err
	}

	s.mu.Lock()
	wasDirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	s.emit(SavedEvent{Markdown: markdown, WordCount: words})
	if wasDirty {
		s.emit(DirtyEvent{Dirty: false})
	}
	return nil
}

// Reconcile решает судьбу внешнего обновления. Текущий документ сериализуется
// в markdown, обе стороны нормализуются схлопыванием пробельных серий; при
// совпадении обновление отбрасывается без каких-либо событий и мутаций. При
// расхождении документ заменяется разбором входящего markdown - без пометки
// "правка пользователя", чтобы не зациклить уведомления о сохранении.
// Возвращает true, если документ был заменён.
func (s *Session) Reconcile(incoming string, source string) bool {
	s.mu.Lock()
	current, err := s.doc.Markdown()
	if err != nil {
		// Нет текущего состояния - считаем, что обновления нет
		s.mu.Unlock()
		slog.Error("Serialize current document for reconciliation", "err", err)
		return false
	}

	if NormalizeForCompare(incoming) == NormalizeForCompare(current) {
		s.mu.Unlock()
		return false
	}

	doc, err := FromMarkdown(incoming)
	if err != nil {
		s.mu.Unlock()
		slog.Error("Parse incoming document", "err", err, "source", source)
		return false
	}

	s.doc = doc
	s.words = countWords(incoming)
	s.dirty = false
	s.mu.Unlock()

	s.emit(UpdatedEvent{Markdown: incoming, Source: source})
	return true
}

// NormalizeForCompare приводит markdown к форме для сравнения: все серии
// пробельных символов схлопываются в одиночные пробелы, края обрезаются.
func NormalizeForCompare(markdown string) string {
	return strings.Join(strings.Fields(markdown), " ")
}

func countWords(markdown string) int {
	if MarkdownWordCounter == nil {
		return 0
	}
	return MarkdownWordCounter(markdown)
}
