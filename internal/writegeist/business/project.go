package business

import (
	"strings"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor/blockmd"
)

// ProjectDoc возвращает markdown проектного документа и число слов в нем.
func (b *Business) ProjectDoc() (string, int, error) {
	markdown, err := b.session.Markdown()
	if err != nil {
		return "", 0, err
	}
	return markdown, b.session.WordCount(), nil
}

// UpdateProjectDoc применяет правку пользователя и сразу сохраняет документ.
func (b *Business) UpdateProjectDoc(markdown string) error {
	if strings.TrimSpace(markdown) == "" {
		return apierrors.ErrEmptyDocument
	}
	if err := b.session.Edit(blockmd.Normalize(markdown)); err != nil {
		return err
	}
	return b.session.Save()
}

// Section возвращает содержимое раздела `## name` проектного документа.
func (b *Business) Section(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", apierrors.ErrSectionNameRequired
	}

	markdown, err := b.session.Markdown()
	if err != nil {
		return "", err
	}

	content, found := blockmd.ExtractSection(markdown, name)
	if !found {
		return "", apierrors.ErrSectionNotFound.WithFormattedMessage(name)
	}
	return content, nil
}

// ApplySectionProposal дописывает предложенный блок в раздел, подавляя
// дубликаты. HTML-артефакты входа вычищаются до сравнения. Возвращает true,
// если документ был изменен и сохранен.
func (b *Business) ApplySectionProposal(section string, patch string) (bool, error) {
	if strings.TrimSpace(section) == "" {
		return false, apierrors.ErrSectionNameRequired
	}

	patch = blockmd.Normalize(blockmd.CleanHTMLArtifacts(patch))
	if strings.TrimSpace(patch) == "" {
		return false, apierrors.ErrEmptyProposal
	}

	markdown, err := b.session.Markdown()
	if err != nil {
		return false, err
	}

	updated, changed := blockmd.ApplyProposal(markdown, section, strings.TrimRight(patch, "\n"))
	if !changed {
		return false, nil
	}

	if err := b.session.Edit(updated); err != nil {
		return false, err
	}
	if err := b.session.Save(); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceProjectDoc принимает снимок документа с зеркала. Совпадающий после
// нормализации снимок отбрасывается, расхождение перезаписывает документ и
// сохраняется. Возвращает true, если документ был заменен.
func (b *Business) ReplaceProjectDoc(markdown string, source string) (bool, error) {
	if strings.TrimSpace(markdown) == "" {
		return false, apierrors.ErrEmptyDocument
	}

	if !b.session.Reconcile(blockmd.Normalize(markdown), source) {
		return false, nil
	}
	return true, b.session.Save()
}
