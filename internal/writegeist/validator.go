// Пакет для валидации данных запросов Writegeist. Содержит валидаторы для полей запросов, таких как заголовок главы, имя раздела и формат экспорта. Использует библиотеку go-playground/validator для выполнения проверок.
//
// Основные возможности:
//   - Валидация полей запросов с использованием предопределенных валидаторов.
//   - Настройка валидаторов для конкретных полей.
//   - Использование регулярных выражений для проверки формата данных.
package writegeist

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("chapterTitle", chapterTitleValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("sectionName", sectionNameValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("exportFormat", exportFormatValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func chapterTitleValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	return lenStr >= 1 && lenStr <= 200
}

func sectionNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidSectionName(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

func exportFormatValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "markdown", "pdf", "html":
		return true
	}
	return false
}

func isValidSectionName(str string) bool {
	pt := `^[A-Za-zА-Яа-яёЁ0-9 \-_']+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}
