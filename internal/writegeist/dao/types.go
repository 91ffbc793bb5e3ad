package dao

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice хранит список строк одной текстовой колонкой в формате JSON. Работает одинаково в PostgreSQL и SQLite.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("unsupported string slice column type %T", value)
	}
}

func (StringSlice) GormDataType() string {
	return "text"
}

// Contains проверяет наличие значения в списке.
func (s StringSlice) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}
	return false
}
