// Чтение переменных окружения с приведением к типам полей конфигурации.
package config

import (
	"os"
	"strconv"
)

// envSet сообщает, задана ли переменная окружения, пустое значение тоже считается заданным.
func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func envString(key string) string {
	return os.Getenv(key)
}

// envInt разбирает числовую переменную окружения, нечисловое значение дает 0.
func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

// envBool разбирает логическую переменную окружения, мусорное значение дает false.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
