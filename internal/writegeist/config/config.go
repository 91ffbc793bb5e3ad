// Управление конфигурацией приложения из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Валидация обязательных переменных.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (токенов) в логах.
//   - Автогенерация API токена при первом запуске.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/sethvargo/go-password/password"
)

type Config struct {
	// DSN базы: postgres://... либо путь к файлу SQLite
	DatabaseDSN string `env:"DATABASE_URL"`

	// Токен доступа к API. Если не задан, генерируется на старте
	APIToken string `env:"API_TOKEN"`
	// Секрет для подписи коротких токенов скачивания БД
	SecretKey string `env:"SECRET_KEY"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	// Адрес зеркала для push/pull синхронизации. Пустое значение выключает синхронизацию
	RemoteURLRaw string `env:"REMOTE_URL"`
	RemoteURL    *url.URL

	// Период pull-опроса зеркала в минутах
	SyncPullPeriod int `env:"SYNC_PULL_PERIOD"`
	// Период сброса автосохранения в минутах
	AutosavePeriod int `env:"AUTOSAVE_PERIOD"`
	// Сколько последних ночных бэкапов хранить
	BackupKeep int `env:"BACKUP_KEEP"`

	// Каталог локального файлового хранилища (аудио, бэкапы)
	StorageDir string `env:"STORAGE_DIR"`

	// Параметры MinIO; при пустом endpoint используется локальное хранилище
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
	MinioSSL       bool   `env:"MINIO_SSL"`

	// Извлечение персонажей/локаций через Ollama; пустой URL включает эвристики
	OllamaURLRaw string `env:"OLLAMA_URL"`
	OllamaURL    *url.URL
	OllamaModel  string `env:"OLLAMA_MODEL"`

	// OpenAI-совместимый endpoint синтеза речи
	TTSEndpoint string `env:"TTS_ENDPOINT"`
	TTSAPIKey   string `env:"TTS_API_KEY"`
	TTSModel    string `env:"TTS_MODEL"`
	TTSVoice    string `env:"TTS_VOICE"`

	WebhookAddr string `env:"WEBHOOK_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

// ReadConfig загружает конфигурацию приложения из переменных окружения и выполняет валидацию. Обязательные переменные валидируются, типы данных преобразуются из строк, секретные значения маскируются в логах. Если DATABASE_URL не задан, приложение завершает работу с ошибкой. Отсутствующий API токен генерируется и выводится один раз на старте.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	// Check required envs
	if config.DatabaseDSN == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if config.WebURLRaw != "" {
		var err error
		config.WebURL, err = url.Parse(config.WebURLRaw)
		if err != nil {
			slog.Error("WEB_URL incorrect", "err", err)
			os.Exit(1)
		}
	}

	if config.RemoteURLRaw != "" {
		var err error
		config.RemoteURL, err = url.Parse(config.RemoteURLRaw)
		if err != nil {
			slog.Error("REMOTE_URL incorrect", "err", err)
			os.Exit(1)
		}
	}

	if config.OllamaURLRaw != "" {
		var err error
		config.OllamaURL, err = url.Parse(config.OllamaURLRaw)
		if err != nil {
			slog.Error("OLLAMA_URL incorrect", "err", err)
			os.Exit(1)
		}
	}

	if config.APIToken == "" {
		token, err := password.Generate(32, 10, 0, false, true)
		if err != nil {
			slog.Error("Generate API token", "err", err)
			os.Exit(1)
		}
		config.APIToken = token
		slog.Info("API_TOKEN not set, generated new one", "token", token)
	}

	if config.SecretKey == "" {
		secret, err := password.Generate(48, 12, 0, false, true)
		if err != nil {
			slog.Error("Generate secret key", "err", err)
			os.Exit(1)
		}
		config.SecretKey = secret
	}

	if config.SyncPullPeriod <= 0 || config.SyncPullPeriod > 59 {
		config.SyncPullPeriod = 1
	}

	if config.AutosavePeriod <= 0 || config.AutosavePeriod > 59 {
		config.AutosavePeriod = 2
	}

	if config.BackupKeep <= 0 {
		config.BackupKeep = 7
	}

	if config.StorageDir == "" {
		config.StorageDir = "writegeist-storage"
	}

	if config.OllamaModel == "" {
		config.OllamaModel = "llama3.1"
	}

	if config.TTSModel == "" {
		config.TTSModel = "tts-1"
	}
	if config.TTSVoice == "" {
		config.TTSVoice = "alloy"
	}

	if config.WebhookAddr == "" {
		config.WebhookAddr = ":3001"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":2112"
	}

	return config
}

// SyncEnabled сообщает, настроена ли удаленная синхронизация.
func (c *Config) SyncEnabled() bool {
	return c.RemoteURL != nil
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !envSet(fEnvTag) {
			continue
		}

		logValue := envString(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if strings.Contains(strings.ToLower(fName), "pass") || strings.Contains(strings.ToLower(fName), "secret") || strings.Contains(strings.ToLower(fName), "token") || strings.Contains(strings.ToLower(fName), "key") {
			pass := strings.Split(envString(fEnvTag), "")
			logValue = pass[0]
			for i := 1; i < len(pass)-1; i++ {
				logValue += "*"
			}
			logValue += pass[len(pass)-1]
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(envString(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(envInt(fEnvTag)))
		case bool:
			v.Field(i).SetBool(envBool(fEnvTag))
		}
	}
}
