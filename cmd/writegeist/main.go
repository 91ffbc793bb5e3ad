// Основной пакет приложения Writegeist. Отвечает за запуск приложения, инициализацию базы данных, миграцию моделей и запуск основного сервера приложения.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/writegeist/writegeist.go/internal/writegeist"
	"github.com/writegeist/writegeist.go/internal/writegeist/config"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	"github.com/writegeist/writegeist.go/internal/writegeist/gormlogger"
)

var version string = "DEV"

func main() {
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	cfg := config.ReadConfig()
	dao.Config = cfg

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	slog.Info("Writegeist start.")

	db, err := dao.OpenDB(cfg.DatabaseDSN, gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries))
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Fail set settings to conn pool", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 15)

	if !*noMigration {
		if err := dao.Migrate(db); err != nil {
			slog.Error("Fail DB migrations", "err", err)
			os.Exit(1)
		}
	}

	writegeist.Server(db, cfg, version)
}

// PrintBanner выводит заголовок приложения с версией.
func PrintBanner() {
	banner := `
__          __   _ _                  _     _
\ \        / /  (_) |                (_)   | |
 \ \  /\  / / __ _| |_ ___  __ _  ___ _ ___| |_
  \ \/  \/ / '__| | __/ _ \/ _  |/ _ \ / __| __|
   \  /\  /| |  | | ||  __/ (_| |  __/ \__ \ |_
    \/  \/ |_|  |_|\__\___|\__, |\___|_|___/\__|
                            __/ |
                           |___/ %s
Note organizer for long-form writers
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
