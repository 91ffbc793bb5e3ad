// Резервное копирование базы данных в файловое хранилище.
//
// Основные возможности:
//   - Ночной снимок файла SQLite с записью в хранилище.
//   - Ограничение числа хранимых снимков с удалением самых старых.
//   - Выдача последнего снимка для скачивания.
//   - Чистка хранилища от объектов, потерявших записи в базе.
package backup

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/writegeist/writegeist.go/internal/writegeist/apierrors"
	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
	filestorage "github.com/writegeist/writegeist.go/internal/writegeist/file-storage"
)

type Service struct {
	db      *gorm.DB
	storage filestorage.FileStorage
	dsn     string
	keep    int
}

func NewService(db *gorm.DB, storage filestorage.FileStorage, dsn string, keep int) *Service {
	return &Service{db: db, storage: storage, dsn: dsn, keep: keep}
}

// Run делает снимок базы и подрезает историю. Для PostgreSQL снимок файла
// невозможен, задача молча пропускается.
func (s *Service) Run() {
	if strings.HasPrefix(s.dsn, "postgres://") || strings.HasPrefix(s.dsn, "postgresql://") {
		slog.Debug("Skip file backup for postgres database")
		return
	}

	f, err := os.Open(s.dsn)
	if err != nil {
		slog.Error("Open database file for backup", "err", err)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		slog.Error("Stat database file", "err", err)
		return
	}

	assetId := dao.GenUUID()
	if err := s.storage.SaveReader(f, stat.Size(), assetId, "application/octet-stream", &filestorage.Metadata{Kind: "backup"}); err != nil {
		slog.Error("Save database backup", "err", err)
		return
	}

	if err := s.db.Create(&dao.Backup{Id: assetId.String(), SizeBytes: stat.Size()}).Error; err != nil {
		slog.Error("Record database backup", "err", err)
		return
	}

	slog.Info("Database backup saved", "id", assetId, "size", stat.Size())
	s.prune()
}

func (s *Service) prune() {
	var stale []dao.Backup
	if err := s.db.Order("created_at DESC").Offset(s.keep).Find(&stale).Error; err != nil {
		slog.Error("List stale backups", "err", err)
		return
	}

	for _, backup := range stale {
		id, err := uuid.FromString(backup.Id)
		if err == nil {
			if err := s.storage.Delete(id); err != nil {
				slog.Error("Delete backup asset", "id", backup.Id, "err", err)
				continue
			}
		}
		if err := s.db.Delete(&backup).Error; err != nil {
			slog.Error("Delete backup record", "id", backup.Id, "err", err)
		}
	}
}

// Latest возвращает последний снимок и поток его содержимого.
func (s *Service) Latest() (*dao.Backup, io.ReadCloser, error) {
	var backup dao.Backup
	if err := s.db.Order("created_at DESC").First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierrors.ErrBackupNotFound
		}
		return nil, nil, err
	}

	id, err := uuid.FromString(backup.Id)
	if err != nil {
		return nil, nil, err
	}

	// Объект мог быть удален из хранилища мимо записи в базе
	exists, err := s.storage.Exist(id)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, apierrors.ErrBackupNotFound
	}

	reader, err := s.storage.LoadReader(id)
	if err != nil {
		return nil, nil, err
	}
	return &backup, reader, nil
}

// Объекты младше суток не считаются сиротами: генерация аудио пишет файл
// раньше, чем запись о нем попадает в базу.
const orphanMinAge = time.Hour * 24

// Sweep удаляет из хранилища объекты, на которые не ссылается ни запись о
// резервной копии, ни запись об аудио главы.
func (s *Service) Sweep() {
	referenced := make(map[string]bool)

	var backups []dao.Backup
	if err := s.db.Find(&backups).Error; err != nil {
		slog.Error("List backup records", "err", err)
		return
	}
	for _, b := range backups {
		referenced[b.Id] = true
	}

	var audios []dao.ChapterAudio
	if err := s.db.Find(&audios).Error; err != nil {
		slog.Error("List chapter audio records", "err", err)
		return
	}
	for _, a := range audios {
		if a.AssetId != "" {
			referenced[a.AssetId] = true
		}
	}

	cutoff := time.Now().Add(-orphanMinAge)
	err := s.storage.ListRoot(func(info filestorage.FileInfo) error {
		if referenced[info.Name] || info.CreatedAt.After(cutoff) {
			return nil
		}
		id, err := uuid.FromString(info.Name)
		if err != nil {
			return nil
		}
		if err := s.storage.Delete(id); err != nil {
			slog.Error("Delete orphan storage object", "name", info.Name, "err", err)
			return nil
		}
		slog.Info("Orphan storage object removed", "name", info.Name, "size", info.Size)
		return nil
	})
	if err != nil {
		slog.Error("List storage objects", "err", err)
	}
}
