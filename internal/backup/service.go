package backup

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	filePrefix         = "knowledge-backup-"
	filteredFilePrefix = "knowledge-backup-filtered-"
	fileSuffix         = ".json"
)

// Service writes backup documents to the backup directory and lists what
// is there. It is the file-system stand-in for the browser download the
// codec itself stays free of.
type Service struct {
	dir    string
	logger *slog.Logger
}

// NewService creates a backup file service rooted at dir.
func NewService(dir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, logger: logger}
}

// WriteFull writes a full-dataset backup as
// knowledge-backup-<epoch-ms>.json and returns the file path.
func (s *Service) WriteFull(doc *Document) (string, error) {
	return s.write(doc, fmt.Sprintf("%s%d%s", filePrefix, doc.ExportedAt, fileSuffix))
}

// WriteFiltered writes a filtered-subset backup as
// knowledge-backup-filtered-<epoch-ms>.json and returns the file path.
func (s *Service) WriteFiltered(doc *Document) (string, error) {
	return s.write(doc, fmt.Sprintf("%s%d%s", filteredFilePrefix, doc.ExportedAt, fileSuffix))
}

func (s *Service) write(doc *Document, name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.logger.Info("backup written",
		"path", path,
		"cards", len(doc.Cards),
		"labels", len(doc.Labels))

	return path, nil
}

// Read returns the raw contents of a named backup in the backup
// directory. The name must be bare, not a path.
func (s *Service) Read(name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid backup name %q", name)
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}

// Info describes one backup file on disk.
type Info struct {
	Name      string
	Path      string
	Size      int64
	Filtered  bool
	CreatedAt time.Time
}

// List returns all backups in the backup directory, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			Name:      name,
			Path:      filepath.Join(s.dir, name),
			Size:      info.Size(),
			Filtered:  strings.HasPrefix(name, filteredFilePrefix),
			CreatedAt: info.ModTime(),
		})
	}

	// Sort by creation time, newest first
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}
