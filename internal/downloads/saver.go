package downloads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
)

// FileSaver hands completed payloads to the local filesystem. It stands in
// for the platform's save/share mechanism.
type FileSaver struct {
	dir    string
	logger *logrus.Logger
}

// NewFileSaver creates a saver writing into dir, creating it if needed
func NewFileSaver(dir string, logger *logrus.Logger) (*FileSaver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return &FileSaver{dir: dir, logger: logger}, nil
}

// Save writes the assembled payload under a name derived from the record.
// The write goes through a temp file and rename so a crash never leaves a
// truncated file behind.
func (s *FileSaver) Save(record *models.DownloadRecord, payload []byte) error {
	name := record.Title
	if name == "" {
		name = record.ID
	}
	name = sanitizeFilename(name)

	path := filepath.Join(s.dir, name)
	tmp := path + ".part"

	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize payload: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":   record.ID,
		"path": path,
	}).Info("Saved download payload")

	return nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return replacer.Replace(name)
}
