package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"smartspend/internal/report"
)

// FilePublisher writes each published report into a directory, one file
// per range, replacing the previous file for the same range.
type FilePublisher struct {
	dir      string
	exporter Exporter
}

var _ Publisher = (*FilePublisher)(nil)

func NewFilePublisher(dir string, e Exporter) *FilePublisher {
	return &FilePublisher{dir: dir, exporter: e}
}

func (p *FilePublisher) Name() string {
	return "file:" + p.exporter.Extension()
}

// Publish renders into a temporary file and renames it into place, so
// readers never see a partial report.
func (p *FilePublisher) Publish(ctx context.Context, a report.Analytics) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(p.dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.exporter.Write(ctx, tmp, a); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	dst := filepath.Join(p.dir, FileName(a, p.exporter))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}
