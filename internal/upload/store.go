package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FinBoard/finboard-gateway/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrTooLarge rejects files over the configured size cap.
	ErrTooLarge = errors.New("upload: file too large")

	// ErrBadName rejects empty or path-traversing file names.
	ErrBadName = errors.New("upload: bad file name")
)

// Meta describes one stored file.
type Meta struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"saved_at"`
}

// Store keeps uploaded files in a single flat directory.
type Store struct {
	log      *zap.Logger
	dir      string
	maxBytes int64
}

func NewStore(cfg *config.Config, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o750); err != nil {
		return nil, err
	}
	return &Store{log: log, dir: cfg.Uploads.Dir, maxBytes: cfg.Uploads.MaxBytes}, nil
}

// Save writes r to disk under a sanitized name, enforcing the size cap.
// The write goes to a temp file first so a failed upload never leaves a
// partial file behind.
func (s *Store) Save(name string, r io.Reader) (Meta, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return Meta{}, fmt.Errorf("%w: %q", ErrBadName, name)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Meta{}, err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Meta{}, err
	}
	if n > s.maxBytes {
		return Meta{}, fmt.Errorf("%w: over %d bytes", ErrTooLarge, s.maxBytes)
	}
	if err := tmp.Close(); err != nil {
		return Meta{}, err
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Meta{}, err
	}
	s.log.Info("file stored", zap.String("name", name), zap.Int64("size", n))
	return Meta{Name: name, Size: n, SavedAt: time.Now().UTC()}, nil
}

// List returns metadata for all stored files, newest first.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		metas = append(metas, Meta{Name: e.Name(), Size: info.Size(), SavedAt: info.ModTime().UTC()})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].SavedAt.After(metas[j].SavedAt) })
	return metas, nil
}
