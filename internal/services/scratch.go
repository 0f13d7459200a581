package services

import (
	"log/slog"
	"os"
	"path/filepath"
)

// scratch is a per-link temporary directory. Every processing attempt spools
// its download into one and must release it on every exit path; Close is safe
// to defer immediately after creation and to call more than once.
type scratch struct {
	dir string
}

func newScratch() (*scratch, error) {
	dir, err := os.MkdirTemp("", "boletin-*")
	if err != nil {
		return nil, err
	}
	return &scratch{dir: dir}, nil
}

// path returns the absolute path for a file inside the scratch directory.
func (s *scratch) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *scratch) Close() {
	if s.dir == "" {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("Failed to remove scratch directory.", "path", s.dir, "error", err)
		return
	}
	s.dir = ""
}
