package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	artifactLockName   = ".artifacts.lock"
	artifactLockRetry  = 50 * time.Millisecond
	artifactFileSuffix = ".txt"
)

// ArtifactStore writes article bodies to <dir>/<id>.txt.
type ArtifactStore struct {
	dir  string
	lock *flock.Flock
}

// NewArtifactStore returns a store rooted at dir. The directory is created on first Save.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, artifactLockName)),
	}
}

// Path returns where the body of id is stored.
func (s *ArtifactStore) Path(id string) string {
	return filepath.Join(s.dir, id+artifactFileSuffix)
}

// Save writes body as UTF-8 text and returns the file path. An existing file
// for id is left untouched, so the first body written for an id wins.
func (s *ArtifactStore) Save(ctx context.Context, id, body string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid artifact id %q", id)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, artifactLockRetry)
	if err != nil {
		return "", fmt.Errorf("acquire artifact lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("acquire artifact lock: not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	path := s.Path(id)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return path, nil
}
