package store

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AcquireLock takes an exclusive file lock on the data directory so two
// scraper processes never share one archive. Callers must Unlock on exit.
func AcquireLock(dataDir string) (*flock.Flock, error) {
	fl := flock.New(filepath.Join(dataDir, "scraper.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("%s is locked by another process", fl.Path())
	}
	return fl, nil
}
