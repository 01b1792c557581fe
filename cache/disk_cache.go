package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/medialoom/media-services/constants"
	"github.com/op/go-logging"
)

// DiskCache holds local copies of remotely stored files, one file per
// code, named "<code>.<ext>". An entry only ever appears under its
// final name via rename, so a reader that sees the file sees all of
// its bytes. Entries are never modified in place.
//
// Eviction is LRU over entry count. maxEntries zero or below disables
// eviction entirely, which reproduces the unbounded-growth behavior
// of a plain cache directory.
type DiskCache struct {
	dir    string
	index  *lru.Cache[string, int64]
	logger *logging.Logger
}

func NewDiskCache(dir string, maxEntries int, logger *logging.Logger) (*DiskCache, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	dc := &DiskCache{
		dir:    dir,
		logger: logger,
	}
	if maxEntries > 0 {
		dc.index, err = lru.NewWithEvict[string, int64](maxEntries, dc.onEvict)
		if err != nil {
			return nil, err
		}
	}
	err = dc.scan()
	if err != nil {
		return nil, err
	}
	return dc, nil
}

// scan rebuilds the eviction index from whatever is already in the
// cache directory, oldest first, and clears out partial downloads
// left behind by a previous process.
func (dc *DiskCache) scan() error {
	entries, err := os.ReadDir(dc.dir)
	if err != nil {
		return err
	}
	type cacheFile struct {
		name    string
		size    int64
		modTime int64
	}
	files := make([]cacheFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), constants.CachePartialExt) {
			dc.logger.Warningf("Removing stale partial download %s", entry.Name())
			os.Remove(filepath.Join(dc.dir, entry.Name()))
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{entry.Name(), info.Size(), info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime < files[j].modTime })
	for _, f := range files {
		if dc.index != nil {
			dc.index.Add(f.name, f.size)
		}
	}
	return nil
}

// Path returns the canonical on-disk path for a cache entry name.
// Callers must have validated the name with util.ParseLink first.
func (dc *DiskCache) Path(name string) string {
	return filepath.Join(dc.dir, name)
}

// Contains reports whether the entry exists on disk. The disk is
// authoritative; the index just tracks recency for eviction, so a hit
// also refreshes the entry's position.
func (dc *DiskCache) Contains(name string) bool {
	stat, err := os.Stat(dc.Path(name))
	if err != nil || stat.IsDir() {
		return false
	}
	if dc.index != nil {
		if _, ok := dc.index.Get(name); !ok {
			dc.index.Add(name, stat.Size())
		}
	}
	return true
}

// Populate creates the entry by handing a sibling partial path to the
// fill function and renaming the result into place. The final name
// never holds a partially written file: fill writes to the partial
// path, and the rename is atomic on the same filesystem. If fill
// fails or produces nothing, no entry is created and the partial file
// is removed.
func (dc *DiskCache) Populate(name string, fill func(partialPath string) error) error {
	finalPath := dc.Path(name)
	partialPath := finalPath + constants.CachePartialExt
	defer os.Remove(partialPath)

	err := fill(partialPath)
	if err != nil {
		return err
	}
	stat, err := os.Stat(partialPath)
	if err != nil {
		return fmt.Errorf("fill for %s produced no file: %v", name, err)
	}
	if stat.Size() == 0 {
		return fmt.Errorf("fill for %s produced an empty file", name)
	}
	err = os.Rename(partialPath, finalPath)
	if err != nil {
		return err
	}
	if dc.index != nil {
		dc.index.Add(name, stat.Size())
	}
	return nil
}

// Len returns the number of entries the eviction index is tracking.
func (dc *DiskCache) Len() int {
	if dc.index == nil {
		return 0
	}
	return dc.index.Len()
}

func (dc *DiskCache) onEvict(name string, size int64) {
	err := os.Remove(dc.Path(name))
	if err != nil && !os.IsNotExist(err) {
		dc.logger.Errorf("Could not remove evicted cache entry %s: %v", name, err)
		return
	}
	dc.logger.Infof("Evicted cache entry %s (%d bytes)", name, size)
}
