package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Info contains information about a cache directory
type Info struct {
	Dir          string
	Size         int64
	TotalEntries int
}

// GetCacheInfo returns information about the cache directory. A missing
// directory yields empty info.
func GetCacheInfo(dir string) (*Info, error) {
	result := &Info{Dir: dir}

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	for _, f := range files {
		if info, err := f.Info(); err == nil && !info.IsDir() {
			result.Size += info.Size()
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, IndexName))
	if err != nil {
		return result, nil // Return partial info
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return result, nil // Return partial info
	}

	result.TotalEntries = len(entries)

	return result, nil
}
