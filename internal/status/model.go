package status

import "github.com/NikitaCOEUR/autocomplete/internal/cache"

// Data contains everything the stores overview displays
type Data struct {
	Version string

	// Configuration
	ConfigSource string
	ConfigHash   string
	IsDefaults   bool

	// Engine limits
	MaxVisibleOptions int
	CountThreshold    int

	Stores []StoreInfo

	// Cache is nil when caching is off
	Cache *cache.Info
}

// StoreInfo summarizes one configured store
type StoreInfo struct {
	Name               string
	Kind               string
	Targets            []string
	Sentinel           string
	CommaCompletes     bool
	AutoselectFirstRow bool
	Avoid              int
	Candidates         int

	Dictionary        string
	DictionarySize    int64
	DictionaryEntries int
	// DictionaryError is set when the dictionary could not be read
	DictionaryError string
}

// Total returns the number of candidates the store offers
func (s StoreInfo) Total() int {
	return s.Candidates + s.DictionaryEntries
}
