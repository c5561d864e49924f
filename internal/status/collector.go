// Package status collects and displays an overview of the configured stores.
package status

import (
	"os"

	"github.com/NikitaCOEUR/autocomplete/internal/cache"
	"github.com/NikitaCOEUR/autocomplete/internal/config"
	"github.com/NikitaCOEUR/autocomplete/internal/dictionary"
	"github.com/NikitaCOEUR/autocomplete/pkg/version"
)

// Collect gathers the overview for cfg. Dictionary problems are reported per
// store instead of failing the whole collection. An empty cacheDir leaves
// the cache section out.
func Collect(cfg *config.Config, loader *config.Loader, cacheDir string) *Data {
	data := &Data{
		Version:           version.Version,
		ConfigSource:      cfg.Source,
		IsDefaults:        cfg.Source == config.DefaultsSource,
		MaxVisibleOptions: cfg.Engine.MaxVisibleOptions,
		CountThreshold:    cfg.Engine.CountThreshold,
		Stores:            make([]StoreInfo, 0, len(cfg.Stores)),
	}

	if !data.IsDefaults && loader != nil {
		if hash, err := loader.Hash(cfg.Source); err == nil {
			data.ConfigHash = hash
		}
	}

	for _, s := range cfg.Stores {
		data.Stores = append(data.Stores, collectStore(s))
	}

	if cacheDir != "" {
		if info, err := cache.GetCacheInfo(cacheDir); err == nil {
			data.Cache = info
		}
	}

	return data
}

func collectStore(s config.StoreConfig) StoreInfo {
	info := StoreInfo{
		Name:               s.Name,
		Kind:               s.Kind,
		Targets:            s.Targets,
		Sentinel:           s.Sentinel,
		CommaCompletes:     s.CommaCompletesOr(s.Kind == config.KindComma),
		AutoselectFirstRow: s.AutoselectFirstRowOr(true),
		Avoid:              len(s.Avoid),
		Candidates:         len(s.Candidates),
		Dictionary:         s.Dictionary,
	}

	if s.Dictionary == "" {
		return info
	}

	if fi, err := os.Stat(s.Dictionary); err == nil {
		info.DictionarySize = fi.Size()
	}
	entries, err := dictionary.Load(s.Dictionary)
	if err != nil {
		info.DictionaryError = err.Error()
		return info
	}
	info.DictionaryEntries = len(entries)
	return info
}
