// Package config handles loading and parsing of autocomplete configuration files.
package config

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
)

const (
	// GlobalConfigName is the name of the user config file
	GlobalConfigName = "config.yml"
	// EnvConfigPath overrides the config file location
	EnvConfigPath = "AUTOCOMPLETE_CONFIG"
	// DefaultsSource names the embedded defaults in Config.Source
	DefaultsSource = "<defaults>"
)

// Store kinds
const (
	KindComma   = "comma"
	KindSpace   = "space"
	KindReplace = "replace"
	KindPrefix  = "prefix"
	KindFuzzy   = "fuzzy"
)

// Kinds lists every supported store kind
var Kinds = []string{KindComma, KindSpace, KindReplace, KindPrefix, KindFuzzy}

// Engine defaults
const (
	DefaultMaxVisibleOptions = 100
	DefaultCountThreshold    = 2500
)

//go:embed defaults.yml
var defaultsYAML []byte

// DefaultsYAML returns the embedded default configuration
func DefaultsYAML() []byte {
	return defaultsYAML
}

// EngineConfig holds engine-wide limits
type EngineConfig struct {
	MaxVisibleOptions int `koanf:"max_visible_options"`
	CountThreshold    int `koanf:"count_threshold"`
}

// CandidateConfig is one inline candidate of a store
type CandidateConfig struct {
	Value string `koanf:"value"`
	Doc   string `koanf:"doc"`
}

// StoreConfig declares one completion store
type StoreConfig struct {
	Name               string            `koanf:"name"`
	Kind               string            `koanf:"kind"`
	Targets            []string          `koanf:"targets"`
	Sentinel           string            `koanf:"sentinel"`
	CommaCompletes     *bool             `koanf:"comma_completes"`
	AutoselectFirstRow *bool             `koanf:"autoselect_first_row"`
	Avoid              []string          `koanf:"avoid"`
	Dictionary         string            `koanf:"dictionary"`
	Candidates         []CandidateConfig `koanf:"candidates"`
	// When gates the store; it only binds while the condition holds
	When *When `koanf:"when"`
}

// When is a store activation condition. Atomic fields set together must all
// hold; All and Any nest further conditions and cannot be mixed with them.
type When struct {
	// File must exist, relative paths resolve against the config directory
	File string `koanf:"file"`
	// Var names an environment variable that must be set and non-empty
	Var string `koanf:"var"`
	// Text is a regular expression the focused buffer must match
	Text string `koanf:"text"`
	All  []When `koanf:"all"`
	Any  []When `koanf:"any"`
}

// CommaCompletesOr returns the comma_completes flag, or def when unset
func (s StoreConfig) CommaCompletesOr(def bool) bool {
	if s.CommaCompletes == nil {
		return def
	}
	return *s.CommaCompletes
}

// AutoselectFirstRowOr returns the autoselect_first_row flag, or def when unset
func (s StoreConfig) AutoselectFirstRowOr(def bool) bool {
	if s.AutoselectFirstRow == nil {
		return def
	}
	return *s.AutoselectFirstRow
}

// Config represents an autocomplete configuration
type Config struct {
	Engine EngineConfig  `koanf:"engine"`
	Stores []StoreConfig `koanf:"stores"`

	// Source is the file the config was read from, or DefaultsSource
	Source string `koanf:"-"`
	// ConfigDir is the directory of Source, empty for the embedded defaults
	ConfigDir string `koanf:"-"`
}

// Store returns the store declaration with the given name
func (c *Config) Store(name string) (StoreConfig, bool) {
	for _, s := range c.Stores {
		if s.Name == name {
			return s, true
		}
	}
	return StoreConfig{}, false
}

// StoreNames returns the declared store names in order
func (c *Config) StoreNames() []string {
	names := make([]string, 0, len(c.Stores))
	for _, s := range c.Stores {
		names = append(names, s.Name)
	}
	return names
}

// cachedConfig stores a parsed config with its modification time and hash
type cachedConfig struct {
	config  *Config
	modTime time.Time
	size    int64
	hash    string
}

// Loader handles loading and parsing configuration files
type Loader struct {
	// Cache for parsed configs with modtime validation
	parsedCache map[string]*cachedConfig
	log         *logger.Logger
}

// New creates a new config loader
func New(log *logger.Logger) *Loader {
	return &Loader{
		parsedCache: make(map[string]*cachedConfig),
		log:         logger.OrDiscard(log),
	}
}

// parserFor picks a koanf parser from the file extension
func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// Load reads and parses a configuration file
func (l *Loader) Load(path string) (*Config, error) {
	// Check if we have a cached version
	if cached, exists := l.parsedCache[path]; exists && cached.config != nil {
		// Verify file hasn't been modified (check both modtime and size)
		fileInfo, err := os.Stat(path)
		if err == nil && !fileInfo.ModTime().After(cached.modTime) && fileInfo.Size() == cached.size {
			l.log.Debug().Str("path", path).Msg("Config cache hit")
			return cached.config, nil
		}
		// File was modified, invalidate cache
		delete(l.parsedCache, path)
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "cannot load config", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.NewNotFoundError(path, "config file not found")
		}
		return nil, derrors.NewConfigurationError(path, "failed to read config", err)
	}

	cfg, err := parse(data, parser)
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to parse config", err)
	}

	cfg.Source = path
	cfg.ConfigDir = filepath.Dir(path)
	cfg.finalize()

	// Cache the parsed config with its modtime, size and hash
	if fileInfo, err := os.Stat(path); err == nil {
		hash := sha256.Sum256(data)
		l.parsedCache[path] = &cachedConfig{
			config:  cfg,
			modTime: fileInfo.ModTime(),
			size:    fileInfo.Size(),
			hash:    hex.EncodeToString(hash[:]),
		}
	}

	l.log.Debug().
		Str("path", path).
		Int("stores", len(cfg.Stores)).
		Msg("Config loaded")
	return cfg, nil
}

// LoadDefaults parses the embedded default configuration
func (l *Loader) LoadDefaults() (*Config, error) {
	cfg, err := parse(defaultsYAML, yaml.Parser())
	if err != nil {
		return nil, derrors.NewConfigurationError(DefaultsSource, "failed to parse embedded defaults", err)
	}
	cfg.Source = DefaultsSource
	cfg.finalize()
	return cfg, nil
}

// Resolve loads the config from explicit, else AUTOCOMPLETE_CONFIG, else the
// user config file, else the embedded defaults.
func (l *Loader) Resolve(explicit string) (*Config, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfigPath)
	}
	if explicit != "" {
		return l.Load(explicit)
	}

	globalPath, err := GetGlobalConfigPath()
	if err == nil {
		if _, statErr := os.Stat(globalPath); statErr == nil {
			return l.Load(globalPath)
		}
	}

	l.log.Debug().Msg("No config file found, using embedded defaults")
	return l.LoadDefaults()
}

// Hash computes SHA-256 hash of a config file
func (l *Loader) Hash(path string) (string, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if cached, exists := l.parsedCache[path]; exists {
		if !fileInfo.ModTime().After(cached.modTime) && fileInfo.Size() == cached.size && cached.hash != "" {
			return cached.hash, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	hashStr := hex.EncodeToString(hash[:])

	if cached, exists := l.parsedCache[path]; exists {
		cached.hash = hashStr
	} else {
		l.parsedCache[path] = &cachedConfig{
			hash:    hashStr,
			modTime: fileInfo.ModTime(),
			size:    fileInfo.Size(),
		}
	}

	return hashStr, nil
}

func parse(data []byte, parser koanf.Parser) (*Config, error) {
	// Create a new koanf instance for isolated loading
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// finalize applies engine defaults, expands candidate templates and makes
// dictionary paths absolute relative to the config directory.
func (c *Config) finalize() {
	if c.Engine.MaxVisibleOptions <= 0 {
		c.Engine.MaxVisibleOptions = DefaultMaxVisibleOptions
	}
	if c.Engine.CountThreshold <= 0 {
		c.Engine.CountThreshold = DefaultCountThreshold
	}

	for i := range c.Stores {
		s := &c.Stores[i]
		if s.Kind == "" {
			s.Kind = KindComma
		}
		if s.Dictionary != "" && c.ConfigDir != "" && !filepath.IsAbs(s.Dictionary) {
			s.Dictionary = filepath.Join(c.ConfigDir, s.Dictionary)
		}
		for j := range s.Candidates {
			s.Candidates[j].Value = c.expandTemplate(s.Candidates[j].Value, s.Name)
			s.Candidates[j].Doc = c.expandTemplate(s.Candidates[j].Doc, s.Name)
		}
	}
}

// expandTemplate renders a candidate string as a Go template with sprig
// functions. Strings that fail to parse or execute are returned unchanged.
func (c *Config) expandTemplate(s, store string) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	tmpl, err := template.New("candidate").Funcs(sprig.TxtFuncMap()).Parse(s)
	if err != nil {
		return s
	}

	data := map[string]string{
		"CONFIG_DIR": c.ConfigDir,
		"STORE":      store,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return s
	}
	return buf.String()
}

// GetGlobalConfigPath returns the path to the user config file
func GetGlobalConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		// Fallback to ~/.config
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, "autocomplete", GlobalConfigName), nil
}
