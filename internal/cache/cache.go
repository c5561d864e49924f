// Package cache keeps decoded dictionaries on disk as zstd compressed
// msgpack so large YAML, JSON and text dictionaries are parsed once per
// change. Sources are keyed by their BLAKE3 digest.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/dictionary"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
	"github.com/NikitaCOEUR/autocomplete/pkg/version"
)

// IndexName is the index file inside the cache directory
const IndexName = "index.json"

// PackedExt is the extension of packed dictionaries
const PackedExt = ".msgpack.zst"

// zstd encoders and decoders are safe for concurrent use
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

// HashSource returns the hex BLAKE3 digest used to key dictionary sources
func HashSource(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry represents one cached dictionary
type Entry struct {
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	Packed    string    `json:"packed"`
	Entries   int       `json:"entries"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Cache manages the index and the packed dictionaries next to it
type Cache struct {
	dir     string
	mu      sync.RWMutex
	entries map[string]*Entry
	log     *logger.Logger
}

// New creates a cache rooted at dir
func New(dir string, log *logger.Logger) (*Cache, error) {
	c := &Cache{
		dir:     dir,
		entries: make(map[string]*Entry),
		log:     logger.OrDiscard(log),
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	if err := c.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return c, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Get retrieves an entry from cache
func (c *Cache) Get(path string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[path]
	return entry, found
}

// Set stores an entry in cache and persists the index
func (c *Cache) Set(entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Path] = entry
	return c.persist()
}

// Delete removes an entry and its packed file
func (c *Cache) Delete(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[path]; ok {
		_ = os.Remove(filepath.Join(c.dir, entry.Packed))
	}
	delete(c.entries, path)
	return c.persist()
}

// Clear removes all entries and packed files
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		_ = os.Remove(filepath.Join(c.dir, entry.Packed))
	}
	c.entries = make(map[string]*Entry)
	return c.persist()
}

// IsValid checks if cached entry is valid for given hash and version
func (c *Cache) IsValid(path, hash, version string) bool {
	entry, found := c.Get(path)
	if !found {
		return false
	}

	return entry.Hash == hash && entry.Version == version
}

// LoadDictionary returns the candidates of a dictionary file, decoding the
// source only when it changed since it was cached. Msgpack dictionaries are
// already packed and bypass the cache, as do unsupported formats.
func (c *Cache) LoadDictionary(path string) ([]completion.Candidate, error) {
	format := dictionary.DetectFormat(path)
	if format == dictionary.FormatMsgpack || format == dictionary.FormatUnknown {
		return dictionary.Load(path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		// Let the dictionary package classify the failure
		return dictionary.Load(path)
	}
	hash := HashSource(data)

	if c.IsValid(abs, hash, version.Version) {
		entry, _ := c.Get(abs)
		candidates, err := c.readPacked(entry.Packed)
		if err == nil {
			c.log.Debug().Str("dictionary", abs).Int("entries", len(candidates)).Msg("Dictionary cache hit")
			return candidates, nil
		}
		c.log.Warn().Str("dictionary", abs).Err(err).Msg("Cached dictionary unreadable, decoding source")
	}

	candidates, err := dictionary.Decode(data, format)
	if err != nil {
		return nil, derrors.NewDictionaryError(path, "failed to decode dictionary", err)
	}

	previous, _ := c.Get(abs)
	packed := hash[:16] + PackedExt
	if err := c.writePacked(packed, candidates); err != nil {
		c.log.Warn().Str("dictionary", abs).Err(err).Msg("Failed to cache dictionary")
		return candidates, nil
	}

	entry := &Entry{
		Path:      abs,
		Hash:      hash,
		Packed:    packed,
		Entries:   len(candidates),
		Timestamp: time.Now(),
		Version:   version.Version,
	}
	if err := c.Set(entry); err != nil {
		c.log.Warn().Str("dictionary", abs).Err(err).Msg("Failed to persist cache index")
	}
	if previous != nil && previous.Packed != packed {
		c.releasePacked(previous.Packed)
	}

	c.log.Debug().Str("dictionary", abs).Int("entries", len(candidates)).Msg("Dictionary cached")
	return candidates, nil
}

// releasePacked removes a packed file once no entry refers to it. Sources
// with identical content share one.
func (c *Cache) releasePacked(name string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, entry := range c.entries {
		if entry.Packed == name {
			return
		}
	}
	if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
		c.log.Warn().Str("packed", name).Err(err).Msg("Failed to remove stale packed dictionary")
	}
}

func (c *Cache) writePacked(name string, candidates []completion.Candidate) error {
	data, err := dictionary.Encode(candidates)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, name), zstdEncoder.EncodeAll(data, nil), 0600)
}

func (c *Cache) readPacked(name string) ([]completion.Candidate, error) {
	compressed, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, err
	}
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return dictionary.Decode(data, dictionary.FormatMsgpack)
}

// load reads the index from disk
func (c *Cache) load() error {
	data, err := os.ReadFile(filepath.Join(c.dir, IndexName))
	if err != nil {
		return err
	}

	var entries map[string]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	// A "null" index decodes to a nil map
	if entries == nil {
		entries = make(map[string]*Entry)
	}
	c.entries = entries
	return nil
}

// persist writes the index to disk
func (c *Cache) persist() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.dir, IndexName), data, 0600)
}
