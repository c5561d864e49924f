package stores

import (
	"fmt"
	"path"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/condition"
	"github.com/NikitaCOEUR/autocomplete/internal/config"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
	"github.com/NikitaCOEUR/autocomplete/internal/dictionary"
	"github.com/NikitaCOEUR/autocomplete/internal/engine"
	"github.com/NikitaCOEUR/autocomplete/internal/keys"
	"github.com/NikitaCOEUR/autocomplete/internal/logger"
)

// Named pairs a configured store name with its engine constructor
type Named struct {
	Name        string
	Constructor engine.Constructor
}

// FromConfig builds the store a config entry declares. dict holds the
// entry's dictionary candidates and is appended after the inline ones.
func FromConfig(def config.StoreConfig, dict []completion.Candidate, countThreshold int, log *logger.Logger) (completion.Store, error) {
	candidates := make([]completion.Candidate, 0, len(def.Candidates)+len(dict))
	for _, c := range def.Candidates {
		candidates = append(candidates, completion.Candidate{Value: c.Value, Doc: c.Doc})
	}
	candidates = append(candidates, dict...)

	kind := def.Kind
	if kind == "" {
		kind = config.KindComma
	}

	opts := []completion.Option{
		completion.WithCountThreshold(countThreshold),
		completion.WithCommaCompletes(def.CommaCompletesOr(kind == config.KindComma)),
		completion.WithAutoselectFirstRow(def.AutoselectFirstRowOr(true)),
		completion.WithAvoid(def.Avoid...),
		completion.WithLogger(log),
	}

	var store completion.Store
	switch kind {
	case config.KindComma:
		store = NewCommaList(candidates, opts...)
	case config.KindSpace:
		store = NewSpaceJoined(candidates, opts...)
	case config.KindReplace:
		store = NewReplace(candidates, opts...)
	case config.KindPrefix:
		store = NewPrefix(candidates, opts...)
	case config.KindFuzzy:
		store = NewFuzzy(candidates, opts...)
	default:
		return nil, derrors.NewValidationError("stores/"+def.Name+"/kind", fmt.Sprintf("unknown store kind '%s'", kind), nil)
	}

	if def.Sentinel != "" {
		store = WithSentinel(store, def.Sentinel)
	}
	return store, nil
}

// MatchTarget reports whether id matches any of the glob patterns
func MatchTarget(patterns []string, id string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, id); err == nil && ok {
			return true
		}
	}
	return false
}

// DictionaryLoader reads a dictionary file
type DictionaryLoader func(path string) ([]completion.Candidate, error)

// Option configures how stores are built from config
type Option func(*options)

type options struct {
	load DictionaryLoader
}

// WithDictionaryLoader replaces dictionary.Load, e.g. with a cache
func WithDictionaryLoader(load DictionaryLoader) Option {
	return func(o *options) {
		if load != nil {
			o.load = load
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{load: dictionary.Load}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// loadDictionary reads a store's dictionary, if it declares one
func (o options) loadDictionary(def config.StoreConfig) ([]completion.Candidate, error) {
	if def.Dictionary == "" {
		return nil, nil
	}
	dict, err := o.load(def.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", def.Name, err)
	}
	return dict, nil
}

// Constructors loads every dictionary up front and returns one constructor
// per configured store, in config order. Each constructor builds a fresh
// store when the target ID matches the store's globs.
func Constructors(cfg *config.Config, log *logger.Logger, opts ...Option) ([]Named, error) {
	log = logger.OrDiscard(log)
	o := buildOptions(opts)
	named := make([]Named, 0, len(cfg.Stores))

	for _, def := range cfg.Stores {
		dict, err := o.loadDictionary(def)
		if err != nil {
			return nil, err
		}
		// Fail on bad definitions now rather than on first focus
		if _, err := FromConfig(def, dict, cfg.Engine.CountThreshold, log); err != nil {
			return nil, err
		}

		when, err := parseWhen(def)
		if err != nil {
			return nil, err
		}

		threshold := cfg.Engine.CountThreshold
		configDir := cfg.ConfigDir
		named = append(named, Named{
			Name: def.Name,
			Constructor: func(target engine.Target, _ keys.Event) completion.Store {
				if !MatchTarget(def.Targets, target.ID()) {
					return nil
				}
				if !conditionHolds(when, def.Name, configDir, target, log) {
					return nil
				}
				store, err := FromConfig(def, dict, threshold, log)
				if err != nil {
					return nil
				}
				return store
			},
		})

		log.Debug().
			Str("store", def.Name).
			Str("kind", def.Kind).
			Strs("targets", def.Targets).
			Int("dictionary", len(dict)).
			Msg("Store configured")
	}

	return named, nil
}

func parseWhen(def config.StoreConfig) (condition.Condition, error) {
	if def.When == nil {
		return nil, nil
	}
	when, err := condition.Parse(def.When)
	if err != nil {
		return nil, derrors.NewValidationError("stores/"+def.Name+"/when", "invalid condition", err)
	}
	return when, nil
}

// conditionHolds evaluates a store's activation condition against the target.
// Evaluation errors keep the store unbound.
func conditionHolds(when condition.Condition, name, configDir string, target engine.Target, log *logger.Logger) bool {
	if when == nil {
		return true
	}
	ok, reason, err := when.Evaluate(condition.Context{
		ConfigDir: configDir,
		TargetID:  target.ID(),
		Text:      target.Text(),
	})
	if err != nil {
		log.Warn().Str("store", name).Err(err).Msg("Store condition failed to evaluate")
		return false
	}
	if !ok {
		log.Debug().Str("store", name).Str("reason", reason).Msg("Store condition not met")
	}
	return ok
}

// Register adds every configured store to the engine
func Register(e *engine.Engine, cfg *config.Config, log *logger.Logger, opts ...Option) error {
	named, err := Constructors(cfg, log, opts...)
	if err != nil {
		return err
	}
	for _, n := range named {
		if !e.Register(n.Name, n.Constructor) {
			logger.OrDiscard(log).Warn().Str("store", n.Name).Msg("Store already registered, skipping")
		}
	}
	return nil
}

// ByName builds the named store directly, without target matching
func ByName(cfg *config.Config, name string, log *logger.Logger, opts ...Option) (completion.Store, error) {
	def, ok := cfg.Store(name)
	if !ok {
		return nil, derrors.NewNotFoundError(name, fmt.Sprintf("no store named '%s'", name))
	}
	dict, err := buildOptions(opts).loadDictionary(def)
	if err != nil {
		return nil, err
	}
	return FromConfig(def, dict, cfg.Engine.CountThreshold, log)
}
