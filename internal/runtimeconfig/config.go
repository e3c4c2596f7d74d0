package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-markup/internal/logging/gologger"
)

var ErrMaxDepthInvalid = errors.New("markup config: max depth must be zero or positive")
var ErrMetaLengthInvalid = errors.New("markup config: meta length must be zero or positive")
var ErrVideoDimensionsInvalid = errors.New("markup config: default video dimensions must be zero or positive")
var ErrLoggingProviderUnknown = errors.New("markup config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("markup config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("markup config: logging format is invalid")
var ErrReferencesDriverUnknown = errors.New("markup config: references driver is invalid")
var ErrReferencesDSNRequired = errors.New("markup config: references dsn is required for the sqlite driver")
var ErrReferencesTitleInvalid = errors.New("markup config: static title entry is invalid")
var ErrCacheTTLInvalid = errors.New("markup config: cache ttl must be positive when the cache is enabled")

const (
	ReferencesDriverNone   = "none"
	ReferencesDriverStatic = "static"
	ReferencesDriverSQLite = "sqlite"

	LoggingProviderNoop     = "noop"
	LoggingProviderGoLogger = "gologger"
)

// Config aggregates the engine settings. Zero values mean "use the package
// default" wherever a default exists.
type Config struct {
	Forum      ForumConfig      `yaml:"forum"`
	Wiki       WikiConfig       `yaml:"wiki"`
	Video      VideoConfig      `yaml:"video"`
	References ReferencesConfig `yaml:"references"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ForumConfig configures post rendering.
type ForumConfig struct {
	MaxDepth   int  `yaml:"max_depth"`
	MetaLength int  `yaml:"meta_length"`
	LineBreaks bool `yaml:"line_breaks"`
	// Sanitize runs rendered posts through the bluemonday forum policy.
	Sanitize bool `yaml:"sanitize"`
}

// WikiConfig configures page rendering.
type WikiConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MetaLength int `yaml:"meta_length"`
}

// VideoConfig overrides the embed fallback size.
type VideoConfig struct {
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
}

// ReferencesConfig selects where entity titles come from.
type ReferencesConfig struct {
	Driver string        `yaml:"driver"`
	DSN    string        `yaml:"dsn"`
	Titles []TitleConfig `yaml:"titles"`
}

// TitleConfig is one static title entry. With the sqlite driver the entries
// are seeded into the database.
type TitleConfig struct {
	Kind  string `yaml:"kind"`
	ID    int    `yaml:"id"`
	Title string `yaml:"title"`
}

// CacheConfig controls the title cache placed in front of the resolver.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MetricsConfig toggles the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the defaults used by the CLI and the façade.
func DefaultConfig() Config {
	return Config{
		Forum: ForumConfig{
			MaxDepth:   64,
			MetaLength: 160,
		},
		Wiki: WikiConfig{
			MaxDepth:   64,
			MetaLength: 200,
		},
		Video: VideoConfig{
			DefaultWidth:  480,
			DefaultHeight: 270,
		},
		References: ReferencesConfig{
			Driver: ReferencesDriverStatic,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Provider: LoggingProviderNoop,
			Level:    "info",
		},
	}
}

// Validate performs consistency checks and returns the first violation.
func (cfg Config) Validate() error {
	if cfg.Forum.MaxDepth < 0 {
		return fmt.Errorf("%w: forum", ErrMaxDepthInvalid)
	}
	if cfg.Wiki.MaxDepth < 0 {
		return fmt.Errorf("%w: wiki", ErrMaxDepthInvalid)
	}
	if cfg.Forum.MetaLength < 0 {
		return fmt.Errorf("%w: forum", ErrMetaLengthInvalid)
	}
	if cfg.Wiki.MetaLength < 0 {
		return fmt.Errorf("%w: wiki", ErrMetaLengthInvalid)
	}
	if cfg.Video.DefaultWidth < 0 || cfg.Video.DefaultHeight < 0 {
		return ErrVideoDimensionsInvalid
	}

	switch driver := normalize(cfg.References.Driver); driver {
	case "", ReferencesDriverNone, ReferencesDriverStatic:
	case ReferencesDriverSQLite:
		if strings.TrimSpace(cfg.References.DSN) == "" {
			return ErrReferencesDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrReferencesDriverUnknown, driver)
	}
	for i, entry := range cfg.References.Titles {
		if !isEntityKind(entry.Kind) || entry.ID <= 0 || strings.TrimSpace(entry.Title) == "" {
			return fmt.Errorf("%w: entry %d", ErrReferencesTitleInvalid, i)
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}

	switch provider := normalize(cfg.Logging.Provider); provider {
	case "", LoggingProviderNoop:
	case LoggingProviderGoLogger:
		if !gologger.SupportedLevel(cfg.Logging.Level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Logging.Level)
		}
		if !gologger.SupportedFormat(cfg.Logging.Format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, cfg.Logging.Format)
		}
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isEntityKind(kind string) bool {
	switch normalize(kind) {
	case "movie", "submission", "game", "gamegroup":
		return true
	}
	return false
}
