package markup

import "github.com/goliatone/go-markup/internal/runtimeconfig"

var (
	ErrMaxDepthInvalid         = runtimeconfig.ErrMaxDepthInvalid
	ErrMetaLengthInvalid       = runtimeconfig.ErrMetaLengthInvalid
	ErrVideoDimensionsInvalid  = runtimeconfig.ErrVideoDimensionsInvalid
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrReferencesDriverUnknown = runtimeconfig.ErrReferencesDriverUnknown
	ErrReferencesDSNRequired   = runtimeconfig.ErrReferencesDSNRequired
	ErrReferencesTitleInvalid  = runtimeconfig.ErrReferencesTitleInvalid
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
)

type (
	Config           = runtimeconfig.Config
	ForumConfig      = runtimeconfig.ForumConfig
	WikiConfig       = runtimeconfig.WikiConfig
	VideoConfig      = runtimeconfig.VideoConfig
	ReferencesConfig = runtimeconfig.ReferencesConfig
	TitleConfig      = runtimeconfig.TitleConfig
	CacheConfig      = runtimeconfig.CacheConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	MetricsConfig    = runtimeconfig.MetricsConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
