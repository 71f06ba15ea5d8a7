package blogimport

import "github.com/goliatone/go-blogimport/internal/runtimeconfig"

var (
	ErrAPIBaseURLRequired         = runtimeconfig.ErrAPIBaseURLRequired
	ErrAPIBaseURLInvalid          = runtimeconfig.ErrAPIBaseURLInvalid
	ErrAPIDatasetRequired         = runtimeconfig.ErrAPIDatasetRequired
	ErrAPIDatasetInvalid          = runtimeconfig.ErrAPIDatasetInvalid
	ErrAPIRetriesInvalid          = runtimeconfig.ErrAPIRetriesInvalid
	ErrAPIRetryDelayInvalid       = runtimeconfig.ErrAPIRetryDelayInvalid
	ErrAPITimeoutInvalid          = runtimeconfig.ErrAPITimeoutInvalid
	ErrImporterConcurrencyInvalid = runtimeconfig.ErrImporterConcurrencyInvalid
	ErrWatchDebounceInvalid       = runtimeconfig.ErrWatchDebounceInvalid
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	APIConfig      = runtimeconfig.APIConfig
	ImporterConfig = runtimeconfig.ImporterConfig
	WatchConfig    = runtimeconfig.WatchConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
