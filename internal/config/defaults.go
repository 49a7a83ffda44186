package config

const (
	defaultLibraryDir           = "~/music"
	defaultStateDir             = "~/.local/share/tonearm"
	defaultLogDir               = "~/.local/share/tonearm/logs"
	defaultImportThreads        = 4
	defaultImportQueueSize      = 16
	defaultStrongMatchThreshold = 0.15
	defaultDuplicateAction      = "ask"
	defaultLookupRetries        = 3
	defaultLookupRateLimit      = 5.0
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Import: Import{
			Threads:              defaultImportThreads,
			QueueSize:            defaultImportQueueSize,
			StrongMatchThreshold: defaultStrongMatchThreshold,
			DuplicateAction:      defaultDuplicateAction,
			Autotag:              true,
			LookupRetries:        defaultLookupRetries,
			LookupRateLimit:      defaultLookupRateLimit,
		},
		Scoring: Scoring{
			TitleWeight:       3.0,
			ArtistWeight:      3.0,
			AlbumWeight:       2.0,
			TrackNumberWeight: 1.0,
			YearWeight:        1.0,
			DurationWeight:    1.0,
			UnmatchedPenalty:  0.6,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
