package config

const (
	defaultAlbumsDir        = "~/lyricindex/albums"
	defaultLyricsDir        = "~/lyricindex/lyrics"
	defaultIndexPath        = "~/lyricindex/song_index.csv"
	defaultGroundTruthPath  = "~/lyricindex/ground_truth.csv"
	defaultStateDir         = "~/.local/share/lyricindex"
	defaultLogDir           = "~/.local/share/lyricindex/logs"
	defaultArtist           = "WookieFoot"
	defaultUserAgent        = "lyricindex/dev"
	defaultRequestInterval  = 1500
	defaultBurst            = 1
	defaultRequestTimeout   = 30
	defaultVerifyThreshold  = 0.8
	defaultLRCLibURL        = "https://lrclib.net"
	defaultGeniusURL        = "https://genius.com"
	defaultSongLyricsURL    = "https://www.songlyrics.com"
	defaultLyricsOVHURL     = "https://api.lyrics.ovh"
	defaultELyricsURL       = "https://www.elyrics.net"
	defaultLyricsAZURL      = "https://lyrics.az"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

var (
	defaultProviders     = []string{"lrclib", "genius", "songlyrics"}
	defaultRetryStatuses = []string{"No"}
	defaultSkipKeywords  = []string{
		"(intro)", "(shock)", "(denial)", "(anger)", "(bargaining)",
		"(depression)", "(acceptance)", "(the end)", "(yellow #5)", "(rumi)",
	}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AlbumsDir:       defaultAlbumsDir,
			LyricsDir:       defaultLyricsDir,
			IndexPath:       defaultIndexPath,
			GroundTruthPath: defaultGroundTruthPath,
			StateDir:        defaultStateDir,
		},
		Lyrics: Lyrics{
			Artist:          defaultArtist,
			Providers:       append([]string(nil), defaultProviders...),
			UserAgent:       defaultUserAgent,
			RequestInterval: defaultRequestInterval,
			Burst:           defaultBurst,
			RequestTimeout:  defaultRequestTimeout,
			RetryStatuses:   append([]string(nil), defaultRetryStatuses...),
			SkipKeywords:    append([]string(nil), defaultSkipKeywords...),
			VerifyThreshold: defaultVerifyThreshold,
			LRCLibURL:       defaultLRCLibURL,
			GeniusURL:       defaultGeniusURL,
			SongLyricsURL:   defaultSongLyricsURL,
			LyricsOVHURL:    defaultLyricsOVHURL,
			ELyricsURL:      defaultELyricsURL,
			LyricsAZURL:     defaultLyricsAZURL,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Dir:           defaultLogDir,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
