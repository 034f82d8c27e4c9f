package config

// Config is the root configuration structure.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	TUI     TUIConfig     `toml:"tui"`
	Journal JournalConfig `toml:"journal"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig holds the hosted backend connection settings.
type BackendConfig struct {
	URL               string `toml:"url"`
	Key               string `toml:"key"`
	Bucket            string `toml:"bucket"`
	DevicesTable      string `toml:"devices_table"`
	CommandsTable     string `toml:"commands_table"`
	PublicURLTemplate string `toml:"public_url_template"`
	Timeout           int    `toml:"timeout"` // seconds
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme          string `toml:"theme"`
	StreamInterval int    `toml:"stream_interval"` // milliseconds
	RequestTimeout int    `toml:"request_timeout"` // seconds
}

// JournalConfig holds settings for the local command journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"` // browser origins allowed to call the API
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
