package config

// DefaultPublicURLTemplate renders the public address of a stored object.
const DefaultPublicURLTemplate = "{url}/storage/v1/object/public/{bucket}/{path}"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Bucket:            "media",
			DevicesTable:      "devices",
			CommandsTable:     "commands",
			PublicURLTemplate: DefaultPublicURLTemplate,
			Timeout:           30,
		},
		TUI: TUIConfig{
			Theme:          "auto",
			StreamInterval: 2500,
			RequestTimeout: 5,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Backend
	if c.Backend.Bucket == "" {
		c.Backend.Bucket = d.Backend.Bucket
	}
	if c.Backend.DevicesTable == "" {
		c.Backend.DevicesTable = d.Backend.DevicesTable
	}
	if c.Backend.CommandsTable == "" {
		c.Backend.CommandsTable = d.Backend.CommandsTable
	}
	if c.Backend.PublicURLTemplate == "" {
		c.Backend.PublicURLTemplate = d.Backend.PublicURLTemplate
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = d.Backend.Timeout
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.StreamInterval == 0 {
		c.TUI.StreamInterval = d.TUI.StreamInterval
	}
	if c.TUI.RequestTimeout == 0 {
		c.TUI.RequestTimeout = d.TUI.RequestTimeout
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// IsConfigured reports whether the backend endpoint and key are set.
func (c *Config) IsConfigured() bool {
	return c.Backend.URL != "" && c.Backend.Key != ""
}
