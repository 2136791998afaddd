package config

// Config maps to the config.toml file for the monitor service
type Config struct {
	ListenAddress    string `toml:"ListenAddress"`
	RetentionSeconds int    `toml:"RetentionSeconds"`
	HistoryLength    int    `toml:"HistoryLength"`
}
