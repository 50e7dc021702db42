package app

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

const configFilename = "config.yml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string       `yaml:"-"`        // config directory, e.g. $HOME/.veilchat
	RelayURL string       `yaml:"relayUrl"` // relay base URL, e.g. http://127.0.0.1:8080
	LogLevel string       `yaml:"logLevel"` // logrus level name; defaults to "warn"
	HTTP     *http.Client `yaml:"-"`        // optional; defaults to http.DefaultClient
}

// LoadConfig reads <home>/config.yml and overlays it on the defaults. A
// missing file is not an error: the defaults stand.
func LoadConfig(home string) (Config, error) {
	cfg := Config{
		Home:     home,
		RelayURL: "http://127.0.0.1:8080",
		LogLevel: "warn",
	}
	raw, err := os.ReadFile(filepath.Join(home, configFilename))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}
	cfg.Home = home
	return cfg, nil
}

// SaveConfig writes cfg to <home>/config.yml, creating the directory if
// needed.
func SaveConfig(cfg Config) error {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cfg.Home, configFilename), raw, 0o600)
}
