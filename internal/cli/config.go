package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL = "http://localhost:8080"
	serverEnvVar     = "TIENDA_SERVER"
)

// FileConfig es el contenido de config.yaml.
type FileConfig struct {
	ServerURL string `yaml:"server_url"`
	DataPath  string `yaml:"data_path"`
}

// Settings es la configuración efectiva después de aplicar overrides.
type Settings struct {
	ServerURL string
	DataPath  string
}

// DefaultConfigPath es $HOME/.config/tienda/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tienda", "config.yaml")
	}
	return filepath.Join(home, ".config", "tienda", "config.yaml")
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tienda", "tienda.db")
	}
	return filepath.Join(home, ".local", "share", "tienda", "tienda.db")
}

// LoadFileConfig lee path. Un archivo inexistente equivale a config vacía.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("leer %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config inválida en %s: %w", path, err)
	}
	return cfg, nil
}

// resolveSettings aplica, en orden: defaults, archivo, TIENDA_SERVER y flags.
func resolveSettings(opts *RootOptions) (Settings, error) {
	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath()
	}
	file, err := LoadFileConfig(path)
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{ServerURL: DefaultServerURL, DataPath: defaultDataPath()}
	if file.ServerURL != "" {
		settings.ServerURL = file.ServerURL
	}
	if file.DataPath != "" {
		settings.DataPath = expandHome(file.DataPath)
	}
	if fromEnv := strings.TrimSpace(os.Getenv(serverEnvVar)); fromEnv != "" {
		settings.ServerURL = fromEnv
	}
	if opts.Server != "" {
		settings.ServerURL = opts.Server
	}
	if opts.DataPath != "" {
		settings.DataPath = expandHome(opts.DataPath)
	}
	return settings, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
