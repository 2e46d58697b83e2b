package tool

import (
	"fmt"
	"os"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/fileshare-go/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Port:               8010,
		UploadDir:          "uploads",
		MaxFileSize:        100 * 1024 * 1024,
		MaxFilesPerRequest: 100,
		ConcurrentWrites:   8,
		ConvertWorkers:     2,
		AllowUnknownTypes:  false,
		ImageExtensions:    []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"},
		DocumentExtensions: []string{".pdf", ".txt", ".docx", ".xlsx"},
		MediaExtensions:    []string{".mp4", ".mp3"},
		ArchiveExtensions:  []string{".zip"},
		ConvertExtensions:  []string{".png"},
	}
}

// LoadConfig loads the app config: defaults, then config.yaml (created with
// defaults when missing), then environment variables (.env honored).
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
			return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
		}
		DefaultLogger.Infof("Created new config file at %s", path)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	case info.IsDir():
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	// Environment overrides config file. A .env next to the binary is
	// loaded first so container setups can ship one file.
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %v", err)
	}

	if cfg.MaxFileSize <= 0 {
		return cfg, fmt.Errorf("maxFileSize must be positive, got %d", cfg.MaxFileSize)
	}
	if cfg.MaxFilesPerRequest <= 0 {
		return cfg, fmt.Errorf("maxFilesPerRequest must be positive, got %d", cfg.MaxFilesPerRequest)
	}
	if cfg.ConcurrentWrites <= 0 {
		cfg.ConcurrentWrites = defaultConfig().ConcurrentWrites
	}
	if cfg.ConvertWorkers <= 0 {
		cfg.ConvertWorkers = defaultConfig().ConvertWorkers
	}

	CurrentConfig = cfg
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
