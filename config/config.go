package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"capgrid/internal/appdirs"
	"capgrid/log"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type App struct {
	IntervalSeconds  float64 `toml:"interval_seconds"`
	MaxIterations    int     `toml:"max_iterations"`
	FrameNamePattern string  `toml:"frame_name_pattern"`
}

type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type Describe struct {
	Enabled          bool   `toml:"enabled"`
	BaseUrl          string `toml:"base_url"`
	ApiKey           string `toml:"api_key"`
	Model            string `toml:"model"`
	Concurrency      int    `toml:"concurrency"`
	MaxRetries       int    `toml:"max_retries"`
	RetryWaitSeconds int    `toml:"retry_wait_seconds"`
}

type Frames struct {
	FfmpegPath string `toml:"ffmpeg_path"`
}

type Runner struct {
	QueueSize   int `toml:"queue_size"`
	Concurrency int `toml:"concurrency"`
}

type Queue struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	App      App      `toml:"app"`
	Server   Server   `toml:"server"`
	Describe Describe `toml:"describe"`
	Frames   Frames   `toml:"frames"`
	Runner   Runner   `toml:"runner"`
	Queue    Queue    `toml:"queue"`
}

var Conf = defaultConfig()

var resolveConfigPath = ResolveConfigPath

func defaultConfig() Config {
	return Config{
		App: App{
			IntervalSeconds:  10,
			MaxIterations:    10,
			FrameNamePattern: "%04d_0000",
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Describe: Describe{
			Model:            "gpt-3.5-turbo",
			Concurrency:      2,
			MaxRetries:       3,
			RetryWaitSeconds: 5,
		},
		Runner: Runner{
			QueueSize:   128,
			Concurrency: 2,
		},
		Queue: Queue{
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// ResolveConfigPath returns the config.toml location for the current layout.
func ResolveConfigPath() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(dirs.ConfigFile) == "" {
		return filepath.Join("config", "config.toml"), nil
	}
	return dirs.ConfigFile, nil
}

// LoadOrCreateConfig loads config.toml into Conf, writing the defaults first when the
// file does not exist. created reports whether a new file was written.
func LoadOrCreateConfig() (created bool, err error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path: %w", err)
	}

	if _, err = os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("default config written", zap.String("path", configPath))
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("stat config: %w", err)
	}

	loaded := defaultConfig()
	if _, err = toml.DecodeFile(configPath, &loaded); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	Conf = loaded
	log.GetLogger().Info("config loaded", zap.String("path", configPath))
	return false, nil
}

// LoadConfig is the startup wrapper around LoadOrCreateConfig; it logs and reports success.
func LoadConfig() bool {
	if _, err := LoadOrCreateConfig(); err != nil {
		log.GetLogger().Error("load config failed", zap.Error(err))
		return false
	}
	return true
}

// SaveConfig writes Conf to the resolved config path, creating parent directories.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if err = toml.NewEncoder(file).Encode(Conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// CheckConfig validates Conf and fills zero values that have safe defaults.
func CheckConfig() error {
	defaults := defaultConfig()

	if Conf.App.IntervalSeconds <= 0 {
		return fmt.Errorf("app.interval_seconds must be positive, got %v", Conf.App.IntervalSeconds)
	}
	if Conf.App.MaxIterations <= 0 {
		Conf.App.MaxIterations = defaults.App.MaxIterations
	}
	if strings.TrimSpace(Conf.App.FrameNamePattern) == "" {
		Conf.App.FrameNamePattern = defaults.App.FrameNamePattern
	}
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", Conf.Server.Port)
	}
	if Conf.Describe.Enabled && strings.TrimSpace(Conf.Describe.ApiKey) == "" {
		return errors.New("describe.enabled requires describe.api_key")
	}
	if Conf.Describe.Concurrency <= 0 {
		Conf.Describe.Concurrency = defaults.Describe.Concurrency
	}
	if Conf.Describe.RetryWaitSeconds < 0 {
		Conf.Describe.RetryWaitSeconds = defaults.Describe.RetryWaitSeconds
	}
	if Conf.Queue.Enabled && strings.TrimSpace(Conf.Queue.RedisAddr) == "" {
		return errors.New("queue.enabled requires queue.redis_addr")
	}
	return nil
}
