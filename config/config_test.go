package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func useConfigPathForTest(t *testing.T, configPath string) {
	t.Helper()

	old := resolveConfigPath
	oldConf := Conf
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() {
		resolveConfigPath = old
		Conf = oldConf
	})
}

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config", "config.toml")
	useConfigPathForTest(t, configPath)

	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.App.IntervalSeconds != 10 {
		t.Fatalf("default interval = %v, want 10", got.App.IntervalSeconds)
	}
	if got.App.MaxIterations != 10 {
		t.Fatalf("default max iterations = %d, want 10", got.App.MaxIterations)
	}
}

func TestLoadOrCreateConfigLoadsExisting(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	useConfigPathForTest(t, configPath)

	content := "[app]\ninterval_seconds = 2.5\n\n[server]\nhost = \"0.0.0.0\"\nport = 9999\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig: %v", err)
	}
	if created {
		t.Fatal("expected created=false when config file exists")
	}
	if Conf.Server.Host != "0.0.0.0" || Conf.Server.Port != 9999 {
		t.Errorf("loaded server = %+v", Conf.Server)
	}
	if Conf.App.IntervalSeconds != 2.5 {
		t.Errorf("loaded interval = %v, want 2.5", Conf.App.IntervalSeconds)
	}
	// keys missing from the file keep their defaults
	if Conf.App.MaxIterations != 10 {
		t.Errorf("max iterations = %d, want default 10", Conf.App.MaxIterations)
	}
	if Conf.Describe.RetryWaitSeconds != 5 {
		t.Errorf("retry wait = %d, want default 5", Conf.Describe.RetryWaitSeconds)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "deep", "nest", "config.toml")
	useConfigPathForTest(t, configPath)

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestCheckConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero interval", mutate: func(c *Config) { c.App.IntervalSeconds = 0 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "describe without key", mutate: func(c *Config) { c.Describe.Enabled = true }, wantErr: true},
		{name: "queue without redis", mutate: func(c *Config) {
			c.Queue.Enabled = true
			c.Queue.RedisAddr = ""
		}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			useConfigPathForTest(t, filepath.Join(t.TempDir(), "config.toml"))
			Conf = defaultConfig()
			tc.mutate(&Conf)

			err := CheckConfig()
			if tc.wantErr && err == nil {
				t.Fatal("CheckConfig() returned nil error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("CheckConfig() error: %v", err)
			}
		})
	}
}

func TestCheckConfigFillsDefaults(t *testing.T) {
	useConfigPathForTest(t, filepath.Join(t.TempDir(), "config.toml"))
	Conf = defaultConfig()
	Conf.App.MaxIterations = 0
	Conf.App.FrameNamePattern = " "
	Conf.Describe.Concurrency = 0

	if err := CheckConfig(); err != nil {
		t.Fatalf("CheckConfig() error: %v", err)
	}
	if Conf.App.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", Conf.App.MaxIterations)
	}
	if Conf.App.FrameNamePattern != "%04d_0000" {
		t.Errorf("FrameNamePattern = %q", Conf.App.FrameNamePattern)
	}
	if Conf.Describe.Concurrency != 2 {
		t.Errorf("Describe.Concurrency = %d, want 2", Conf.Describe.Concurrency)
	}
}
