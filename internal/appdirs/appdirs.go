package appdirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	PortableEnv = "CAPGRID_PORTABLE"
	// DataDirEnv roots the whole layout at one directory, e.g. a mounted volume.
	DataDirEnv  = "CAPGRID_DATA_DIR"

	appName        = "Capgrid"
	configFileName = "config.toml"
)

// Paths is the on-disk layout used for config, logs, job artifacts and the job database.
// JobRoot and DBPath are filled by Resolve from OutputDir and CacheDir.
type Paths struct {
	Portable   bool
	ConfigDir  string
	ConfigFile string
	LogDir     string
	OutputDir  string
	CacheDir   string
	JobRoot    string
	DBPath     string
}

type resolveDeps struct {
	goos          string
	getenv        func(string) string
	executable    func() (string, error)
	userConfigDir func() (string, error)
	userCacheDir  func() (string, error)
}

func Resolve() (Paths, error) {
	return resolve(resolveDeps{
		goos:          runtime.GOOS,
		getenv:        os.Getenv,
		executable:    os.Executable,
		userConfigDir: os.UserConfigDir,
		userCacheDir:  os.UserCacheDir,
	})
}

func resolve(rawDeps resolveDeps) (Paths, error) {
	paths, err := resolveBase(withDefaults(rawDeps))
	if err != nil {
		return Paths{}, err
	}
	return withJobLayout(paths), nil
}

func resolveBase(deps resolveDeps) (Paths, error) {
	if dataDir := strings.TrimSpace(deps.getenv(DataDirEnv)); dataDir != "" {
		return layoutUnder(filepath.Clean(dataDir)), nil
	}
	if isPortableEnabled(deps.getenv(PortableEnv)) {
		return resolvePortable(deps)
	}
	if deps.goos == "windows" {
		return resolveUserDirs(deps)
	}
	return defaultRelativePaths(), nil
}

// withJobLayout derives where jobs and the job database live.
func withJobLayout(paths Paths) Paths {
	paths.JobRoot = filepath.Join(normalizeOutputDir(paths.OutputDir), JobRootName)
	paths.DBPath = filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
	return paths
}

// layoutUnder keeps every directory below dataDir.
func layoutUnder(dataDir string) Paths {
	configDir := filepath.Join(dataDir, "config")
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(dataDir, "logs"),
		OutputDir:  filepath.Join(dataDir, "output"),
		CacheDir:   filepath.Join(dataDir, "cache"),
	}
}

func withDefaults(deps resolveDeps) resolveDeps {
	if deps.goos == "" {
		deps.goos = runtime.GOOS
	}
	if deps.getenv == nil {
		deps.getenv = os.Getenv
	}
	if deps.executable == nil {
		deps.executable = os.Executable
	}
	if deps.userConfigDir == nil {
		deps.userConfigDir = os.UserConfigDir
	}
	if deps.userCacheDir == nil {
		deps.userCacheDir = os.UserCacheDir
	}
	return deps
}

func resolvePortable(deps resolveDeps) (Paths, error) {
	executablePath, err := deps.executable()
	if err != nil {
		return Paths{}, err
	}

	paths := layoutUnder(filepath.Join(filepath.Dir(executablePath), "data"))
	paths.Portable = true
	return paths, nil
}

func resolveUserDirs(deps resolveDeps) (Paths, error) {
	configRoot, err := deps.userConfigDir()
	if err != nil {
		return Paths{}, err
	}
	if strings.TrimSpace(configRoot) == "" {
		return Paths{}, errors.New("user config dir is empty")
	}

	cacheRoot, err := deps.userCacheDir()
	if err != nil {
		return Paths{}, err
	}
	if strings.TrimSpace(cacheRoot) == "" {
		return Paths{}, errors.New("user cache dir is empty")
	}

	configDir := filepath.Join(configRoot, appName)
	cacheBaseDir := filepath.Join(cacheRoot, appName)
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     filepath.Join(cacheBaseDir, "logs"),
		OutputDir:  filepath.Join(cacheBaseDir, "output"),
		CacheDir:   filepath.Join(cacheBaseDir, "cache"),
	}, nil
}

func defaultRelativePaths() Paths {
	configDir := "config"
	return Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, configFileName),
		LogDir:     ".",
		OutputDir:  ".",
		CacheDir:   "cache",
	}
}

func isPortableEnabled(value string) bool {
	normalized := strings.TrimSpace(strings.ToLower(value))
	return normalized == "1" || normalized == "true"
}
