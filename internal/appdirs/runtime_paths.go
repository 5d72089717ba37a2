package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	JobRootName  = "jobs"
	FrameDirName = "frames"
	dbFileName   = "capgrid.db"
)

// JobRootDir is where per-job directories are created. Paths built by hand
// without JobRoot fall back to OutputDir/jobs.
func (p Paths) JobRootDir() string {
	if root := strings.TrimSpace(p.JobRoot); root != "" {
		return filepath.Clean(root)
	}
	return withJobLayout(p).JobRoot
}

func (p Paths) JobDir(jobID string) string {
	return filepath.Join(p.JobRootDir(), jobID)
}

// FrameDir is where extracted slot frames of a job are written.
func (p Paths) FrameDir(jobID string) string {
	return filepath.Join(p.JobDir(jobID), FrameDirName)
}

// DBFile is the sqlite file holding caption jobs.
func (p Paths) DBFile() string {
	if path := strings.TrimSpace(p.DBPath); path != "" {
		return filepath.Clean(path)
	}
	return withJobLayout(p).DBPath
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
