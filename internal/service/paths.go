package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"capgrid/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveJobRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.JobRootDir(), nil
}

func resolveJobDir(jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", fmt.Errorf("job id is empty")
	}

	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.JobDir(jobID), nil
}

func resolveFrameDir(jobID string) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", fmt.Errorf("job id is empty")
	}

	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.FrameDir(jobID), nil
}

// isInsideJobRoot reports whether path lies strictly below the job root.
func isInsideJobRoot(path string) (bool, error) {
	jobRoot, err := resolveJobRoot()
	if err != nil {
		return false, err
	}
	relPath, err := filepath.Rel(jobRoot, filepath.Clean(path))
	if err != nil {
		return false, err
	}
	if relPath == "." || relPath == "" {
		return false, nil
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}
