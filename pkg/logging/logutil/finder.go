// Package logutil locates the log files written by the logging package.
package logutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/reqs/config"
	"github.com/grovetools/reqs/errors"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/util/pathutil"
)

// FindLogFile returns the log file configured under logging.file, or the
// latest log of component below the default logs directory next to the
// loaded reqs.yml (the working directory when none was found).
func FindLogFile(cfg *config.Config, component string) (string, error) {
	var logCfg logging.Config
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		return "", errors.ConfigInvalid(err.Error())
	}
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		return pathutil.Expand(logCfg.File.Path), nil
	}

	base := filepath.Dir(cfg.Path())
	if cfg.Path() == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = cwd
	}
	return FindLatestLogFile(logging.LogDir(base), component)
}

// FindLatestLogFile finds the most recently modified .log file in dir whose
// name starts with component, preferring files with content. An empty
// component matches every file.
func FindLatestLogFile(dir, component string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.NotFound("log directory", dir)
	}

	var latest, latestNonEmpty os.FileInfo
	var latestPath, latestNonEmptyPath string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if component != "" && !strings.HasPrefix(entry.Name(), component+"-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if latest == nil || info.ModTime().After(latest.ModTime()) {
			latest, latestPath = info, path
		}
		if info.Size() > 0 && (latestNonEmpty == nil || info.ModTime().After(latestNonEmpty.ModTime())) {
			latestNonEmpty, latestNonEmptyPath = info, path
		}
	}

	if latestNonEmpty != nil {
		return latestNonEmptyPath, nil
	}
	if latest == nil {
		return "", errors.NotFound("log file", filepath.Join(dir, component+"*.log"))
	}
	return latestPath, nil
}
