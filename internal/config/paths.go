package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDir = "tasksplit"

// Dirs holds the base directories config lookup depends on. Empty fields are
// skipped.
type Dirs struct {
	GOOS        string
	Work        string
	UserConfig  string
	ProgramData string
}

func hostDirs() Dirs {
	wd, _ := os.Getwd()
	ucd, _ := os.UserConfigDir()
	return Dirs{GOOS: runtime.GOOS, Work: wd, UserConfig: ucd, ProgramData: os.Getenv("ProgramData")}
}

// SearchPaths lists candidate locations for name, most specific first: the
// working directory, the per-user config dir, then the machine-wide dir.
func SearchPaths(d Dirs, name string) []string {
	var out []string
	if d.Work != "" {
		out = append(out, filepath.Join(d.Work, name))
	}
	if d.UserConfig != "" {
		out = append(out, filepath.Join(d.UserConfig, appDir, name))
	}
	return append(out, systemPath(d, name))
}

func systemPath(d Dirs, name string) string {
	if d.GOOS != "windows" {
		return filepath.Join("/etc", appDir, name)
	}
	pd := strings.TrimRight(d.ProgramData, "\\/")
	if pd == "" {
		pd = "C:/ProgramData"
	}
	return filepath.Join(pd, appDir, name)
}

// FindConfig returns the first existing search path for name, or the
// machine-wide path when none exists.
func FindConfig(d Dirs, name string) string {
	paths := SearchPaths(d, name)
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return paths[len(paths)-1]
}

// DefaultConfigPath resolves name against the host's directories.
func DefaultConfigPath(name string) string {
	return FindConfig(hostDirs(), name)
}

// GetEnv returns the value of key or def when unset or empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
