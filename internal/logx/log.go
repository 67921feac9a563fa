// Package logx holds the process-wide zerolog logger.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the shared logger. Replace it only through Configure.
var Log zerolog.Logger

var levelAliases = map[string]zerolog.Level{
	"":         zerolog.InfoLevel,
	"all":      zerolog.TraceLevel,
	"warning":  zerolog.WarnLevel,
	"none":     zerolog.Disabled,
	"off":      zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

// Configure sets the global level and rebuilds Log on stderr. LOG_FORMAT
// selects "json" or "console"; when unset, terminals get console output and
// everything else JSON.
func Configure(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
	Log = New(os.Stderr, os.Getenv("LOG_FORMAT"))
}

// New returns a timestamped logger writing to w in the given format.
func New(w io.Writer, format string) zerolog.Logger {
	var out io.Writer = w
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
	case "console", "text":
		out = zerolog.ConsoleWriter{Out: w}
	default:
		if isTerminal(w) {
			out = zerolog.ConsoleWriter{Out: w}
		}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// parseLevel is case-insensitive and accepts zerolog names plus a few
// aliases. Unknown values yield info.
func parseLevel(level string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	if lvl, ok := levelAliases[s]; ok {
		return lvl
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func init() {
	Configure(os.Getenv("LOG_LEVEL"))
}
