package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

func String(key, def string, log *logger.Logger) string {
	v, ok := lookup(key)
	if !ok {
		debug(log, key, "Environment variable not found, using default", "default", def)
		return def
	}
	return v
}

func Int(key string, def int, log *logger.Logger) int {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		debug(log, key, "Environment variable is not an int, using default", "value", v, "default", def)
		return def
	}
	return i
}

func Bool(key string, def bool, log *logger.Logger) bool {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		debug(log, key, "Environment variable is not a bool, using default", "value", v, "default", def)
		return def
	}
	return b
}

// Duration accepts Go duration strings ("90s", "1h") or a bare number of
// seconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	debug(log, key, "Environment variable is not a duration, using default", "value", v, "default", def)
	return def
}

// List splits a comma separated variable, dropping empty entries.
func List(key string, def []string, log *logger.Logger) []string {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func debug(log *logger.Logger, key, msg string, kv ...interface{}) {
	if log == nil {
		return
	}
	log.With("env_var", key).Debug(msg, kv...)
}
