package logger

import (
	"os"
	"strings"

	"bakerlane-api/internal/config"

	"github.com/labstack/gommon/log"
)

const (
	jsonHeader = `{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`
	textHeader = "${time_rfc3339} ${level} ${prefix} ${short_file}:${line}"
)

// New builds the process logger. The same instance backs echo's logger so
// access logs and application logs share one format.
func New(cfg config.Log) *log.Logger {
	l := log.New("bakerlane")
	l.SetOutput(os.Stdout)
	l.SetLevel(ParseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "text") {
		l.SetHeader(textHeader)
	} else {
		l.SetHeader(jsonHeader)
	}

	return l
}

func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	l := log.New("test")
	l.SetLevel(log.OFF)
	return l
}
