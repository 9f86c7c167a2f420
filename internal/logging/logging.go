// Package logging wires the leveled subsystem loggers used across the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/decred/slog"
)

// Subsystem tags.
const (
	Battle   = "BTLE"
	Registry = "REGY"
	Hub      = "WSHB"
	Audit    = "AUDT"
	Catalog  = "CATL"
	Database = "DATA"
	Server   = "SRVR"
)

var subsystems = []string{Battle, Registry, Hub, Audit, Catalog, Database, Server}

// Backend owns one slog backend and a logger per subsystem.
type Backend struct {
	backend *slog.Backend
	loggers map[string]slog.Logger
}

// New creates loggers for every subsystem writing to w, leveled by the
// SetLevel spec in level.
func New(w io.Writer, level string) (*Backend, error) {
	b := &Backend{
		backend: slog.NewBackend(w),
		loggers: make(map[string]slog.Logger, len(subsystems)),
	}
	for _, tag := range subsystems {
		l := b.backend.Logger(tag)
		l.SetLevel(slog.LevelInfo)
		b.loggers[tag] = l
	}
	if err := b.SetLevel(level); err != nil {
		return nil, err
	}
	return b, nil
}

// Stdout is New on os.Stdout.
func Stdout(level string) (*Backend, error) {
	return New(os.Stdout, level)
}

// Logger returns the logger of tag, creating it at info level if unknown.
func (b *Backend) Logger(tag string) slog.Logger {
	if l, ok := b.loggers[tag]; ok {
		return l
	}
	l := b.backend.Logger(tag)
	l.SetLevel(slog.LevelInfo)
	b.loggers[tag] = l
	return l
}

// SetLevel applies a comma separated spec, left to right. A bare level
// sets every subsystem and TAG=level sets one, e.g. "info,BTLE=debug".
func (b *Backend) SetLevel(spec string) error {
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, level, scoped := strings.Cut(part, "=")
		lvl, err := ParseLevel(strings.TrimSpace(level))
		if !scoped {
			lvl, err = ParseLevel(part)
		}
		if err != nil {
			return err
		}
		if !scoped {
			for _, l := range b.loggers {
				l.SetLevel(lvl)
			}
			continue
		}
		l, ok := b.loggers[strings.ToUpper(strings.TrimSpace(tag))]
		if !ok {
			return fmt.Errorf("unknown log subsystem %q", tag)
		}
		l.SetLevel(lvl)
	}
	return nil
}

// Subsystems lists the known tags in order.
func (b *Backend) Subsystems() []string {
	tags := make([]string, 0, len(b.loggers))
	for tag := range b.loggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ParseLevel accepts trace, debug, info, warn, error, critical and off.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	lvl, ok := slog.LevelFromString(strings.ToLower(s))
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
