package session

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"ghostconf/codec"
	"ghostconf/schema"
)

const (
	MinScrollbackLines     = 100
	MaxScrollbackLines     = 100000
	DefaultScrollbackLines = 10000
)

// Launch describes how to start a try-out shell.
type Launch struct {
	// Shell is the command line of the shell.
	Shell string `json:"shell"`
	// Dir is the working directory; empty inherits the server's.
	Dir string `json:"dir,omitempty"`
	// Command runs before the interactive shell when set.
	Command string `json:"command,omitempty"`
	// ScrollbackLines bounds the replay buffer.
	ScrollbackLines int `json:"scrollbackLines"`
}

// DefaultLaunch starts the user's login shell with the default scrollback.
func DefaultLaunch() Launch {
	return Launch{Shell: defaultShell(), ScrollbackLines: DefaultScrollbackLines}
}

// LaunchFromState reads the shell settings of a config through the
// value-or-default rule.
func LaunchFromState(s *schema.Schema, st codec.State) Launch {
	l := DefaultLaunch()
	if v := text(s, st, "command"); v != "" {
		l.Shell = v
	}
	l.Dir = resolveDir(text(s, st, "working-directory"))
	l.Command = text(s, st, "initial-command")
	if v, ok := codec.Effective(s, st, "scrollback-limit"); ok {
		if n, ok := v.(schema.Number); ok && n.Valid() {
			l.ScrollbackLines = clampLines(float64(n))
		}
	}
	return l
}

// Argv returns the program and arguments to exec. Shell is split with shell
// quoting rules, so a quoted path may contain spaces.
func (l Launch) Argv() (string, []string) {
	fields := shellFields(l.Shell)
	if len(fields) == 0 {
		fields = shellFields(defaultShell())
	}
	if l.Command != "" {
		return "/bin/sh", []string{"-c", l.Command + "; exec " + shellquote.Join(fields...)}
	}
	return fields[0], fields[1:]
}

func shellFields(line string) []string {
	fields, err := shellquote.Split(line)
	if err != nil {
		return strings.Fields(line)
	}
	return fields
}

func text(s *schema.Schema, st codec.State, key string) string {
	v, ok := codec.Effective(s, st, key)
	if !ok {
		return ""
	}
	if str, ok := v.(schema.String); ok {
		return strings.TrimSpace(string(str))
	}
	return ""
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// resolveDir maps the working-directory setting onto a path. "inherit" and
// the empty string keep the server's directory.
func resolveDir(dir string) string {
	switch dir {
	case "", "inherit":
		return ""
	case "home":
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return home
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir
}

func clampLines(n float64) int {
	if math.IsInf(n, 1) || n > MaxScrollbackLines {
		return MaxScrollbackLines
	}
	if n < MinScrollbackLines {
		return MinScrollbackLines
	}
	return int(n)
}
