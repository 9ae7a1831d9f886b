package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Level identifies a configuration layer. Later levels override earlier ones.
type Level int

// Layer precedence, lowest first.
const (
	LevelDefault Level = iota
	LevelUser
	LevelProject
	LevelLocal
	LevelOverride
)

var levelNames = [...]string{"default", "user", "project", "local", "override"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name as used on the command line.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown config level %q (want one of %s)", s, strings.Join(levelNames[:], ", "))
}

// ErrLayerNotFound is returned by LoadLayer when the file does not exist.
var ErrLayerNotFound = errors.New("config layer not found")

// ParseError reports a layer file that is not valid TOML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Layer is one parsed source of configuration.
type Layer struct {
	Level Level
	Path  string
	Tree  Node
}

// LoadLayer reads and parses the TOML file at path.
func LoadLayer(level Level, path string) (Layer, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from storage layout
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Layer{}, fmt.Errorf("%s layer %s: %w", level, path, ErrLayerNotFound)
		}
		return Layer{}, fmt.Errorf("reading %s layer: %w", level, err)
	}
	tree, err := ParseTree(data)
	if err != nil {
		return Layer{}, &ParseError{Path: path, Err: err}
	}
	return Layer{Level: level, Path: path, Tree: normalizeLegacy(tree)}, nil
}

// normalizeLegacy renames keys written by older releases.
func normalizeLegacy(tree Node) Node {
	storage, ok := tree.Get("storage")
	if !ok || storage.Kind() != KindMapping {
		return tree
	}
	legacy, ok := storage.Get("auto_cleanup_days")
	if !ok {
		return tree
	}
	storage = storage.Without("auto_cleanup_days")
	if _, exists := storage.Get("session_expiry_days"); !exists {
		storage = storage.With("session_expiry_days", legacy)
	}
	return tree.With("storage", storage)
}
