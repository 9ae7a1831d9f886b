package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/burnline/internal/fsutil"
	"github.com/theirongolddev/burnline/internal/logging"
	"github.com/theirongolddev/burnline/internal/paths"
)

// LayerReport records what one applied layer changed.
type LayerReport struct {
	Level   Level
	Path    string
	Added   []string
	Updated []string
}

// MergeReport lists applied layers in order of application.
type MergeReport struct {
	Layers []LayerReport
}

// Skipped is a layer that existed but could not be applied in full. Keys
// lists the dotted paths left out of a partly applied layer; it is empty when
// the whole layer was dropped.
type Skipped struct {
	Level Level
	Path  string
	Keys  []string
	Err   error
}

// Resolved is the effective configuration for one invocation.
type Resolved struct {
	Tree    Node
	Config  Config
	Report  MergeReport
	Skipped []Skipped
}

// Resolver folds the configuration layers for one project.
type Resolver struct {
	Paths  paths.StoragePaths
	Logger *slog.Logger
}

// NewResolver returns a Resolver for the given storage layout.
func NewResolver(p paths.StoragePaths) *Resolver {
	return &Resolver{Paths: p}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Logger
}

// LayerPath returns the file backing a writable level.
func (r *Resolver) LayerPath(level Level) (string, error) {
	var p string
	switch level {
	case LevelUser:
		p = r.Paths.UserConfigPath
	case LevelProject:
		p = r.Paths.ProjectConfigPath
	case LevelLocal:
		p = r.Paths.LocalConfigPath
	default:
		return "", fmt.Errorf("%s level has no file", level)
	}
	if p == "" {
		return "", fmt.Errorf("%s level has no file in this context", level)
	}
	return p, nil
}

// DefaultTree returns the built-in defaults as a tree.
func DefaultTree() (Node, error) {
	return treeOf(DefaultConfig())
}

// Resolve folds default, user, project, local and overrides, in that order.
// Missing files are skipped silently; unreadable or malformed ones are logged
// and skipped. Ill-typed or out-of-range keys are dropped one by one and the
// rest of their layer still applies. The error is non-nil only if the defaults cannot be
// built.
func (r *Resolver) Resolve(overrides Node) (Resolved, error) {
	tree, err := DefaultTree()
	if err != nil {
		return Resolved{}, fmt.Errorf("building default config: %w", err)
	}
	cfg, err := decodeConfig(tree)
	if err != nil {
		return Resolved{}, fmt.Errorf("decoding default config: %w", err)
	}
	out := Resolved{Tree: tree, Config: cfg}

	var layers []Layer
	for _, level := range []Level{LevelUser, LevelProject, LevelLocal} {
		path, err := r.LayerPath(level)
		if err != nil {
			continue
		}
		layer, err := LoadLayer(level, path)
		if err != nil {
			if !errors.Is(err, ErrLayerNotFound) {
				r.logger().Warn("skipping config layer", "level", level.String(), "path", path, "error", err)
				out.Skipped = append(out.Skipped, Skipped{Level: level, Path: path, Err: err})
			}
			continue
		}
		layers = append(layers, layer)
	}
	if !overrides.IsNull() {
		layers = append(layers, Layer{Level: LevelOverride, Tree: overrides})
	}

	for _, layer := range layers {
		candidate := Merge(out.Tree, layer.Tree)
		typed, err := decodeConfig(candidate)
		if err != nil {
			var dropped []string
			candidate, typed, dropped = applyKeys(out.Tree, out.Config, layer.Tree)
			if len(dropped) > 0 {
				r.logger().Warn("dropping invalid config keys", "level", layer.Level.String(), "path", layer.Path, "keys", dropped, "error", err)
				out.Skipped = append(out.Skipped, Skipped{Level: layer.Level, Path: layer.Path, Keys: dropped, Err: err})
			}
			if candidate.Equal(out.Tree) {
				continue
			}
		}
		added, updated := diffKeys(out.Tree, candidate)
		out.Report.Layers = append(out.Report.Layers, LayerReport{
			Level:   layer.Level,
			Path:    layer.Path,
			Added:   added,
			Updated: updated,
		})
		out.Tree = candidate
		out.Config = typed
	}
	return out, nil
}

// applyKeys merges layer into base one leaf at a time, keeping each leaf only
// if the result still decodes. It returns the merged tree, its typed config
// and the dotted paths that were dropped.
func applyKeys(base Node, cfg Config, layer Node) (Node, Config, []string) {
	var dropped []string
	tree := base
	forEachLeaf(layer, nil, func(path []string, v Node) {
		candidate := Merge(tree, nest(path, v))
		typed, err := decodeConfig(candidate)
		if err != nil {
			dropped = append(dropped, strings.Join(path, "."))
			return
		}
		tree, cfg = candidate, typed
	})
	return tree, cfg, dropped
}

// forEachLeaf visits every non-mapping value of n in sorted key order.
func forEachLeaf(n Node, path []string, fn func(path []string, v Node)) {
	if n.Kind() != KindMapping {
		if len(path) > 0 && !n.IsNull() {
			fn(path, n)
		}
		return
	}
	for _, k := range n.Keys() {
		child, _ := n.Get(k)
		forEachLeaf(child, append(append([]string(nil), path...), k), fn)
	}
}

// nest wraps v in one mapping per path element.
func nest(path []string, v Node) Node {
	for i := len(path) - 1; i >= 0; i-- {
		v = Mapping(map[string]Node{path[i]: v})
	}
	return v
}

// ReadLayer loads a single writable layer. A missing file yields an empty
// mapping.
func (r *Resolver) ReadLayer(level Level) (Layer, error) {
	path, err := r.LayerPath(level)
	if err != nil {
		return Layer{}, err
	}
	layer, err := LoadLayer(level, path)
	if errors.Is(err, ErrLayerNotFound) {
		return Layer{Level: level, Path: path, Tree: Mapping(nil)}, nil
	}
	return layer, err
}

// WriteLayer serializes value as TOML into the file for level and returns the
// path written. value may be a Config, a Node, or anything the TOML encoder
// accepts. Directories created along the way are removed if the write fails.
func (r *Resolver) WriteLayer(level Level, value any) (string, error) {
	path, err := r.LayerPath(level)
	if err != nil {
		return "", err
	}
	var data []byte
	if n, ok := value.(Node); ok {
		data, err = EncodeTree(n)
	} else {
		var tree Node
		tree, err = treeOf(value)
		if err == nil {
			data, err = EncodeTree(tree)
		}
	}
	if err != nil {
		return "", fmt.Errorf("encoding %s config: %w", level, err)
	}
	if err := fsutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s config: %w", level, err)
	}
	r.logger().Debug("wrote config layer", "level", level.String(), "path", path)
	return path, nil
}

// Set applies key=value assignments to one layer on disk.
func (r *Resolver) Set(level Level, assignments ...string) (string, error) {
	layer, err := r.ReadLayer(level)
	if err != nil {
		return "", err
	}
	patch, err := ParseOverrides(assignments)
	if err != nil {
		return "", err
	}
	merged := Merge(layer.Tree, patch)
	if _, err := decodeConfig(Merge(mustDefaultTree(), merged)); err != nil {
		return "", fmt.Errorf("invalid %s config: %w", level, err)
	}
	return r.WriteLayer(level, merged)
}

func mustDefaultTree() Node {
	tree, err := DefaultTree()
	if err != nil {
		return Mapping(nil)
	}
	return tree
}

// ParseOverride turns "a.b.c=value" into the tree {a: {b: {c: value}}}.
// value uses TOML value syntax; anything that does not parse is taken as a
// plain string.
func ParseOverride(assignment string) (Node, error) {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Node{}, fmt.Errorf("override %q: want key=value", assignment)
	}
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return Node{}, fmt.Errorf("override %q: empty key segment", assignment)
		}
	}
	leaf := parseOverrideValue(strings.TrimSpace(raw))
	for i := len(parts) - 1; i >= 0; i-- {
		leaf = Mapping(map[string]Node{parts[i]: leaf})
	}
	return leaf, nil
}

// ParseOverrides folds several assignments into one tree; later ones win.
func ParseOverrides(assignments []string) (Node, error) {
	out := Null()
	for _, a := range assignments {
		n, err := ParseOverride(a)
		if err != nil {
			return Node{}, err
		}
		out = Merge(out, n)
	}
	return out, nil
}

func parseOverrideValue(raw string) Node {
	var doc map[string]any
	if _, err := toml.Decode("v = "+raw, &doc); err == nil {
		if v, ok := doc["v"]; ok {
			return FromValue(v)
		}
	}
	return Scalar(raw)
}
