package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Display modes for the usage component.
const (
	DisplaySession      = "session"
	DisplayConversation = "conversation"
)

// Config is the typed view of a resolved configuration tree.
type Config struct {
	Preset     string           `toml:"preset"`
	Theme      string           `toml:"theme"`
	Debug      bool             `toml:"debug"`
	Style      StyleConfig      `toml:"style"`
	Components ComponentsConfig `toml:"components"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// StyleConfig holds terminal presentation switches.
type StyleConfig struct {
	EnableColors   bool   `toml:"enable_colors"`
	EnableEmoji    bool   `toml:"enable_emoji"`
	EnableNerdFont bool   `toml:"enable_nerd_font"`
	Separator      string `toml:"separator"`
}

// ComponentsConfig lists statusline segments in display order.
type ComponentsConfig struct {
	Order []string    `toml:"order"`
	Usage UsageConfig `toml:"usage"`
}

// UsageConfig controls the cost segment.
type UsageConfig struct {
	Enabled          bool   `toml:"enabled"`
	DisplayMode      string `toml:"display_mode"`
	Precision        int    `toml:"precision"`
	ShowLinesAdded   bool   `toml:"show_lines_added"`
	ShowLinesRemoved bool   `toml:"show_lines_removed"`
}

// StorageConfig controls session persistence and retention.
type StorageConfig struct {
	EnableCostPersistence      bool `toml:"enable_cost_persistence"`
	EnableConversationTracking bool `toml:"enable_conversation_tracking"`
	SessionExpiryDays          int  `toml:"session_expiry_days"`
	EnableStartupCleanup       bool `toml:"enable_startup_cleanup"`
	EnableIndex                bool `toml:"enable_index"`
	MaxChainDepth              int  `toml:"max_chain_depth"`
}

// LoggingConfig controls debug log files.
type LoggingConfig struct {
	MaxLogFiles int `toml:"max_log_files"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides.
type ModelPricingOverride struct {
	InputPerMTok        *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok       *float64 `toml:"output_per_mtok,omitempty"`
	CacheWrite5mPerMTok *float64 `toml:"cache_write_5m_per_mtok,omitempty"`
	CacheWrite1hPerMTok *float64 `toml:"cache_write_1h_per_mtok,omitempty"`
	CacheReadPerMTok    *float64 `toml:"cache_read_per_mtok,omitempty"`
}

// DefaultConfig returns the built-in default layer.
func DefaultConfig() Config {
	return Config{
		Preset: "PMBTUS",
		Theme:  "classic",
		Style: StyleConfig{
			EnableColors: true,
			EnableEmoji:  true,
			Separator:    " | ",
		},
		Components: ComponentsConfig{
			Order: []string{"project", "model", "branch", "tokens", "usage", "status"},
			Usage: UsageConfig{
				Enabled:          true,
				DisplayMode:      DisplayConversation,
				Precision:        2,
				ShowLinesAdded:   true,
				ShowLinesRemoved: true,
			},
		},
		Storage: StorageConfig{
			EnableCostPersistence:      true,
			EnableConversationTracking: true,
			SessionExpiryDays:          30,
			EnableStartupCleanup:       true,
			EnableIndex:                true,
			MaxChainDepth:              64,
		},
		Logging: LoggingConfig{MaxLogFiles: 10},
	}
}

// presetComponents maps preset letters to component names.
var presetComponents = map[rune]string{
	'P': "project",
	'M': "model",
	'B': "branch",
	'T': "tokens",
	'U': "usage",
	'S': "status",
}

// ComponentOrder returns the components to render: components.order,
// restricted to the letters of preset when one is set. Names without a
// preset letter are always kept.
func (c Config) ComponentOrder() []string {
	if c.Preset == "" {
		return c.Components.Order
	}
	enabled := make(map[string]bool, len(c.Preset))
	for _, l := range strings.ToUpper(c.Preset) {
		if name, ok := presetComponents[l]; ok {
			enabled[name] = true
		}
	}
	lettered := make(map[string]bool, len(presetComponents))
	for _, name := range presetComponents {
		lettered[name] = true
	}
	var out []string
	for _, name := range c.Components.Order {
		if !lettered[name] || enabled[name] {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks value ranges the TOML decoder cannot.
func (c Config) Validate() error {
	var errs []error
	switch c.Components.Usage.DisplayMode {
	case DisplaySession, DisplayConversation:
	default:
		errs = append(errs, fmt.Errorf("components.usage.display_mode: %q is not %q or %q",
			c.Components.Usage.DisplayMode, DisplaySession, DisplayConversation))
	}
	if p := c.Components.Usage.Precision; p < 0 || p > 10 {
		errs = append(errs, fmt.Errorf("components.usage.precision: %d out of range 0-10", p))
	}
	for _, l := range c.Preset {
		if _, ok := presetComponents[unicode.ToUpper(l)]; !ok {
			errs = append(errs, fmt.Errorf("preset: unknown component letter %q", l))
		}
	}
	if c.Storage.SessionExpiryDays < 0 {
		errs = append(errs, fmt.Errorf("storage.session_expiry_days: %d is negative", c.Storage.SessionExpiryDays))
	}
	if c.Storage.MaxChainDepth < 0 {
		errs = append(errs, fmt.Errorf("storage.max_chain_depth: %d is negative", c.Storage.MaxChainDepth))
	}
	return errors.Join(errs...)
}

// decodeConfig converts a merged tree into the typed schema.
func decodeConfig(tree Node) (Config, error) {
	data, err := EncodeTree(tree)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	// Unknown keys stay in the tree; only the typed view ignores them.
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
