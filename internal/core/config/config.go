// Package config handles configuration loading and validation for parcel.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/parcel/pkg/tmpl"
)

// Built-in keybinding actions.
const (
	ActionWishlist = "wishlist"
	ActionShow     = "show"
)

var validActions = map[string]bool{
	ActionWishlist: true,
	ActionShow:     true,
}

// Config holds the application configuration.
type Config struct {
	// CatalogFile is the package index. Relative paths resolve against
	// the data directory.
	CatalogFile string        `yaml:"catalog_file"`
	History     HistoryConfig `yaml:"history"`
	Search      SearchConfig  `yaml:"search"`
	// Keybindings maps a key in the browser to an action or a shell
	// command rendered against the selected package.
	Keybindings map[string]Keybinding `yaml:"keybindings"`
	DataDir     string                `yaml:"-"` // set by caller, not from config file
}

// Keybinding is either a built-in action or a shell command template.
type Keybinding struct {
	Action  string `yaml:"action"`
	Sh      string `yaml:"sh"`
	Help    string `yaml:"help"`
	Confirm string `yaml:"confirm"`
}

// HistoryConfig holds history ledger settings.
type HistoryConfig struct {
	// MaxEntries caps the history file. Older entries are dropped on save.
	MaxEntries int `yaml:"max_entries"`
}

// SearchConfig holds search coordinator settings.
type SearchConfig struct {
	Debounce            time.Duration `yaml:"debounce"`
	MinProvisionalChars int           `yaml:"min_provisional_chars"`
	MaxTerms            int           `yaml:"max_terms"`
}

// Warning is a non-fatal configuration issue.
type Warning struct {
	Item    string `json:"item"`
	Message string `json:"message"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CatalogFile: "catalog.yaml",
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Search: SearchConfig{
			Debounce:            500 * time.Millisecond,
			MinProvisionalChars: 3,
			MaxTerms:            50,
		},
		Keybindings: map[string]Keybinding{
			"w":     {Action: ActionWishlist, Help: "wishlist"},
			"enter": {Action: ActionShow, Help: "details"},
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation, for commands that report on an
// invalid configuration instead of refusing to start.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.CatalogFile == "" {
		c.CatalogFile = defaults.CatalogFile
	}
	if c.History.MaxEntries == 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if c.Search.Debounce == 0 {
		c.Search.Debounce = defaults.Search.Debounce
	}
	if c.Search.MinProvisionalChars == 0 {
		c.Search.MinProvisionalChars = defaults.Search.MinProvisionalChars
	}
	if c.Search.MaxTerms == 0 {
		c.Search.MaxTerms = defaults.Search.MaxTerms
	}
	if c.Keybindings == nil {
		c.Keybindings = defaults.Keybindings
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}
	if c.History.MaxEntries < 1 {
		errs = errs.Append("history.max_entries", fmt.Errorf("must be at least 1, got %d", c.History.MaxEntries))
	}
	if c.Search.Debounce < 0 {
		errs = errs.Append("search.debounce", fmt.Errorf("cannot be negative"))
	}
	if c.Search.MinProvisionalChars < 1 {
		errs = errs.Append("search.min_provisional_chars", fmt.Errorf("must be at least 1, got %d", c.Search.MinProvisionalChars))
	}
	if c.Search.MaxTerms < 1 {
		errs = errs.Append("search.max_terms", fmt.Errorf("must be at least 1, got %d", c.Search.MaxTerms))
	}

	for _, key := range slices.Sorted(maps.Keys(c.Keybindings)) {
		kb := c.Keybindings[key]
		field := "keybindings." + key
		switch {
		case kb.Action != "" && kb.Sh != "":
			errs = errs.Append(field, fmt.Errorf("action and sh are mutually exclusive"))
		case kb.Action == "" && kb.Sh == "":
			errs = errs.Append(field, fmt.Errorf("either action or sh is required"))
		case kb.Action != "" && !validActions[kb.Action]:
			errs = errs.Append(field, fmt.Errorf("unknown action %q", kb.Action))
		case kb.Sh != "":
			if _, err := tmpl.Parse(kb.Sh); err != nil {
				errs = errs.Append(field, err)
			}
		}
	}

	return errs.ToError()
}

// Warnings reports issues that do not stop parcel from starting.
func (c *Config) Warnings() []Warning {
	var warnings []Warning

	if info, err := os.Stat(c.CatalogPath()); err != nil {
		warnings = append(warnings, Warning{
			Item:    "catalog_file",
			Message: fmt.Sprintf("%s not found, package lists will be empty", c.CatalogPath()),
		})
	} else if info.IsDir() {
		warnings = append(warnings, Warning{
			Item:    "catalog_file",
			Message: fmt.Sprintf("%s is a directory, not a file", c.CatalogPath()),
		})
	}

	if c.Search.Debounce > 5*time.Second {
		warnings = append(warnings, Warning{
			Item:    "search.debounce",
			Message: fmt.Sprintf("%s delays provisional results noticeably", c.Search.Debounce),
		})
	}

	return warnings
}

// CatalogPath returns the resolved path of the catalog file.
func (c *Config) CatalogPath() string {
	if filepath.IsAbs(c.CatalogFile) {
		return c.CatalogFile
	}
	return filepath.Join(c.DataDir, c.CatalogFile)
}

// HistoryFile returns the path to the history JSON file.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "history.json")
}

// WishlistFile returns the path to the wishlist JSON file.
func (c *Config) WishlistFile() string {
	return filepath.Join(c.DataDir, "wishlist.json")
}

// TermsFile returns the path to the recent searches JSON file.
func (c *Config) TermsFile() string {
	return filepath.Join(c.DataDir, "search_terms.json")
}

// PrefsFile returns the path to the preferences JSON file.
func (c *Config) PrefsFile() string {
	return filepath.Join(c.DataDir, "prefs.json")
}
