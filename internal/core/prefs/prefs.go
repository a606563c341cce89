package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKey is returned for keys outside the preference set.
	ErrUnknownKey = errors.New("unknown preference")
	// ErrInvalidValue is returned when a value does not parse for its key.
	ErrInvalidValue = errors.New("invalid preference value")
)

// Preference keys.
const (
	KeySortMode          = "install_sort_type"
	KeyShowIgnored       = "show_ignored_updates"
	KeyShowProvisional   = "show_provisional"
	KeyShowSearchHistory = "show_search_history"
)

// Defaults holds the value used for each key while it is unset.
var Defaults = map[string]string{
	KeySortMode:          string(SortName),
	KeyShowIgnored:       "true",
	KeyShowProvisional:   "true",
	KeyShowSearchHistory: "true",
}

// Keys returns the preference keys in display order.
func Keys() []string {
	return []string{KeySortMode, KeyShowIgnored, KeyShowProvisional, KeyShowSearchHistory}
}

// SortMode controls the ordering of the installed package list.
type SortMode string

const (
	SortName        SortMode = "name"
	SortInstallDate SortMode = "installdate"
	SortSize        SortMode = "size"
)

// ValidSortMode reports whether s names a sort mode exactly.
func ValidSortMode(s string) bool {
	switch SortMode(s) {
	case SortName, SortInstallDate, SortSize:
		return true
	default:
		return false
	}
}

// ParseSortMode maps s to a SortMode. Unknown values fall back to SortName.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortInstallDate:
		return SortInstallDate
	case SortSize:
		return SortSize
	default:
		return SortName
	}
}

// Prefs reads and writes typed preferences. Read failures fall back to
// defaults.
type Prefs struct {
	store Store
	log   zerolog.Logger
}

// New creates a Prefs backed by store.
func New(store Store, log zerolog.Logger) *Prefs {
	return &Prefs{store: store, log: log}
}

// SortMode returns the installed-list sort mode.
func (p *Prefs) SortMode(ctx context.Context) SortMode {
	return ParseSortMode(p.get(ctx, KeySortMode, string(SortName)))
}

// SetSortMode persists the installed-list sort mode.
func (p *Prefs) SetSortMode(ctx context.Context, mode SortMode) error {
	return p.store.Set(ctx, KeySortMode, string(mode))
}

// ShowIgnoredUpdates reports whether held updates get their own section.
func (p *Prefs) ShowIgnoredUpdates(ctx context.Context) bool {
	return p.Bool(ctx, KeyShowIgnored, true)
}

// ShowProvisional reports whether provisional packages are merged in.
func (p *Prefs) ShowProvisional(ctx context.Context) bool {
	return p.Bool(ctx, KeyShowProvisional, true)
}

// ShowSearchHistory reports whether submitted searches are remembered
// and offered when the query is empty.
func (p *Prefs) ShowSearchHistory(ctx context.Context) bool {
	return p.Bool(ctx, KeyShowSearchHistory, true)
}

// Bool reads a boolean preference, returning fallback when unset or
// unparsable.
func (p *Prefs) Bool(ctx context.Context, key string, fallback bool) bool {
	raw := p.get(ctx, key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.log.Warn().Str("key", key).Str("value", raw).Msg("invalid boolean preference")
		return fallback
	}
	return v
}

// SetBool persists a boolean preference.
func (p *Prefs) SetBool(ctx context.Context, key string, v bool) error {
	return p.store.Set(ctx, key, strconv.FormatBool(v))
}

func (p *Prefs) get(ctx context.Context, key, fallback string) string {
	entry, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			p.log.Warn().Err(err).Str("key", key).Msg("failed to read preference")
		}
		return fallback
	}
	return entry.Value
}

// Setting is the effective value of one preference.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	IsDefault bool      `json:"default"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// All returns every known preference with its effective value.
func (p *Prefs) All(ctx context.Context) ([]Setting, error) {
	entries, err := p.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	stored := make(map[string]Entry, len(entries))
	for _, e := range entries {
		stored[e.Key] = e
	}

	settings := make([]Setting, 0, len(Defaults))
	for _, key := range Keys() {
		if e, ok := stored[key]; ok {
			settings = append(settings, Setting{Key: key, Value: e.Value, UpdatedAt: e.UpdatedAt})
			continue
		}
		settings = append(settings, Setting{Key: key, Value: Defaults[key], IsDefault: true})
	}
	return settings, nil
}

// Set validates value for key and persists it. Booleans are stored in
// canonical form.
func (p *Prefs) Set(ctx context.Context, key, value string) error {
	if _, ok := Defaults[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if key == KeySortMode {
		if !ValidSortMode(value) {
			return fmt.Errorf("%w: %s must be one of name, installdate, size", ErrInvalidValue, key)
		}
		return p.store.Set(ctx, key, value)
	}

	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, key)
	}
	return p.SetBool(ctx, key, v)
}

// Reset returns key to its default. Resetting an unset key is a no-op.
func (p *Prefs) Reset(ctx context.Context, key string) error {
	if _, ok := Defaults[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	err := p.store.Delete(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	return err
}

// Watch waits until key is written after the given time. It returns
// context.DeadlineExceeded when timeout elapses first.
func (p *Prefs) Watch(ctx context.Context, key string, after time.Time, timeout time.Duration) (Entry, error) {
	return p.store.Watch(ctx, key, after, timeout)
}
