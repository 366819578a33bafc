// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"outliertrack/tracker"
)

// ChannelEntry names one competitor channel to track. In the config file an
// entry is either a bare identifier string or an object with id and an
// optional display name; both forms decode into this type explicitly.
type ChannelEntry struct {
	// ID is the channel identifier: a canonical "UC…" ID, an "@handle",
	// or a bare handle string. Resolution happens in the youtube client.
	ID string `json:"id"`
	// Name is an optional human label used in logs before resolution.
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts the two channel entry forms: "UCxxxx" and
// {"id": "UCxxxx", "name": "Label"}.
func (e *ChannelEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = ChannelEntry{ID: id}
		return nil
	}

	type plain ChannelEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = ChannelEntry(p)
	return nil
}

// Label returns the display name when set, the identifier otherwise.
func (e ChannelEntry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Config holds all application configuration for outlier tracking runs.
type Config struct {
	// YouTubeAPIKey authenticates the video platform client. Env only.
	YouTubeAPIKey string `json:"-"`
	// NotionToken authenticates the record store client. Env only.
	NotionToken string `json:"-"`
	// NotionDatabaseID is the store database holding synced records. Env only.
	NotionDatabaseID string `json:"-"`

	// SampleSize is how many recent uploads feed the channel average.
	SampleSize int `json:"sample_size"`
	// LookbackHours is how far back to look for new uploads.
	LookbackHours int `json:"lookback_hours"`
	// Threshold flags videos with this multiple of the channel average.
	Threshold float64 `json:"outlier_threshold"`
	// TopicKeywords restricts results to matching titles. Empty disables
	// the filter; non-empty switches inclusion to topic mode.
	TopicKeywords []string `json:"topic_keywords"`
	// RetentionDays is how long synced records are kept before archival.
	RetentionDays int `json:"retention_days"`
	// TopResults is how many ranked videos the report highlights.
	TopResults int `json:"top_results"`

	// Channels is the competitor channel list.
	Channels []ChannelEntry `json:"channels"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		SampleSize:    20,
		LookbackHours: 168,
		Threshold:     1.5,
		RetentionDays: 7,
		TopResults:    10,
	}
}

// Load loads configuration from the config file and environment variables,
// on top of defaults. Priority: env vars > config file > defaults.
// An explicit path skips the default search locations.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		if path != "" || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads config from path, or from outliertrack.json in the
// current directory or the user config directory when path is empty.
func (c *Config) loadFromFile(path string) error {
	paths := []string{path}
	if path == "" {
		paths = []string{
			"outliertrack.json",
			filepath.Join(os.Getenv("HOME"), ".config", "outliertrack", "outliertrack.json"),
		}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) && path == "" {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("NOTION_API_KEY"); v != "" {
		c.NotionToken = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		c.NotionDatabaseID = v
	}
	if v := os.Getenv("OUTLIERTRACK_SAMPLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SampleSize = n
		}
	}
	if v := os.Getenv("OUTLIERTRACK_LOOKBACK_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LookbackHours = n
		}
	}
	if v := os.Getenv("OUTLIERTRACK_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Threshold = f
		}
	}
	if v := os.Getenv("OUTLIERTRACK_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetentionDays = n
		}
	}
	if v := os.Getenv("OUTLIERTRACK_TOPIC_KEYWORDS"); v != "" {
		var keywords []string
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.TopicKeywords = keywords
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive")
	}
	if c.LookbackHours <= 0 {
		return fmt.Errorf("lookback_hours must be positive")
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("outlier_threshold must be positive")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be non-negative")
	}
	if c.TopResults <= 0 {
		return fmt.Errorf("top_results must be positive")
	}
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channels[%d]: id must not be empty", i)
		}
	}
	return nil
}

// EngineConfig maps the loaded options onto the tracker's engine config.
func (c *Config) EngineConfig() tracker.Config {
	return tracker.Config{
		SampleSize:    c.SampleSize,
		LookbackHours: c.LookbackHours,
		Threshold:     c.Threshold,
		TopicKeywords: c.TopicKeywords,
		RetentionDays: c.RetentionDays,
		TopResults:    c.TopResults,
	}
}

// ChannelRefs maps the channel entries onto tracker channel references.
func (c *Config) ChannelRefs() []tracker.ChannelRef {
	refs := make([]tracker.ChannelRef, 0, len(c.Channels))
	for _, ch := range c.Channels {
		refs = append(refs, tracker.ChannelRef{Identifier: ch.ID, Label: ch.Label()})
	}
	return refs
}
