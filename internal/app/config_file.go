package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Every field
// is optional; unset fields leave the runtime default in place.
type FileConfig struct {
	Store string `yaml:"store"`

	Fetch struct {
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"maxAttempts"`
		UserAgent   string        `yaml:"userAgent"`
	} `yaml:"fetch"`

	Fallback struct {
		Enable *bool  `yaml:"enable"`
		Prefix string `yaml:"prefix"`
	} `yaml:"fallback"`

	MinTextChars int `yaml:"minTextChars"`

	Cache struct {
		Entries int `yaml:"entries"`
	} `yaml:"cache"`

	Listen string `yaml:"listen"`
}

// LoadFileConfig parses a YAML config file. A missing file is not an error
// when optional is true.
func LoadFileConfig(path string, optional bool) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays the file values onto cfg. Flags are applied afterwards by
// the CLI, so precedence is flags > file > defaults.
func (fc *FileConfig) Apply(cfg *Config) {
	if fc == nil {
		return
	}
	if fc.Store != "" {
		cfg.StorePath = fc.Store
	}
	if fc.Fetch.Timeout > 0 {
		cfg.Timeout = fc.Fetch.Timeout
	}
	if fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fallback.Enable != nil {
		cfg.UseJinaFallback = *fc.Fallback.Enable
	}
	if fc.Fallback.Prefix != "" {
		cfg.JinaPrefix = fc.Fallback.Prefix
	}
	if fc.MinTextChars > 0 {
		cfg.MinTextLen = fc.MinTextChars
	}
	if fc.Cache.Entries > 0 {
		cfg.CacheSize = fc.Cache.Entries
	}
	if fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
}
