/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The HAPI Table Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the server and renderer settings from a YAML file
// and HAPITABLE_ environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hapi-server/hapitable/core/catalog"
	"github.com/hapi-server/hapitable/core/links"
	"github.com/hapi-server/hapitable/core/rendering"
)

// EnvPrefix is prepended to environment variable names, e.g.
// HAPITABLE_LOG_LEVEL overrides log.level.
const EnvPrefix = "hapitable"

// Default values.
const (
	DefaultListen       = ":8097"
	DefaultLimit        = 100
	DefaultTitle        = "HAPI Catalog"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultEscapePolicy = "none"
)

// LogConfig selects the level and format of the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TableConfig describes one table served by the grid.
type TableConfig struct {
	Name        string   `mapstructure:"name"`
	Title       string   `mapstructure:"title"`
	Description string   `mapstructure:"description"`
	Source      string   `mapstructure:"source"`
	Path        string   `mapstructure:"path"`
	Columns     []string `mapstructure:"columns"`
}

// Config holds every setting of the application.
type Config struct {
	Listen string    `mapstructure:"listen"`
	Log    LogConfig `mapstructure:"log"`

	Title    string `mapstructure:"title"`
	Subtitle string `mapstructure:"subtitle"`

	ExplorerURL       string `mapstructure:"explorer_url"`
	SpaseURL          string `mapstructure:"spase_url"`
	TitleLength       int    `mapstructure:"title_length"`
	DescriptionLength int    `mapstructure:"description_length"`
	SearchIdentifiers bool   `mapstructure:"search_identifiers"`
	Escape            string `mapstructure:"escape"`

	// Strict refuses tables whose columns link to the explorer without the
	// identifier columns the links need.
	Strict       bool `mapstructure:"strict"`
	DefaultLimit int  `mapstructure:"default_limit"`

	Tables []TableConfig `mapstructure:"tables"`

	// Directory of the config file. Relative table paths resolve against it.
	BaseDir string `mapstructure:"-"`
}

// SetDefaults registers the default of every scalar key. Keys without a
// default are not picked up from the environment by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("title", DefaultTitle)
	v.SetDefault("subtitle", "")
	v.SetDefault("explorer_url", links.DefaultExplorerURL)
	v.SetDefault("spase_url", links.DefaultSpaseURL)
	v.SetDefault("title_length", rendering.DefaultTitleLength)
	v.SetDefault("description_length", rendering.DefaultDescriptionLength)
	v.SetDefault("search_identifiers", true)
	v.SetDefault("escape", DefaultEscapePolicy)
	v.SetDefault("strict", false)
	v.SetDefault("default_limit", DefaultLimit)
}

// NewViper returns a viper reading path, if not empty, and the environment.
// A path that cannot be read is an error.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}

// BindFlags binds command line flags to config keys. Flag names use dashes
// where keys use underscores or dots: --log-level sets log.level. Flags
// without a matching key are left alone.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if strings.HasPrefix(key, "log_") {
			key = "log." + strings.TrimPrefix(key, "log_")
		}
		if !isKnown(v, key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func isKnown(v *viper.Viper, key string) bool {
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if f := v.ConfigFileUsed(); f != "" {
		c.BaseDir = filepath.Dir(f)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile is NewViper followed by Load.
func LoadFile(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return Load(v)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := rendering.ParseEscapePolicy(c.Escape); err != nil {
		errs = append(errs, err)
	}
	if c.TitleLength <= 0 {
		errs = append(errs, fmt.Errorf("title_length must be positive, got %d", c.TitleLength))
	}
	if c.DescriptionLength <= 0 {
		errs = append(errs, fmt.Errorf("description_length must be positive, got %d", c.DescriptionLength))
	}
	if c.DefaultLimit < 0 {
		errs = append(errs, fmt.Errorf("default_limit must not be negative, got %d", c.DefaultLimit))
	}
	seen := make(map[string]bool)
	for i, t := range c.Tables {
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Errorf("tables[%d]: name is required", i))
		case seen[t.Name]:
			errs = append(errs, fmt.Errorf("tables[%d]: duplicate name %q", i, t.Name))
		}
		seen[t.Name] = true
		switch t.Source {
		case catalog.SourceCSV, catalog.SourceCatalogDatasets, catalog.SourceCatalogParameters:
		default:
			errs = append(errs, fmt.Errorf("tables[%d]: unknown source %q", i, t.Source))
		}
		if t.Path == "" {
			errs = append(errs, fmt.Errorf("tables[%d]: path is required", i))
		}
	}
	return errors.Join(errs...)
}

// Sources converts the table settings to catalog sources.
func (c *Config) Sources() []catalog.Source {
	out := make([]catalog.Source, 0, len(c.Tables))
	for _, t := range c.Tables {
		out = append(out, catalog.Source{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			Type:        t.Source,
			Path:        t.Path,
			Columns:     t.Columns,
		})
	}
	return out
}

// Rendering returns the renderer settings for a grid with the given columns.
func (c *Config) Rendering(columns []string) (*rendering.Config, error) {
	escape, err := rendering.ParseEscapePolicy(c.Escape)
	if err != nil {
		return nil, err
	}
	rc := rendering.NewConfig(columns)
	if c.ExplorerURL != "" {
		rc.ExplorerURL = c.ExplorerURL
	}
	if c.SpaseURL != "" {
		rc.SpaseURL = c.SpaseURL
	}
	rc.TitleLength = c.TitleLength
	rc.DescriptionLength = c.DescriptionLength
	rc.SearchIdentifiers = c.SearchIdentifiers
	rc.Escape = escape
	return rc, nil
}
