// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/jdconv/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is an extra substitution run after the Javadoc rules
type Rule struct {
	Name    string `json:"name" yaml:"name" hcl:"name,label"`
	Pattern string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Replace string `json:"replace" yaml:"replace" hcl:"replace,optional"`
	File    string `json:"file,omitempty" yaml:"file,omitempty" hcl:"file,optional"` // Optional doublestar glob on the relative path
}

// 📚 Config represents the complete configuration
type Config struct {
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty" hcl:"extensions,optional"`
	Ignore     []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
	Rules      []Rule   `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`
	DryRun     bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
	Atomic     bool     `json:"atomic,omitempty" yaml:"atomic,omitempty" hcl:"atomic,optional"`
	Backup     bool     `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	Jobs       int      `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"jobs,optional"`

	location string
}

// 🏭 Default returns the configuration used when no config file is given
func Default() *Config {
	return &Config{
		Extensions: []string{".cs"},
		Jobs:       1,
	}
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = Default().Extensions
	}
	for _, ext := range cfg.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return errors.Errorf("extension %q must start with a dot", ext)
		}
	}

	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	switch {
	case cfg.Jobs < 0:
		return errors.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	case cfg.Jobs == 0:
		cfg.Jobs = 1
	}

	for i := range cfg.Rules {
		if cfg.Rules[i].Name == "" {
			cfg.Rules[i].Name = fmt.Sprintf("rule-%d", i)
		}
	}
	if err := text.ValidateRules(cfg.TextRules()); err != nil {
		return err
	}

	return nil
}

// TextRules converts the config rules for the converter
func (cfg *Config) TextRules() []text.Rule {
	rules := make([]text.Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, text.Rule{
			Name:     r.Name,
			Pattern:  r.Pattern,
			Replace:  r.Replace,
			FileGlob: r.File,
		})
	}
	return rules
}

// Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("extensions=%s ignore=%d rules=%d jobs=%d dry_run=%t",
		strings.Join(cfg.Extensions, ","), len(cfg.Ignore), len(cfg.Rules), cfg.Jobs, cfg.DryRun)
}
