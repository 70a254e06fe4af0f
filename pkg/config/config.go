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
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Built-in defaults, tuned for the Moodle code base
const (
	DefaultLocalizationDir = "lang"
	DefaultCLIConstant     = "CLI_SCRIPT"
	DefaultConfigModule    = "config.php"
	DefaultTrackerURL      = "https://tracker.moodle.org/browse/"
)

// DefaultTrackerPrefixes are the issue tracker project keys linked by default.
var DefaultTrackerPrefixes = []string{"MDL", "MDLSITE", "CONTRIB", "MDLQA", "MDLTEST"}

var (
	trackerPrefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*$`)
	constantPattern      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// 📚 Config tunes the gatekeeper and the rule pipeline.
type Config struct {
	LocalizationDir string   `json:"localization_dir,omitempty" yaml:"localization_dir,omitempty" hcl:"localization_dir,optional"`
	CLIConstant     string   `json:"cli_constant,omitempty" yaml:"cli_constant,omitempty" hcl:"cli_constant,optional"`
	ConfigModule    string   `json:"config_module,omitempty" yaml:"config_module,omitempty" hcl:"config_module,optional"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty" hcl:"exclude_patterns,optional"`
	TrackerURL      string   `json:"tracker_url,omitempty" yaml:"tracker_url,omitempty" hcl:"tracker_url,optional"`
	TrackerPrefixes []string `json:"tracker_prefixes,omitempty" yaml:"tracker_prefixes,omitempty" hcl:"tracker_prefixes,optional"`
	DisabledRules   []string `json:"disabled_rules,omitempty" yaml:"disabled_rules,omitempty" hcl:"disabled_rules,optional"`

	location string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Location returns the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

// IsRuleDisabled reports whether the named rule was switched off.
func (cfg *Config) IsRuleDisabled(name string) bool {
	for _, r := range cfg.DisabledRules {
		if r == name {
			return true
		}
	}
	return false
}

func (cfg *Config) applyDefaults() {
	if cfg.LocalizationDir == "" {
		cfg.LocalizationDir = DefaultLocalizationDir
	}
	if cfg.CLIConstant == "" {
		cfg.CLIConstant = DefaultCLIConstant
	}
	if cfg.ConfigModule == "" {
		cfg.ConfigModule = DefaultConfigModule
	}
	if cfg.TrackerURL == "" {
		cfg.TrackerURL = DefaultTrackerURL
	}
	if len(cfg.TrackerPrefixes) == 0 {
		cfg.TrackerPrefixes = append([]string(nil), DefaultTrackerPrefixes...)
	}
}

// 🔍 Validate checks the configuration values
func (cfg *Config) Validate() error {
	if strings.ContainsAny(cfg.LocalizationDir, `/\`) {
		return errors.Errorf("localization_dir %q must be a single path segment", cfg.LocalizationDir)
	}
	if !constantPattern.MatchString(cfg.CLIConstant) {
		return errors.Errorf("cli_constant %q is not a valid constant name", cfg.CLIConstant)
	}
	if strings.TrimSpace(cfg.ConfigModule) == "" {
		return errors.Errorf("config_module is required")
	}

	for i, pattern := range cfg.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclude_patterns[%d]: invalid glob %q", i, pattern)
		}
	}

	for i, prefix := range cfg.TrackerPrefixes {
		if !trackerPrefixPattern.MatchString(prefix) {
			return errors.Errorf("tracker_prefixes[%d]: invalid project key %q", i, prefix)
		}
	}

	for i, name := range cfg.DisabledRules {
		if strings.TrimSpace(name) == "" {
			return errors.Errorf("disabled_rules[%d]: empty rule name", i)
		}
	}

	return nil
}
