/*
Copyright 2026 The budget-allocator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	policy "github.com/paliers/budget-allocator/internal/config"
	"github.com/paliers/budget-allocator/internal/engines/allocator"
	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/pkg/solver"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BUDGET_ALLOCATOR"

// Config keys. Flags with the same name are bound to them.
const (
	KeyConfigFile      = "config"
	KeyLogLevel        = "log-level"
	KeyLogDev          = "log-dev"
	KeyStrategy        = "strategy"
	KeyTimeLimit       = "time-limit"
	KeyMaxNodes        = "max-nodes"
	KeyMetricsTextfile = "metrics-textfile"
	KeyTrace           = "trace"
	KeyPoliciesFile    = "policies-file"
	KeySeparator       = "table.separator"
	KeyEncoding        = "table.encoding"
)

// flagKeys maps flag names to the nested keys they override.
var flagKeys = map[string]string{
	"separator": KeySeparator,
	"encoding":  KeyEncoding,
}

// TableConfig configures how price tables are read.
type TableConfig struct {
	// Separator is the CSV field separator, a single character.
	Separator string `mapstructure:"separator"`
	// Encoding is the IANA name of the CSV character set.
	Encoding string `mapstructure:"encoding"`
}

// Config is the process configuration of the budget allocator.
type Config struct {
	LogLevel string `mapstructure:"log-level"`
	LogDev   bool   `mapstructure:"log-dev"`

	// Strategy names the allocator strategy.
	Strategy string `mapstructure:"strategy"`
	// TimeLimit caps each solve. Zero selects the solver default.
	TimeLimit time.Duration `mapstructure:"time-limit"`
	// MaxNodes caps the branch-and-bound nodes of each solve. Zero means no cap.
	MaxNodes int `mapstructure:"max-nodes"`

	// MetricsTextfile, when set, receives the metrics after each command.
	MetricsTextfile string `mapstructure:"metrics-textfile"`
	// Trace prints OpenTelemetry spans to stderr.
	Trace bool `mapstructure:"trace"`

	Table TableConfig `mapstructure:"table"`

	// PoliciesFile is a YAML file of category policies, merged over Categories.
	PoliciesFile string `mapstructure:"policies-file"`
	// Categories holds inline category policies keyed like a policies file.
	Categories map[string]policy.CategoryPolicy `mapstructure:"categories"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDev, false)
	v.SetDefault(KeyStrategy, allocator.ILPStrategy.String())
	v.SetDefault(KeyTimeLimit, solver.DefaultTimeLimit)
	v.SetDefault(KeyMaxNodes, 0)
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyTrace, false)
	v.SetDefault(KeyPoliciesFile, "")
	v.SetDefault(KeySeparator, ",")
	v.SetDefault(KeyEncoding, "ISO-8859-1")
}

// AddFlags registers the process-wide flags on flags. Load binds them to
// their configuration keys.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(KeyConfigFile, "", "Path of a YAML configuration file")
	flags.String(KeyLogLevel, "info", "Log level: error, warn, info, debug or trace")
	flags.Bool(KeyLogDev, false, "Use the human readable development log encoder")
	flags.String(KeyStrategy, allocator.ILPStrategy.String(), "Allocator strategy")
	flags.Duration(KeyTimeLimit, solver.DefaultTimeLimit, "Time limit of each solve")
	flags.Int(KeyMaxNodes, 0, "Branch-and-bound node limit of each solve, 0 for none")
	flags.String(KeyMetricsTextfile, "", "Write Prometheus metrics to this file on exit")
	flags.Bool(KeyTrace, false, "Print OpenTelemetry spans to stderr")
	flags.String(KeyPoliciesFile, "", "YAML file of category policies")
	flags.String("separator", ",", "CSV field separator of price tables")
	flags.String("encoding", "ISO-8859-1", "Character set of CSV price tables")
}

// Load reads the configuration into a Config. flags may be nil.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := allocator.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.TimeLimit < 0 {
		errs = append(errs, fmt.Errorf("time-limit must not be negative, got %s", c.TimeLimit))
	}
	if c.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("max-nodes must not be negative, got %d", c.MaxNodes))
	}
	if utf8.RuneCountInString(c.Table.Separator) != 1 {
		errs = append(errs, fmt.Errorf("table.separator must be a single character, got %q", c.Table.Separator))
	}
	for key, p := range c.Categories {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("categories.%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// SeparatorRune returns the table separator as a rune.
func (c *Config) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Table.Separator)
	return r
}

// AllocatorConfig returns the allocator settings.
func (c *Config) AllocatorConfig() *allocator.AllocatorConfig {
	return &allocator.AllocatorConfig{
		TimeLimit: c.TimeLimit,
		MaxNodes:  c.MaxNodes,
	}
}

// CategoryPolicies returns the effective category policies: the inline
// entries, overridden key by key by the entries of PoliciesFile.
func (c *Config) CategoryPolicies(logger logr.Logger) (policy.CategoryPolicyData, error) {
	entries := make(map[string]policy.CategoryPolicy, len(c.Categories))
	for k, p := range c.Categories {
		entries[k] = p
	}
	if c.PoliciesFile != "" {
		fromFile, err := policy.ReadCategoryPolicyEntries(c.PoliciesFile)
		if err != nil {
			return nil, err
		}
		for k, p := range fromFile {
			entries[k] = p
		}
	}
	return policy.ParseCategoryPolicies(logger, entries), nil
}
