package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/paliers/budget-allocator/internal/logging"
	"github.com/paliers/budget-allocator/pkg/core"
)

const (
	// GlobalDefaultsKey is the policy entry applying to every category type
	// without an entry of its own.
	GlobalDefaultsKey = "default"

	// DefaultLowerBoundDivisor sets the lower bound of a discretionary
	// category to floor(price / 4).
	DefaultLowerBoundDivisor = 4
)

// DefaultEssentialTypes are the category types funded at exactly their tier price.
var DefaultEssentialTypes = []string{"super marché", "produits beautés"}

// CategoryPolicy is the allocation policy of one category type.
type CategoryPolicy struct {
	// CategoryType is the type this entry applies to (only used in override entries).
	CategoryType string `yaml:"type,omitempty" json:"type,omitempty" mapstructure:"type"`

	// Essential forces an equality bound at the tier price.
	// Use pointer to allow omitting this field and inheriting from global defaults.
	Essential *bool `yaml:"essential,omitempty" json:"essential,omitempty" mapstructure:"essential"`

	// LowerBoundDivisor sets the lower bound of a discretionary category to
	// floor(price / LowerBoundDivisor). Must be >= 1 when set.
	LowerBoundDivisor float64 `yaml:"lowerBoundDivisor,omitempty" json:"lowerBoundDivisor,omitempty" mapstructure:"lowerBoundDivisor"`
}

// CategoryPolicyData holds the policies of all category types, keyed by
// normalized type, plus GlobalDefaultsKey.
type CategoryPolicyData map[string]CategoryPolicy

// Validate checks for invalid policy values.
func (c *CategoryPolicy) Validate() error {
	if c.LowerBoundDivisor != 0 && c.LowerBoundDivisor < 1 {
		return fmt.Errorf("lowerBoundDivisor must be >= 1, got %.2f", c.LowerBoundDivisor)
	}
	return nil
}

// DefaultCategoryPolicies returns the built-in policies: discretionary
// categories bounded to [floor(price/4), price] and the DefaultEssentialTypes
// funded exactly.
func DefaultCategoryPolicies() CategoryPolicyData {
	out := CategoryPolicyData{
		GlobalDefaultsKey: {
			Essential:         ptr.To(false),
			LowerBoundDivisor: DefaultLowerBoundDivisor,
		},
	}
	for _, t := range DefaultEssentialTypes {
		out[core.NormalizeName(t)] = CategoryPolicy{CategoryType: t, Essential: ptr.To(true)}
	}
	return out
}

// ParseCategoryPolicies validates raw policy entries and merges them over
// DefaultCategoryPolicies field by field, so an entry that only sets a
// divisor keeps the type's essential flag. The entries format:
//   - "default": policy for every type without an override
//   - "<override-name>": per-type policy with a type field
//
// Invalid entries are logged and skipped.
func ParseCategoryPolicies(logger logr.Logger, entries map[string]CategoryPolicy) CategoryPolicyData {
	out := DefaultCategoryPolicies()
	if len(entries) == 0 {
		return out
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	typeToKey := make(map[string]string)
	for _, key := range keys {
		policy := entries[key]

		if err := policy.Validate(); err != nil {
			logger.Info("Invalid category policy entry, skipping",
				"key", key,
				"error", err.Error())
			continue
		}

		if key == GlobalDefaultsKey {
			out[GlobalDefaultsKey] = mergePolicy(out[GlobalDefaultsKey], policy)
			continue
		}

		if policy.CategoryType == "" {
			logger.Info("Skipping category policy without type field",
				"key", key)
			continue
		}

		normalized := core.NormalizeName(policy.CategoryType)
		if winner, exists := typeToKey[normalized]; exists {
			logger.Info("Duplicate type found in category policies - first key wins",
				"type", policy.CategoryType,
				"winningKey", winner,
				"duplicateKey", key)
			continue
		}
		typeToKey[normalized] = key
		out[normalized] = mergePolicy(out[normalized], policy)
	}

	logger.V(logging.DEBUG).Info("Parsed category policies",
		"typeCount", len(out)-1)

	return out
}

// LoadCategoryPoliciesFile reads a YAML file of policy entries and parses it
// with ParseCategoryPolicies.
func LoadCategoryPoliciesFile(logger logr.Logger, path string) (CategoryPolicyData, error) {
	entries, err := ReadCategoryPolicyEntries(path)
	if err != nil {
		return nil, err
	}
	return ParseCategoryPolicies(logger, entries), nil
}

// ReadCategoryPolicyEntries reads the raw policy entries of a YAML file.
func ReadCategoryPolicyEntries(path string) (map[string]CategoryPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category policies: %w", err)
	}
	var entries map[string]CategoryPolicy
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing category policies %s: %w", path, err)
	}
	return entries, nil
}

func mergePolicy(base, override CategoryPolicy) CategoryPolicy {
	result := base
	if override.CategoryType != "" {
		result.CategoryType = override.CategoryType
	}
	if override.Essential != nil {
		result.Essential = override.Essential
	}
	if override.LowerBoundDivisor != 0 {
		result.LowerBoundDivisor = override.LowerBoundDivisor
	}
	return result
}

// GetPolicy returns the effective policy of a category type.
// It merges the type-specific policy with global defaults.
func (data CategoryPolicyData) GetPolicy(categoryType string) CategoryPolicy {
	defaults := data[GlobalDefaultsKey]
	policy, ok := data[core.NormalizeName(categoryType)]
	if !ok {
		return defaults
	}
	return mergePolicy(defaults, policy)
}

// IsEssential reports whether a category type is funded at exactly its tier price.
func (data CategoryPolicyData) IsEssential(categoryType string) bool {
	return ptr.Deref(data.GetPolicy(categoryType).Essential, false)
}

// LowerBoundDivisorFor returns the lower-bound divisor of a category type.
func (data CategoryPolicyData) LowerBoundDivisorFor(categoryType string) decimal.Decimal {
	d := data.GetPolicy(categoryType).LowerBoundDivisor
	if d == 0 {
		d = DefaultLowerBoundDivisor
	}
	return decimal.NewFromFloat(d)
}

// EssentialTypes returns the normalized types whose effective policy is
// essential, sorted.
func (data CategoryPolicyData) EssentialTypes() []string {
	var out []string
	for key := range data {
		if key == GlobalDefaultsKey {
			continue
		}
		if data.IsEssential(key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
