package catclass

import (
	"sort"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"
	"k8s.io/utils/ptr"

	"github.com/paliers/budget-allocator/internal/config"
	"github.com/paliers/budget-allocator/internal/logging"
)

// DiscoverClassConfig derives the classification config from category policies.
//
// The "default" policy sets DefaultClass and DefaultDivisor. Types whose
// effective policy is essential land in EssentialTypes, per-type policies
// explicitly marked non-essential in DiscretionaryTypes, and per-type
// divisors in Divisors. A nil or empty policy set yields DefaultClassConfig.
func DiscoverClassConfig(logger logr.Logger, policies config.CategoryPolicyData) ClassConfig {
	if len(policies) == 0 {
		logger.V(logging.DEBUG).Info("No category policies provided, using default classification")
		return DefaultClassConfig()
	}

	defaults := policies[config.GlobalDefaultsKey]
	result := ClassConfig{
		DefaultClass:   ClassDiscretionary,
		DefaultDivisor: decimal.NewFromInt(config.DefaultLowerBoundDivisor),
		Divisors:       make(map[string]decimal.Decimal),
	}
	if ptr.Deref(defaults.Essential, false) {
		result.DefaultClass = ClassEssential
	}
	if defaults.LowerBoundDivisor >= 1 {
		result.DefaultDivisor = decimal.NewFromFloat(defaults.LowerBoundDivisor)
	}

	result.EssentialTypes = policies.EssentialTypes()

	keys := make([]string, 0, len(policies))
	for k := range policies {
		if k != config.GlobalDefaultsKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		policy := policies[key]
		if policy.Essential != nil && !policies.IsEssential(key) {
			result.DiscretionaryTypes = append(result.DiscretionaryTypes, key)
		}
		if policy.LowerBoundDivisor >= 1 {
			result.Divisors[key] = policies.LowerBoundDivisorFor(key)
		}
	}

	logger.V(logging.DEBUG).Info("Discovered category classification",
		"essentialTypes", result.EssentialTypes,
		"discretionaryTypes", result.DiscretionaryTypes,
		"defaultClass", result.DefaultClass,
		"defaultDivisor", result.DefaultDivisor.String())
	return result
}
