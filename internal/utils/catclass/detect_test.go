package catclass

import (
	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paliers/budget-allocator/pkg/core"
)

var _ = Describe("ClassConfig.Classify", func() {
	var defaultConfig ClassConfig

	BeforeEach(func() {
		defaultConfig = DefaultClassConfig()
	})

	Context("with the default config", func() {
		It("should classify grocery as essential", func() {
			Expect(defaultConfig.Classify("super marché")).To(Equal(ClassEssential))
		})

		It("should classify personal care as essential", func() {
			Expect(defaultConfig.Classify("produits beautés")).To(Equal(ClassEssential))
		})

		It("should ignore case and surrounding spaces", func() {
			Expect(defaultConfig.Classify("  SUPER   Marché ")).To(Equal(ClassEssential))
		})

		It("should classify other types as discretionary", func() {
			Expect(defaultConfig.Classify("déco")).To(Equal(ClassDiscretionary))
			Expect(defaultConfig.Classify("")).To(Equal(ClassDiscretionary))
		})
	})

	Context("with a custom config", func() {
		It("should honor discretionary overrides over an essential default", func() {
			config := ClassConfig{
				DiscretionaryTypes: []string{"déco"},
				DefaultClass:       ClassEssential,
			}
			Expect(config.Classify("déco")).To(Equal(ClassDiscretionary))
			Expect(config.Classify("traiteur")).To(Equal(ClassEssential))
		})

		It("should fall back to discretionary when no default class is set", func() {
			Expect(ClassConfig{}.Classify("traiteur")).To(Equal(ClassDiscretionary))
		})
	})

	Context("mapping classes to constraint kinds", func() {
		It("should map essential to equality", func() {
			Expect(ClassEssential.Kind()).To(Equal(core.ConstraintEquality))
		})

		It("should map discretionary to inequality", func() {
			Expect(ClassDiscretionary.Kind()).To(Equal(core.ConstraintInequality))
		})
	})
})

var _ = Describe("LowerBoundDivisor", func() {
	It("should default to 4", func() {
		Expect(DefaultClassConfig().LowerBoundDivisor("déco").String()).To(Equal("4"))
		Expect(ClassConfig{}.LowerBoundDivisor("déco").String()).To(Equal("4"))
	})

	It("should prefer a per-type divisor", func() {
		config := DefaultClassConfig()
		config.Divisors = map[string]decimal.Decimal{"déco": decimal.NewFromInt(2)}
		Expect(config.LowerBoundDivisor(" Déco ").String()).To(Equal("2"))
		Expect(config.LowerBoundDivisor("fleurs").String()).To(Equal("4"))
	})

	It("should ignore divisors below 1", func() {
		config := ClassConfig{Divisors: map[string]decimal.Decimal{"déco": decimal.NewFromFloat(0.5)}}
		Expect(config.LowerBoundDivisor("déco").String()).To(Equal("4"))
	})
})
