package catclass

import (
	"github.com/go-logr/logr"
	"k8s.io/utils/ptr"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paliers/budget-allocator/internal/config"
	"github.com/paliers/budget-allocator/pkg/core"
)

var _ = Describe("DiscoverClassConfig", func() {
	It("should return the default config for empty policies", func() {
		Expect(DiscoverClassConfig(logr.Discard(), nil)).To(Equal(DefaultClassConfig()))
	})

	It("should list the default essential types", func() {
		result := DiscoverClassConfig(logr.Discard(), config.DefaultCategoryPolicies())
		Expect(result.EssentialTypes).To(ConsistOf("super marché", "produits beautés"))
		Expect(result.DefaultClass).To(Equal(ClassDiscretionary))
		Expect(result.DefaultDivisor.String()).To(Equal("4"))
	})

	It("should carry per-type overrides", func() {
		policies := config.ParseCategoryPolicies(logr.Discard(), map[string]config.CategoryPolicy{
			"traiteur": {CategoryType: "Traiteur", Essential: ptr.To(true)},
			"beaute":   {CategoryType: "produits beautés", Essential: ptr.To(false)},
			"deco":     {CategoryType: "déco", LowerBoundDivisor: 2},
		})

		result := DiscoverClassConfig(logr.Discard(), policies)
		Expect(result.Classify("traiteur")).To(Equal(ClassEssential))
		Expect(result.Classify("produits beautés")).To(Equal(ClassDiscretionary))
		Expect(result.Classify("super marché")).To(Equal(ClassEssential))
		Expect(result.LowerBoundDivisor("déco").String()).To(Equal("2"))
	})

	It("should keep a built-in essential type essential when only its divisor is overridden", func() {
		policies := config.ParseCategoryPolicies(logr.Discard(), map[string]config.CategoryPolicy{
			"groceries": {CategoryType: "super marché", LowerBoundDivisor: 2},
		})

		result := DiscoverClassConfig(logr.Discard(), policies)
		Expect(result.Classify("super marché")).To(Equal(ClassEssential))
		Expect(result.Classify("super marché").Kind()).To(Equal(core.ConstraintEquality))
		Expect(result.LowerBoundDivisor("super marché").String()).To(Equal("2"))
	})

	It("should make unlisted types essential when the default says so", func() {
		policies := config.ParseCategoryPolicies(logr.Discard(), map[string]config.CategoryPolicy{
			config.GlobalDefaultsKey: {Essential: ptr.To(true), LowerBoundDivisor: 3},
		})

		result := DiscoverClassConfig(logr.Discard(), policies)
		Expect(result.DefaultClass).To(Equal(ClassEssential))
		Expect(result.DefaultDivisor.String()).To(Equal("3"))
		Expect(result.Classify("fleurs")).To(Equal(ClassEssential))
	})
})
