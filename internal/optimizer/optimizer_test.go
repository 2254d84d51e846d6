package optimizer

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paliers/budget-allocator/internal/engines/allocator"
	"github.com/paliers/budget-allocator/internal/metrics"
	"github.com/paliers/budget-allocator/internal/tracing"
	"github.com/paliers/budget-allocator/internal/utils/catclass"
	"github.com/paliers/budget-allocator/pkg/core"
)

func rizFleursTable() *core.PriceTable {
	return &core.PriceTable{
		Tiers: []string{"p1", "p2"},
		Categories: []core.CategoryRow{
			{Type: "super marché", Name: "riz", Prices: []string{"10", "20"}},
			{Type: "déco", Name: "fleurs", Prices: []string{"5", "15"}},
			{Type: "traiteur", Name: "buffet", Prices: []string{"n/a", "60"}},
		},
		Thresholds: []string{"10", "20"},
	}
}

var _ = Describe("Optimizer", func() {
	var (
		opt     *Optimizer
		emitter *metrics.MetricsEmitter
		table   *core.PriceTable
	)

	BeforeEach(func() {
		alloc, err := allocator.NewAllocator(allocator.ILPStrategy, allocator.DefaultAllocatorConfig())
		Expect(err).NotTo(HaveOccurred())
		emitter = metrics.NewMetricsEmitter()
		opt, err = NewOptimizer(alloc, catclass.DefaultClassConfig(), emitter)
		Expect(err).NotTo(HaveOccurred())
		table = rizFleursTable()
	})

	It("should reject a nil allocator", func() {
		_, err := NewOptimizer(nil, nil, nil)
		Expect(err).To(HaveOccurred())
	})

	Context("with riz and fleurs", func() {
		It("should fund riz exactly and give fleurs the rest", func() {
			result, err := opt.OptimizeBudget(testCtx, table, 30, []string{"Riz", " fleurs "}, 40)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(core.TierLabel("p2")))
			Expect(result.Budget).To(Equal(int64(30)))
			Expect(result.Amounts).To(Equal(map[string]int64{"riz": 20, "fleurs": 10, core.OtherCategory: 0}))
			Expect(result.Total()).To(Equal(int64(30)))
			Expect(result.Status).To(Equal(core.StatusOptimal))

			_, err = uuid.Parse(result.RequestID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should report infeasibility when riz takes the whole budget", func() {
			result, err := opt.OptimizeBudget(testCtx, table, 20, []string{"riz", "fleurs"}, 40)
			Expect(result).To(BeNil())
			Expect(core.IsInfeasible(err)).To(BeTrue(), "got %v", err)
		})

		It("should fit riz alone in a budget of 20", func() {
			result, err := opt.OptimizeBudget(testCtx, table, 20, []string{"riz"}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Amounts).To(HaveKeyWithValue("riz", int64(20)))
			Expect(result.Other()).To(BeZero())
		})

		It("should use the first tier for a budget below every threshold", func() {
			result, err := opt.OptimizeBudget(testCtx, table, 4, []string{"fleurs"}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(core.TierLabel("p1")))
			Expect(result.Amounts).To(HaveKeyWithValue("fleurs", int64(4)))
		})
	})

	It("should give the whole budget to Other when nothing matches", func() {
		result, err := opt.OptimizeBudget(testCtx, table, 25, []string{"champagne"}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Amounts).To(Equal(map[string]int64{core.OtherCategory: 25}))
	})

	It("should ignore the guest count", func() {
		few, err := opt.OptimizeBudget(testCtx, table, 30, []string{"riz", "fleurs"}, 1)
		Expect(err).NotTo(HaveOccurred())
		many, err := opt.OptimizeBudget(testCtx, table, 30, []string{"riz", "fleurs"}, 1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(many.Tier).To(Equal(few.Tier))
		Expect(many.Amounts).To(Equal(few.Amounts))
		Expect(many.RequestID).NotTo(Equal(few.RequestID))
	})

	DescribeTable("should fail",
		func(budget int64, chosen []string, check func(error) bool) {
			result, err := opt.OptimizeBudget(testCtx, table, budget, chosen, 0)
			Expect(result).To(BeNil())
			Expect(check(err)).To(BeTrue(), "got %v", err)
		},
		Entry("on a zero budget", int64(0), []string{"riz"}, func(err error) bool { return errors.Is(err, core.ErrInvalidBudget) }),
		Entry("on a negative budget", int64(-3), []string{"riz"}, func(err error) bool { return errors.Is(err, core.ErrInvalidBudget) }),
		Entry("on a non-numeric price", int64(5), []string{"buffet"}, core.IsDataFormatError),
	)

	It("should fail on a malformed threshold row", func() {
		table.Thresholds = []string{"10", "vingt"}
		_, err := opt.OptimizeBudget(testCtx, table, 30, []string{"riz"}, 0)
		Expect(core.IsDataFormatError(err)).To(BeTrue(), "got %v", err)
	})

	It("should record request metrics", func() {
		_, err := opt.OptimizeBudget(testCtx, table, 30, []string{"riz", "fleurs"}, 0)
		Expect(err).NotTo(HaveOccurred())
		_, err = opt.OptimizeBudget(testCtx, table, 20, []string{"riz", "fleurs"}, 0)
		Expect(err).To(HaveOccurred())

		families, err := emitter.Registry().Gather()
		Expect(err).NotTo(HaveOccurred())
		counts := map[string]float64{}
		for _, mf := range families {
			if mf.GetName() != "budget_allocator_requests_total" {
				continue
			}
			for _, m := range mf.GetMetric() {
				counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
			}
		}
		Expect(counts).To(Equal(map[string]float64{metrics.ResultSuccess: 1, metrics.ResultInfeasible: 1}))
	})

	It("should run concurrent requests independently", func() {
		const workers = 8
		results := make([]*core.Allocation, workers)
		errs := make([]error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				results[i], errs[i] = opt.OptimizeBudget(testCtx, rizFleursTable(), 30, []string{"riz", "fleurs"}, i)
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			Expect(errs[i]).NotTo(HaveOccurred())
			Expect(results[i].Amounts).To(Equal(results[0].Amounts))
		}
	})

	Context("with tracing enabled", func() {
		var recorder *tracetest.SpanRecorder

		BeforeEach(func() {
			previous := otel.GetTracerProvider()
			recorder = tracetest.NewSpanRecorder()
			provider := tracing.NewProvider(sdktrace.WithSpanProcessor(recorder))
			otel.SetTracerProvider(provider)
			DeferCleanup(func() {
				otel.SetTracerProvider(previous)
				Expect(provider.Shutdown(context.Background())).To(Succeed())
			})
		})

		It("should record the request and solve spans", func() {
			_, err := opt.OptimizeBudget(testCtx, table, 30, []string{"riz", "fleurs"}, 0)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, s := range recorder.Ended() {
				names = append(names, s.Name())
			}
			Expect(names).To(ConsistOf("allocator.Solve", "optimizer.OptimizeBudget"))
		})
	})
})
