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

package e2e

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/api/meta"

	budgetv1alpha1 "github.com/paliers/budget-allocator/api/v1alpha1"
	"github.com/paliers/budget-allocator/pkg/core"
)

var planNames = []string{"mariage", "bapteme", "fete", "pot"}

// copyPlans copies the plan fixtures and the price table into a temporary
// directory laid out like testdata.
func copyPlans() string {
	dir := GinkgoT().TempDir()
	Expect(os.Mkdir(filepath.Join(dir, "plans"), 0o755)).To(Succeed())

	files := []string{"prix.csv"}
	for _, name := range planNames {
		files = append(files, filepath.Join("plans", name+".yaml"))
	}
	for _, f := range files {
		data, err := os.ReadFile(fixture(f))
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(dir, f), data, 0o600)).To(Succeed())
	}
	return dir
}

func planArgs(dir string, extra ...string) []string {
	args := []string{"plan"}
	for _, name := range planNames {
		args = append(args, "-f", filepath.Join(dir, "plans", name+".yaml"))
	}
	return append(args, extra...)
}

func parsePlans(out []byte) map[string]*budgetv1alpha1.BudgetPlan {
	plans := map[string]*budgetv1alpha1.BudgetPlan{}
	for _, doc := range strings.Split(string(out), "---\n") {
		plan, err := budgetv1alpha1.ParseBudgetPlan([]byte(doc))
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		plans[plan.Name] = plan
	}
	return plans
}

func categorySum(plan *budgetv1alpha1.BudgetPlan) int64 {
	var sum int64
	for _, v := range plan.Status.Allocations {
		sum += v
	}
	return sum
}

var _ = Describe("plan", func() {
	It("should solve every manifest concurrently and report the infeasible one", func() {
		dir := copyPlans()
		metricsPath := filepath.Join(dir, "budget.prom")

		session := runCLI(planArgs(dir, "--parallelism", "4", "--metrics-textfile", metricsPath)...)
		Expect(session.ExitCode()).To(Equal(1))
		Expect(string(session.Err.Contents())).To(ContainSubstring("1 of 4 plans are not ready"))

		plans := parsePlans(session.Out.Contents())
		Expect(plans).To(HaveLen(4))

		By("checking the mariage plan")
		mariage := plans["mariage"]
		Expect(mariage.IsReady()).To(BeTrue())
		Expect(mariage.Status.Tier).To(Equal("p2"))
		Expect(mariage.Status.SolveStatus).To(Equal(string(core.StatusOptimal)))
		Expect(mariage.Status.RequestID).NotTo(BeEmpty())
		Expect(mariage.Status.Allocations).To(HaveKeyWithValue("riz", int64(20)))
		Expect(mariage.Status.Allocations["fleurs"]).To(BeNumerically(">=", 3))
		Expect(mariage.Status.Allocations["fleurs"]).To(BeNumerically("<=", 15))
		Expect(mariage.Status.Allocations["bougies"]).To(BeNumerically(">=", 2))
		Expect(mariage.Status.Allocations["bougies"]).To(BeNumerically("<=", 8))
		Expect(categorySum(mariage)).To(Equal(int64(40)))

		By("checking the bapteme plan")
		bapteme := plans["bapteme"]
		Expect(bapteme.IsReady()).To(BeFalse())
		feasible := meta.FindStatusCondition(bapteme.Status.Conditions, budgetv1alpha1.TypeFeasible)
		Expect(feasible).NotTo(BeNil())
		Expect(feasible.Reason).To(Equal(budgetv1alpha1.ReasonInfeasible))
		Expect(feasible.Message).To(ContainSubstring("mandatory sum exceeds budget"))
		Expect(bapteme.Status.Allocations).To(BeEmpty())

		By("checking the fete plan")
		fete := plans["fete"]
		Expect(fete.IsReady()).To(BeTrue())
		Expect(fete.Status.Tier).To(Equal("p3"))
		Expect(fete.Status.Allocations).To(HaveKeyWithValue("savon", int64(6)))
		Expect(categorySum(fete)).To(Equal(int64(70)))

		By("checking the pot plan")
		pot := plans["pot"]
		Expect(pot.IsReady()).To(BeTrue())
		Expect(pot.Status.Tier).To(Equal("p1"))
		Expect(pot.Status.Allocations).To(Equal(map[string]int64{"riz": 10, core.OtherCategory: 0}))

		By("checking the metrics textfile")
		data, err := os.ReadFile(metricsPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`budget_allocator_requests_total{result="success"} 3`))
		Expect(string(data)).To(ContainSubstring(`budget_allocator_requests_total{result="infeasible"} 1`))
	})

	It("should write the status back into the manifests", func() {
		dir := copyPlans()
		session := runCLI(planArgs(dir, "--in-place")...)
		Expect(session.ExitCode()).To(Equal(1))

		data, err := os.ReadFile(filepath.Join(dir, "plans", "pot.yaml"))
		Expect(err).NotTo(HaveOccurred())
		pot, err := budgetv1alpha1.ParseBudgetPlan(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(pot.IsReady()).To(BeTrue())
		Expect(pot.Status.Allocations).To(HaveKeyWithValue("riz", int64(10)))

		By("solving the updated manifests again")
		again := runCLI("plan", "-f", filepath.Join(dir, "plans", "pot.yaml"))
		Expect(again.ExitCode()).To(Equal(0))
	})
})
