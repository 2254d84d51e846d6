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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	budgetv1alpha1 "github.com/paliers/budget-allocator/api/v1alpha1"
	"github.com/paliers/budget-allocator/internal/collector"
	"github.com/paliers/budget-allocator/internal/logging"
)

type planOptions struct {
	files       []string
	parallelism int
	inPlace     bool
}

func (a *app) newPlanCommand() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan -f FILE [-f FILE...]",
		Short: "Solve BudgetPlan manifests and print them with their status",
		Long: `Solve BudgetPlan manifests and print them with their status.

Each manifest names a price table (relative to the manifest), a budget and the
categories to fund. Manifests are solved concurrently. The command fails when
any plan does not end up Ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPlan(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.files, "filename", "f", nil, "BudgetPlan manifest, repeatable")
	flags.IntVar(&opts.parallelism, "parallelism", runtime.GOMAXPROCS(0), "Maximum number of plans solved at once")
	flags.BoolVar(&opts.inPlace, "in-place", false, "Write the status back into each manifest")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

func (a *app) runPlan(cmd *cobra.Command, opts *planOptions) error {
	if opts.parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", opts.parallelism)
	}

	plans := make([]*budgetv1alpha1.BudgetPlan, len(opts.files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.parallelism)
	for i, path := range opts.files {
		g.Go(func() error {
			plan, err := a.solvePlan(ctx, path)
			if err != nil {
				return err
			}
			plans[i] = plan
			if opts.inPlace {
				return writePlan(path, plan)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, plan := range plans {
		data, err := budgetv1alpha1.MarshalBudgetPlan(plan)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", opts.files[i], err)
		}
		if i > 0 {
			fmt.Fprintln(a.out, "---")
		}
		if _, err := a.out.Write(data); err != nil {
			return err
		}
		if !plan.IsReady() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plans are not ready", failed, len(plans))
	}
	return nil
}

// solvePlan reads the manifest at path and records the allocation outcome
// in its status. Only an unreadable or invalid manifest is returned as an
// error; table and allocation failures land in the status conditions.
func (a *app) solvePlan(ctx context.Context, path string) (*budgetv1alpha1.BudgetPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	plan, err := budgetv1alpha1.ParseBudgetPlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger := logging.FromContext(ctx).WithValues("plan", plan.Name, "file", path)
	ctx = logging.IntoContext(ctx, logger)

	tablePath := plan.Spec.TableRef
	if !filepath.IsAbs(tablePath) {
		tablePath = filepath.Join(filepath.Dir(path), tablePath)
	}
	table, err := collector.LoadTable(ctx, tablePath, a.sourceOptions())
	if err != nil {
		logger.Error(err, "Price table unavailable", "table", tablePath)
		plan.SetTableUnavailable(err, metav1.Now())
		return plan, nil
	}

	result, err := a.optimizer.OptimizeBudget(ctx, table, plan.Spec.Budget, plan.Spec.Categories, plan.Spec.GuestCount)
	if err != nil {
		logger.Error(err, "Budget plan could not be allocated")
	}
	plan.SetResult(result, err, metav1.Now())
	return plan, nil
}

func writePlan(path string, plan *budgetv1alpha1.BudgetPlan) error {
	data, err := budgetv1alpha1.MarshalBudgetPlan(plan)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
