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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paliers/budget-allocator/internal/collector"
)

type allocateOptions struct {
	table      string
	budget     int64
	guests     int
	categories []string
	output     string
}

func (a *app) newAllocateCommand() *cobra.Command {
	opts := &allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate --table FILE --budget N --category NAME...",
		Short: "Split a budget across the chosen categories",
		Example: `  budget-allocator allocate --table prix.csv --budget 30 -c riz -c fleurs
  budget-allocator allocate --table prix.yaml --budget 500 -c riz,fleurs -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAllocate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.table, "table", "", "Price table file (.csv, .txt, .yaml, .yml or .json)")
	flags.Int64Var(&opts.budget, "budget", 0, "Budget to split")
	flags.IntVar(&opts.guests, "guests", 0, "Number of guests")
	flags.StringSliceVarP(&opts.categories, "category", "c", nil, "Category to fund, repeatable")
	flags.StringVarP(&opts.output, "output", "o", outputText, "Output format: text or yaml")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func (a *app) runAllocate(cmd *cobra.Command, opts *allocateOptions) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}
	if len(opts.categories) == 0 {
		return errors.New("at least one --category is required")
	}

	ctx := cmd.Context()
	table, err := collector.LoadTable(ctx, opts.table, a.sourceOptions())
	if err != nil {
		return fmt.Errorf("loading price table: %w", err)
	}

	result, err := a.optimizer.OptimizeBudget(ctx, table, opts.budget, opts.categories, opts.guests)
	if err != nil {
		return err
	}
	return printAllocation(a.out, result, opts.output)
}
