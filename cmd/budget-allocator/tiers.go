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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/paliers/budget-allocator/internal/collector"
	"github.com/paliers/budget-allocator/internal/engines/tier"
	"github.com/paliers/budget-allocator/pkg/core"
)

type tiersOptions struct {
	table string
	value float64
}

func (a *app) newTiersCommand() *cobra.Command {
	opts := &tiersOptions{}
	cmd := &cobra.Command{
		Use:   "tiers --table FILE [--value N]",
		Short: "List the tier thresholds of a price table",
		Long: `List the tier thresholds of a price table.

With --value, the tier that value resolves to is marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTiers(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.table, "table", "", "Price table file")
	flags.Float64Var(&opts.value, "value", 0, "Budget to resolve against the thresholds")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (a *app) runTiers(cmd *cobra.Command, opts *tiersOptions) error {
	table, err := collector.LoadTable(cmd.Context(), opts.table, a.sourceOptions())
	if err != nil {
		return fmt.Errorf("loading price table: %w", err)
	}
	thresholds, err := tier.Thresholds(table)
	if err != nil {
		return err
	}

	var resolved core.TierLabel
	if cmd.Flags().Changed("value") {
		if resolved, err = tier.ResolveTier(table, opts.value); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIER\tTHRESHOLD\t")
	for _, t := range thresholds {
		marker := ""
		if t.Label == resolved {
			marker = "<"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Label, t.Value.String(), marker)
	}
	return w.Flush()
}
