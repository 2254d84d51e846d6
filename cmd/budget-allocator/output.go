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
	"io"
	"text/tabwriter"

	"sigs.k8s.io/yaml"

	"github.com/paliers/budget-allocator/pkg/core"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, expected %s or %s", format, outputText, outputYAML)
	}
}

// printAllocation writes result to w. The text format lists categories in
// name order, followed by Other and the total.
func printAllocation(w io.Writer, result *core.Allocation, format string) error {
	if format == outputYAML {
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("encoding allocation: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	fmt.Fprintf(w, "Request: %s\nTier:    %s\nStatus:  %s\n\n", result.RequestID, result.Tier, result.Status)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\t")
	for _, name := range result.Categories() {
		fmt.Fprintf(tw, "%s\t%d\t\n", name, result.Amounts[name])
	}
	fmt.Fprintf(tw, "%s\t%d\t\n", core.OtherCategory, result.Other())
	fmt.Fprintf(tw, "%s\t%d\t\n", "Total", result.Total())
	return tw.Flush()
}
