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

package collector

import (
	"context"

	"github.com/paliers/budget-allocator/pkg/core"
)

// TableSource is the interface for pluggable price table sources.
// Implementations include CSVSource and YAMLSource.
type TableSource interface {
	// Name returns a description of the source (e.g., "csv:prices.csv").
	Name() string

	// Load reads the source and returns the cleaned price table.
	Load(ctx context.Context) (*core.PriceTable, error)
}
