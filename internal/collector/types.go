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
	"errors"
	"strings"

	"github.com/paliers/budget-allocator/pkg/core"
)

var (
	// ErrUnsupportedFormat is returned for files no source can read.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrEmptyTable is returned when a table has no threshold row.
	ErrEmptyTable = errors.New("price table is empty")

	// ErrMalformedTable is returned when a table does not follow the
	// type, name, tiers... layout.
	ErrMalformedTable = errors.New("malformed price table")
)

const (
	// typeColumn and nameColumn are the fixed leading columns; tiers follow.
	typeColumn  = 0
	nameColumn  = 1
	firstTierAt = 2
)

// RawTable is a table as read from a source, before cleaning.
type RawTable struct {
	// Header is the first record: type, name, then one label per tier.
	Header []string

	// Records are the remaining records; the last one holds the thresholds.
	Records [][]string
}

// TierLabels returns the trimmed tier headers.
func (t RawTable) TierLabels() []string {
	if len(t.Header) <= firstTierAt {
		return nil
	}
	labels := make([]string, 0, len(t.Header)-firstTierAt)
	for _, h := range t.Header[firstTierAt:] {
		labels = append(labels, strings.TrimSpace(h))
	}
	return labels
}

// RawTableFrom lays out a core.PriceTable as a RawTable, so that tables
// decoded from structured formats go through the same cleaning as CSV ones.
func RawTableFrom(table *core.PriceTable) RawTable {
	raw := RawTable{Header: append([]string{"type", "name"}, table.Tiers...)}
	for _, row := range table.Categories {
		raw.Records = append(raw.Records, append([]string{row.Type, row.Name}, row.Prices...))
	}
	if len(table.Thresholds) > 0 {
		raw.Records = append(raw.Records, append([]string{"", ""}, table.Thresholds...))
	}
	return raw
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
