package collector

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/paliers/budget-allocator/pkg/core"
)

// invalidNames are the name cells spreadsheet exports leave in place of a
// missing or broken category.
var invalidNames = map[string]struct{}{
	"":        {},
	"nan":     {},
	"#value!": {},
}

// Clean normalizes raw into a core.PriceTable. Every cell is lowercased and
// trimmed; tier headers are only trimmed. Blank records are skipped and the
// last remaining record becomes the threshold row. Exact duplicate
// categories collapse into one, and categories with an invalid name are
// dropped.
func Clean(raw RawTable) (*core.PriceTable, error) {
	tiers := raw.TierLabels()
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: header %q needs type, name and at least one tier column",
			ErrMalformedTable, raw.Header)
	}
	width := firstTierAt + len(tiers)

	var records [][]string
	for i, record := range raw.Records {
		if blankRecord(record) {
			continue
		}
		fitted, err := fit(record, width)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, err)
		}
		records = append(records, normalizeRecord(fitted))
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	thresholds := records[len(records)-1][firstTierAt:]
	table := &core.PriceTable{
		Tiers:      tiers,
		Thresholds: thresholds,
	}

	seen := make(map[string]struct{})
	names := make(map[string]struct{})
	for _, record := range records[:len(records)-1] {
		if _, bad := invalidNames[record[nameColumn]]; bad {
			continue
		}
		key := strings.Join(record, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		name := core.NormalizeName(record[nameColumn])
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("%w: category %q appears twice with different values",
				ErrMalformedTable, name)
		}
		names[name] = struct{}{}

		table.Categories = append(table.Categories, core.CategoryRow{
			Type:   record[typeColumn],
			Name:   record[nameColumn],
			Prices: record[firstTierAt:],
		})
	}
	return table, nil
}

// fit pads record with empty cells up to width. Extra trailing cells are
// accepted only when empty.
func fit(record []string, width int) ([]string, error) {
	if len(record) > width {
		if !blankRecord(record[width:]) {
			return nil, fmt.Errorf("%w: %d cells for %d columns", ErrMalformedTable, len(record), width)
		}
		return record[:width], nil
	}
	out := make([]string, width)
	copy(out, record)
	return out, nil
}

func normalizeRecord(record []string) []string {
	lower := cases.Lower(language.Und)
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = strings.TrimSpace(lower.String(cell))
	}
	return out
}
