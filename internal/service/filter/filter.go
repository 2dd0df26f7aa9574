// Package filter derives the visible record list and the year facet from
// a record collection and a filter state. Every function here is pure.
package filter

import (
	"slices"
	"strings"

	"github.com/ougirez/regstat/internal/domain"
)

// ComputeVisible keeps the records whose province or regency name contains
// query (case-insensitively) and whose year equals year when year is set.
// Source order is preserved. The result is never nil.
func ComputeVisible(records []domain.Record, query string, year *domain.Year) []domain.Record {
	needle := strings.ToLower(query)

	visible := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !matchesText(r, needle) {
			continue
		}
		if year != nil && r.Year != *year {
			continue
		}
		visible = append(visible, r)
	}

	return visible
}

func matchesText(r domain.Record, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ProvinceName), needle) ||
		strings.Contains(strings.ToLower(r.RegencyName), needle)
}

// ComputeAvailableYears returns the distinct years of the whole collection,
// newest first.
func ComputeAvailableYears(records []domain.Record) []domain.Year {
	seen := make(map[domain.Year]struct{}, len(records))
	years := make([]domain.Year, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}

	slices.SortFunc(years, func(a, b domain.Year) int { return b - a })
	return years
}

// Apply runs both computations for one filter state. Facet panel
// visibility does not take part in filtering.
func Apply(records []domain.Record, state domain.FilterState) domain.View {
	visible := ComputeVisible(records, state.SearchQuery, state.SelectedYear)
	return domain.View{
		Records:        visible,
		AvailableYears: ComputeAvailableYears(records),
		Empty:          len(visible) == 0,
	}
}
