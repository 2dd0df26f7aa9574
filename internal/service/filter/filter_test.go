package filter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(province, regency string, year domain.Year) domain.Record {
	return domain.Record{
		ID:           uuid.New(),
		ProvinceName: province,
		RegencyName:  regency,
		Total:        decimal.NewFromInt(10),
		Unit:         "ton",
		Year:         year,
	}
}

func yearPtr(y domain.Year) *domain.Year {
	return &y
}

func ids(records []domain.Record) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func fixture() []domain.Record {
	return []domain.Record{
		record("Jawa Barat", "Bandung", 2020),
		record("Jawa Timur", "Surabaya", 2021),
	}
}

func TestComputeVisible_Scenarios(t *testing.T) {
	rs := fixture()

	tests := []struct {
		name  string
		query string
		year  *domain.Year
		want  []uuid.UUID
	}{
		{name: "query matches both provinces", query: "jawa", want: []uuid.UUID{rs[0].ID, rs[1].ID}},
		{name: "year only", query: "", year: yearPtr(2020), want: []uuid.UUID{rs[0].ID}},
		{name: "text matches but year excludes", query: "bandung", year: yearPtr(2021), want: []uuid.UUID{}},
		{name: "regency match", query: "SURA", want: []uuid.UUID{rs[1].ID}},
		{name: "no match", query: "bali", want: []uuid.UUID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisible(rs, tt.query, tt.year)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestComputeVisible_EmptyQueryIsIdentity(t *testing.T) {
	rs := []domain.Record{
		record("Aceh", "Banda Aceh", 2019),
		record("Bali", "Denpasar", 2022),
		record("Aceh", "Banda Aceh", 2019),
	}

	assert.Equal(t, rs, ComputeVisible(rs, "", nil))
}

func TestComputeVisible_CaseInsensitive(t *testing.T) {
	rs := []domain.Record{record("Jawa Barat", "Bogor", 2020)}

	for _, q := range []string{"jawa", "JAWA", "Jawa B", "wa bar"} {
		assert.Len(t, ComputeVisible(rs, q, nil), 1, "query %q", q)
	}
}

func TestComputeVisible_YearIsExact(t *testing.T) {
	rs := []domain.Record{record("Jawa Barat", "Bogor", 2020)}

	assert.Empty(t, ComputeVisible(rs, "", yearPtr(2021)))
	assert.Len(t, ComputeVisible(rs, "", yearPtr(2020)), 1)
	assert.Len(t, ComputeVisible(rs, "", nil), 1)
}

func TestComputeVisible_PreservesOrder(t *testing.T) {
	rs := []domain.Record{
		record("Riau", "Pekanbaru", 2018),
		record("Jambi", "Muaro Jambi", 2018),
		record("Kepulauan Riau", "Batam", 2019),
		record("Riau", "Dumai", 2020),
	}

	got := ComputeVisible(rs, "riau", nil)
	assert.Equal(t, []uuid.UUID{rs[0].ID, rs[2].ID, rs[3].ID}, ids(got))
}

func TestComputeVisible_EmptyInput(t *testing.T) {
	got := ComputeVisible(nil, "jawa", nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComputeAvailableYears(t *testing.T) {
	rs := []domain.Record{
		record("A", "a", 2019),
		record("B", "b", 2022),
		record("C", "c", 2019),
		record("D", "d", 2020),
		record("E", "e", 2022),
	}

	assert.Equal(t, []domain.Year{2022, 2020, 2019}, ComputeAvailableYears(rs))
	assert.Equal(t, []domain.Year{2021, 2020}, ComputeAvailableYears(fixture()))
	assert.Empty(t, ComputeAvailableYears(nil))
}

func TestApply(t *testing.T) {
	rs := fixture()

	t.Run("years come from the full collection", func(t *testing.T) {
		view := Apply(rs, domain.FilterState{SearchQuery: "bandung"})
		assert.Equal(t, []uuid.UUID{rs[0].ID}, ids(view.Records))
		assert.Equal(t, []domain.Year{2021, 2020}, view.AvailableYears)
		assert.False(t, view.Empty)
	})

	t.Run("empty result is flagged", func(t *testing.T) {
		view := Apply(rs, domain.FilterState{SearchQuery: "bandung", SelectedYear: yearPtr(2021)})
		assert.Empty(t, view.Records)
		assert.True(t, view.Empty)
	})

	t.Run("facet panel does not affect filtering", func(t *testing.T) {
		open := Apply(rs, domain.FilterState{FacetPanelVisible: true})
		closed := Apply(rs, domain.FilterState{})
		assert.Equal(t, closed, open)
	})
}
