package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Year = int

type Record struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ProvinceName string          `db:"province_name" json:"province_name"`
	ProvinceCode string          `db:"province_code" json:"province_code"`
	RegencyName  string          `db:"regency_name" json:"regency_name"`
	RegencyCode  string          `db:"regency_code" json:"regency_code"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Unit         string          `db:"unit" json:"unit"`
	Year         Year            `db:"year" json:"year"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// FilterState is the per-screen selection. The zero value means
// "no query, all years, facet panel hidden".
type FilterState struct {
	SearchQuery       string `json:"search_query"`
	SelectedYear      *Year  `json:"selected_year"`
	FacetPanelVisible bool   `json:"facet_panel_visible"`
}

// View is what the renderer draws for one filter state.
type View struct {
	Records        []Record `json:"records"`
	AvailableYears []Year   `json:"available_years"`
	Empty          bool     `json:"empty"`
}

type ScreenView struct {
	ScreenID    uuid.UUID   `json:"screen_id"`
	FilterState FilterState `json:"filter_state"`
	View
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
