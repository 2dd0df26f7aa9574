package dto

import (
	"github.com/ougirez/regstat/internal/domain"
	"github.com/shopspring/decimal"
)

type ListRecordsRequest struct {
	Query        string       `query:"query" validate:"max=256"`
	Year         *domain.Year `query:"year"`
	ProvinceCode string       `query:"province_code" validate:"max=16"`
}

type SetQueryRequest struct {
	Query string `json:"query" validate:"max=256"`
}

type SelectYearRequest struct {
	Year *domain.Year `json:"year"`
}

type ImportRecordsRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type ImportRecordsResponse struct {
	Imported int `json:"imported"`
}

// RecordRow is one parsed table row before it is turned into a domain.Record.
type RecordRow struct {
	ProvinceName string
	ProvinceCode string
	RegencyName  string
	RegencyCode  string
	Total        decimal.Decimal
	Unit         string
	Year         domain.Year
}

func (r RecordRow) ToDomain() *domain.Record {
	return &domain.Record{
		ProvinceName: r.ProvinceName,
		ProvinceCode: r.ProvinceCode,
		RegencyName:  r.RegencyName,
		RegencyCode:  r.RegencyCode,
		Total:        r.Total,
		Unit:         r.Unit,
		Year:         r.Year,
	}
}
