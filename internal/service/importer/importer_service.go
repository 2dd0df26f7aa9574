package importer

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/ougirez/regstat/internal/domain"
	"github.com/ougirez/regstat/internal/domain/dto"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/ougirez/regstat/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const batchSize = 500

type RecordUpserter interface {
	UpsertRecords(ctx context.Context, records []*domain.Record) (int64, error)
}

type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

type Service struct {
	store     RecordUpserter
	refresher Refresher
	client    *http.Client
}

func NewImporterService(store RecordUpserter, refresher Refresher) *Service {
	return &Service{
		store:     store,
		refresher: refresher,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ImportFromURL parses every record table on the page, upserts the rows and
// refreshes the record feed.
func (s *Service) ImportFromURL(ctx context.Context, pageURL string) (*dto.ImportRecordsResponse, error) {
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch, url-%s: %w", pageURL, err)
	}

	rows, err := ParseRecordTables(doc)
	if err != nil {
		return nil, fmt.Errorf("ParseRecordTables: %w", err)
	}
	if len(rows) == 0 {
		return nil, constants.ErrImportEmpty
	}

	records := dedupeRecords(rows)

	var (
		imported   int64
		importedMx sync.Mutex
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for start := 0; start < len(records); start += batchSize {
		batch := records[start:min(start+batchSize, len(records))]

		eg.Go(func() error {
			affected, err := s.store.UpsertRecords(egCtx, batch)
			if err != nil {
				return fmt.Errorf("store.UpsertRecords: %w", err)
			}

			importedMx.Lock()
			defer importedMx.Unlock()
			imported += affected
			return nil
		})
	}

	err = eg.Wait()
	if err != nil {
		return nil, fmt.Errorf("err in goroutine: %w", err)
	}

	logger.Infof(ctx, "imported %d records from %s", imported, pageURL)

	if _, err := s.refresher.Refresh(ctx); err != nil {
		logger.Errorf(ctx, "refresher.Refresh: %s", err.Error())
	}

	return &dto.ImportRecordsResponse{Imported: int(imported)}, nil
}

type recordKey struct {
	provinceCode string
	regencyCode  string
	year         domain.Year
	unit         string
}

// dedupeRecords keeps one record per upsert conflict key. A later row
// replaces an earlier one in place.
func dedupeRecords(rows []dto.RecordRow) []*domain.Record {
	records := make([]*domain.Record, 0, len(rows))
	seen := make(map[recordKey]int, len(rows))

	for _, row := range rows {
		key := recordKey{
			provinceCode: row.ProvinceCode,
			regencyCode:  row.RegencyCode,
			year:         row.Year,
			unit:         row.Unit,
		}
		if i, ok := seen[key]; ok {
			records[i] = row.ToDomain()
			continue
		}

		seen[key] = len(records)
		records = append(records, row.ToDomain())
	}

	return records
}

func (s *Service) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var resp *http.Response
	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("http.NewRequest: %w", err))
			}

			r, err := s.client.Do(req)
			if err != nil {
				return fmt.Errorf("http.Get: %w", err)
			}
			if r.StatusCode != http.StatusOK {
				_ = r.Body.Close()
				return fmt.Errorf("status code error: %d %s", r.StatusCode, r.Status)
			}

			resp = r
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 10),
			ctx,
		),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	return doc, nil
}

type column int

const (
	colProvinceName column = iota
	colProvinceCode
	colRegencyName
	colRegencyCode
	colTotal
	colUnit
	colYear
	columnsCount
)

var headerAliases = map[string]column{
	"nama_provinsi":       colProvinceName,
	"province_name":       colProvinceName,
	"kode_provinsi":       colProvinceCode,
	"province_code":       colProvinceCode,
	"nama_kabupaten_kota": colRegencyName,
	"regency_name":        colRegencyName,
	"kode_kabupaten_kota": colRegencyCode,
	"regency_code":        colRegencyCode,
	"total":               colTotal,
	"jumlah":              colTotal,
	"satuan":              colUnit,
	"unit":                colUnit,
	"tahun":               colYear,
	"year":                colYear,
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("/", "_", "-", "_", " ", "_").Replace(s)
	return s
}

// ParseRecordTables reads every table whose header row names all record
// columns. Tables with other headers are ignored.
func ParseRecordTables(doc *goquery.Document) ([]dto.RecordRow, error) {
	var (
		rows []dto.RecordRow
		err  error
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		positions, ok := headerPositions(table)
		if !ok {
			return true
		}

		table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return true
			}

			row, parseErr := parseRow(cells, positions)
			if parseErr != nil {
				err = fmt.Errorf("row %d: %w", i, parseErr)
				return false
			}

			rows = append(rows, row)
			return true
		})

		return err == nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func headerPositions(table *goquery.Selection) ([columnsCount]int, bool) {
	var positions [columnsCount]int
	for i := range positions {
		positions[i] = -1
	}

	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		if col, ok := headerAliases[normalizeHeader(th.Text())]; ok {
			positions[col] = i
		}
	})

	for _, p := range positions {
		if p < 0 {
			return positions, false
		}
	}
	return positions, true
}

func parseRow(cells *goquery.Selection, positions [columnsCount]int) (dto.RecordRow, error) {
	text := func(c column) string {
		return strings.TrimSpace(cells.Eq(positions[c]).Text())
	}

	total, err := parseTotal(text(colTotal))
	if err != nil {
		return dto.RecordRow{}, fmt.Errorf("failed to parse total: %w", err)
	}

	year, err := strconv.Atoi(text(colYear))
	if err != nil {
		return dto.RecordRow{}, fmt.Errorf("failed to parse year: %w", err)
	}

	return dto.RecordRow{
		ProvinceName: text(colProvinceName),
		ProvinceCode: text(colProvinceCode),
		RegencyName:  text(colRegencyName),
		RegencyCode:  text(colRegencyCode),
		Total:        total,
		Unit:         text(colUnit),
		Year:         year,
	}, nil
}

// parseTotal accepts "1234.5", "1234,5" and "1.234,5".
func parseTotal(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	return decimal.NewFromString(s)
}
