package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jszwec/csvutil"
	"github.com/shinyyama/revenue-dashboard/internal/model"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrMalformedCSV   = errors.New("malformed csv")
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{"date", "city_code", "plans", "plan_revenue_crores"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// rawRow is decoded by header name; conversion happens in toRecord so a bad
// value only costs its own row.
type rawRow struct {
	Date    string `csv:"date"`
	City    string `csv:"city_code"`
	Plan    string `csv:"plans"`
	Revenue string `csv:"plan_revenue_crores"`
}

// Result is the cleaned content of one file.
type Result struct {
	Records   []model.RevenueRecord
	Dropped   int // unparsable date
	Malformed int // any other row-level problem
}

// Parse reads a delimited file with a header row. File-level problems return
// an error; row-level problems are logged and counted.
func Parse(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	// A quote inside an unquoted field is literal text, not a broken file.
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedCSV)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedCSV, err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	if dup := duplicateColumn(header); dup != "" {
		return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedCSV, dup)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	dec, err := csvutil.NewDecoder(r, header...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	res := &Result{}
	line := 1
	for {
		line++
		var row rawRow
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			// A short or long row is a row problem; anything else means the
			// reader lost its place in the file.
			if !errors.Is(err, csv.ErrFieldCount) && !errors.Is(err, csvutil.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
			}
			log.Printf("[ingest] skip row line=%d err=%v", line, err)
			res.Malformed++
			continue
		}

		date, ok := ParseDate(row.Date)
		if !ok {
			res.Dropped++
			continue
		}
		rec, err := toRecord(date, row)
		if err != nil {
			log.Printf("[ingest] skip row line=%d err=%v", line, err)
			res.Malformed++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// dayFirstLayouts cover dashed and dotted dates that dateparse rejects.
var dayFirstLayouts = []string{"2-1-2006", "2.1.2006"}

// ParseDate accepts mixed date formats and returns the calendar date at UTC
// midnight. Ambiguous numeric dates are read month first; when the first
// field cannot be a month the date is read day first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		var ok bool
		if t, ok = parseDayFirst(s); !ok {
			return time.Time{}, false
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toRecord(date time.Time, row rawRow) (model.RevenueRecord, error) {
	city, err := parseCityCode(row.City)
	if err != nil {
		return model.RevenueRecord{}, err
	}
	plan := strings.TrimSpace(row.Plan)
	if plan == "" {
		return model.RevenueRecord{}, errors.New("empty plan")
	}
	if len(plan) > model.PlanMaxSize {
		return model.RevenueRecord{}, fmt.Errorf("plan %q longer than %d", plan, model.PlanMaxSize)
	}
	revenue, err := strconv.ParseFloat(strings.TrimSpace(row.Revenue), 64)
	if err != nil || math.IsNaN(revenue) || math.IsInf(revenue, 0) {
		return model.RevenueRecord{}, fmt.Errorf("invalid revenue %q", row.Revenue)
	}
	return model.RevenueRecord{
		Date:          date,
		CityCode:      city,
		Plan:          plan,
		RevenueCrores: revenue,
	}, nil
}

// parseCityCode also accepts integral floats such as "7.0" that spreadsheet
// exports produce.
func parseCityCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid city_code %q", s)
	}
	return int(f), nil
}

func duplicateColumn(header []string) string {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if h == "" {
			continue
		}
		if seen[h] {
			return h
		}
		seen[h] = true
	}
	return ""
}

func missingColumns(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
