// Package http serves the ledger as a JSON API.
//
// This file turns request bodies and query strings into service inputs.
// Bodies may be JSON or form-encoded; both go through the same field names.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"keuangan/internal/core"
	"keuangan/internal/entry"
)

// maxBodyBytes caps submission bodies.
const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

func (p MonthParams) Period() core.Period {
	return core.Period{Year: p.Year, Month: p.Month}
}

// ParseMonthParams reads year and month from the query, defaulting both to
// the current month. Giving only one of them, or a non-numeric value, is a
// validation error.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}
	if err := requirePair(query); err != nil {
		return params, err
	}
	var err error
	if params.Year, err = intParam(query, "year", params.Year); err != nil {
		return params, err
	}
	if params.Month, err = intParam(query, "month", params.Month); err != nil {
		return params, err
	}
	if err := params.Period().Validate(); err != nil {
		return params, &core.ValidationError{Field: "period", Err: fmt.Errorf("%w: %v", core.ErrInvalidDate, err)}
	}
	return params, nil
}

// ParseOptionalPeriod returns nil when neither year nor month is given.
// Giving only one of them is rejected.
func ParseOptionalPeriod(query url.Values) (*core.Period, error) {
	if strings.TrimSpace(query.Get("year")) == "" && strings.TrimSpace(query.Get("month")) == "" {
		return nil, nil
	}
	params, err := ParseMonthParams(query, time.Time{})
	if err != nil {
		return nil, err
	}
	p := params.Period()
	return &p, nil
}

func requirePair(query url.Values) error {
	y, m := strings.TrimSpace(query.Get("year")), strings.TrimSpace(query.Get("month"))
	if (y == "") != (m == "") {
		return &core.ValidationError{Field: "period", Err: fmt.Errorf("%w: year and month go together", core.ErrInvalidDate)}
	}
	return nil
}

// ParseNewestFirst reads the order parameter of a listing: empty or
// "storage" keeps append order, "newest" sorts by date descending.
func ParseNewestFirst(query url.Values) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(query.Get("order"))) {
	case "", "storage":
		return false, nil
	case "newest":
		return true, nil
	}
	return false, &core.ValidationError{Field: "order", Err: fmt.Errorf("%w: order must be storage or newest", core.ErrInvalidType)}
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, &core.ValidationError{Field: key, Err: core.ErrInvalidDate}
	}
	return n, nil
}

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
		}
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if trimmed[0] == '{' {
		// Numbers stay json.Number so large amounts keep every digit.
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		p.err = dec.Decode(&p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Bool reads a checkbox-style flag: true, on, 1 or yes.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseSubmission maps the form fields onto an entry request. Amounts go
// through core.ParseAmount and dates through core.ParseDate; the date
// defaults to today. Plan checks are left to the entry builder.
func ParseSubmission(p *RequestBodyParser, today time.Time) (entry.Request, error) {
	var req entry.Request

	typ, err := core.ParseTxType(p.Get("type"))
	if err != nil {
		return req, &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	req.Type = typ

	if raw := p.Get("date"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return req, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
		}
		req.Date = d
	} else {
		req.Date = core.DateOf(today)
	}

	req.Category = p.Get("category")
	req.Source = p.Get("source")
	req.Destination = p.Get("destination")
	req.Note = p.Get("note")
	req.Saving = p.Bool("saving")
	req.DebtRepayment = p.Bool("debt_repayment")

	total, mine := p.Get("total_bill"), p.Get("my_part")
	if total != "" || mine != "" {
		split := &entry.Split{}
		if split.TotalBill, err = parseMoney("total_bill", total); err != nil {
			return req, err
		}
		if split.MyPart, err = parseMoney("my_part", mine); err != nil {
			return req, err
		}
		req.Split = split
		return req, nil
	}

	if req.Amount, err = parseMoney("amount", p.Get("amount")); err != nil {
		return req, err
	}
	return req, nil
}

func parseMoney(field, raw string) (core.Money, error) {
	v, err := core.ParseAmount(raw)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: core.ErrInvalidAmount}
	}
	return core.Money{Minor: v}, nil
}
