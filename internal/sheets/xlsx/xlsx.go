// Package xlsx keeps the ledger in a local spreadsheet file, one row per
// transaction on a single sheet.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"keuangan/internal/core"
	ports "keuangan/internal/sheets"
)

const DefaultSheetName = "Transactions"

// Store reads and rewrites the workbook on every call; the file is the only
// state.
type Store struct {
	mu     sync.Mutex
	path   string
	sheet  string
	create bool
}

var _ ports.LedgerStore = (*Store)(nil)

// New checks that the workbook exists, unless create is set, in which case
// it is written on the first append.
func New(path, sheet string, create bool) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("missing xlsx path")
	}
	if strings.TrimSpace(sheet) == "" {
		sheet = DefaultSheetName
	}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !create {
			return nil, ports.Unavailable(path, err)
		}
	}
	return &Store{path: path, sheet: sheet, create: create}, nil
}

func (s *Store) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && s.create {
			return core.Ledger{}, nil
		}
		return core.Ledger{}, ports.Unavailable(s.path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		if s.create {
			return core.Ledger{}, nil
		}
		return core.Ledger{}, ports.Unavailable(fmt.Sprintf("%s sheet %q", s.path, s.sheet), err)
	}
	rows, err := f.GetRows(s.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Ledger{}, fmt.Errorf("read %s: %w", s.sheet, err)
	}
	return ports.DecodeRows(rows, decodeDate), nil
}

// Append adds the rows below the last used row and saves the workbook once,
// so either every row lands or none does.
func (s *Store) Append(_ context.Context, txs ...core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, fresh, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.sheet, err)
	}
	next := len(rows) + 1
	if len(rows) == 0 {
		header := make([]any, len(ports.Header))
		for i, h := range ports.Header {
			header[i] = h
		}
		if err := setRow(f, s.sheet, next, header); err != nil {
			return err
		}
		next++
	}
	for _, t := range txs {
		if err := setRow(f, s.sheet, next, ports.EncodeRow(t)); err != nil {
			return err
		}
		next++
	}

	if fresh {
		err = f.SaveAs(s.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return ports.Unavailable(s.path, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// open returns the workbook with the ledger sheet present, creating either
// when allowed. fresh reports a workbook that does not exist on disk yet.
func (s *Store) open() (f *excelize.File, fresh bool, err error) {
	f, err = excelize.OpenFile(s.path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && s.create:
		f, fresh = excelize.NewFile(), true
		// A new workbook starts with one default sheet; reuse it.
		if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("name sheet %q: %w", s.sheet, err)
		}
		return f, true, nil
	default:
		return nil, false, ports.Unavailable(s.path, err)
	}

	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		if !s.create {
			f.Close()
			return nil, false, ports.Unavailable(fmt.Sprintf("%s sheet %q", s.path, s.sheet), err)
		}
		if _, err := f.NewSheet(s.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("add sheet %q: %w", s.sheet, err)
		}
	}
	return f, false, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// maxSerial is the first serial day number past 9999-12-31.
const maxSerial = 2958466

// decodeDate reads date cells typed by hand, which the workbook stores as
// serial day numbers, before falling back to text parsing. Numbers outside
// the serial range, such as 20240305, are text dates.
func decodeDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < maxSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
		}
		return core.DateOf(t), nil
	}
	return core.ParseDate(s)
}
