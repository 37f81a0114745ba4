package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"keuangan/internal/core"
	ports "keuangan/internal/sheets"

	oauthgoogle "golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is the tab used when GOOGLE_SHEET_NAME is unset.
const DefaultSheetName = "Transactions"

// Client stores the ledger in one tab of a Google spreadsheet, one row per
// transaction under the canonical header.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.LedgerStore = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = DefaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// Options locate the spreadsheet and its service-account credentials.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Transactions").
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return Open(ctx, Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: file,
	})
}

// Open creates a Sheets client authenticated as a service account. Inline
// JSON credentials win over a credentials file.
func Open(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, strings.TrimSpace(opts.CredentialsJSON), strings.TrimSpace(opts.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, opts.SheetName), nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	creds, err := oauthgoogle.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	service, err := gsheet.NewService(ctx, goption.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load reads columns A:G of the tab. Dates written by hand in a date-formatted
// cell come back as their displayed text and go through the tolerant parser.
func (c *Client) Load(ctx context.Context) (core.Ledger, error) {
	if c.svc == nil {
		return core.Ledger{}, ports.Unavailable("sheets service not initialized", nil)
	}
	rng := a1(c.sheetName, "A:G")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return core.Ledger{}, c.wrap("read "+rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = ports.CellStrings(r)
	}
	return ports.DecodeRows(rows, nil), nil
}

// Append sends every row in a single values.append call, prefixed with the
// header when the tab is empty. The API reports how many rows landed; a
// shortfall is a partial write.
func (c *Client) Append(ctx context.Context, txs ...core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if c.svc == nil {
		return ports.Unavailable("sheets service not initialized", nil)
	}

	empty, err := c.isEmpty(ctx)
	if err != nil {
		return err
	}
	values := make([][]any, 0, len(txs)+1)
	if empty {
		header := make([]any, len(ports.Header))
		for i, h := range ports.Header {
			header[i] = h
		}
		values = append(values, header)
	}
	for _, t := range txs {
		values = append(values, ports.EncodeRow(t))
	}

	rng := a1(c.sheetName, "A:G")
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return c.wrap("append "+rng, err)
	}

	var updated int64
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRows
	}
	if int(updated) < len(values) {
		written := int(updated)
		if empty {
			written--
		}
		if written < 0 {
			written = 0
		}
		return &ports.PartialWriteError{
			Written: written,
			Total:   len(txs),
			Err:     fmt.Errorf("sheets reported %d updated rows, sent %d", updated, len(values)),
		}
	}
	return nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (c *Client) Close() error { return nil }

func (c *Client) isEmpty(ctx context.Context) (bool, error) {
	rng := a1(c.sheetName, "A1:G1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, c.wrap("read "+rng, err)
	}
	return len(resp.Values) == 0, nil
}

// wrap maps missing spreadsheets, missing tabs, denied access and network
// failures to ErrBackingStoreUnavailable.
func (c *Client) wrap(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
			return ports.Unavailable(fmt.Sprintf("spreadsheet %s tab %q", c.spreadsheetID, c.sheetName), err)
		case http.StatusBadRequest:
			// Sheets answers 400 "Unable to parse range" for a missing tab.
			if strings.Contains(strings.ToLower(gerr.Message), "unable to parse range") {
				return ports.Unavailable(fmt.Sprintf("tab %q", c.sheetName), err)
			}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return ports.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// a1 builds an A1 range, quoting the tab name.
func a1(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}
