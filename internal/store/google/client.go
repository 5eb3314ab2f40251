// Package google stores the entry log in a Google Sheets worksheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cafeprep/internal/cache"
	"cafeprep/internal/core"
	"cafeprep/internal/store"
)

const (
	DefaultSheetName = "Sheet1"
	logKey           = "entries"
)

var (
	ErrMissingCredentials = errors.New("missing google credentials")
	ErrSheetNotFound      = errors.New("worksheet not found")
)

var (
	_ store.Store       = (*Client)(nil)
	_ store.Invalidator = (*Client)(nil)
)

// Config selects the spreadsheet and the credentials used to reach it.
// Service account credentials win over an OAuth client and token pair.
type Config struct {
	SpreadsheetID string
	SheetName     string

	ServiceAccountJSON []byte
	OAuthClientJSON    []byte
	OAuthTokenJSON     []byte

	CacheTTL time.Duration
	Logger   *slog.Logger

	// Options are appended after the credential options (endpoint overrides in tests).
	Options []goption.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *slog.Logger
	cache         *cache.LRUCache[[]core.Entry]

	mu     sync.Mutex
	header store.Header

	// gen counts invalidations; a load only fills the cache when no append
	// happened while it was fetching.
	cacheMu sync.Mutex
	gen     uint64
}

// ReadCredentials returns the inline JSON when set, otherwise the content of
// path. Both empty yields nil and no error.
func ReadCredentials(inline, path string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	path = strings.TrimSpace(path)
	switch {
	case inline != "":
		return []byte(inline), nil
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return b, nil
	default:
		return nil, nil
	}
}

// NewClient connects to the spreadsheet, checks the worksheet exists and
// makes sure it carries a header row. Failures wrap core.ErrStoreConnect.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("%w: missing spreadsheet id", core.ErrStoreConnect)
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := credentialOptions(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreConnect, err)
	}
	svc, err := gsheet.NewService(ctx, append(opts, cfg.Options...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: create sheets service: %w", core.ErrStoreConnect, err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger.With("component", "store", "backend", "sheets", "sheet", sheet),
		cache:         cache.NewLRUCache[[]core.Entry](1, cfg.CacheTTL),
	}
	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreConnect, err)
	}
	c.logger.InfoContext(ctx, "Connected to spreadsheet", "spreadsheet_id", cfg.SpreadsheetID)
	return c, nil
}

func credentialOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	switch {
	case len(cfg.ServiceAccountJSON) > 0:
		return []goption.ClientOption{
			goption.WithCredentialsJSON(cfg.ServiceAccountJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case len(cfg.OAuthClientJSON) > 0:
		oc, err := goauth.ConfigFromJSON(cfg.OAuthClientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		if len(cfg.OAuthTokenJSON) == 0 {
			return nil, fmt.Errorf("oauth token: %w (run oauth-init first)", ErrMissingCredentials)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(cfg.OAuthTokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
		return []goption.ClientOption{goption.WithTokenSource(oc.TokenSource(ctx, &tok))}, nil
	case len(cfg.Options) > 0:
		return nil, nil
	default:
		return nil, ErrMissingCredentials
	}
}

func (c *Client) connect(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("open spreadsheet %s: %w", c.spreadsheetID, err)
	}
	found := false
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheet {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, c.sheet)
	}

	rng := a1(c.sheet, "1:1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		row := make([]any, len(core.Columns))
		for i, col := range core.Columns {
			row[i] = col
		}
		vr := &gsheet.ValueRange{Values: [][]any{row}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1(c.sheet, "A1"), vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		c.setHeader(store.CanonicalHeader())
		c.logger.InfoContext(ctx, "Wrote header row to empty worksheet")
		return nil
	}
	h, err := store.ParseHeader(toRows(resp.Values)[0])
	if err != nil {
		return err
	}
	c.setHeader(h)
	return nil
}

func (c *Client) setHeader(h store.Header) {
	c.mu.Lock()
	c.header = h
	c.mu.Unlock()
}

func (c *Client) currentHeader() store.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.header == nil {
		return store.CanonicalHeader()
	}
	return c.header
}

// Append adds the entry as a new row after the last row of the worksheet.
// The returned reference is the updated A1 range.
func (c *Client) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	if c.svc == nil {
		return "", fmt.Errorf("%w: sheets service not initialized", core.ErrStoreWrite)
	}

	vr := &gsheet.ValueRange{Values: [][]any{toCells(c.currentHeader(), e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(c.sheet, "A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: append to %s: %w", core.ErrStoreWrite, c.sheet, err)
	}
	c.Invalidate()

	ref := c.sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Entry appended", "ref", ref, "date", e.Date, "item", e.Item)
	return ref, nil
}

// LoadAll returns every decodable row of the worksheet in row order.
func (c *Client) LoadAll(ctx context.Context) ([]core.Entry, error) {
	if entries, ok := c.cache.Get(logKey); ok {
		return append([]core.Entry(nil), entries...), nil
	}
	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets service not initialized", core.ErrStoreRead)
	}
	c.cacheMu.Lock()
	gen := c.gen
	c.cacheMu.Unlock()

	rng := a1(c.sheet, "A:Z")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStoreRead, rng, err)
	}

	rows := toRows(resp.Values)
	entries, skipped, err := store.DecodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrStoreRead, c.sheet, err)
	}
	for _, serr := range skipped {
		c.logger.WarnContext(ctx, "Skipping malformed row", "error", serr)
	}
	if len(rows) > 0 {
		if h, err := store.ParseHeader(rows[0]); err == nil {
			c.setHeader(h)
		}
	}
	c.cacheMu.Lock()
	if c.gen == gen {
		c.cache.Set(logKey, entries)
	}
	c.cacheMu.Unlock()
	return append([]core.Entry(nil), entries...), nil
}

// Invalidate drops the cached log and any load still in flight.
func (c *Client) Invalidate() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.gen++
	c.cache.Purge()
}
