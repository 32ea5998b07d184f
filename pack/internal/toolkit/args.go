package toolkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
)

// Envelope is embedded by every args struct.
type Envelope struct {
	ExcludeInstructions bool `json:"exclude_instructions,omitempty" jsonschema_description:"Return the raw response without the instructions envelope."`
}

// Page holds the pagination arguments.
type Page struct {
	Page     int `json:"page,omitempty" jsonschema:"minimum=1,default=1" jsonschema_description:"Page number for pagination (1-based)." validate:"min=1"`
	PageSize int `json:"page_size,omitempty" jsonschema:"minimum=1,maximum=100,default=50" jsonschema_description:"Number of items per page (1-100)." validate:"min=1,max=100"`
}

// DefaultPage returns the first page at the call's default size.
func (c *Call) DefaultPage() Page {
	return Page{Page: 1, PageSize: c.PageSize()}
}

// DateRange holds a required inclusive date range.
type DateRange struct {
	StartDate string `json:"start_date" jsonschema:"required,format=date" jsonschema_description:"Start date in ISO format (YYYY-MM-DD). All dates are in Eastern Time (ET)." validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" jsonschema:"required,format=date" jsonschema_description:"End date in ISO format (YYYY-MM-DD). All dates are in Eastern Time (ET)." validate:"required,datetime=2006-01-02"`
}

// OptionalDates holds an optional date range.
type OptionalDates struct {
	StartDate string `json:"start_date,omitempty" jsonschema:"format=date" jsonschema_description:"Start date for filtering in ISO format (YYYY-MM-DD). All dates are in Eastern Time (ET)." validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"format=date" jsonschema_description:"End date for filtering in ISO format (YYYY-MM-DD). All dates are in Eastern Time (ET)." validate:"omitempty,datetime=2006-01-02"`
}

// Filters narrows a search to companies, lists or sectors.
type Filters struct {
	BloombergTicker string `json:"bloomberg_ticker,omitempty" jsonschema_description:"Bloomberg ticker(s) in format 'TICKER:COUNTRY' (e.g. 'AAPL:US'). For multiple tickers use a comma-separated list without spaces. Defaults to ':US' if the country code is omitted."`
	WatchlistID     *ID    `json:"watchlist_id,omitempty" jsonschema_description:"ID of a specific watchlist. Use get_available_watchlists to find valid IDs."`
	IndexID         *ID    `json:"index_id,omitempty" jsonschema_description:"ID of a specific index. Use get_available_indexes to find valid IDs."`
	SectorID        *ID    `json:"sector_id,omitempty" jsonschema_description:"ID of a specific sector. Use get_sectors_and_subsectors to find valid IDs."`
	SubsectorID     *ID    `json:"subsector_id,omitempty" jsonschema_description:"ID of a specific subsector. Use get_sectors_and_subsectors to find valid IDs."`
}

// Correct normalizes the ticker list.
func (f *Filters) Correct(c *Call) error {
	return c.Correct(correction.KindTicker, "bloomberg_ticker", &f.BloombergTicker)
}

// ID is a non-negative integer identifier. Callers may send it as a JSON
// number or as a numeric string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 || strings.HasPrefix(raw, "+") {
		return fmt.Errorf("id %s is not a non-negative integer", data)
	}
	*id = ID(strconv.FormatInt(n, 10))
	return nil
}

// JSONSchema implements jsonschema's custom schema hook.
func (ID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer"},
			{Type: "string", Pattern: "^[0-9]+$"},
		},
	}
}

// String returns the identifier.
func (id ID) String() string {
	return string(id)
}

// Query accumulates upstream query parameters, skipping empty values.
type Query struct {
	values url.Values
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Set adds key=value unless value is empty.
func (q *Query) Set(key, value string) *Query {
	if value != "" {
		q.values.Set(key, value)
	}
	return q
}

// SetID adds key=id unless id is nil.
func (q *Query) SetID(key string, id *ID) *Query {
	if id != nil {
		q.values.Set(key, id.String())
	}
	return q
}

// SetInt adds key=n.
func (q *Query) SetInt(key string, n int) *Query {
	q.values.Set(key, strconv.Itoa(n))
	return q
}

// SetBool adds key as "true" or "false".
func (q *Query) SetBool(key string, b bool) *Query {
	q.values.Set(key, strconv.FormatBool(b))
	return q
}

// Page adds the pagination arguments.
func (q *Query) Page(p Page) *Query {
	return q.SetInt("page", p.Page).SetInt("page_size", p.PageSize)
}

// Dates adds the date range.
func (q *Query) Dates(d DateRange) *Query {
	return q.Set("start_date", d.StartDate).Set("end_date", d.EndDate)
}

// Filters adds the entity filters.
func (q *Query) Filters(f Filters) *Query {
	return q.Set("bloomberg_ticker", f.BloombergTicker).
		SetID("watchlist_id", f.WatchlistID).
		SetID("index_id", f.IndexID).
		SetID("sector_id", f.SectorID).
		SetID("subsector_id", f.SubsectorID)
}

// Values returns the accumulated parameters.
func (q *Query) Values() url.Values {
	return q.values
}

// jsonName reports struct fields by their JSON key in validation errors.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
