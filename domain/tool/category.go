package tool

import (
	"fmt"
	"strings"
)

// Category groups tools by the upstream resource they serve. The set is closed.
type Category string

const (
	CategoryEvents            Category = "events"
	CategoryFilings           Category = "filings"
	CategoryEquities          Category = "equities"
	CategoryIndexesWatchlists Category = "indexes_watchlists"
	CategoryCompanyDocs       Category = "company_docs"
	CategorySearch            Category = "search"
	CategoryTranscrippets     Category = "transcrippets"
	CategoryThirdBridge       Category = "third_bridge"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryEvents,
		CategoryFilings,
		CategoryEquities,
		CategoryIndexesWatchlists,
		CategoryCompanyDocs,
		CategorySearch,
		CategoryTranscrippets,
		CategoryThirdBridge,
	}
}

// Valid returns true for members of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a category name. Hyphens and spaces are treated as
// underscores.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	c := Category(norm)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
