package vocabulary

import "strings"

// DefaultExchange is the country code assumed for a ticker given without one.
const DefaultExchange = "US"

// securityTypes are Bloomberg yellow-key suffixes dropped during normalization.
var securityTypes = map[string]bool{
	"EQUITY": true,
	"EQ":     true,
	"INDEX":  true,
}

// NormalizeTicker rewrites Bloomberg-style spellings into TICKER:EXCHANGE form.
// "aapl us equity", "AAPL US" and "aapl:us" all become "AAPL:US". A bare
// ticker keeps its bare form ("aapl" becomes "AAPL").
func NormalizeTicker(raw string) string {
	fields := strings.Fields(strings.ToUpper(raw))
	if len(fields) > 1 && securityTypes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return ""
	}
	if len(fields) >= 2 && !strings.Contains(fields[0], ":") && !strings.Contains(fields[1], ":") {
		return fields[0] + ":" + fields[1]
	}
	return strings.Join(fields, "")
}

// QualifyTicker normalizes a ticker and appends the default exchange when
// none is given.
func QualifyTicker(raw string) string {
	t := NormalizeTicker(raw)
	if t == "" || strings.Contains(t, ":") {
		return t
	}
	return t + ":" + DefaultExchange
}

// SplitTicker splits a normalized ticker into its local symbol and exchange.
func SplitTicker(ticker string) (local, exchange string) {
	local, exchange, _ = strings.Cut(ticker, ":")
	return local, exchange
}
