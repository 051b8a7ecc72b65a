package domain

import (
	"sort"
	"strings"
)

// DefaultQuoteAsset is the currency every cycle starts and ends in.
const DefaultQuoteAsset = "USDT"

// Triangle is a cycle of three markets: ALT/QUOTE, ALT/BASE and BASE/QUOTE.
// It is built once at startup and never mutated.
type Triangle struct {
	Alt             string
	Base            string
	Quote           string
	SymbolAltQuote  string // e.g. ADAUSDT
	SymbolAltBase   string // e.g. ADABNB
	SymbolBaseQuote string // e.g. BNBUSDT
}

// NewTriangle builds the triangle for alt/base against the given quote asset
// using exchange-style concatenated symbols.
func NewTriangle(alt, base, quote string) Triangle {
	alt, base, quote = strings.ToUpper(alt), strings.ToUpper(base), strings.ToUpper(quote)
	return Triangle{
		Alt:             alt,
		Base:            base,
		Quote:           quote,
		SymbolAltQuote:  alt + quote,
		SymbolAltBase:   alt + base,
		SymbolBaseQuote: base + quote,
	}
}

// Key uniquely identifies the triangle by (Alt, Base).
func (t Triangle) Key() string {
	return t.Alt + "-" + t.Base
}

// Pair returns the human label used in reports, e.g. "ADA/BNB".
func (t Triangle) Pair() string {
	return t.Alt + "/" + t.Base
}

// Symbols returns the three market symbols in leg order.
func (t Triangle) Symbols() [3]string {
	return [3]string{t.SymbolAltQuote, t.SymbolAltBase, t.SymbolBaseQuote}
}

// BuildTriangles derives every triangle available from a set of tradable symbols.
//
// For each <ALT><QUOTE> symbol and each base in bases, a triangle exists when
// <ALT><BASE> and <BASE><QUOTE> are tradable too. The result is sorted by key
// so startup output is stable.
func BuildTriangles(tradable map[string]bool, bases []string, quote string) []Triangle {
	quote = strings.ToUpper(quote)
	seen := make(map[string]bool)
	var out []Triangle

	for sym := range tradable {
		if !strings.HasSuffix(sym, quote) || len(sym) == len(quote) {
			continue
		}
		alt := strings.TrimSuffix(sym, quote)
		for _, base := range bases {
			base = strings.ToUpper(base)
			if base == alt || base == quote {
				continue
			}
			if !tradable[alt+base] || !tradable[base+quote] {
				continue
			}
			tri := NewTriangle(alt, base, quote)
			if seen[tri.Key()] {
				continue
			}
			seen[tri.Key()] = true
			out = append(out, tri)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// StreamSymbols returns the union of the symbols referenced by triangles, sorted.
func StreamSymbols(triangles []Triangle) []string {
	set := make(map[string]bool, len(triangles)*3)
	for _, t := range triangles {
		for _, s := range t.Symbols() {
			set[s] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
