package types

import (
	"fmt"
	"strconv"
	"strings"
)

// AssetType enumerates the kinds of tradable instrument the engine
// understands. Unlike the teacher's Polymarket-specific TickSize enum,
// this one has no rounding behavior attached — tick/lot rules belong to
// the pricing engine, not to asset identity.
type AssetType string

const (
	AssetStock  AssetType = "STOCK"
	AssetForex  AssetType = "FOREX"
	AssetCrypto AssetType = "CRYPTO"
	AssetFuture AssetType = "FUTURE"
	AssetBond   AssetType = "BOND"
	AssetIndex  AssetType = "INDEX"
	AssetOption AssetType = "OPTION"
)

// Asset is the immutable identity of a tradable instrument: symbol, type,
// currency, exchange and contract multiplier. Two assets are equal iff
// every field matches (spec.md §3). Every field is a comparable scalar so
// Asset itself is comparable and safe to use as a map key directly.
type Asset struct {
	Symbol     string
	Type       AssetType
	Currency   Currency
	Exchange   string
	Multiplier float64
}

// NewAsset builds an Asset with a multiplier of 1.0.
func NewAsset(symbol string, assetType AssetType, currency Currency) Asset {
	return Asset{Symbol: symbol, Type: assetType, Currency: currency, Multiplier: 1.0}
}

// WithExchange returns a copy of the asset tagged with an exchange code.
func (a Asset) WithExchange(exchange string) Asset {
	a.Exchange = exchange
	return a
}

// WithMultiplier returns a copy of the asset with a different contract
// multiplier (e.g. futures contracts priced per-point).
func (a Asset) WithMultiplier(multiplier float64) Asset {
	a.Multiplier = multiplier
	return a
}

// Serialize renders the asset to an opaque string that Deserialize parses
// back into an identical Asset (spec.md §3: "round-trip exact").
func (a Asset) Serialize() string {
	return fmt.Sprintf("%s;%s;%s;%s;%s",
		escapeField(a.Symbol), a.Type, a.Currency, escapeField(a.Exchange),
		strconv.FormatFloat(a.Multiplier, 'g', -1, 64))
}

// DeserializeAsset parses the output of Asset.Serialize.
func DeserializeAsset(s string) (Asset, error) {
	var parts []string
	start, escaped := 0, false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	if len(parts) != 5 {
		return Asset{}, fmt.Errorf("types: malformed asset string %q", s)
	}
	multiplier, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return Asset{}, fmt.Errorf("types: malformed asset multiplier in %q: %w", s, err)
	}
	return Asset{
		Symbol:     unescapeField(parts[0]),
		Type:       AssetType(parts[1]),
		Currency:   Currency(parts[2]),
		Exchange:   unescapeField(parts[3]),
		Multiplier: multiplier,
	}, nil
}

func (a Asset) String() string { return a.Symbol }

// escapeField / unescapeField protect the ';' field separator inside
// symbol or exchange values, which in practice never contain one but
// which Serialize must still round-trip exactly if they do.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, ";", `\;`)
}

func unescapeField(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
