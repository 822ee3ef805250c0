package steem

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Asset symbols used on the main network.
const (
	SymbolSteem = "STEEM"
	SymbolSBD   = "SBD"
	SymbolVests = "VESTS"
)

// Asset is an amount with its symbol, encoded by the node as "1.000 STEEM".
type Asset struct {
	Amount decimal.Decimal
	Symbol string
}

// ParseAsset parses "<amount> <symbol>".
func ParseAsset(s string) (Asset, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("invalid asset %q: expected \"<amount> <symbol>\"", s)
	}

	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Asset{}, fmt.Errorf("invalid asset amount %q: %w", fields[0], err)
	}

	return Asset{Amount: amount, Symbol: fields[1]}, nil
}

// Precision returns the number of decimals the node prints for the symbol.
func (a Asset) Precision() int32 {
	if a.Symbol == SymbolVests {
		return 6
	}
	return 3
}

func (a Asset) String() string {
	return a.Amount.StringFixed(a.Precision()) + " " + a.Symbol
}

func (a Asset) IsZero() bool {
	return a.Amount.IsZero()
}

func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("asset must be a string: %w", err)
	}
	return a.UnmarshalText([]byte(s))
}

// Price is an exchange rate expressed as base per quote.
type Price struct {
	Base  Asset `json:"base"`
	Quote Asset `json:"quote"`
}

// Rate returns Base.Amount / Quote.Amount, or zero when the quote is zero.
func (p Price) Rate() decimal.Decimal {
	if p.Quote.Amount.IsZero() {
		return decimal.Zero
	}
	return p.Base.Amount.Div(p.Quote.Amount)
}

func (p Price) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}
