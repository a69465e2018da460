package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, matching what the
	// extraction prompt asks the vision model to produce.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrency is used when the extractor cannot determine a currency symbol.
const DefaultCurrency = "$"

// ErrValidation indicates a locally detectable problem with caller input.
var ErrValidation = errors.New("validation failed")

// LineItem is one purchased item on a receipt. TotalPrice is carried as
// extracted and is not re-derived from Quantity and UnitPrice.
type LineItem struct {
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Receipt is the structured representation of a scanned bill.
type Receipt struct {
	Items         []LineItem      `json:"items"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
}

// TaxTotal returns the combined tax-like amount distributed proportionally
// across participants: tax plus service charge.
func (r Receipt) TaxTotal() decimal.Decimal {
	return r.Tax.Add(r.ServiceCharge)
}

// ItemsSubtotal returns the raw food cost of the receipt, the sum of
// quantity × unit price over all items.
func (r Receipt) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range r.Items {
		sum = sum.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return sum
}

// ApplyDefaults fills optional fields the extractor may omit.
func (r *Receipt) ApplyDefaults() {
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
}

// Validate checks the receipt against locally enforceable constraints.
func (r Receipt) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: receipt must contain at least one item", ErrValidation)
	}
	for i, item := range r.Items {
		if item.Quantity.Sign() <= 0 {
			return fmt.Errorf("%w: item %d (%s) quantity must be positive", ErrValidation, i, item.Name)
		}
		if item.UnitPrice.Sign() < 0 {
			return fmt.Errorf("%w: item %d (%s) unit price must not be negative", ErrValidation, i, item.Name)
		}
		if item.TotalPrice.Sign() < 0 {
			return fmt.Errorf("%w: item %d (%s) total price must not be negative", ErrValidation, i, item.Name)
		}
	}
	if r.Tax.Sign() < 0 {
		return fmt.Errorf("%w: tax must not be negative", ErrValidation)
	}
	if r.ServiceCharge.Sign() < 0 {
		return fmt.Errorf("%w: service charge must not be negative", ErrValidation)
	}
	if r.Total.Sign() < 0 {
		return fmt.Errorf("%w: total must not be negative", ErrValidation)
	}
	return nil
}

// SplitShare is one participant's portion of the bill.
type SplitShare struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Items  string          `json:"items"`
}

// SplitResult is the canonical split schema emitted by every code path.
// Narrative carries any free-text explanation and is always optional.
type SplitResult struct {
	Shares    []SplitShare `json:"shares"`
	Narrative string       `json:"narrative,omitempty"`
}

// Sum returns the total of all share amounts.
func (s SplitResult) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, share := range s.Shares {
		sum = sum.Add(share.Amount)
	}
	return sum
}

// Chat message roles accepted in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one prior exchange in a modification conversation. The full
// history is supplied by the caller on every request; nothing is retained
// between calls.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Validate rejects turns with unknown roles or empty content.
func (t ChatTurn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return fmt.Errorf("%w: history role %q must be %q or %q", ErrValidation, t.Role, RoleUser, RoleAssistant)
	}
	if t.Content == "" {
		return fmt.Errorf("%w: history content must not be empty", ErrValidation)
	}
	return nil
}
