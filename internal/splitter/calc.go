package splitter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billbrain/internal/models"
)

// Assignment attributes a quantity of one line item wholly to a participant.
// A nil Quantity means the item's full quantity.
type Assignment struct {
	ItemIndex   int              `json:"item_index"`
	Participant string           `json:"participant"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
}

var one = decimal.NewFromInt(1)

// compute performs the split arithmetic locally: per-participant raw cost
// from assignments plus equal shares of everything unassigned, proportional
// tax scaling, and rounding reconciliation against the receipt total. It is
// deterministic: identical inputs produce identical results.
func compute(receipt models.Receipt, participants []string, assignments []Assignment, applyTax bool) (models.SplitResult, error) {
	headcount := decimal.NewFromInt(int64(len(participants)))
	index := make(map[string]int, len(participants))
	for i, name := range participants {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	rawCost := make([]decimal.Decimal, len(participants))
	portions := make([][]string, len(participants))
	assignedQty := make([]decimal.Decimal, len(receipt.Items))

	for _, a := range assignments {
		if a.ItemIndex < 0 || a.ItemIndex >= len(receipt.Items) {
			return models.SplitResult{}, fmt.Errorf("assignment references item %d but the receipt has %d items", a.ItemIndex, len(receipt.Items))
		}
		pi, ok := index[a.Participant]
		if !ok {
			return models.SplitResult{}, fmt.Errorf("assignment references unknown participant %q", a.Participant)
		}

		item := receipt.Items[a.ItemIndex]
		qty := item.Quantity
		if a.Quantity != nil {
			qty = *a.Quantity
		}
		if qty.Sign() <= 0 {
			return models.SplitResult{}, fmt.Errorf("assignment quantity for %q must be positive", item.Name)
		}

		// quantity conservation: assigned portions never exceed the item
		total := assignedQty[a.ItemIndex].Add(qty)
		if total.GreaterThan(item.Quantity) {
			return models.SplitResult{}, fmt.Errorf("assignments for %q total %s, exceeding its quantity %s", item.Name, total, item.Quantity)
		}
		assignedQty[a.ItemIndex] = total

		rawCost[pi] = rawCost[pi].Add(qty.Mul(item.UnitPrice))
		portions[pi] = append(portions[pi], describePortion(item.Name, qty))
	}

	// unassigned quantity is divided equally across the whole roster
	for i, item := range receipt.Items {
		remaining := item.Quantity.Sub(assignedQty[i])
		if remaining.Sign() <= 0 {
			continue
		}
		perHead := remaining.Div(headcount)
		cost := perHead.Mul(item.UnitPrice)
		for pi := range participants {
			rawCost[pi] = rawCost[pi].Add(cost)
			portions[pi] = append(portions[pi], describePortion(item.Name, perHead))
		}
	}

	subtotal := decimal.Zero
	for _, cost := range rawCost {
		subtotal = subtotal.Add(cost)
	}

	scale := one
	if applyTax && subtotal.Sign() > 0 {
		scale = one.Add(receipt.TaxTotal().Div(subtotal))
	}

	shares := make([]models.SplitShare, len(participants))
	sum := decimal.Zero
	for pi, name := range participants {
		amount := rawCost[pi].Mul(scale).Round(2)
		shares[pi] = models.SplitShare{
			Name:   name,
			Amount: amount,
			Items:  strings.Join(portions[pi], ", "),
		}
		sum = sum.Add(amount)
	}

	// Rounding drifts by at most half a cent per share, so anything past a
	// cent per participant means the receipt's own totals are inconsistent
	// with its line items.
	target := reconciliationTarget(receipt, subtotal, applyTax)
	residual := target.Sub(sum)
	tolerance := decimal.NewFromFloat(0.01).Mul(headcount)
	if residual.Abs().GreaterThan(tolerance) {
		return models.SplitResult{}, fmt.Errorf("%w: share sum %s differs from expected total %s by more than %s", models.ErrValidation, sum, target, tolerance)
	}

	if !residual.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(residual)
		if shares[0].Amount.Sign() < 0 {
			return models.SplitResult{}, fmt.Errorf("%w: reconciliation would make %s's amount negative", models.ErrValidation, shares[0].Name)
		}
	}

	return models.SplitResult{Shares: shares}, nil
}

// reconciliationTarget is what the share amounts must sum to exactly: the
// grand total when tax is applied, the items subtotal when it is not. A
// receipt without a usable grand total falls back to subtotal plus tax.
func reconciliationTarget(receipt models.Receipt, subtotal decimal.Decimal, applyTax bool) decimal.Decimal {
	if !applyTax {
		return subtotal.Round(2)
	}
	if receipt.Total.Sign() > 0 {
		return receipt.Total.Round(2)
	}
	return subtotal.Add(receipt.TaxTotal()).Round(2)
}

func describePortion(name string, qty decimal.Decimal) string {
	return fmt.Sprintf("%s ×%s", name, qty.Round(2))
}
