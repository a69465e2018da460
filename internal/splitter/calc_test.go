package splitter

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billbrain/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func soupReceipt() models.Receipt {
	return models.Receipt{
		Items: []models.LineItem{
			{Name: "Soup", Quantity: dec("2"), UnitPrice: dec("5.00"), TotalPrice: dec("10.00")},
		},
		Currency: "$",
		Tax:      dec("1.00"),
		Total:    dec("11.00"),
	}
}

func TestComputeEqualSplitWithTax(t *testing.T) {
	// two participants, no assignments: each gets quantity 1 of Soup at
	// 5.00 raw, scaled by tax ratio 1.00/10.00 to 5.50 each
	result, err := compute(soupReceipt(), []string{"A", "B"}, nil, true)
	require.NoError(t, err)

	require.Len(t, result.Shares, 2)
	assert.Equal(t, "A", result.Shares[0].Name)
	assert.Equal(t, "B", result.Shares[1].Name)
	assert.True(t, result.Shares[0].Amount.Equal(dec("5.50")), "A amount = %s", result.Shares[0].Amount)
	assert.True(t, result.Shares[1].Amount.Equal(dec("5.50")), "B amount = %s", result.Shares[1].Amount)
	assert.Equal(t, "Soup ×1", result.Shares[0].Items)
	assert.True(t, result.Sum().Equal(dec("11.00")))
}

func TestComputeFullAttribution(t *testing.T) {
	// "A pays for everything": quantity 2 assigned to A, B owes nothing
	assignments := []Assignment{{ItemIndex: 0, Participant: "A"}}

	result, err := compute(soupReceipt(), []string{"A", "B"}, assignments, true)
	require.NoError(t, err)

	assert.True(t, result.Shares[0].Amount.Equal(dec("11.00")), "A amount = %s", result.Shares[0].Amount)
	assert.True(t, result.Shares[1].Amount.IsZero(), "B amount = %s", result.Shares[1].Amount)
	assert.Equal(t, "Soup ×2", result.Shares[0].Items)
	assert.Equal(t, "", result.Shares[1].Items)
}

func TestComputeWithoutTax(t *testing.T) {
	result, err := compute(soupReceipt(), []string{"A", "B"}, nil, false)
	require.NoError(t, err)

	assert.True(t, result.Shares[0].Amount.Equal(dec("5.00")))
	assert.True(t, result.Shares[1].Amount.Equal(dec("5.00")))
	assert.True(t, result.Sum().Equal(dec("10.00")))
}

func TestComputeEqualQuantitiesPerParticipant(t *testing.T) {
	// every item's quantity is divided by the headcount when nothing is
	// explicitly attributed
	receipt := models.Receipt{
		Items: []models.LineItem{
			{Name: "Nasi Goreng", Quantity: dec("3"), UnitPrice: dec("4.00"), TotalPrice: dec("12.00")},
			{Name: "Satay", Quantity: dec("6"), UnitPrice: dec("1.50"), TotalPrice: dec("9.00")},
		},
		Total: dec("21.00"),
	}

	result, err := compute(receipt, []string{"A", "B", "C"}, nil, true)
	require.NoError(t, err)

	for _, share := range result.Shares {
		assert.Equal(t, "Nasi Goreng ×1, Satay ×2", share.Items)
		assert.True(t, share.Amount.Equal(dec("7.00")), "%s amount = %s", share.Name, share.Amount)
	}
}

func TestComputeReconciliationResidualToFirstParticipant(t *testing.T) {
	// 10.00 across three people rounds to 3.33 each; the missing cent goes
	// to the first participant
	receipt := models.Receipt{
		Items: []models.LineItem{
			{Name: "Platter", Quantity: dec("1"), UnitPrice: dec("10.00"), TotalPrice: dec("10.00")},
		},
		Total: dec("10.00"),
	}

	result, err := compute(receipt, []string{"A", "B", "C"}, nil, true)
	require.NoError(t, err)

	assert.True(t, result.Shares[0].Amount.Equal(dec("3.34")), "A amount = %s", result.Shares[0].Amount)
	assert.True(t, result.Shares[1].Amount.Equal(dec("3.33")))
	assert.True(t, result.Shares[2].Amount.Equal(dec("3.33")))
	assert.True(t, result.Sum().Equal(dec("10.00")))
}

func TestComputePartialAssignmentSplitsRemainder(t *testing.T) {
	qty := dec("1")
	assignments := []Assignment{{ItemIndex: 0, Participant: "B", Quantity: &qty}}

	result, err := compute(soupReceipt(), []string{"A", "B"}, assignments, true)
	require.NoError(t, err)

	// B: 1 assigned + 0.5 shared = 7.5 raw → 8.25; A: 0.5 shared = 2.5 raw → 2.75
	assert.True(t, result.Shares[0].Amount.Equal(dec("2.75")), "A amount = %s", result.Shares[0].Amount)
	assert.True(t, result.Shares[1].Amount.Equal(dec("8.25")), "B amount = %s", result.Shares[1].Amount)
	assert.True(t, result.Sum().Equal(dec("11.00")))
	assert.Equal(t, "Soup ×1, Soup ×0.5", result.Shares[1].Items)
}

func TestComputeRejectsOverAssignment(t *testing.T) {
	three := dec("3")
	assignments := []Assignment{{ItemIndex: 0, Participant: "A", Quantity: &three}}

	_, err := compute(soupReceipt(), []string{"A", "B"}, assignments, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeding its quantity")
}

func TestComputeRejectsUnknownParticipant(t *testing.T) {
	assignments := []Assignment{{ItemIndex: 0, Participant: "Mallory"}}

	_, err := compute(soupReceipt(), []string{"A", "B"}, assignments, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown participant")
}

func TestComputeRejectsOutOfRangeItem(t *testing.T) {
	assignments := []Assignment{{ItemIndex: 7, Participant: "A"}}

	_, err := compute(soupReceipt(), []string{"A", "B"}, assignments, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 7")
}

func TestComputeRejectsInconsistentReceiptTotals(t *testing.T) {
	// grand total far from items + tax: drift is not rounding, refuse to
	// absorb it silently
	receipt := soupReceipt()
	receipt.Total = dec("25.00")

	_, err := compute(receipt, []string{"A", "B"}, nil, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestComputeDeterministic(t *testing.T) {
	receipt := models.Receipt{
		Items: []models.LineItem{
			{Name: "Curry", Quantity: dec("1"), UnitPrice: dec("7.30"), TotalPrice: dec("7.30")},
			{Name: "Roti", Quantity: dec("5"), UnitPrice: dec("1.10"), TotalPrice: dec("5.50")},
		},
		Tax:   dec("1.28"),
		Total: dec("14.08"),
	}
	participants := []string{"A", "B", "C"}

	first, err := compute(receipt, participants, nil, true)
	require.NoError(t, err)
	second, err := compute(receipt, participants, nil, true)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.True(t, first.Sum().Equal(dec("14.08")))
}
