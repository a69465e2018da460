// Package extractor turns receipt images into structured Receipt values by
// way of the hosted vision capability.
package extractor

import (
	"context"
	"fmt"
	"net/http"

	"billbrain/internal/capability"
	"billbrain/internal/models"
	"billbrain/internal/sanitize"
)

// extractionPrompt dictates the exact output schema. The schema is repeated
// verbatim because the model otherwise drifts on field names.
const extractionPrompt = `Analyze this receipt image. Extract every line item, the tax, any service charge, and the grand total.
Return ONLY a raw JSON object with this exact structure:
{
    "items": [{"name": "item name", "quantity": 1, "unit_price": 10.0, "total_price": 10.0}],
    "subtotal": 100.0,
    "tax": 10.0,
    "service_charge": 5.0,
    "total": 115.0,
    "currency": "$"
}
Quantities may be fractional. Use 0 for tax or service_charge when the receipt shows none.
Do not include markdown formatting like a json code fence. Just return the raw JSON string.`

// Extractor produces a Receipt from raw image bytes.
type Extractor struct {
	vision capability.Vision
}

// New constructs an Extractor backed by the given vision capability.
func New(vision capability.Vision) *Extractor {
	return &Extractor{vision: vision}
}

// Extract sends the image to the vision capability and parses its response
// into a Receipt. The declared media type is forwarded untouched; when the
// caller did not declare one it is sniffed from the bytes. A single attempt,
// no retry.
func (e *Extractor) Extract(ctx context.Context, image []byte, mediaType string) (models.Receipt, error) {
	if len(image) == 0 {
		return models.Receipt{}, fmt.Errorf("%w: image must not be empty", models.ErrValidation)
	}
	if mediaType == "" {
		mediaType = http.DetectContentType(image)
	}

	raw, err := e.vision.Describe(ctx, extractionPrompt, capability.Image{Data: image, MIME: mediaType})
	if err != nil {
		return models.Receipt{}, fmt.Errorf("extract receipt: %w", err)
	}

	var receipt models.Receipt
	if err := sanitize.DecodeInto(raw, &receipt); err != nil {
		return models.Receipt{}, fmt.Errorf("%w: %v", capability.ErrMalformedOutput, err)
	}

	receipt.ApplyDefaults()
	if err := receipt.Validate(); err != nil {
		return models.Receipt{}, fmt.Errorf("%w: extracted receipt: %v", capability.ErrMalformedOutput, err)
	}
	return receipt, nil
}
