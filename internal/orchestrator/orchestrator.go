// Package orchestrator is the operation boundary between the HTTP surface
// and the receipt components. Each operation is a linear forward to one
// component; requests never share state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"billbrain/internal/models"
	"billbrain/internal/splitter"
)

// ReceiptExtractor produces a Receipt from raw image bytes.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mediaType string) (models.Receipt, error)
}

// SplitCalculator computes splits and conversational modifications.
type SplitCalculator interface {
	Split(ctx context.Context, receipt models.Receipt, req splitter.Request) (models.SplitResult, error)
	ChatModify(ctx context.Context, receipt models.Receipt, history []models.ChatTurn, message string, req splitter.Request) (string, models.SplitResult, error)
}

// Orchestrator holds the injected component dependencies, constructed once
// at startup.
type Orchestrator struct {
	extractor ReceiptExtractor
	splitter  SplitCalculator
}

// New wires the orchestrator with its components.
func New(extractor ReceiptExtractor, calculator SplitCalculator) (*Orchestrator, error) {
	if extractor == nil {
		return nil, errors.New("extractor must not be nil")
	}
	if calculator == nil {
		return nil, errors.New("split calculator must not be nil")
	}
	return &Orchestrator{extractor: extractor, splitter: calculator}, nil
}

// Scan forwards an uploaded image to the extractor.
func (o *Orchestrator) Scan(ctx context.Context, image []byte, mediaType string) (models.Receipt, error) {
	receipt, err := o.extractor.Extract(ctx, image, mediaType)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("scan: %w", err)
	}
	return receipt, nil
}

// Split forwards a split request to the calculator.
func (o *Orchestrator) Split(ctx context.Context, receipt models.Receipt, req splitter.Request) (models.SplitResult, error) {
	result, err := o.splitter.Split(ctx, receipt, req)
	if err != nil {
		return models.SplitResult{}, fmt.Errorf("split: %w", err)
	}
	return result, nil
}

// ChatModify forwards a conversational adjustment to the calculator.
func (o *Orchestrator) ChatModify(ctx context.Context, receipt models.Receipt, history []models.ChatTurn, message string, req splitter.Request) (string, models.SplitResult, error) {
	reply, result, err := o.splitter.ChatModify(ctx, receipt, history, message, req)
	if err != nil {
		return "", models.SplitResult{}, fmt.Errorf("chat modify: %w", err)
	}
	return reply, result, nil
}
