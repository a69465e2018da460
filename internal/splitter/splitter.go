// Package splitter computes per-person bill splits. The hosted reasoning
// capability is consulted only to translate natural-language instructions
// into item attributions; subtotals, the proportional tax ratio, and
// rounding reconciliation are deterministic local arithmetic.
package splitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"billbrain/internal/capability"
	"billbrain/internal/models"
	"billbrain/internal/sanitize"
)

// Request carries the caller-supplied split parameters.
type Request struct {
	Participants []string
	Instruction  string
	ApplyTax     bool
}

func (r Request) validate() error {
	if len(r.Participants) == 0 {
		return fmt.Errorf("%w: people_list must not be empty", models.ErrValidation)
	}
	for i, name := range r.Participants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: participant %d must not be blank", models.ErrValidation, i)
		}
	}
	return nil
}

// Splitter turns a Receipt and split parameters into a SplitResult.
type Splitter struct {
	reasoning capability.Reasoning
}

// New constructs a Splitter backed by the given reasoning capability.
func New(reasoning capability.Reasoning) *Splitter {
	return &Splitter{reasoning: reasoning}
}

// Split computes the per-person amounts for a receipt. A blank instruction
// means every item is divided equally, which needs no natural-language
// parsing, so the reasoning capability is not consulted at all for it.
func (s *Splitter) Split(ctx context.Context, receipt models.Receipt, req Request) (models.SplitResult, error) {
	if err := req.validate(); err != nil {
		return models.SplitResult{}, err
	}
	if err := receipt.Validate(); err != nil {
		return models.SplitResult{}, err
	}

	var payload assignmentPayload
	if strings.TrimSpace(req.Instruction) != "" {
		parsed, err := s.parseAssignments(ctx, receipt, req.Participants, req.Instruction)
		if err != nil {
			return models.SplitResult{}, err
		}
		payload = parsed
	}

	result, err := compute(receipt, req.Participants, payload.Assignments, req.ApplyTax)
	if err != nil {
		return models.SplitResult{}, wrapComputeError(err, payload.Assignments)
	}
	result.Narrative = payload.Narrative
	return result, nil
}

const modifySystemPrompt = `You are a bill splitting assistant continuing a conversation about how to split a receipt.
You will receive receipt data as JSON, the participant names, the conversation so far, and a new request.
Work out which line items are now explicitly attributed to a participant, taking the whole conversation into account.
Return ONLY a raw JSON object with this exact structure:
{"reply": "a short conversational answer", "assignments": [{"item_index": 0, "participant": "Alice", "quantity": 1}]}
The same rules apply: "item_index" is zero-based, "participant" must match one of the provided names exactly, "quantity" may be omitted to assign the item's full quantity, and items shared equally stay out of "assignments".
Do not include markdown formatting like a json code fence. Just return the raw JSON string.`

type modifyPayload struct {
	Reply       string       `json:"reply"`
	Assignments []Assignment `json:"assignments"`
}

// ChatModify recomputes the split after a conversational adjustment. The
// full history must be supplied on every call; nothing is retained between
// calls.
func (s *Splitter) ChatModify(ctx context.Context, receipt models.Receipt, history []models.ChatTurn, message string, req Request) (string, models.SplitResult, error) {
	if err := req.validate(); err != nil {
		return "", models.SplitResult{}, err
	}
	if err := receipt.Validate(); err != nil {
		return "", models.SplitResult{}, err
	}
	if strings.TrimSpace(message) == "" {
		return "", models.SplitResult{}, fmt.Errorf("%w: user_message must not be empty", models.ErrValidation)
	}
	for i, turn := range history {
		if err := turn.Validate(); err != nil {
			return "", models.SplitResult{}, fmt.Errorf("history turn %d: %w", i, err)
		}
	}

	receiptJSON, err := json.Marshal(receipt)
	if err != nil {
		return "", models.SplitResult{}, fmt.Errorf("encode receipt for chat modification: %w", err)
	}

	messages := make([]capability.Message, 0, len(history)+3)
	messages = append(messages,
		capability.Message{Role: capability.RoleSystem, Content: modifySystemPrompt},
		capability.Message{
			Role:    capability.RoleUser,
			Content: fmt.Sprintf("Receipt Data: %s\nParticipants: %s", receiptJSON, strings.Join(req.Participants, ", ")),
		},
	)
	for _, turn := range history {
		messages = append(messages, capability.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, capability.Message{Role: capability.RoleUser, Content: message})

	raw, err := s.reasoning.Complete(ctx, messages)
	if err != nil {
		return "", models.SplitResult{}, fmt.Errorf("chat modification: %w", err)
	}

	var payload modifyPayload
	if err := sanitize.DecodeInto(raw, &payload); err != nil {
		return "", models.SplitResult{}, fmt.Errorf("%w: %v", capability.ErrMalformedOutput, err)
	}
	if strings.TrimSpace(payload.Reply) == "" {
		return "", models.SplitResult{}, fmt.Errorf("%w: chat modification response missing reply", capability.ErrMalformedOutput)
	}

	result, err := compute(receipt, req.Participants, payload.Assignments, req.ApplyTax)
	if err != nil {
		return "", models.SplitResult{}, wrapComputeError(err, payload.Assignments)
	}
	return payload.Reply, result, nil
}

// wrapComputeError classifies calculator failures: bad attributions coming
// back from the model are malformed output, everything else is already a
// validation error.
func wrapComputeError(err error, assignments []Assignment) error {
	if len(assignments) > 0 && !errors.Is(err, models.ErrValidation) {
		return fmt.Errorf("%w: %v", capability.ErrMalformedOutput, err)
	}
	return err
}
