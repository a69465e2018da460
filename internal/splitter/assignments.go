package splitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"billbrain/internal/capability"
	"billbrain/internal/models"
	"billbrain/internal/sanitize"
)

const assignmentSystemPrompt = `You are a bill splitting assistant. You will receive receipt data as JSON, a list of participant names, and a natural-language instruction describing who pays for what.
Decide which line items the instruction explicitly attributes to a participant.
Return ONLY a raw JSON object with this exact structure:
{"assignments": [{"item_index": 0, "participant": "Alice", "quantity": 1}], "narrative": "one short sentence"}
RULES:
1. "item_index" is the zero-based index into the receipt's "items" array.
2. "participant" must match one of the provided names exactly.
3. Only include assignments for items the instruction explicitly attributes to someone. Everything left unassigned is split equally by the caller; do not assign it yourself.
4. "quantity" may be fractional and may be omitted to assign the item's full quantity.
5. When the instruction attributes nothing, return {"assignments": [], "narrative": ""}.
6. "narrative" is optional: at most one short sentence summarising the attribution.
Do not include markdown formatting like a json code fence. Just return the raw JSON string.`

// assignmentPayload is the shape the reasoning capability must return for
// instruction parsing.
type assignmentPayload struct {
	Assignments []Assignment `json:"assignments"`
	Narrative   string       `json:"narrative"`
}

// parseAssignments asks the reasoning capability to translate the free-text
// instruction into explicit item attributions. This is the only work
// delegated to the model; all arithmetic stays local.
func (s *Splitter) parseAssignments(ctx context.Context, receipt models.Receipt, participants []string, instruction string) (assignmentPayload, error) {
	receiptJSON, err := json.Marshal(receipt)
	if err != nil {
		return assignmentPayload{}, fmt.Errorf("encode receipt for assignment parsing: %w", err)
	}

	var user strings.Builder
	user.WriteString("Receipt Data: ")
	user.Write(receiptJSON)
	user.WriteString("\nParticipants: ")
	user.WriteString(strings.Join(participants, ", "))
	user.WriteString("\nInstruction: ")
	user.WriteString(instruction)

	raw, err := s.reasoning.Complete(ctx, []capability.Message{
		{Role: capability.RoleSystem, Content: assignmentSystemPrompt},
		{Role: capability.RoleUser, Content: user.String()},
	})
	if err != nil {
		return assignmentPayload{}, fmt.Errorf("parse assignments: %w", err)
	}

	var payload assignmentPayload
	if err := sanitize.DecodeInto(raw, &payload); err != nil {
		return assignmentPayload{}, fmt.Errorf("%w: %v", capability.ErrMalformedOutput, err)
	}
	return payload, nil
}
