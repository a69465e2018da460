// Package capability defines the two hosted inference capabilities the
// service depends on. Both are opaque black boxes reached over the network;
// nothing here guarantees determinism of their output.
package capability

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the upstream capability call itself failed
// (network, auth, quota). Callers may retry.
var ErrUnavailable = errors.New("upstream capability unavailable")

// ErrMalformedOutput indicates the capability responded but the text was not
// usable after stripping known formatting artifacts.
var ErrMalformedOutput = errors.New("upstream capability returned unusable output")

// Image is an inline image forwarded to the vision capability.
type Image struct {
	Data []byte
	MIME string
}

// Vision is a hosted model that can answer an instruction about an image.
type Vision interface {
	Describe(ctx context.Context, instruction string, img Image) (string, error)
}

// Message is one turn in a reasoning conversation.
type Message struct {
	Role    string
	Content string
}

// Reasoning is a hosted model that completes a structured message sequence.
type Reasoning interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Conversation roles understood by the OpenAI-compatible dialect.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
